package provider

import (
	"time"

	"github.com/velo-shop/internal/authz"
	"github.com/velo-shop/internal/cache"
	"github.com/velo-shop/internal/config"
	"github.com/velo-shop/internal/localstore"
	"github.com/velo-shop/internal/logger"
	"github.com/velo-shop/internal/models"
	"github.com/velo-shop/internal/offline"
	"github.com/velo-shop/internal/queue"
	"github.com/velo-shop/internal/repository"
	"github.com/velo-shop/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// 边缘缓存与离线同步
	Store   *localstore.Store
	Monitor *offline.Monitor
	Syncer  *offline.Syncer

	// Repositories
	AdminRepo    repository.AdminRepository
	UserRepo     repository.UserRepository
	ProductRepo  repository.ProductRepository
	CategoryRepo repository.CategoryRepository
	CartRepo     repository.CartRepository
	FavoriteRepo repository.FavoriteRepository
	OrderRepo    repository.OrderRepository
	ReviewRepo   repository.ReviewRepository
	SettingRepo  repository.SettingRepository
	PushSubRepo  repository.PushSubscriptionRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	UserAdminService    *service.UserAdminService
	ProductService      *service.ProductService
	ProductAdminService *service.ProductAdminService
	CategoryService     *service.CategoryService
	CartService         *service.CartService
	FavoriteService     *service.FavoriteService
	CompareService      *service.CompareService
	OrderService        *service.OrderService
	ReviewService       *service.ReviewService
	SettingService      *service.SettingService
	PushService         *service.PushService
	MessageService      *service.MessageService
	SyncApplier         *service.SyncApplier
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化边缘缓存与连通性监视
	c.initOffline()

	// 2. 初始化 Repositories
	c.initRepositories()

	// 3. 初始化 Services
	c.initServices()

	// 4. 组装同步器（依赖 service 层的目录快照与回放器）
	c.initSyncer()

	return c
}

func (c *Container) initOffline() {
	if !c.Config.Offline.Enabled {
		logger.Infow("provider_offline_disabled")
		return
	}
	store, err := localstore.Open(localstore.Options{
		DSN:        c.Config.Offline.StoreDSN,
		StaleAfter: time.Duration(c.Config.Offline.StaleAfterSeconds) * time.Second,
	})
	if err != nil {
		logger.Errorw("provider_open_localstore_failed", "dsn", c.Config.Offline.StoreDSN, "error", err)
	} else {
		c.Store = store
	}
	c.Monitor = offline.NewMonitor(
		offline.NewDBPinger(models.DB),
		time.Duration(c.Config.Offline.ProbeIntervalSeconds)*time.Second,
	)
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.FavoriteRepo = repository.NewFavoriteRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ReviewRepo = repository.NewReviewRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.PushSubRepo = repository.NewPushSubscriptionRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.UserAdminService = service.NewUserAdminService(c.UserRepo)

	// 接口参数显式判空，避免带类型的 nil 指针穿过接口
	var offlineQueue service.OfflineQueue
	if c.Store != nil {
		offlineQueue = c.Store
	}
	var signal service.ConnectivitySignal
	if c.Monitor != nil {
		signal = c.Monitor
	}

	c.ProductService = service.NewProductService(c.ProductRepo, c.Store, signal)
	c.ProductAdminService = service.NewProductAdminService(c.ProductRepo, c.CategoryRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo, c.Store, signal)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, offlineQueue, signal)
	c.FavoriteService = service.NewFavoriteService(c.FavoriteRepo, c.ProductRepo, offlineQueue, signal)
	c.CompareService = service.NewCompareService(c.ProductRepo)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.ProductRepo,
		c.CartRepo,
		c.QueueClient,
		offlineQueue,
		signal,
		c.Config.Shop.OrderNoPrefix,
	)
	c.ReviewService = service.NewReviewService(c.ReviewRepo, c.ProductRepo)
	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.PushService = service.NewPushService(&c.Config.Push, c.PushSubRepo)
	c.MessageService = service.NewMessageService(&c.Config.Telegram, c.Config.Shop.ContactPhone)
	c.SyncApplier = service.NewSyncApplier(c.CartRepo, c.FavoriteRepo, c.OrderService)
}

func (c *Container) initSyncer() {
	if c.Store == nil || c.Monitor == nil {
		return
	}
	c.Syncer = offline.NewSyncer(
		c.Store,
		c.Monitor,
		service.NewCatalogSnapshotSource(c.ProductRepo, c.CategoryRepo),
		c.SyncApplier,
		offline.SyncerOptions{
			DrainInterval: time.Duration(c.Config.Offline.DrainIntervalSeconds) * time.Second,
			MaxRetries:    c.Config.Offline.MaxRetries,
		},
	)
}
