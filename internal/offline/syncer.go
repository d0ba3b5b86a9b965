package offline

import (
	"context"
	"sync"
	"time"

	"github.com/velo-shop/internal/constants"
	"github.com/velo-shop/internal/localstore"
	"github.com/velo-shop/internal/logger"
	"github.com/velo-shop/internal/metrics"
	"github.com/velo-shop/internal/models"
)

// CartSyncPayload 购物车变更回放载荷
type CartSyncPayload struct {
	UserID    uint `json:"user_id"`
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// FavoriteSyncPayload 收藏变更回放载荷
type FavoriteSyncPayload struct {
	UserID    uint `json:"user_id"`
	ProductID uint `json:"product_id"`
}

// OrderSyncPayload 离线下单回放载荷
type OrderSyncPayload struct {
	UserID         uint                  `json:"user_id"`
	CustomerName   string                `json:"customer_name"`
	Phone          string                `json:"phone"`
	Email          string                `json:"email"`
	DeliveryMethod string                `json:"delivery_method"`
	Address        string                `json:"address"`
	Comment        string                `json:"comment"`
	Items          []OrderSyncItem       `json:"items"`
}

// OrderSyncItem 离线下单的商品行
type OrderSyncItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CatalogSource 目录数据来源（主库）
type CatalogSource interface {
	ActiveProducts(ctx context.Context) ([]models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

// SyncApplier 把积压的变更回放到主库
type SyncApplier interface {
	Apply(ctx context.Context, entry localstore.SyncEntry) error
}

// Syncer 边缘缓存同步器：在线时按过期策略刷新快照，
// 连通恢复后按先进先出回放同步队列。
type Syncer struct {
	store         *localstore.Store
	monitor       *Monitor
	source        CatalogSource
	applier       SyncApplier
	drainInterval time.Duration
	maxRetries    int

	kick     chan struct{}
	stopOnce sync.Once
	stopped  chan struct{}
}

// SyncerOptions 同步器配置
type SyncerOptions struct {
	DrainInterval time.Duration
	MaxRetries    int
}

// NewSyncer 创建同步器，并订阅监视器的恢复事件
func NewSyncer(store *localstore.Store, monitor *Monitor, source CatalogSource, applier SyncApplier, opts SyncerOptions) *Syncer {
	drainInterval := opts.DrainInterval
	if drainInterval <= 0 {
		drainInterval = time.Minute
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}
	s := &Syncer{
		store:         store,
		monitor:       monitor,
		source:        source,
		applier:       applier,
		drainInterval: drainInterval,
		maxRetries:    maxRetries,
		kick:          make(chan struct{}, 1),
		stopped:       make(chan struct{}),
	}
	if monitor != nil {
		monitor.Subscribe(func(online bool) {
			if online {
				s.Kick()
			}
		})
	}
	return s
}

// Name 服务名称
func (s *Syncer) Name() string {
	return "offline-syncer"
}

// Start 周期性刷新与回放，直到上下文取消
func (s *Syncer) Start(ctx context.Context) error {
	s.runOnce(ctx)
	ticker := time.NewTicker(s.drainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopped:
			return nil
		case <-s.kick:
			s.runOnce(ctx)
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// Stop 停止同步器
func (s *Syncer) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopped) })
	return nil
}

// Kick 触发一次立即同步（连通恢复或手动触发）
func (s *Syncer) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Syncer) runOnce(ctx context.Context) {
	if s.monitor != nil && !s.monitor.Online() {
		return
	}
	if err := s.Drain(ctx); err != nil {
		logger.Warnw("sync_drain_interrupted", "error", err)
	}
	if err := s.RefreshIfStale(ctx); err != nil {
		logger.Warnw("cache_refresh_failed", "error", err)
	}
}

// RefreshIfStale 仅当快照过期时刷新
func (s *Syncer) RefreshIfStale(ctx context.Context) error {
	now := time.Now()
	productsStale, err := s.store.IsStale(constants.MetaProductsCachedAt, now)
	if err != nil {
		return err
	}
	categoriesStale, err := s.store.IsStale(constants.MetaCategoriesCachedAt, now)
	if err != nil {
		return err
	}
	if !productsStale && !categoriesStale {
		return nil
	}
	return s.Refresh(ctx)
}

// Refresh 无条件从主库整表刷新商品与分类快照
func (s *Syncer) Refresh(ctx context.Context) error {
	now := time.Now()

	products, err := s.source.ActiveProducts(ctx)
	if err != nil {
		s.reportFailure(err)
		return Classify("catalog_products", err)
	}
	if err := s.store.CacheProducts(products, now); err != nil {
		return err
	}

	categories, err := s.source.Categories(ctx)
	if err != nil {
		s.reportFailure(err)
		return Classify("catalog_categories", err)
	}
	if err := s.store.CacheCategories(categories, now); err != nil {
		return err
	}

	metrics.CacheRefreshTotal.Inc()
	logger.Infow("edge_cache_refreshed", "products", len(products), "categories", len(categories))
	return nil
}

// Drain 按先进先出回放同步队列。
// 网络错误立即中断（仍离线），业务错误累加重试，超过上限后丢弃该条。
func (s *Syncer) Drain(ctx context.Context) error {
	entries, err := s.store.PendingSync(0)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		applyErr := s.applier.Apply(ctx, entry)
		if applyErr == nil {
			if err := s.store.RemoveSync(entry.ID); err != nil {
				return err
			}
			metrics.SyncReplayTotal.WithLabelValues(entry.Type, "ok").Inc()
			continue
		}
		if IsNetError(applyErr) {
			s.reportFailure(applyErr)
			return applyErr
		}
		retries, err := s.store.IncrementSyncRetry(entry.ID)
		if err != nil {
			return err
		}
		if retries >= s.maxRetries {
			if err := s.store.RemoveSync(entry.ID); err != nil {
				return err
			}
			metrics.SyncReplayTotal.WithLabelValues(entry.Type, "dropped").Inc()
			logger.Warnw("sync_entry_dropped",
				"entry_id", entry.ID,
				"type", entry.Type,
				"action", entry.Action,
				"retries", retries,
				"error", applyErr)
			continue
		}
		metrics.SyncReplayTotal.WithLabelValues(entry.Type, "retry").Inc()
		logger.Warnw("sync_entry_retry_later",
			"entry_id", entry.ID,
			"type", entry.Type,
			"retries", retries,
			"error", applyErr)
	}
	return nil
}

func (s *Syncer) reportFailure(err error) {
	if s.monitor != nil {
		s.monitor.ReportFailure(Classify("sync", err))
	}
}
