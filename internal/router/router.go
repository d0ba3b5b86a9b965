package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/velo-shop/internal/authz"
	"github.com/velo-shop/internal/cache"
	"github.com/velo-shop/internal/config"
	adminhandlers "github.com/velo-shop/internal/http/handlers/admin"
	publichandlers "github.com/velo-shop/internal/http/handlers/public"
	"github.com/velo-shop/internal/http/response"
	"github.com/velo-shop/internal/logger"
	"github.com/velo-shop/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "vs"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(MetricsMiddleware())
	r.Use(CORSMiddleware(cfg.CORS))

	// 静态文件服务（商品图片）
	r.Static("/uploads", "./uploads")

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/settings", publicHandler.GetPublicSettings)
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:slug", publicHandler.GetProductBySlug)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/reviews", publicHandler.GetReviews)
			public.POST("/reviews", publicHandler.CreateReview)
			public.GET("/orders/track", publicHandler.TrackOrder)
		}

		// 游客接口（对比清单走 X-Compare-Session 头）
		guest := apiV1.Group("/guest")
		{
			guest.POST("/orders", publicHandler.CreateGuestOrder)
			guest.GET("/compare", publicHandler.GetCompare)
			guest.POST("/compare/items", publicHandler.AddCompare)
			guest.DELETE("/compare/items/:product_id", publicHandler.RemoveCompare)
			guest.DELETE("/compare", publicHandler.ClearCompare)
		}

		// 推送订阅
		apiV1.POST("/push/subscribe", publicHandler.SubscribePush)
		apiV1.DELETE("/push/subscribe", publicHandler.UnsubscribePush)

		// 通知触发端点（独立调用约定，返回原始状态码）
		apiV1.POST("/notify/push", publicHandler.NotifyPush)
		apiV1.POST("/notify/message", publicHandler.NotifyMessage)

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.Me)
			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart/items", publicHandler.SetCartItem)
			user.DELETE("/cart/items/:product_id", publicHandler.DeleteCartItem)
			user.POST("/cart/merge", publicHandler.MergeCart)
			user.GET("/favorites", publicHandler.GetFavorites)
			user.POST("/favorites", publicHandler.AddFavorite)
			user.DELETE("/favorites/:product_id", publicHandler.RemoveFavorite)
			user.POST("/favorites/toggle", publicHandler.ToggleFavorite)
			user.POST("/favorites/merge", publicHandler.MergeFavorites)
			user.GET("/compare", publicHandler.GetCompare)
			user.POST("/compare/items", publicHandler.AddCompare)
			user.DELETE("/compare/items/:product_id", publicHandler.RemoveCompare)
			user.DELETE("/compare", publicHandler.ClearCompare)
			user.POST("/orders", publicHandler.CreateOrder)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.Login)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.ChangePassword)

				// 商品管理
				authorized.GET("/products", adminHandler.ListProducts)
				authorized.GET("/products/:id", adminHandler.GetProduct)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)

				// 分类管理
				authorized.GET("/categories", adminHandler.ListCategories)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

				// 订单管理
				authorized.GET("/orders", adminHandler.ListOrders)
				authorized.GET("/orders/:id", adminHandler.GetOrder)
				authorized.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)

				// 评价管理
				authorized.GET("/reviews", adminHandler.ListReviews)
				authorized.POST("/reviews/:id/approve", adminHandler.ApproveReview)
				authorized.DELETE("/reviews/:id", adminHandler.DeleteReview)

				// 用户管理
				authorized.GET("/users", adminHandler.ListUsers)
				authorized.GET("/users/:id", adminHandler.GetUser)
				authorized.PATCH("/users/:id/status", adminHandler.SetUserStatus)

				// 设置管理
				authorized.GET("/settings", adminHandler.ListSettings)
				authorized.PUT("/settings", adminHandler.UpsertSetting)
				authorized.DELETE("/settings/:key", adminHandler.DeleteSetting)

				// 推送订阅与离线同步
				authorized.GET("/push-subscriptions", adminHandler.ListPushSubscriptions)
				authorized.GET("/sync/pending", adminHandler.SyncPending)
				authorized.POST("/sync/drain", adminHandler.SyncDrain)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListRoles)
				authorized.POST("/authz/roles", adminHandler.CreateRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokePolicy)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查与指标
	r.GET("/healthz", func(ctx *gin.Context) {
		online := c.Monitor == nil || c.Monitor.Online()
		ctx.JSON(200, gin.H{"status": "ok", "online": online})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
