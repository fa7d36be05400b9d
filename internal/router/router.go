package router

import (
	"fmt"
	"strings"

	"github.com/cangchu-next/internal/cache"
	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/constants"
	opshandlers "github.com/cangchu-next/internal/http/handlers/ops"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	opsHandler := opshandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		ops := apiV1.Group("/ops")
		{
			// 登录接口（无需鉴权）
			ops.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), opsHandler.Login)

			// 需要鉴权的接口
			authorized := ops.Use(OperatorJWTAuthMiddleware(cfg.JWT.SecretKey, c.OperatorRepo))
			{
				authorized.PUT("/password", opsHandler.UpdatePassword)

				// 履约中心
				authorized.GET("/centers", opsHandler.GetCenters)
				authorized.POST("/centers", opsHandler.CreateCenter)
				authorized.GET("/centers/:id", opsHandler.GetCenter)
				authorized.PUT("/centers/:id", opsHandler.UpdateCenter)
				authorized.POST("/centers/:id/deactivate", opsHandler.DeactivateCenter)
				authorized.GET("/centers/:id/inventory", opsHandler.GetCenterInventory)
				authorized.GET("/centers/:id/analytics", opsHandler.GetCenterAnalytics)
				authorized.GET("/centers/:id/recommendations", opsHandler.GetCenterRecommendations)

				// 库存台账
				authorized.POST("/inventory/receive", opsHandler.ReceiveInventory)
				authorized.PUT("/inventory/:id/location", opsHandler.RelocateInventory)
				authorized.GET("/inventory/sku/:sku", opsHandler.GetSKUInventory)

				// 选仓
				authorized.POST("/selector/select", opsHandler.SelectCenter)
				authorized.POST("/selector/rank", opsHandler.RankCenters)

				// 履约订单
				authorized.POST("/orders", opsHandler.CreateOrder)
				authorized.GET("/orders", opsHandler.GetOrders)
				authorized.GET("/orders/:id", opsHandler.GetOrder)
				authorized.PATCH("/orders/:id/status", opsHandler.UpdateOrderStatus)

				// 运单
				authorized.POST("/shipments", opsHandler.CreateShipment)
				authorized.GET("/shipments", opsHandler.GetShipments)
				authorized.GET("/shipments/:id", opsHandler.GetShipment)
				authorized.PATCH("/shipments/:id/status", opsHandler.UpdateShipmentStatus)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
