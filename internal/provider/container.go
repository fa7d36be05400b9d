package provider

import (
	"github.com/cangchu-next/internal/cache"
	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/queue"
	"github.com/cangchu-next/internal/repository"
	"github.com/cangchu-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	OperatorRepo  repository.OperatorRepository
	CenterRepo    repository.CenterRepository
	InventoryRepo repository.InventoryRepository
	OrderRepo     repository.OrderRepository
	ShipmentRepo  repository.ShipmentRepository
	AnalyticsRepo repository.AnalyticsRepository

	// Services
	AuthService      *service.AuthService
	CenterService    *service.CenterService
	InventoryService *service.InventoryService
	OrderService     *service.OrderService
	SelectorService  *service.SelectorService
	ShipmentService  *service.ShipmentService
	AnalyticsService *service.AnalyticsService
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

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.OperatorRepo = repository.NewOperatorRepository(db)
	c.CenterRepo = repository.NewCenterRepository(db)
	c.InventoryRepo = repository.NewInventoryRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ShipmentRepo = repository.NewShipmentRepository(db)
	c.AnalyticsRepo = repository.NewAnalyticsRepository(db)
}

func (c *Container) initServices() {
	fulfillmentCfg := c.Config.Fulfillment
	restockPolicy := service.NewThresholdRestockPolicy(fulfillmentCfg.Inventory.DefaultReorderThreshold)
	costCalc := service.NewStandardCostCalculator(fulfillmentCfg.Cost)

	c.AuthService = service.NewAuthService(c.Config, c.OperatorRepo)
	c.CenterService = service.NewCenterService(c.CenterRepo, c.OrderRepo)
	c.InventoryService = service.NewInventoryService(c.InventoryRepo, c.CenterRepo, restockPolicy)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.CenterRepo, c.InventoryRepo, c.QueueClient, costCalc, fulfillmentCfg.Order.PendingExpireMinutes)
	c.SelectorService = service.NewSelectorService(c.CenterRepo, c.InventoryRepo, fulfillmentCfg.Selector)
	c.ShipmentService = service.NewShipmentService(c.ShipmentRepo, c.OrderRepo, c.OrderService, c.QueueClient)
	c.AnalyticsService = service.NewAnalyticsService(c.AnalyticsRepo, c.CenterRepo, fulfillmentCfg.Analytics, fulfillmentCfg.Inventory.DefaultReorderThreshold)
}
