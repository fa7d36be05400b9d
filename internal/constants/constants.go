package constants

// 履约中心状态常量
const (
	CenterStatusActive    = "active"
	CenterStatusInactive  = "inactive"
	CenterStatusSuspended = "suspended"
)

// 履约中心类型常量
const (
	CenterTypeWarehouse = "warehouse"
	CenterTypeHub       = "hub"
	CenterTypeDarkStore = "dark_store"
)

// 服务等级常量（同时作为中心能力标识）
const (
	ServiceLevelStandard = "standard"
	ServiceLevelExpress  = "express"
	ServiceLevelSameDay  = "same_day"
)

// SupportedServiceLevels 受支持的服务等级列表
var SupportedServiceLevels = []string{ServiceLevelStandard, ServiceLevelExpress, ServiceLevelSameDay}

// 履约订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPicking   = "picking"
	OrderStatusPacked    = "packed"
	OrderStatusShipped   = "shipped"
	OrderStatusCancelled = "cancelled"
)

// 运单状态常量
const (
	ShipmentStatusCreated        = "created"
	ShipmentStatusInTransit      = "in_transit"
	ShipmentStatusOutForDelivery = "out_for_delivery"
	ShipmentStatusDelivered      = "delivered"
	ShipmentStatusException      = "exception"
)

// 统计周期常量
const (
	AnalyticsPeriodDay   = "day"
	AnalyticsPeriodWeek  = "week"
	AnalyticsPeriodMonth = "month"
	AnalyticsPeriodYear  = "year"
)

// 运营建议类型常量
const (
	RecommendationTypeRestock     = "restock"
	RecommendationTypeCapacity    = "capacity_optimization"
	RecommendationTypePerformance = "performance_improvement"
)

// 运营建议紧急程度常量
const (
	RecommendationUrgencyHigh   = "high"
	RecommendationUrgencyMedium = "medium"
)

// 队列常量
const (
	QueueDefault             = "default"
	TaskOrderTimeoutCancel   = "order:timeout_cancel"
	TaskCenterMetricsRefresh = "center:metrics_refresh"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "cc"
)
