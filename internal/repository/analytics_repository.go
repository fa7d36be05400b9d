package repository

import (
	"errors"
	"time"

	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/models"

	"gorm.io/gorm"
)

// AnalyticsRepository 履约统计聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type AnalyticsRepository interface {
	GetOrderStats(centerID uint, startAt, endAt time.Time) (OrderStatsRow, error)
	GetShipmentPerformance(centerID uint, since time.Time) (ShipmentPerformanceRow, error)
	ListRestockCandidates(centerID uint, defaultThreshold int) ([]models.FulfillmentInventory, error)
}

// OrderStatsRow 单中心单周期的订单聚合结果
type OrderStatsRow struct {
	ProcessedCount int64
	ShippedCount   int64
	OnTimeShipped  int64
	Revenue        float64
	Cost           float64
}

// ShipmentPerformanceRow 绩效刷新所需的发运聚合结果
type ShipmentPerformanceRow struct {
	ShippedOrders      int64
	OnTimeOrders       int64
	ExceptionShipments int64
}

// GormAnalyticsRepository GORM 聚合实现
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository 创建统计仓库
func NewAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

// GetOrderStats 聚合窗口内创建的履约订单统计
func (r *GormAnalyticsRepository) GetOrderStats(centerID uint, startAt, endAt time.Time) (OrderStatsRow, error) {
	result := OrderStatsRow{}
	if centerID == 0 {
		return result, errors.New("invalid center id")
	}

	orderBase := func() *gorm.DB {
		return r.db.Model(&models.FulfillmentOrder{}).
			Where("center_id = ? AND created_at >= ? AND created_at < ?", centerID, startAt, endAt)
	}

	if err := orderBase().Count(&result.ProcessedCount).Error; err != nil {
		return result, err
	}
	if err := orderBase().
		Where("status = ?", constants.OrderStatusShipped).
		Count(&result.ShippedCount).Error; err != nil {
		return result, err
	}
	if err := orderBase().
		Where("status = ? AND shipped_at IS NOT NULL AND promised_delivery_date IS NOT NULL AND shipped_at <= promised_delivery_date",
			constants.OrderStatusShipped).
		Count(&result.OnTimeShipped).Error; err != nil {
		return result, err
	}
	if err := orderBase().
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&result.Revenue).Error; err != nil {
		return result, err
	}
	if err := orderBase().
		Select("COALESCE(SUM(total_cost), 0)").
		Scan(&result.Cost).Error; err != nil {
		return result, err
	}
	return result, nil
}

// GetShipmentPerformance 聚合绩效刷新所需的发运数据
func (r *GormAnalyticsRepository) GetShipmentPerformance(centerID uint, since time.Time) (ShipmentPerformanceRow, error) {
	result := ShipmentPerformanceRow{}
	if centerID == 0 {
		return result, errors.New("invalid center id")
	}

	shippedBase := func() *gorm.DB {
		return r.db.Model(&models.FulfillmentOrder{}).
			Where("center_id = ? AND status = ? AND shipped_at IS NOT NULL AND shipped_at >= ?",
				centerID, constants.OrderStatusShipped, since)
	}

	if err := shippedBase().Count(&result.ShippedOrders).Error; err != nil {
		return result, err
	}
	if err := shippedBase().
		Where("promised_delivery_date IS NULL OR shipped_at <= promised_delivery_date").
		Count(&result.OnTimeOrders).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.FulfillmentShipment{}).
		Joins("JOIN fulfillment_orders ON fulfillment_orders.id = fulfillment_shipments.order_id").
		Where("fulfillment_orders.center_id = ? AND fulfillment_shipments.status = ? AND fulfillment_shipments.created_at >= ?",
			centerID, constants.ShipmentStatusException, since).
		Count(&result.ExceptionShipments).Error; err != nil {
		return result, err
	}
	return result, nil
}

// ListRestockCandidates 列出可售数量低于补货阈值的库存行
func (r *GormAnalyticsRepository) ListRestockCandidates(centerID uint, defaultThreshold int) ([]models.FulfillmentInventory, error) {
	if centerID == 0 {
		return nil, errors.New("invalid center id")
	}
	if defaultThreshold < 0 {
		defaultThreshold = 0
	}
	var rows []models.FulfillmentInventory
	if err := r.db.Model(&models.FulfillmentInventory{}).
		Where("center_id = ? AND quantity_available <= CASE WHEN reorder_threshold > 0 THEN reorder_threshold ELSE ? END",
			centerID, defaultThreshold).
		Order("quantity_available ASC, sku ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
