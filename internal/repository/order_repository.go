package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 履约订单数据访问接口
type OrderRepository interface {
	Create(order *models.FulfillmentOrder, items []models.FulfillmentOrderItem) error
	GetByID(id uint) (*models.FulfillmentOrder, error)
	GetByFulfillmentNo(fulfillmentNo string) (*models.FulfillmentOrder, error)
	List(filter OrderListFilter) ([]models.FulfillmentOrder, int64, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	CountOpenByCenter(centerID uint) (int64, error)
	WithTx(tx *gorm.DB) OrderRepository
}

// OpenOrderStatuses 未终结的履约订单状态
func OpenOrderStatuses() []string {
	return []string{
		constants.OrderStatusPending,
		constants.OrderStatusConfirmed,
		constants.OrderStatusPicking,
		constants.OrderStatusPacked,
	}
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建履约订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建履约订单与明细
func (r *GormOrderRepository) Create(order *models.FulfillmentOrder, items []models.FulfillmentOrderItem) error {
	if order == nil {
		return errors.New("order is nil")
	}
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 获取履约订单（含明细）
func (r *GormOrderRepository) GetByID(id uint) (*models.FulfillmentOrder, error) {
	if id == 0 {
		return nil, errors.New("invalid order id")
	}
	var order models.FulfillmentOrder
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByFulfillmentNo 根据履约单编号获取订单
func (r *GormOrderRepository) GetByFulfillmentNo(fulfillmentNo string) (*models.FulfillmentOrder, error) {
	no := strings.TrimSpace(fulfillmentNo)
	if no == "" {
		return nil, errors.New("invalid fulfillment no")
	}
	var order models.FulfillmentOrder
	if err := r.db.Preload("Items").Where("fulfillment_no = ?", no).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List 查询履约订单列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.FulfillmentOrder, int64, error) {
	query := r.db.Model(&models.FulfillmentOrder{})
	if filter.CenterID > 0 {
		query = query.Where("center_id = ?", filter.CenterID)
	}
	if filter.VendorID > 0 {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.CustomerID > 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.FulfillmentNo != "" {
		query = query.Where("fulfillment_no = ?", strings.TrimSpace(filter.FulfillmentNo))
	}
	if filter.SourceOrderNo != "" {
		query = query.Where("source_order_no = ?", strings.TrimSpace(filter.SourceOrderNo))
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at < ?", filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.FulfillmentOrder
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Preload("Items").
		Order("priority DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus 更新订单状态及附带字段
func (r *GormOrderRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if id == 0 {
		return errors.New("invalid order id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.FulfillmentOrder{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// CountOpenByCenter 统计指定中心未终结的履约订单数（停用前校验）
func (r *GormOrderRepository) CountOpenByCenter(centerID uint) (int64, error) {
	if centerID == 0 {
		return 0, errors.New("invalid center id")
	}
	var count int64
	if err := r.db.Model(&models.FulfillmentOrder{}).
		Where("center_id = ? AND status IN ?", centerID, OpenOrderStatuses()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
