package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/cangchu-next/internal/models"

	"gorm.io/gorm"
)

// ShipmentRepository 运单数据访问接口
type ShipmentRepository interface {
	Create(shipment *models.FulfillmentShipment) error
	GetByID(id uint) (*models.FulfillmentShipment, error)
	GetByOrderID(orderID uint) (*models.FulfillmentShipment, error)
	List(filter ShipmentListFilter) ([]models.FulfillmentShipment, int64, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	AppendEvent(event *models.ShipmentEvent) error
	ListEvents(shipmentID uint) ([]models.ShipmentEvent, error)
	WithTx(tx *gorm.DB) ShipmentRepository
}

// GormShipmentRepository GORM 实现
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewShipmentRepository 创建运单仓库
func NewShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShipmentRepository) WithTx(tx *gorm.DB) ShipmentRepository {
	if tx == nil {
		return r
	}
	return &GormShipmentRepository{db: tx}
}

// Create 创建运单
func (r *GormShipmentRepository) Create(shipment *models.FulfillmentShipment) error {
	if shipment == nil {
		return errors.New("shipment is nil")
	}
	return r.db.Create(shipment).Error
}

// GetByID 根据 ID 获取运单（含事件）
func (r *GormShipmentRepository) GetByID(id uint) (*models.FulfillmentShipment, error) {
	if id == 0 {
		return nil, errors.New("invalid shipment id")
	}
	var shipment models.FulfillmentShipment
	if err := r.db.Preload("Events", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&shipment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// GetByOrderID 根据履约单获取运单
func (r *GormShipmentRepository) GetByOrderID(orderID uint) (*models.FulfillmentShipment, error) {
	if orderID == 0 {
		return nil, errors.New("invalid order id")
	}
	var shipment models.FulfillmentShipment
	if err := r.db.Where("order_id = ?", orderID).First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// List 查询运单列表
func (r *GormShipmentRepository) List(filter ShipmentListFilter) ([]models.FulfillmentShipment, int64, error) {
	query := r.db.Model(&models.FulfillmentShipment{})
	if filter.OrderID > 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.CarrierCode != "" {
		query = query.Where("carrier_code = ?", filter.CarrierCode)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TrackingNumber != "" {
		query = query.Where("tracking_number = ?", strings.TrimSpace(filter.TrackingNumber))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var shipments []models.FulfillmentShipment
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("id DESC").
		Find(&shipments).Error; err != nil {
		return nil, 0, err
	}
	return shipments, total, nil
}

// UpdateStatus 更新运单状态及附带字段
func (r *GormShipmentRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if id == 0 {
		return errors.New("invalid shipment id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.FulfillmentShipment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// AppendEvent 追加运单事件（只追加，不做更新）
func (r *GormShipmentRepository) AppendEvent(event *models.ShipmentEvent) error {
	if event == nil {
		return errors.New("shipment event is nil")
	}
	if event.ShipmentID == 0 {
		return errors.New("invalid shipment id")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	return r.db.Create(event).Error
}

// ListEvents 获取运单的全部事件（按写入顺序）
func (r *GormShipmentRepository) ListEvents(shipmentID uint) ([]models.ShipmentEvent, error) {
	if shipmentID == 0 {
		return nil, errors.New("invalid shipment id")
	}
	var events []models.ShipmentEvent
	if err := r.db.Where("shipment_id = ?", shipmentID).
		Order("id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
