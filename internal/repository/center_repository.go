package repository

import (
	"errors"
	"strings"

	"github.com/cangchu-next/internal/models"

	"gorm.io/gorm"
)

// CenterRepository 履约中心数据访问接口
type CenterRepository interface {
	Create(center *models.FulfillmentCenter) error
	Update(center *models.FulfillmentCenter) error
	GetByID(id uint) (*models.FulfillmentCenter, error)
	GetByCode(code string) (*models.FulfillmentCenter, error)
	List(filter CenterListFilter) ([]models.FulfillmentCenter, int64, error)
	ListByStatus(status string) ([]models.FulfillmentCenter, error)
	UpdateStatus(id uint, status string) error
	AdjustUsedCapacity(id uint, deltaCubicM float64) (int64, error)
	UpdatePerformance(id uint, accuracy, onTimeRate float64) error
	WithTx(tx *gorm.DB) CenterRepository
}

// GormCenterRepository GORM 实现
type GormCenterRepository struct {
	db *gorm.DB
}

// NewCenterRepository 创建履约中心仓库
func NewCenterRepository(db *gorm.DB) *GormCenterRepository {
	return &GormCenterRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCenterRepository) WithTx(tx *gorm.DB) CenterRepository {
	if tx == nil {
		return r
	}
	return &GormCenterRepository{db: tx}
}

// Create 创建履约中心
func (r *GormCenterRepository) Create(center *models.FulfillmentCenter) error {
	if center == nil {
		return errors.New("center is nil")
	}
	return r.db.Create(center).Error
}

// Update 更新履约中心
func (r *GormCenterRepository) Update(center *models.FulfillmentCenter) error {
	if center == nil {
		return errors.New("center is nil")
	}
	return r.db.Save(center).Error
}

// GetByID 根据 ID 获取履约中心
func (r *GormCenterRepository) GetByID(id uint) (*models.FulfillmentCenter, error) {
	if id == 0 {
		return nil, errors.New("invalid center id")
	}
	var center models.FulfillmentCenter
	if err := r.db.First(&center, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &center, nil
}

// GetByCode 根据编码获取履约中心
func (r *GormCenterRepository) GetByCode(code string) (*models.FulfillmentCenter, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, errors.New("invalid center code")
	}
	var center models.FulfillmentCenter
	if err := r.db.Where("code = ?", trimmed).First(&center).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &center, nil
}

// List 查询履约中心列表
func (r *GormCenterRepository) List(filter CenterListFilter) ([]models.FulfillmentCenter, int64, error) {
	query := r.db.Model(&models.FulfillmentCenter{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.Region != "" {
		query = query.Where("region = ?", filter.Region)
	}
	if filter.Country != "" {
		query = query.Where("country = ?", filter.Country)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var centers []models.FulfillmentCenter
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("code ASC").
		Find(&centers).Error; err != nil {
		return nil, 0, err
	}

	// 能力标识存在 JSON 列里，跨方言统一在内存过滤
	if filter.Capability != "" {
		filtered := centers[:0]
		for _, center := range centers {
			if center.Capabilities.Contains(filter.Capability) {
				filtered = append(filtered, center)
			}
		}
		centers = filtered
		total = int64(len(centers))
	}
	return centers, total, nil
}

// ListByStatus 按状态获取全部履约中心（选仓用）
func (r *GormCenterRepository) ListByStatus(status string) ([]models.FulfillmentCenter, error) {
	var centers []models.FulfillmentCenter
	query := r.db.Model(&models.FulfillmentCenter{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("code ASC").Find(&centers).Error; err != nil {
		return nil, err
	}
	return centers, nil
}

// UpdateStatus 更新履约中心状态
func (r *GormCenterRepository) UpdateStatus(id uint, status string) error {
	if id == 0 {
		return errors.New("invalid center id")
	}
	return r.db.Model(&models.FulfillmentCenter{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// AdjustUsedCapacity 原子调整已用容积并同步利用率。
// 通过条件更新保证 0 <= used + delta <= total，返回受影响行数供调用方判定冲突。
func (r *GormCenterRepository) AdjustUsedCapacity(id uint, deltaCubicM float64) (int64, error) {
	if id == 0 {
		return 0, errors.New("invalid center id")
	}
	result := r.db.Model(&models.FulfillmentCenter{}).
		Where("id = ? AND used_capacity_cubic_m + ? >= 0 AND used_capacity_cubic_m + ? <= total_capacity_cubic_m",
			id, deltaCubicM, deltaCubicM).
		Updates(map[string]interface{}{
			"used_capacity_cubic_m": gorm.Expr("used_capacity_cubic_m + ?", deltaCubicM),
			"capacity_utilization":  gorm.Expr("(used_capacity_cubic_m + ?) / total_capacity_cubic_m * 100", deltaCubicM),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// UpdatePerformance 更新履约中心的滚动绩效指标
func (r *GormCenterRepository) UpdatePerformance(id uint, accuracy, onTimeRate float64) error {
	if id == 0 {
		return errors.New("invalid center id")
	}
	return r.db.Model(&models.FulfillmentCenter{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"order_accuracy":        accuracy,
			"on_time_shipment_rate": onTimeRate,
		}).Error
}
