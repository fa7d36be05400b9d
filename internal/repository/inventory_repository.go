package repository

import (
	"errors"
	"strings"

	"github.com/cangchu-next/internal/models"

	"gorm.io/gorm"
)

// InventoryRepository 履约库存数据访问接口
type InventoryRepository interface {
	Create(row *models.FulfillmentInventory) error
	Update(row *models.FulfillmentInventory) error
	GetByID(id uint) (*models.FulfillmentInventory, error)
	GetByKey(centerID uint, sku, variant string) (*models.FulfillmentInventory, error)
	ListByCenter(centerID uint) ([]models.FulfillmentInventory, error)
	ListBySKU(sku string) ([]models.FulfillmentInventory, error)
	Reserve(centerID uint, sku, variant string, quantity int) (int64, error)
	ReleaseReserved(centerID uint, sku, variant string, quantity int) (int64, error)
	RestoreReserved(centerID uint, sku, variant string, quantity int) (int64, error)
	UpdateLocation(id uint, aisle, shelf, bin string) error
	WithTx(tx *gorm.DB) InventoryRepository
}

// GormInventoryRepository GORM 实现
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建库存仓库
func NewInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormInventoryRepository) WithTx(tx *gorm.DB) InventoryRepository {
	if tx == nil {
		return r
	}
	return &GormInventoryRepository{db: tx}
}

// Create 创建库存行
func (r *GormInventoryRepository) Create(row *models.FulfillmentInventory) error {
	if row == nil {
		return errors.New("inventory row is nil")
	}
	return r.db.Create(row).Error
}

// Update 更新库存行
func (r *GormInventoryRepository) Update(row *models.FulfillmentInventory) error {
	if row == nil {
		return errors.New("inventory row is nil")
	}
	return r.db.Save(row).Error
}

// GetByID 根据 ID 获取库存行
func (r *GormInventoryRepository) GetByID(id uint) (*models.FulfillmentInventory, error) {
	if id == 0 {
		return nil, errors.New("invalid inventory id")
	}
	var row models.FulfillmentInventory
	if err := r.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByKey 根据（中心, SKU, 规格）获取库存行
func (r *GormInventoryRepository) GetByKey(centerID uint, sku, variant string) (*models.FulfillmentInventory, error) {
	if centerID == 0 {
		return nil, errors.New("invalid center id")
	}
	code := strings.TrimSpace(sku)
	if code == "" {
		return nil, errors.New("invalid sku")
	}
	var row models.FulfillmentInventory
	if err := r.db.Where("center_id = ? AND sku = ? AND variant = ?", centerID, code, variant).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListByCenter 获取指定中心的全部库存
func (r *GormInventoryRepository) ListByCenter(centerID uint) ([]models.FulfillmentInventory, error) {
	if centerID == 0 {
		return nil, errors.New("invalid center id")
	}
	var rows []models.FulfillmentInventory
	if err := r.db.Where("center_id = ?", centerID).
		Order("sku ASC, variant ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListBySKU 跨中心获取指定 SKU 的库存（全网可视）
func (r *GormInventoryRepository) ListBySKU(sku string) ([]models.FulfillmentInventory, error) {
	code := strings.TrimSpace(sku)
	if code == "" {
		return nil, errors.New("invalid sku")
	}
	var rows []models.FulfillmentInventory
	if err := r.db.Where("sku = ?", code).
		Order("center_id ASC, variant ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Reserve 原子预占库存：available -> reserved。
// 条件更新保证并发下不超卖，返回受影响行数供调用方判定是否占到。
func (r *GormInventoryRepository) Reserve(centerID uint, sku, variant string, quantity int) (int64, error) {
	if centerID == 0 || strings.TrimSpace(sku) == "" || quantity <= 0 {
		return 0, errors.New("invalid inventory reserve params")
	}
	result := r.db.Model(&models.FulfillmentInventory{}).
		Where("center_id = ? AND sku = ? AND variant = ? AND quantity_available >= ?",
			centerID, strings.TrimSpace(sku), variant, quantity).
		Updates(map[string]interface{}{
			"quantity_available": gorm.Expr("quantity_available - ?", quantity),
			"quantity_reserved":  gorm.Expr("quantity_reserved + ?", quantity),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ReleaseReserved 发货释放预占：reserved 扣减，不回到 available。
func (r *GormInventoryRepository) ReleaseReserved(centerID uint, sku, variant string, quantity int) (int64, error) {
	if centerID == 0 || strings.TrimSpace(sku) == "" || quantity <= 0 {
		return 0, errors.New("invalid inventory release params")
	}
	result := r.db.Model(&models.FulfillmentInventory{}).
		Where("center_id = ? AND sku = ? AND variant = ? AND quantity_reserved >= ?",
			centerID, strings.TrimSpace(sku), variant, quantity).
		Update("quantity_reserved", gorm.Expr("quantity_reserved - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// RestoreReserved 取消回补预占：reserved -> available。
func (r *GormInventoryRepository) RestoreReserved(centerID uint, sku, variant string, quantity int) (int64, error) {
	if centerID == 0 || strings.TrimSpace(sku) == "" || quantity <= 0 {
		return 0, errors.New("invalid inventory restore params")
	}
	result := r.db.Model(&models.FulfillmentInventory{}).
		Where("center_id = ? AND sku = ? AND variant = ? AND quantity_reserved >= ?",
			centerID, strings.TrimSpace(sku), variant, quantity).
		Updates(map[string]interface{}{
			"quantity_available": gorm.Expr("quantity_available + ?", quantity),
			"quantity_reserved":  gorm.Expr("quantity_reserved - ?", quantity),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// UpdateLocation 仅更新库位信息，不影响数量
func (r *GormInventoryRepository) UpdateLocation(id uint, aisle, shelf, bin string) error {
	if id == 0 {
		return errors.New("invalid inventory id")
	}
	return r.db.Model(&models.FulfillmentInventory{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"aisle": aisle,
			"shelf": shelf,
			"bin":   bin,
		}).Error
}
