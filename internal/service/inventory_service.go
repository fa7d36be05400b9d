package service

import (
	"errors"
	"strings"
	"time"

	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/repository"

	"gorm.io/gorm"
)

// InventoryService 库存台账服务
type InventoryService struct {
	inventoryRepo repository.InventoryRepository
	centerRepo    repository.CenterRepository
	restockPolicy RestockPolicy
}

// NewInventoryService 创建库存服务
func NewInventoryService(inventoryRepo repository.InventoryRepository, centerRepo repository.CenterRepository, restockPolicy RestockPolicy) *InventoryService {
	if restockPolicy == nil {
		restockPolicy = NewThresholdRestockPolicy(0)
	}
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		centerRepo:    centerRepo,
		restockPolicy: restockPolicy,
	}
}

// ReceiveItemInput 单条收货明细
type ReceiveItemInput struct {
	SKU              string
	Variant          string
	Quantity         int
	BatchNo          string
	LotNo            string
	ExpiresAt        *time.Time
	UnitWeightKg     float64
	UnitVolumeCubicM float64
	Aisle            string
	Shelf            string
	Bin              string
	ReorderThreshold int
}

// ReceiveInput 收货输入。Reference 由调用方提供，用于自身的幂等审计，
// 本服务不做去重。
type ReceiveInput struct {
	CenterID  uint
	VendorID  uint
	Reference string
	Items     []ReceiveItemInput
}

// Receive 收货入库：逐条累加可售数量并同步中心已用容积
func (s *InventoryService) Receive(input ReceiveInput) ([]models.FulfillmentInventory, error) {
	if input.CenterID == 0 || len(input.Items) == 0 {
		return nil, ErrInventoryInvalid
	}
	for _, item := range input.Items {
		if strings.TrimSpace(item.SKU) == "" || item.Quantity <= 0 {
			return nil, ErrInventoryInvalid
		}
		if item.UnitWeightKg < 0 || item.UnitVolumeCubicM < 0 {
			return nil, ErrInventoryInvalid
		}
	}

	center, err := s.centerRepo.GetByID(input.CenterID)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, ErrCenterNotFound
	}

	reference := strings.TrimSpace(input.Reference)
	updated := make([]models.FulfillmentInventory, 0, len(input.Items))
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		inventoryRepo := s.inventoryRepo.WithTx(tx)
		centerRepo := s.centerRepo.WithTx(tx)

		for _, item := range input.Items {
			sku := strings.TrimSpace(item.SKU)
			row, err := inventoryRepo.GetByKey(input.CenterID, sku, item.Variant)
			if err != nil {
				return err
			}
			if row == nil {
				row = &models.FulfillmentInventory{
					CenterID:          input.CenterID,
					SKU:               sku,
					Variant:           item.Variant,
					QuantityAvailable: item.Quantity,
					BatchNo:           item.BatchNo,
					LotNo:             item.LotNo,
					ExpiresAt:         item.ExpiresAt,
					UnitWeightKg:      item.UnitWeightKg,
					UnitVolumeCubicM:  item.UnitVolumeCubicM,
					Aisle:             item.Aisle,
					Shelf:             item.Shelf,
					Bin:               item.Bin,
					ReorderThreshold:  item.ReorderThreshold,
					LastReceiptRef:    reference,
				}
				if err := inventoryRepo.Create(row); err != nil {
					return err
				}
			} else {
				row.QuantityAvailable += item.Quantity
				refreshReceiptMetadata(row, item)
				row.LastReceiptRef = reference
				if err := inventoryRepo.Update(row); err != nil {
					return err
				}
			}

			// 已知单件体积才占用中心容积，条件更新保证不超出总容积
			unitVolume := row.UnitVolumeCubicM
			if unitVolume > 0 {
				delta := float64(item.Quantity) * unitVolume
				affected, err := centerRepo.AdjustUsedCapacity(input.CenterID, delta)
				if err != nil {
					return err
				}
				if affected == 0 {
					return ErrCapacityConflict
				}
			}
			updated = append(updated, *row)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCapacityConflict) {
			return nil, ErrCapacityConflict
		}
		return nil, err
	}

	logger.Infow("inventory_received",
		"center_id", input.CenterID,
		"vendor_id", input.VendorID,
		"items", len(input.Items),
		"reference", reference,
	)
	return updated, nil
}

// refreshReceiptMetadata 收货时刷新已有行的批次/库位/规格元数据（仅覆盖非零值）
func refreshReceiptMetadata(row *models.FulfillmentInventory, item ReceiveItemInput) {
	if item.BatchNo != "" {
		row.BatchNo = item.BatchNo
	}
	if item.LotNo != "" {
		row.LotNo = item.LotNo
	}
	if item.ExpiresAt != nil {
		row.ExpiresAt = item.ExpiresAt
	}
	if item.UnitWeightKg > 0 {
		row.UnitWeightKg = item.UnitWeightKg
	}
	if item.UnitVolumeCubicM > 0 {
		row.UnitVolumeCubicM = item.UnitVolumeCubicM
	}
	if item.Aisle != "" {
		row.Aisle = item.Aisle
	}
	if item.Shelf != "" {
		row.Shelf = item.Shelf
	}
	if item.Bin != "" {
		row.Bin = item.Bin
	}
	if item.ReorderThreshold > 0 {
		row.ReorderThreshold = item.ReorderThreshold
	}
}

// Reserve 原子预占库存（available -> reserved）
func (s *InventoryService) Reserve(centerID uint, sku, variant string, quantity int) error {
	if centerID == 0 || strings.TrimSpace(sku) == "" || quantity <= 0 {
		return ErrInventoryInvalid
	}
	affected, err := s.inventoryRepo.Reserve(centerID, sku, variant, quantity)
	if err != nil {
		return err
	}
	if affected == 0 {
		row, err := s.inventoryRepo.GetByKey(centerID, sku, variant)
		if err != nil {
			return err
		}
		available := 0
		if row != nil {
			available = row.QuantityAvailable
		}
		return &InsufficientInventoryError{
			CenterID: centerID,
			Shortfalls: []InventoryShortfall{
				{SKU: sku, Variant: variant, Requested: quantity, Available: available},
			},
		}
	}
	return nil
}

// Release 发货释放预占（reserved 扣减，不回补 available）
func (s *InventoryService) Release(centerID uint, sku, variant string, quantity int) error {
	if centerID == 0 || strings.TrimSpace(sku) == "" || quantity <= 0 {
		return ErrInventoryInvalid
	}
	affected, err := s.inventoryRepo.ReleaseReserved(centerID, sku, variant, quantity)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInventoryNotFound
	}
	return nil
}

// Restore 取消回补预占（reserved -> available）
func (s *InventoryService) Restore(centerID uint, sku, variant string, quantity int) error {
	if centerID == 0 || strings.TrimSpace(sku) == "" || quantity <= 0 {
		return ErrInventoryInvalid
	}
	affected, err := s.inventoryRepo.RestoreReserved(centerID, sku, variant, quantity)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInventoryNotFound
	}
	return nil
}

// Relocate 仅调整库位，不影响数量
func (s *InventoryService) Relocate(inventoryID uint, aisle, shelf, bin string) (*models.FulfillmentInventory, error) {
	row, err := s.inventoryRepo.GetByID(inventoryID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrInventoryNotFound
	}
	if err := s.inventoryRepo.UpdateLocation(inventoryID, aisle, shelf, bin); err != nil {
		return nil, err
	}
	row.Aisle = aisle
	row.Shelf = shelf
	row.Bin = bin
	return row, nil
}

// InventoryView 带补货标记的库存视图
type InventoryView struct {
	models.FulfillmentInventory
	NeedsRestock bool `json:"needs_restock"`
}

// ByCenter 获取指定中心的库存（含补货标记）
func (s *InventoryService) ByCenter(centerID uint) ([]InventoryView, error) {
	if centerID == 0 {
		return nil, ErrInventoryInvalid
	}
	rows, err := s.inventoryRepo.ListByCenter(centerID)
	if err != nil {
		return nil, err
	}
	return s.toViews(rows), nil
}

// BySKU 跨中心获取指定 SKU 的库存（含补货标记）
func (s *InventoryService) BySKU(sku string) ([]InventoryView, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, ErrInventoryInvalid
	}
	rows, err := s.inventoryRepo.ListBySKU(strings.TrimSpace(sku))
	if err != nil {
		return nil, err
	}
	return s.toViews(rows), nil
}

func (s *InventoryService) toViews(rows []models.FulfillmentInventory) []InventoryView {
	views := make([]InventoryView, 0, len(rows))
	for _, row := range rows {
		views = append(views, InventoryView{
			FulfillmentInventory: row,
			NeedsRestock:         s.restockPolicy.NeedsRestock(row),
		})
	}
	return views
}
