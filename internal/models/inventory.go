package models

import (
	"time"

	"gorm.io/gorm"
)

// FulfillmentInventory 履约库存表，按（中心, SKU, 规格）唯一
type FulfillmentInventory struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                                   // 主键
	CenterID          uint           `gorm:"uniqueIndex:idx_inventory_center_sku_variant;not null" json:"center_id"` // 履约中心ID
	SKU               string         `gorm:"column:sku;uniqueIndex:idx_inventory_center_sku_variant;index;not null" json:"sku"` // SKU 编码
	Variant           string         `gorm:"uniqueIndex:idx_inventory_center_sku_variant" json:"variant"`            // 规格（可为空串）
	QuantityAvailable int            `gorm:"not null;default:0" json:"quantity_available"`                           // 可售数量
	QuantityReserved  int            `gorm:"not null;default:0" json:"quantity_reserved"`                            // 已预留数量
	BatchNo           string         `gorm:"type:varchar(100)" json:"batch_no,omitempty"`                            // 批次号
	LotNo             string         `gorm:"type:varchar(100)" json:"lot_no,omitempty"`                              // 货号
	ExpiresAt         *time.Time     `gorm:"index" json:"expires_at,omitempty"`                                      // 过期时间
	UnitWeightKg      float64        `gorm:"not null;default:0" json:"unit_weight_kg"`                               // 单件重量（kg）
	UnitVolumeCubicM  float64        `gorm:"not null;default:0" json:"unit_volume_cubic_meters"`                     // 单件体积（立方米）
	Aisle             string         `gorm:"type:varchar(40)" json:"aisle,omitempty"`                                // 巷道
	Shelf             string         `gorm:"type:varchar(40)" json:"shelf,omitempty"`                                // 货架
	Bin               string         `gorm:"type:varchar(40)" json:"bin,omitempty"`                                  // 货位
	ReorderThreshold  int            `gorm:"not null;default:0" json:"reorder_threshold"`                            // 补货阈值（0 表示使用全局默认）
	LastReceiptRef    string         `gorm:"type:varchar(100)" json:"last_receipt_ref,omitempty"`                    // 最近一次收货参考号（供调用方做幂等审计）
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                                // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                                // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                         // 软删除时间

	Center *FulfillmentCenter `gorm:"foreignKey:CenterID" json:"center,omitempty"` // 所属中心
}

// TableName 指定表名
func (FulfillmentInventory) TableName() string {
	return "fulfillment_inventories"
}
