package models

import (
	"time"

	"gorm.io/gorm"
)

// FulfillmentOrder 履约订单表（一张源订单在一个中心的履约记录）
type FulfillmentOrder struct {
	ID                   uint           `gorm:"primarykey" json:"id"`                                           // 主键
	FulfillmentNo        string         `gorm:"uniqueIndex;not null" json:"fulfillment_no"`                     // 履约单编号
	CenterID             uint           `gorm:"index;not null" json:"center_id"`                                // 履约中心ID
	SourceOrderNo        string         `gorm:"index;not null" json:"source_order_no"`                          // 源订单编号
	VendorID             uint           `gorm:"index" json:"vendor_id"`                                         // 商家ID
	CustomerID           uint           `gorm:"index" json:"customer_id"`                                       // 客户ID
	Priority             int            `gorm:"not null;default:0;index" json:"priority"`                       // 优先级
	ShipStreet           string         `gorm:"type:varchar(200)" json:"ship_street"`                           // 收件街道
	ShipCity             string         `gorm:"index" json:"ship_city"`                                         // 收件城市
	ShipRegion           string         `gorm:"index" json:"ship_region"`                                       // 收件区域
	ShipPostalCode       string         `gorm:"type:varchar(20)" json:"ship_postal_code"`                       // 收件邮编
	ShipCountry          string         `gorm:"index" json:"ship_country"`                                      // 收件国家
	ServiceLevel         string         `gorm:"index;not null" json:"service_level"`                            // 服务等级
	Status               string         `gorm:"index;not null" json:"status"`                                   // 履约状态
	TotalAmount          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`      // 商品总金额
	TotalWeightKg        float64        `gorm:"not null;default:0" json:"total_weight_kg"`                      // 总重量（kg）
	HandlingCost         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"handling_cost"`     // 拣货处理费
	PackagingCost        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"packaging_cost"`    // 包装费
	ShippingEstimate     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_estimate"` // 运费预估
	TotalCost            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_cost"`        // 履约总成本
	RequestedShipDate    *time.Time     `gorm:"index" json:"requested_ship_date,omitempty"`                     // 要求发货日期
	PromisedDeliveryDate *time.Time     `gorm:"index" json:"promised_delivery_date,omitempty"`                  // 承诺送达日期
	CarrierCode          string         `gorm:"type:varchar(40)" json:"carrier_code,omitempty"`                 // 承运商编码（发货后写入）
	TrackingNumber       string         `gorm:"index" json:"tracking_number,omitempty"`                         // 运单号（发货后写入）
	ShippedAt            *time.Time     `gorm:"index" json:"shipped_at,omitempty"`                              // 发货时间
	CancelledAt          *time.Time     `gorm:"index" json:"cancelled_at,omitempty"`                            // 取消时间
	CreatedAt            time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt            time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间

	Items  []FulfillmentOrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`   // 履约单明细
	Center *FulfillmentCenter     `gorm:"foreignKey:CenterID" json:"center,omitempty"` // 履约中心
}

// TableName 指定表名
func (FulfillmentOrder) TableName() string {
	return "fulfillment_orders"
}

// FulfillmentOrderItem 履约订单明细表
type FulfillmentOrderItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID   uint      `gorm:"index;not null" json:"order_id"`                          // 履约单ID
	SKU       string    `gorm:"column:sku;index;not null" json:"sku"`                    // SKU 编码
	Variant   string    `json:"variant"`                                                 // 规格
	Quantity  int       `gorm:"not null" json:"quantity"`                                // 数量
	UnitPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 单价
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
}

// TableName 指定表名
func (FulfillmentOrderItem) TableName() string {
	return "fulfillment_order_items"
}
