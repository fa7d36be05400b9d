package models

import (
	"time"
)

// FulfillmentShipment 运单表（一次实物发运，审计需要永不删除）
type FulfillmentShipment struct {
	ID                uint       `gorm:"primarykey" json:"id"`                                     // 主键
	ShipmentNo        string     `gorm:"uniqueIndex;not null" json:"shipment_no"`                  // 运单编号
	OrderID           uint       `gorm:"uniqueIndex;not null" json:"order_id"`                     // 履约单ID（创建后不可变）
	TrackingNumber    string     `gorm:"index;not null" json:"tracking_number"`                    // 承运商运单号
	CarrierCode       string     `gorm:"index;not null" json:"carrier_code"`                       // 承运商编码
	ServiceType       string     `gorm:"not null" json:"service_type"`                             // 运输服务类型
	Status            string     `gorm:"index;not null" json:"status"`                             // 运单状态
	Cost              Money      `gorm:"type:decimal(20,2);not null;default:0" json:"cost"`        // 运输成本
	WeightKg          float64    `gorm:"not null;default:0" json:"weight_kg"`                      // 包裹重量（kg）
	DimensionsJSON    JSON       `gorm:"type:json" json:"dimensions"`                              // 包裹尺寸（长/宽/高）
	EstimatedDelivery *time.Time `gorm:"index" json:"estimated_delivery,omitempty"`                // 预计送达时间
	DeliveredAt       *time.Time `gorm:"index" json:"delivered_at,omitempty"`                      // 实际送达时间
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt         time.Time  `gorm:"index" json:"updated_at"`                                  // 更新时间

	Events []ShipmentEvent   `gorm:"foreignKey:ShipmentID" json:"events,omitempty"` // 追踪事件（只追加）
	Order  *FulfillmentOrder `gorm:"foreignKey:OrderID" json:"order,omitempty"`     // 关联履约单
}

// TableName 指定表名
func (FulfillmentShipment) TableName() string {
	return "fulfillment_shipments"
}

// ShipmentEvent 运单追踪事件表（只追加，不可修改）
type ShipmentEvent struct {
	ID         uint      `gorm:"primarykey" json:"id"`              // 主键
	ShipmentID uint      `gorm:"index;not null" json:"shipment_id"` // 运单ID
	Status     string    `gorm:"not null" json:"status"`            // 事件状态
	Note       string    `gorm:"type:varchar(500)" json:"note"`     // 备注
	Location   string    `gorm:"type:varchar(200)" json:"location"` // 事件地点
	OccurredAt time.Time `gorm:"index;not null" json:"occurred_at"` // 事件时间
	CreatedAt  time.Time `gorm:"index" json:"created_at"`           // 创建时间
}

// TableName 指定表名
func (ShipmentEvent) TableName() string {
	return "shipment_events"
}
