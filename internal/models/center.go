package models

import (
	"time"

	"gorm.io/gorm"
)

// FulfillmentCenter 履约中心表
type FulfillmentCenter struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                          // 主键
	Code                string         `gorm:"uniqueIndex;not null" json:"code"`                              // 中心编码（唯一）
	Name                string         `gorm:"not null" json:"name"`                                          // 中心名称
	Type                string         `gorm:"index;not null" json:"type"`                                    // 中心类型（warehouse/hub/dark_store）
	Street              string         `gorm:"type:varchar(200)" json:"street"`                               // 街道地址
	City                string         `gorm:"index" json:"city"`                                             // 城市
	Region              string         `gorm:"index" json:"region"`                                           // 省/州/区域
	PostalCode          string         `gorm:"type:varchar(20)" json:"postal_code"`                           // 邮编
	Country             string         `gorm:"index" json:"country"`                                          // 国家
	Latitude            *float64       `json:"latitude,omitempty"`                                            // 纬度
	Longitude           *float64       `json:"longitude,omitempty"`                                           // 经度
	TotalCapacityCubicM float64        `gorm:"not null" json:"total_capacity_cubic_meters"`                   // 总容积（立方米）
	UsedCapacityCubicM  float64        `gorm:"not null;default:0" json:"used_capacity_cubic_meters"`          // 已用容积（立方米）
	TotalStorageUnits   int            `gorm:"not null" json:"total_storage_units"`                           // 储位总数
	AvailableStorage    int            `gorm:"not null" json:"available_storage_units"`                       // 可用储位数
	Capabilities        StringArray    `gorm:"type:json" json:"capabilities"`                                 // 服务能力（standard/express/same_day）
	ServiceAreasJSON    JSON           `gorm:"type:json" json:"service_areas"`                                // 按服务等级划分的服务区域（空 = 全域可达）
	OperatingHoursJSON  JSON           `gorm:"type:json" json:"operating_hours"`                              // 营业时间
	ContactPhone        string         `gorm:"type:varchar(40)" json:"contact_phone"`                         // 联系电话
	ManagerName         string         `gorm:"type:varchar(100)" json:"manager_name"`                         // 负责人
	Status              string         `gorm:"index;not null" json:"status"`                                  // 状态（active/inactive/suspended）
	OrderAccuracy       float64        `gorm:"not null;default:100" json:"order_accuracy_percent"`            // 履约准确率（%）
	OnTimeShipmentRate  float64        `gorm:"not null;default:100" json:"on_time_shipment_percent"`          // 准时发货率（%）
	CapacityUtilization float64        `gorm:"not null;default:0" json:"capacity_utilization_percent"`        // 容积利用率（%）
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间
}

// TableName 指定表名
func (FulfillmentCenter) TableName() string {
	return "fulfillment_centers"
}

// ServiceAreasFor 返回指定服务等级的服务区域列表（空列表表示全域可达）
func (c *FulfillmentCenter) ServiceAreasFor(serviceLevel string) []string {
	if c.ServiceAreasJSON == nil {
		return nil
	}
	raw, ok := c.ServiceAreasJSON[serviceLevel]
	if !ok {
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	areas := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			areas = append(areas, s)
		}
	}
	return areas
}
