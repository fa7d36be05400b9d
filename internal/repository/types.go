package repository

import "time"

// CenterListFilter 查询履约中心列表的过滤条件
type CenterListFilter struct {
	Page       int
	PageSize   int
	Status     string
	Type       string
	City       string
	Region     string
	Country    string
	Capability string
}

// InventoryListFilter 查询库存列表的过滤条件
type InventoryListFilter struct {
	Page     int
	PageSize int
	CenterID uint
	SKU      string
}

// OrderListFilter 查询履约订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	CenterID      uint
	VendorID      uint
	CustomerID    uint
	Status        string
	FulfillmentNo string
	SourceOrderNo string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// ShipmentListFilter 查询运单列表的过滤条件
type ShipmentListFilter struct {
	Page           int
	PageSize       int
	OrderID        uint
	CarrierCode    string
	Status         string
	TrackingNumber string
}
