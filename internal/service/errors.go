package service

import (
	"errors"
	"fmt"
	"strings"
)

// 业务哨兵错误，统一用 errors.Is 匹配
var (
	ErrCenterNotFound        = errors.New("center not found")
	ErrCenterCodeExists      = errors.New("center code already exists")
	ErrCenterInvalid         = errors.New("invalid center params")
	ErrCapacityConflict      = errors.New("capacity below in-use amount")
	ErrCenterHasOpenOrders   = errors.New("center has open orders")
	ErrInventoryNotFound     = errors.New("inventory row not found")
	ErrInventoryInvalid      = errors.New("invalid inventory params")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderInvalid          = errors.New("invalid order params")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrOrderNotShippable     = errors.New("order not in shippable status")
	ErrShipmentNotFound      = errors.New("shipment not found")
	ErrShipmentInvalid       = errors.New("invalid shipment params")
	ErrShipmentExists        = errors.New("shipment already exists for order")
	ErrAnalyticsInvalid      = errors.New("invalid analytics params")
	ErrOperatorNotFound      = errors.New("operator not found")
	ErrPasswordIncorrect     = errors.New("password incorrect")
	ErrTokenInvalid          = errors.New("token invalid")
)

// InventoryShortfall 单个 SKU 的库存缺口
type InventoryShortfall struct {
	SKU       string `json:"sku"`
	Variant   string `json:"variant,omitempty"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// InsufficientInventoryError 携带整单缺口明细的库存不足错误
type InsufficientInventoryError struct {
	CenterID   uint
	Shortfalls []InventoryShortfall
}

// Error 实现 error 接口
func (e *InsufficientInventoryError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s requested=%d available=%d", s.SKU, s.Requested, s.Available))
	}
	return fmt.Sprintf("insufficient inventory at center %d: %s", e.CenterID, strings.Join(parts, "; "))
}

// Is 使 errors.Is(err, ErrInsufficientInventory) 成立
func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}
