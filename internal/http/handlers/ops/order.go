package ops

import (
	"errors"
	"strconv"
	"time"

	"github.com/cangchu-next/internal/http/response"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/repository"
	"github.com/cangchu-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// OrderItemRequest 履约订单行
type OrderItemRequest struct {
	SKU       string  `json:"sku" binding:"required"`
	Variant   string  `json:"variant"`
	Quantity  int     `json:"quantity" binding:"required"`
	UnitPrice float64 `json:"unit_price"`
}

// CreateOrderRequest 创建履约订单请求
type CreateOrderRequest struct {
	CenterID             uint               `json:"center_id" binding:"required"`
	SourceOrderNo        string             `json:"source_order_no"`
	VendorID             uint               `json:"vendor_id"`
	CustomerID           uint               `json:"customer_id"`
	Priority             int                `json:"priority"`
	ShipStreet           string             `json:"ship_street" binding:"required"`
	ShipCity             string             `json:"ship_city" binding:"required"`
	ShipRegion           string             `json:"ship_region"`
	ShipPostalCode       string             `json:"ship_postal_code"`
	ShipCountry          string             `json:"ship_country" binding:"required"`
	ServiceLevel         string             `json:"service_level"`
	RequestedShipDate    *time.Time         `json:"requested_ship_date"`
	PromisedDeliveryDate *time.Time         `json:"promised_delivery_date"`
	Items                []OrderItemRequest `json:"items" binding:"required,dive"`
}

// CreateOrder 创建履约订单（整单预占，任一行不足则整体失败）
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.OrderItemInput{
			SKU:       item.SKU,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(item.UnitPrice)),
		})
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		CenterID:             req.CenterID,
		SourceOrderNo:        req.SourceOrderNo,
		VendorID:             req.VendorID,
		CustomerID:           req.CustomerID,
		Priority:             req.Priority,
		ShipStreet:           req.ShipStreet,
		ShipCity:             req.ShipCity,
		ShipRegion:           req.ShipRegion,
		ShipPostalCode:       req.ShipPostalCode,
		ShipCountry:          req.ShipCountry,
		ServiceLevel:         req.ServiceLevel,
		RequestedShipDate:    req.RequestedShipDate,
		PromisedDeliveryDate: req.PromisedDeliveryDate,
		Items:                items,
	})
	if err != nil {
		var shortErr *service.InsufficientInventoryError
		if errors.As(err, &shortErr) {
			response.ErrorWithData(c, response.CodeBadRequest, "insufficient inventory", gin.H{
				"center_id":  shortErr.CenterID,
				"shortfalls": shortErr.Shortfalls,
			})
			return
		}
		if errors.Is(err, service.ErrCenterNotFound) {
			respondError(c, response.CodeNotFound, "center not found", nil)
			return
		}
		if errors.Is(err, service.ErrOrderInvalid) {
			respondError(c, response.CodeBadRequest, "order payload invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "order create failed", err)
		return
	}

	response.Success(c, order)
}

// GetOrder 获取履约订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	order, err := h.OrderService.GetOrder(id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	response.Success(c, order)
}

// GetOrders 获取履约订单列表
func (h *Handler) GetOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		Status:        c.Query("status"),
		FulfillmentNo: c.Query("fulfillment_no"),
		SourceOrderNo: c.Query("source_order_no"),
	}
	if raw := c.Query("center_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.CenterID = uint(id)
		}
	}
	if raw := c.Query("vendor_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.VendorID = uint(id)
		}
	}
	if raw := c.Query("customer_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.CustomerID = uint(id)
		}
	}

	orders, total, err := h.OrderService.ListOrders(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	response.SuccessWithPage(c, orders, pagination(page, pageSize, total))
}

// UpdateOrderStatusRequest 更新订单状态请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus 驱动订单状态机
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.UpdateStatus(id, req.Status, operatorID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		if errors.Is(err, service.ErrInvalidTransition) {
			respondError(c, response.CodeBadRequest, "status transition not allowed", nil)
			return
		}
		if errors.Is(err, service.ErrInventoryNotFound) {
			respondError(c, response.CodeInternal, "reserved inventory missing", err)
			return
		}
		respondError(c, response.CodeInternal, "order status update failed", err)
		return
	}

	response.Success(c, order)
}
