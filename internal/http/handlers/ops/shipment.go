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

// CreateShipmentRequest 登记发运请求
type CreateShipmentRequest struct {
	OrderID           uint        `json:"order_id" binding:"required"`
	TrackingNumber    string      `json:"tracking_number" binding:"required"`
	CarrierCode       string      `json:"carrier_code" binding:"required"`
	ServiceType       string      `json:"service_type"`
	Cost              float64     `json:"cost"`
	WeightKg          float64     `json:"weight_kg"`
	Dimensions        models.JSON `json:"dimensions"`
	EstimatedDelivery *time.Time  `json:"estimated_delivery"`
}

// CreateShipment 登记发运并驱动订单到 shipped
func (h *Handler) CreateShipment(c *gin.Context) {
	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	shipment, err := h.ShipmentService.CreateShipment(service.CreateShipmentInput{
		OrderID:           req.OrderID,
		TrackingNumber:    req.TrackingNumber,
		CarrierCode:       req.CarrierCode,
		ServiceType:       req.ServiceType,
		Cost:              models.NewMoneyFromDecimal(decimal.NewFromFloat(req.Cost)),
		WeightKg:          req.WeightKg,
		Dimensions:        req.Dimensions,
		EstimatedDelivery: req.EstimatedDelivery,
	})
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		if errors.Is(err, service.ErrOrderNotShippable) {
			respondError(c, response.CodeBadRequest, "order not ready to ship", nil)
			return
		}
		if errors.Is(err, service.ErrShipmentExists) {
			respondError(c, response.CodeBadRequest, "shipment already exists", nil)
			return
		}
		if errors.Is(err, service.ErrShipmentInvalid) {
			respondError(c, response.CodeBadRequest, "shipment payload invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "shipment create failed", err)
		return
	}

	response.Success(c, shipment)
}

// GetShipment 获取运单详情（含事件轨迹）
func (h *Handler) GetShipment(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	shipment, err := h.ShipmentService.GetShipment(id)
	if err != nil {
		if errors.Is(err, service.ErrShipmentNotFound) {
			respondError(c, response.CodeNotFound, "shipment not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "shipment fetch failed", err)
		return
	}

	response.Success(c, shipment)
}

// GetShipments 获取运单列表
func (h *Handler) GetShipments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ShipmentListFilter{
		Page:           page,
		PageSize:       pageSize,
		CarrierCode:    c.Query("carrier_code"),
		Status:         c.Query("status"),
		TrackingNumber: c.Query("tracking_number"),
	}
	if raw := c.Query("order_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.OrderID = uint(id)
		}
	}

	shipments, total, err := h.ShipmentService.ListShipments(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "shipment fetch failed", err)
		return
	}

	response.SuccessWithPage(c, shipments, pagination(page, pageSize, total))
}

// UpdateShipmentStatusRequest 更新运单状态请求
type UpdateShipmentStatusRequest struct {
	Status   string `json:"status" binding:"required"`
	Location string `json:"location"`
	Note     string `json:"note"`
}

// UpdateShipmentStatus 推进运单状态并追加事件
func (h *Handler) UpdateShipmentStatus(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req UpdateShipmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	shipment, err := h.ShipmentService.UpdateStatus(id, req.Status, req.Location, req.Note)
	if err != nil {
		if errors.Is(err, service.ErrShipmentNotFound) {
			respondError(c, response.CodeNotFound, "shipment not found", nil)
			return
		}
		if errors.Is(err, service.ErrInvalidTransition) {
			respondError(c, response.CodeBadRequest, "status transition not allowed", nil)
			return
		}
		respondError(c, response.CodeInternal, "shipment status update failed", err)
		return
	}

	response.Success(c, shipment)
}
