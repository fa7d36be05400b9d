package ops

import (
	"errors"
	"strings"
	"time"

	"github.com/cangchu-next/internal/http/response"
	"github.com/cangchu-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ReceiveItemRequest 收货明细行
type ReceiveItemRequest struct {
	SKU              string     `json:"sku" binding:"required"`
	Variant          string     `json:"variant"`
	Quantity         int        `json:"quantity" binding:"required"`
	BatchNo          string     `json:"batch_no"`
	LotNo            string     `json:"lot_no"`
	ExpiresAt        *time.Time `json:"expires_at"`
	UnitWeightKg     float64    `json:"unit_weight_kg"`
	UnitVolumeCubicM float64    `json:"unit_volume_cubic_m"`
	Aisle            string     `json:"aisle"`
	Shelf            string     `json:"shelf"`
	Bin              string     `json:"bin"`
	ReorderThreshold int        `json:"reorder_threshold"`
}

// ReceiveInventoryRequest 收货入库请求
type ReceiveInventoryRequest struct {
	CenterID  uint                 `json:"center_id" binding:"required"`
	VendorID  uint                 `json:"vendor_id"`
	Reference string               `json:"reference"`
	Items     []ReceiveItemRequest `json:"items" binding:"required,dive"`
}

// ReceiveInventory 收货入库
func (h *Handler) ReceiveInventory(c *gin.Context) {
	var req ReceiveInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	items := make([]service.ReceiveItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.ReceiveItemInput{
			SKU:              item.SKU,
			Variant:          item.Variant,
			Quantity:         item.Quantity,
			BatchNo:          item.BatchNo,
			LotNo:            item.LotNo,
			ExpiresAt:        item.ExpiresAt,
			UnitWeightKg:     item.UnitWeightKg,
			UnitVolumeCubicM: item.UnitVolumeCubicM,
			Aisle:            item.Aisle,
			Shelf:            item.Shelf,
			Bin:              item.Bin,
			ReorderThreshold: item.ReorderThreshold,
		})
	}

	rows, err := h.InventoryService.Receive(service.ReceiveInput{
		CenterID:  req.CenterID,
		VendorID:  req.VendorID,
		Reference: req.Reference,
		Items:     items,
	})
	if err != nil {
		if errors.Is(err, service.ErrCenterNotFound) {
			respondError(c, response.CodeNotFound, "center not found", nil)
			return
		}
		if errors.Is(err, service.ErrCapacityConflict) {
			respondError(c, response.CodeBadRequest, "center capacity exceeded", nil)
			return
		}
		if errors.Is(err, service.ErrInventoryInvalid) {
			respondError(c, response.CodeBadRequest, "receive payload invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "inventory receive failed", err)
		return
	}

	response.Success(c, rows)
}

// RelocateInventoryRequest 库位调整请求
type RelocateInventoryRequest struct {
	Aisle string `json:"aisle"`
	Shelf string `json:"shelf"`
	Bin   string `json:"bin"`
}

// RelocateInventory 调整库存库位
func (h *Handler) RelocateInventory(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req RelocateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	row, err := h.InventoryService.Relocate(id, req.Aisle, req.Shelf, req.Bin)
	if err != nil {
		if errors.Is(err, service.ErrInventoryNotFound) {
			respondError(c, response.CodeNotFound, "inventory not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "inventory relocate failed", err)
		return
	}

	response.Success(c, row)
}

// GetCenterInventory 获取指定中心的库存
func (h *Handler) GetCenterInventory(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	rows, err := h.InventoryService.ByCenter(id)
	if err != nil {
		if errors.Is(err, service.ErrInventoryInvalid) {
			respondError(c, response.CodeBadRequest, "center id invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "inventory fetch failed", err)
		return
	}

	response.Success(c, rows)
}

// GetSKUInventory 跨中心获取指定 SKU 的库存
func (h *Handler) GetSKUInventory(c *gin.Context) {
	sku := strings.TrimSpace(c.Param("sku"))
	if sku == "" {
		respondError(c, response.CodeBadRequest, "invalid sku", nil)
		return
	}

	rows, err := h.InventoryService.BySKU(sku)
	if err != nil {
		if errors.Is(err, service.ErrInventoryInvalid) {
			respondError(c, response.CodeBadRequest, "sku invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "inventory fetch failed", err)
		return
	}

	response.Success(c, rows)
}
