package ops

import (
	"errors"
	"strconv"

	"github.com/cangchu-next/internal/http/response"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/repository"
	"github.com/cangchu-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateCenterRequest 创建履约中心请求
type CreateCenterRequest struct {
	Code                string      `json:"code" binding:"required"`
	Name                string      `json:"name" binding:"required"`
	Type                string      `json:"type" binding:"required"`
	Street              string      `json:"street" binding:"required"`
	City                string      `json:"city" binding:"required"`
	Region              string      `json:"region"`
	PostalCode          string      `json:"postal_code"`
	Country             string      `json:"country" binding:"required"`
	Latitude            *float64    `json:"latitude"`
	Longitude           *float64    `json:"longitude"`
	TotalCapacityCubicM float64     `json:"total_capacity_cubic_m" binding:"required"`
	TotalStorageUnits   int         `json:"total_storage_units" binding:"required"`
	Capabilities        []string    `json:"capabilities"`
	ServiceAreas        models.JSON `json:"service_areas"`
	OperatingHours      models.JSON `json:"operating_hours"`
	ContactPhone        string      `json:"contact_phone"`
	ManagerName         string      `json:"manager_name"`
}

// CreateCenter 创建履约中心
func (h *Handler) CreateCenter(c *gin.Context) {
	var req CreateCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	center, err := h.CenterService.Create(service.CreateCenterInput{
		Code:                req.Code,
		Name:                req.Name,
		Type:                req.Type,
		Street:              req.Street,
		City:                req.City,
		Region:              req.Region,
		PostalCode:          req.PostalCode,
		Country:             req.Country,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		TotalCapacityCubicM: req.TotalCapacityCubicM,
		TotalStorageUnits:   req.TotalStorageUnits,
		Capabilities:        req.Capabilities,
		ServiceAreas:        req.ServiceAreas,
		OperatingHours:      req.OperatingHours,
		ContactPhone:        req.ContactPhone,
		ManagerName:         req.ManagerName,
	})
	if err != nil {
		if errors.Is(err, service.ErrCenterCodeExists) {
			respondError(c, response.CodeBadRequest, "center code already exists", nil)
			return
		}
		if errors.Is(err, service.ErrCenterInvalid) {
			respondError(c, response.CodeBadRequest, "center invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "center create failed", err)
		return
	}

	response.Success(c, center)
}

// UpdateCenterRequest 更新履约中心请求（缺省字段保持不变）
type UpdateCenterRequest struct {
	Name                *string      `json:"name"`
	Type                *string      `json:"type"`
	Street              *string      `json:"street"`
	City                *string      `json:"city"`
	Region              *string      `json:"region"`
	PostalCode          *string      `json:"postal_code"`
	Country             *string      `json:"country"`
	Latitude            *float64     `json:"latitude"`
	Longitude           *float64     `json:"longitude"`
	TotalCapacityCubicM *float64     `json:"total_capacity_cubic_m"`
	TotalStorageUnits   *int         `json:"total_storage_units"`
	Capabilities        *[]string    `json:"capabilities"`
	ServiceAreas        *models.JSON `json:"service_areas"`
	OperatingHours      *models.JSON `json:"operating_hours"`
	ContactPhone        *string      `json:"contact_phone"`
	ManagerName         *string      `json:"manager_name"`
	Status              *string      `json:"status"`
}

// UpdateCenter 局部更新履约中心
func (h *Handler) UpdateCenter(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req UpdateCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	center, err := h.CenterService.Update(id, service.UpdateCenterInput{
		Name:                req.Name,
		Type:                req.Type,
		Street:              req.Street,
		City:                req.City,
		Region:              req.Region,
		PostalCode:          req.PostalCode,
		Country:             req.Country,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		TotalCapacityCubicM: req.TotalCapacityCubicM,
		TotalStorageUnits:   req.TotalStorageUnits,
		Capabilities:        req.Capabilities,
		ServiceAreas:        req.ServiceAreas,
		OperatingHours:      req.OperatingHours,
		ContactPhone:        req.ContactPhone,
		ManagerName:         req.ManagerName,
		Status:              req.Status,
	})
	if err != nil {
		if errors.Is(err, service.ErrCenterNotFound) {
			respondError(c, response.CodeNotFound, "center not found", nil)
			return
		}
		if errors.Is(err, service.ErrCapacityConflict) {
			respondError(c, response.CodeBadRequest, "capacity below current usage", nil)
			return
		}
		if errors.Is(err, service.ErrCenterInvalid) {
			respondError(c, response.CodeBadRequest, "center invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "center update failed", err)
		return
	}

	response.Success(c, center)
}

// GetCenter 获取履约中心详情
func (h *Handler) GetCenter(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	center, err := h.CenterService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrCenterNotFound) {
			respondError(c, response.CodeNotFound, "center not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "center fetch failed", err)
		return
	}

	response.Success(c, center)
}

// GetCenters 获取履约中心列表
func (h *Handler) GetCenters(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	centers, total, err := h.CenterService.List(repository.CenterListFilter{
		Page:       page,
		PageSize:   pageSize,
		Status:     c.Query("status"),
		Type:       c.Query("type"),
		City:       c.Query("city"),
		Region:     c.Query("region"),
		Country:    c.Query("country"),
		Capability: c.Query("capability"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "center fetch failed", err)
		return
	}

	response.SuccessWithPage(c, centers, pagination(page, pageSize, total))
}

// DeactivateCenterRequest 停用履约中心请求
type DeactivateCenterRequest struct {
	Status string `json:"status"`
}

// DeactivateCenter 停用履约中心
func (h *Handler) DeactivateCenter(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	// 请求体可省略，省略时按默认 inactive 处理
	var req DeactivateCenterRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.CenterService.Deactivate(id, req.Status); err != nil {
		if errors.Is(err, service.ErrCenterNotFound) {
			respondError(c, response.CodeNotFound, "center not found", nil)
			return
		}
		if errors.Is(err, service.ErrCenterHasOpenOrders) {
			respondError(c, response.CodeBadRequest, "center has open orders", nil)
			return
		}
		if errors.Is(err, service.ErrCenterInvalid) {
			respondError(c, response.CodeBadRequest, "center status invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "center deactivate failed", err)
		return
	}

	response.Success(c, nil)
}
