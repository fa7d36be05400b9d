package ops

import (
	"errors"

	"github.com/cangchu-next/internal/http/response"
	"github.com/cangchu-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SelectItemRequest 选仓需求行
type SelectItemRequest struct {
	SKU      string `json:"sku" binding:"required"`
	Variant  string `json:"variant"`
	Quantity int    `json:"quantity" binding:"required"`
}

// SelectCenterRequest 选仓请求
type SelectCenterRequest struct {
	City         string              `json:"city"`
	Region       string              `json:"region"`
	PostalCode   string              `json:"postal_code"`
	Country      string              `json:"country"`
	ServiceLevel string              `json:"service_level"`
	Items        []SelectItemRequest `json:"items" binding:"required,dive"`
}

func (r SelectCenterRequest) toServiceInput() (service.Destination, []service.SelectItemInput) {
	items := make([]service.SelectItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, service.SelectItemInput{
			SKU:      item.SKU,
			Variant:  item.Variant,
			Quantity: item.Quantity,
		})
	}
	return service.Destination{
		City:       r.City,
		Region:     r.Region,
		PostalCode: r.PostalCode,
		Country:    r.Country,
	}, items
}

// SelectCenter 挑选最优履约中心
func (h *Handler) SelectCenter(c *gin.Context) {
	var req SelectCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	destination, items := req.toServiceInput()
	center, err := h.SelectorService.Select(destination, items, req.ServiceLevel)
	if err != nil {
		if errors.Is(err, service.ErrOrderInvalid) {
			respondError(c, response.CodeBadRequest, "selection payload invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "center selection failed", err)
		return
	}
	if center == nil {
		respondError(c, response.CodeNotFound, "no eligible center", nil)
		return
	}

	response.Success(c, center)
}

// RankCenters 返回全部存活候选及评分
func (h *Handler) RankCenters(c *gin.Context) {
	var req SelectCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	destination, items := req.toServiceInput()
	ranked, err := h.SelectorService.Rank(destination, items, req.ServiceLevel)
	if err != nil {
		if errors.Is(err, service.ErrOrderInvalid) {
			respondError(c, response.CodeBadRequest, "selection payload invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "center ranking failed", err)
		return
	}

	response.Success(c, ranked)
}
