package ops

import (
	"errors"

	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/http/response"
	"github.com/cangchu-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCenterAnalytics 获取中心统计报表
func (h *Handler) GetCenterAnalytics(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	period := c.DefaultQuery("period", constants.AnalyticsPeriodMonth)

	report, err := h.AnalyticsService.Analytics(id, period)
	if err != nil {
		if errors.Is(err, service.ErrCenterNotFound) {
			respondError(c, response.CodeNotFound, "center not found", nil)
			return
		}
		if errors.Is(err, service.ErrAnalyticsInvalid) {
			respondError(c, response.CodeBadRequest, "period invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "analytics fetch failed", err)
		return
	}

	response.Success(c, report)
}

// GetCenterRecommendations 获取中心运营建议
func (h *Handler) GetCenterRecommendations(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	recommendations, err := h.AnalyticsService.Recommendations(id)
	if err != nil {
		if errors.Is(err, service.ErrCenterNotFound) {
			respondError(c, response.CodeNotFound, "center not found", nil)
			return
		}
		if errors.Is(err, service.ErrAnalyticsInvalid) {
			respondError(c, response.CodeBadRequest, "center id invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "recommendations fetch failed", err)
		return
	}

	response.Success(c, recommendations)
}
