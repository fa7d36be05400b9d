package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cangchu-next/internal/cache"
	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/repository"
)

// performanceWindowDays 绩效刷新回溯的滚动窗口天数
const performanceWindowDays = 30

// AnalyticsService 统计分析与运营建议服务（只读，不做业务变更）
type AnalyticsService struct {
	analyticsRepo           repository.AnalyticsRepository
	centerRepo              repository.CenterRepository
	cfg                     config.AnalyticsConfig
	defaultReorderThreshold int
}

// NewAnalyticsService 创建统计分析服务
func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, centerRepo repository.CenterRepository, cfg config.AnalyticsConfig, defaultReorderThreshold int) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo:           analyticsRepo,
		centerRepo:              centerRepo,
		cfg:                     cfg,
		defaultReorderThreshold: defaultReorderThreshold,
	}
}

// AnalyticsReport 单中心单周期的履约统计报表
type AnalyticsReport struct {
	CenterID            uint      `json:"center_id"`
	Period              string    `json:"period"`
	WindowStart         time.Time `json:"window_start"`
	WindowEnd           time.Time `json:"window_end"`
	OrdersProcessed     int64     `json:"orders_processed"`
	OrdersShipped       int64     `json:"orders_shipped"`
	OnTimeShipmentRate  float64   `json:"on_time_shipment_rate"`
	Revenue             float64   `json:"revenue"`
	FulfillmentCost     float64   `json:"fulfillment_cost"`
	CostPerOrder        float64   `json:"cost_per_order"`
	OrderAccuracy       float64   `json:"order_accuracy_percent"`
	CapacityUtilization float64   `json:"capacity_utilization_percent"`
}

// Analytics 聚合指定日历周期内的履约统计，短 TTL 缓存降低重复聚合开销
func (s *AnalyticsService) Analytics(centerID uint, period string) (*AnalyticsReport, error) {
	if centerID == 0 || !isSupportedPeriod(period) {
		return nil, ErrAnalyticsInvalid
	}
	center, err := s.centerRepo.GetByID(centerID)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, ErrCenterNotFound
	}

	startAt, endAt := periodWindow(time.Now(), period)
	cacheKey := fmt.Sprintf("analytics:center:%d:%s:%s", centerID, period, startAt.Format("20060102"))

	ctx := context.Background()
	cached := AnalyticsReport{}
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	stats, err := s.analyticsRepo.GetOrderStats(centerID, startAt, endAt)
	if err != nil {
		return nil, err
	}

	report := &AnalyticsReport{
		CenterID:            centerID,
		Period:              period,
		WindowStart:         startAt,
		WindowEnd:           endAt,
		OrdersProcessed:     stats.ProcessedCount,
		OrdersShipped:       stats.ShippedCount,
		Revenue:             stats.Revenue,
		FulfillmentCost:     stats.Cost,
		OrderAccuracy:       center.OrderAccuracy,
		CapacityUtilization: center.CapacityUtilization,
	}
	if stats.ShippedCount > 0 {
		report.OnTimeShipmentRate = float64(stats.OnTimeShipped) / float64(stats.ShippedCount) * 100
	}
	if stats.ProcessedCount > 0 {
		report.CostPerOrder = stats.Cost / float64(stats.ProcessedCount)
	}

	ttl := time.Duration(s.cfg.ReportCacheTTLSeconds) * time.Second
	if ttl > 0 {
		if err := cache.SetJSON(ctx, cacheKey, report, ttl); err != nil {
			logger.Warnw("analytics_cache_write_failed", "center_id", centerID, "error", err)
		}
	}
	return report, nil
}

// Recommendation 单条运营建议
type Recommendation struct {
	Type    string   `json:"type"`
	Urgency string   `json:"urgency"`
	SKU     string   `json:"sku,omitempty"`
	Message string   `json:"message"`
	Actions []string `json:"actions,omitempty"`
}

// RecommendationSet 运营建议集合
type RecommendationSet struct {
	CenterID        uint             `json:"center_id"`
	GeneratedAt     time.Time        `json:"generated_at"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Recommendations 生成运营建议：补货、容积优化、绩效改进
func (s *AnalyticsService) Recommendations(centerID uint) (*RecommendationSet, error) {
	if centerID == 0 {
		return nil, ErrAnalyticsInvalid
	}
	center, err := s.centerRepo.GetByID(centerID)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, ErrCenterNotFound
	}

	result := &RecommendationSet{
		CenterID:        centerID,
		GeneratedAt:     time.Now(),
		Recommendations: make([]Recommendation, 0),
	}

	restockRows, err := s.analyticsRepo.ListRestockCandidates(centerID, s.defaultReorderThreshold)
	if err != nil {
		return nil, err
	}
	for _, row := range restockRows {
		urgency := constants.RecommendationUrgencyMedium
		if row.QuantityAvailable == 0 {
			urgency = constants.RecommendationUrgencyHigh
		}
		result.Recommendations = append(result.Recommendations, Recommendation{
			Type:    constants.RecommendationTypeRestock,
			Urgency: urgency,
			SKU:     row.SKU,
			Message: fmt.Sprintf("SKU %s 可售数量 %d 已低于补货阈值", row.SKU, row.QuantityAvailable),
		})
	}

	highWater := s.cfg.CapacityHighWaterPercent
	if highWater <= 0 {
		highWater = 90
	}
	if center.CapacityUtilization > highWater {
		result.Recommendations = append(result.Recommendations, Recommendation{
			Type:    constants.RecommendationTypeCapacity,
			Urgency: constants.RecommendationUrgencyMedium,
			Message: fmt.Sprintf("容积利用率 %.1f%% 超过高水位 %.0f%%，建议调拨库存或扩容", center.CapacityUtilization, highWater),
		})
	}

	accuracyTarget := s.cfg.AccuracyTargetPercent
	if accuracyTarget <= 0 {
		accuracyTarget = 95
	}
	if center.OrderAccuracy < accuracyTarget {
		result.Recommendations = append(result.Recommendations, Recommendation{
			Type:    constants.RecommendationTypePerformance,
			Urgency: constants.RecommendationUrgencyMedium,
			Message: fmt.Sprintf("履约准确率 %.1f%% 低于目标 %.0f%%", center.OrderAccuracy, accuracyTarget),
			Actions: []string{
				"复核拣货流程与复检环节",
				"检查库位标签与实物一致性",
				"分析近期异常运单的根因",
				"安排仓内操作培训",
			},
		})
	}
	return result, nil
}

// RefreshCenterPerformance 按滚动窗口重算中心的准确率与准时发货率并回写
func (s *AnalyticsService) RefreshCenterPerformance(centerID uint) error {
	if centerID == 0 {
		return ErrAnalyticsInvalid
	}
	center, err := s.centerRepo.GetByID(centerID)
	if err != nil {
		return err
	}
	if center == nil {
		return ErrCenterNotFound
	}

	since := time.Now().AddDate(0, 0, -performanceWindowDays)
	stats, err := s.analyticsRepo.GetShipmentPerformance(centerID, since)
	if err != nil {
		return err
	}

	accuracy := 100.0
	onTimeRate := 100.0
	if stats.ShippedOrders > 0 {
		clean := stats.ShippedOrders - stats.ExceptionShipments
		if clean < 0 {
			clean = 0
		}
		accuracy = float64(clean) / float64(stats.ShippedOrders) * 100
		onTimeRate = float64(stats.OnTimeOrders) / float64(stats.ShippedOrders) * 100
	}

	if err := s.centerRepo.UpdatePerformance(centerID, accuracy, onTimeRate); err != nil {
		return err
	}
	logger.Infow("center_performance_refreshed",
		"center_id", centerID,
		"accuracy", accuracy,
		"on_time_rate", onTimeRate,
		"shipped_orders", stats.ShippedOrders,
	)
	return nil
}

func isSupportedPeriod(period string) bool {
	switch period {
	case constants.AnalyticsPeriodDay, constants.AnalyticsPeriodWeek, constants.AnalyticsPeriodMonth, constants.AnalyticsPeriodYear:
		return true
	}
	return false
}

// periodWindow 计算日历对齐的统计窗口 [start, end)
func periodWindow(now time.Time, period string) (time.Time, time.Time) {
	loc := now.Location()
	switch period {
	case constants.AnalyticsPeriodDay:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 0, 1)
	case constants.AnalyticsPeriodWeek:
		// 周一为一周起点
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -(weekday - 1))
		return start, start.AddDate(0, 0, 7)
	case constants.AnalyticsPeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	default:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0)
	}
}
