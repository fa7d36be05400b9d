package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAnalyticsServiceTest(t *testing.T) (*AnalyticsService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:analytics_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.FulfillmentCenter{},
		&models.FulfillmentInventory{},
		&models.FulfillmentOrder{},
		&models.FulfillmentOrderItem{},
		&models.FulfillmentShipment{},
		&models.ShipmentEvent{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewAnalyticsService(
		repository.NewAnalyticsRepository(db),
		repository.NewCenterRepository(db),
		config.AnalyticsConfig{
			CapacityHighWaterPercent: 90,
			AccuracyTargetPercent:    95,
		},
		10,
	), db
}

func createAnalyticsOrder(t *testing.T, db *gorm.DB, centerID uint, status string, total string, shippedAt, promised *time.Time) *models.FulfillmentOrder {
	t.Helper()
	now := time.Now()
	order := &models.FulfillmentOrder{
		FulfillmentNo:        fmt.Sprintf("FC%d%d", now.UnixNano(), centerID),
		CenterID:             centerID,
		SourceOrderNo:        "SO-ANL",
		ServiceLevel:         constants.ServiceLevelStandard,
		Status:               status,
		TotalAmount:          money(total),
		TotalCost:            money("10.00"),
		ShippedAt:            shippedAt,
		PromisedDeliveryDate: promised,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create analytics order failed: %v", err)
	}
	return order
}

func TestAnalyticsServiceReportAggregation(t *testing.T) {
	svc, db := setupAnalyticsServiceTest(t)
	center := createTestCenter(t, db, "ANL-01", 100)

	now := time.Now()
	tomorrow := now.Add(24 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)

	// 准时发货：shipped_at <= promised_delivery_date
	createAnalyticsOrder(t, db, center.ID, constants.OrderStatusShipped, "100.00", &now, &tomorrow)
	// 迟发：shipped_at 晚于承诺日期
	createAnalyticsOrder(t, db, center.ID, constants.OrderStatusShipped, "50.00", &now, &yesterday)
	// 未发货订单只计入处理量与营收
	createAnalyticsOrder(t, db, center.ID, constants.OrderStatusPending, "30.00", nil, nil)

	report, err := svc.Analytics(center.ID, constants.AnalyticsPeriodMonth)
	if err != nil {
		t.Fatalf("analytics failed: %v", err)
	}
	if report.OrdersProcessed != 3 || report.OrdersShipped != 2 {
		t.Fatalf("unexpected counts: processed=%d shipped=%d", report.OrdersProcessed, report.OrdersShipped)
	}
	if report.OnTimeShipmentRate != 50 {
		t.Fatalf("unexpected on-time rate: %v", report.OnTimeShipmentRate)
	}
	if report.Revenue != 180 {
		t.Fatalf("unexpected revenue: %v", report.Revenue)
	}
	if report.FulfillmentCost != 30 {
		t.Fatalf("unexpected cost: %v", report.FulfillmentCost)
	}
	if report.CostPerOrder != 10 {
		t.Fatalf("unexpected cost per order: %v", report.CostPerOrder)
	}
	if report.Period != constants.AnalyticsPeriodMonth || !report.WindowEnd.After(report.WindowStart) {
		t.Fatalf("unexpected window: %+v", report)
	}
}

func TestAnalyticsServiceValidation(t *testing.T) {
	svc, db := setupAnalyticsServiceTest(t)
	center := createTestCenter(t, db, "ANL-02", 100)

	if _, err := svc.Analytics(0, constants.AnalyticsPeriodDay); !errors.Is(err, ErrAnalyticsInvalid) {
		t.Fatalf("expected invalid params, got: %v", err)
	}
	if _, err := svc.Analytics(center.ID, "quarter"); !errors.Is(err, ErrAnalyticsInvalid) {
		t.Fatalf("expected invalid period, got: %v", err)
	}
	if _, err := svc.Analytics(center.ID+999, constants.AnalyticsPeriodDay); !errors.Is(err, ErrCenterNotFound) {
		t.Fatalf("expected center not found, got: %v", err)
	}
}

func TestAnalyticsServiceRecommendations(t *testing.T) {
	svc, db := setupAnalyticsServiceTest(t)
	center := createTestCenter(t, db, "ANL-03", 100)
	center.CapacityUtilization = 95
	center.OrderAccuracy = 88
	if err := db.Save(center).Error; err != nil {
		t.Fatalf("save center failed: %v", err)
	}

	// 售罄 SKU 触发高紧急补货建议，低于默认阈值的触发中等
	createTestInventoryRow(t, db, center.ID, "SKU-EMPTY", "", 0, 0)
	createTestInventoryRow(t, db, center.ID, "SKU-LOW", "", 5, 0)
	createTestInventoryRow(t, db, center.ID, "SKU-OK", "", 500, 0)

	set, err := svc.Recommendations(center.ID)
	if err != nil {
		t.Fatalf("recommendations failed: %v", err)
	}

	byType := map[string][]Recommendation{}
	for _, rec := range set.Recommendations {
		byType[rec.Type] = append(byType[rec.Type], rec)
	}

	restock := byType[constants.RecommendationTypeRestock]
	if len(restock) != 2 {
		t.Fatalf("expected 2 restock recommendations, got: %+v", restock)
	}
	// ListRestockCandidates 按可售数量升序：售罄在前
	if restock[0].SKU != "SKU-EMPTY" || restock[0].Urgency != constants.RecommendationUrgencyHigh {
		t.Fatalf("unexpected first restock rec: %+v", restock[0])
	}
	if restock[1].SKU != "SKU-LOW" || restock[1].Urgency != constants.RecommendationUrgencyMedium {
		t.Fatalf("unexpected second restock rec: %+v", restock[1])
	}

	capacity := byType[constants.RecommendationTypeCapacity]
	if len(capacity) != 1 || capacity[0].Urgency != constants.RecommendationUrgencyMedium {
		t.Fatalf("expected capacity recommendation, got: %+v", capacity)
	}

	performance := byType[constants.RecommendationTypePerformance]
	if len(performance) != 1 || len(performance[0].Actions) != 4 {
		t.Fatalf("expected performance recommendation with actions, got: %+v", performance)
	}
}

func TestAnalyticsServiceRecommendationsHealthyCenter(t *testing.T) {
	svc, db := setupAnalyticsServiceTest(t)
	center := createTestCenter(t, db, "ANL-04", 100)
	createTestInventoryRow(t, db, center.ID, "SKU-OK", "", 500, 0)

	set, err := svc.Recommendations(center.ID)
	if err != nil {
		t.Fatalf("recommendations failed: %v", err)
	}
	if len(set.Recommendations) != 0 {
		t.Fatalf("expected no recommendations, got: %+v", set.Recommendations)
	}
}

func TestAnalyticsServiceRefreshCenterPerformance(t *testing.T) {
	svc, db := setupAnalyticsServiceTest(t)
	center := createTestCenter(t, db, "ANL-05", 100)

	now := time.Now()
	tomorrow := now.Add(24 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)

	onTime := createAnalyticsOrder(t, db, center.ID, constants.OrderStatusShipped, "100.00", &now, &tomorrow)
	createAnalyticsOrder(t, db, center.ID, constants.OrderStatusShipped, "100.00", &now, &yesterday)
	createAnalyticsOrder(t, db, center.ID, constants.OrderStatusShipped, "100.00", &now, nil)
	createAnalyticsOrder(t, db, center.ID, constants.OrderStatusShipped, "100.00", &now, &tomorrow)

	// 其中一单的运单进入 exception，拉低准确率
	shipment := &models.FulfillmentShipment{
		ShipmentNo:     fmt.Sprintf("SP%d", now.UnixNano()),
		OrderID:        onTime.ID,
		TrackingNumber: "SF-EX",
		CarrierCode:    "SF",
		Status:         constants.ShipmentStatusException,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := db.Create(shipment).Error; err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}

	if err := svc.RefreshCenterPerformance(center.ID); err != nil {
		t.Fatalf("refresh performance failed: %v", err)
	}

	var refreshed models.FulfillmentCenter
	db.First(&refreshed, center.ID)
	// 4 单发货 1 单异常 → 准确率 75；承诺缺省视为准时 → 3/4 准时
	if refreshed.OrderAccuracy != 75 {
		t.Fatalf("unexpected accuracy: %v", refreshed.OrderAccuracy)
	}
	if refreshed.OnTimeShipmentRate != 75 {
		t.Fatalf("unexpected on-time rate: %v", refreshed.OnTimeShipmentRate)
	}
}

func TestAnalyticsServiceRefreshPerformanceNoShipments(t *testing.T) {
	svc, db := setupAnalyticsServiceTest(t)
	center := createTestCenter(t, db, "ANL-06", 100)
	// 清空基线，验证无发货时回到 100
	if err := db.Model(&models.FulfillmentCenter{}).Where("id = ?", center.ID).
		Updates(map[string]interface{}{"order_accuracy": 50, "on_time_shipment_rate": 50}).Error; err != nil {
		t.Fatalf("update center failed: %v", err)
	}

	if err := svc.RefreshCenterPerformance(center.ID); err != nil {
		t.Fatalf("refresh performance failed: %v", err)
	}
	var refreshed models.FulfillmentCenter
	db.First(&refreshed, center.ID)
	if refreshed.OrderAccuracy != 100 || refreshed.OnTimeShipmentRate != 100 {
		t.Fatalf("expected perfect defaults without shipments: %+v", refreshed)
	}
}

func TestPeriodWindowCalendarAlignment(t *testing.T) {
	// 2026-08-30 是周日
	base := time.Date(2026, 8, 30, 15, 30, 0, 0, time.UTC)

	start, end := periodWindow(base, constants.AnalyticsPeriodDay)
	if !start.Equal(time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day window: %v - %v", start, end)
	}

	// 周一为一周起点：周日回溯到 08-24
	start, end = periodWindow(base, constants.AnalyticsPeriodWeek)
	if !start.Equal(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected week window: %v - %v", start, end)
	}

	start, end = periodWindow(base, constants.AnalyticsPeriodMonth)
	if !start.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected month window: %v - %v", start, end)
	}

	start, end = periodWindow(base, constants.AnalyticsPeriodYear)
	if !start.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected year window: %v - %v", start, end)
	}

	// 周一当天不回溯
	monday := time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC)
	start, _ = periodWindow(monday, constants.AnalyticsPeriodWeek)
	if !start.Equal(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected monday week start: %v", start)
	}
}
