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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.FulfillmentCenter{},
		&models.FulfillmentInventory{},
		&models.FulfillmentOrder{},
		&models.FulfillmentOrderItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	orderRepo := repository.NewOrderRepository(db)
	centerRepo := repository.NewCenterRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	costCalc := NewStandardCostCalculator(config.CostConfig{})
	return NewOrderService(orderRepo, centerRepo, inventoryRepo, nil, costCalc, 0), db
}

func money(value string) models.Money {
	d, _ := decimal.NewFromString(value)
	return models.NewMoneyFromDecimal(d)
}

func TestOrderServiceCreateReservesStockAndComputesTotals(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	center := createTestCenter(t, db, "OC-01", 100)
	createTestInventoryRow(t, db, center.ID, "SKU-TSHIRT", "L", 10, 0)
	createTestInventoryRow(t, db, center.ID, "SKU-MUG", "", 20, 0)

	order, err := svc.CreateOrder(CreateOrderInput{
		CenterID:      center.ID,
		SourceOrderNo: "SO-1001",
		VendorID:      3,
		CustomerID:    8,
		ShipCity:      "杭州",
		ShipRegion:    "华东",
		ShipCountry:   "CN",
		Items: []OrderItemInput{
			{SKU: "SKU-TSHIRT", Variant: "L", Quantity: 2, UnitPrice: money("59.00")},
			{SKU: "SKU-MUG", Quantity: 1, UnitPrice: money("19.90")},
		},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if order.FulfillmentNo == "" {
		t.Fatalf("expected fulfillment no to be assigned")
	}
	if order.ServiceLevel != constants.ServiceLevelStandard {
		t.Fatalf("expected default service level, got %s", order.ServiceLevel)
	}
	if !order.TotalAmount.Decimal.Equal(decimal.RequireFromString("137.90")) {
		t.Fatalf("unexpected total amount: %s", order.TotalAmount.String())
	}
	// 3 件 * 0.5kg/件（测试库存行默认单重）
	if order.TotalWeightKg != 1.5 {
		t.Fatalf("unexpected total weight: %v", order.TotalWeightKg)
	}
	// 拣货 1.50*3=4.50，包装 0.80*1.5=1.20，运费 6.00+2.40*1.5=9.60，合计 15.30
	if !order.TotalCost.Decimal.Equal(decimal.RequireFromString("15.30")) {
		t.Fatalf("unexpected total cost: %s", order.TotalCost.String())
	}

	var tshirt models.FulfillmentInventory
	db.Where("center_id = ? AND sku = ? AND variant = ?", center.ID, "SKU-TSHIRT", "L").First(&tshirt)
	if tshirt.QuantityAvailable != 8 || tshirt.QuantityReserved != 2 {
		t.Fatalf("unexpected reservation: available=%d reserved=%d", tshirt.QuantityAvailable, tshirt.QuantityReserved)
	}
}

func TestOrderServiceCreateAllOrNothing(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	center := createTestCenter(t, db, "OC-02", 100)
	createTestInventoryRow(t, db, center.ID, "SKU-TSHIRT", "L", 10, 0)
	createTestInventoryRow(t, db, center.ID, "SKU-MUG", "", 1, 0)

	_, err := svc.CreateOrder(CreateOrderInput{
		CenterID:    center.ID,
		ShipCountry: "CN",
		Items: []OrderItemInput{
			{SKU: "SKU-TSHIRT", Variant: "L", Quantity: 2, UnitPrice: money("59.00")},
			{SKU: "SKU-MUG", Quantity: 5, UnitPrice: money("19.90")},
		},
	})
	var shortErr *InsufficientInventoryError
	if !errors.As(err, &shortErr) {
		t.Fatalf("expected insufficient inventory, got: %v", err)
	}
	if len(shortErr.Shortfalls) != 1 || shortErr.Shortfalls[0].SKU != "SKU-MUG" || shortErr.Shortfalls[0].Available != 1 {
		t.Fatalf("unexpected shortfalls: %+v", shortErr.Shortfalls)
	}

	// 任一行缺货则整单不生效：第一行也不得被预占
	var tshirt models.FulfillmentInventory
	db.Where("center_id = ? AND sku = ?", center.ID, "SKU-TSHIRT").First(&tshirt)
	if tshirt.QuantityAvailable != 10 || tshirt.QuantityReserved != 0 {
		t.Fatalf("first line must stay untouched: %+v", tshirt)
	}
	var count int64
	db.Model(&models.FulfillmentOrder{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no order persisted, got %d", count)
	}
}

func TestOrderServiceCreateRejectsInvalidInput(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	center := createTestCenter(t, db, "OC-03", 100)

	cases := []CreateOrderInput{
		{CenterID: 0, Items: []OrderItemInput{{SKU: "A", Quantity: 1}}},
		{CenterID: center.ID},
		{CenterID: center.ID, Items: []OrderItemInput{{SKU: " ", Quantity: 1}}},
		{CenterID: center.ID, Items: []OrderItemInput{{SKU: "A", Quantity: -1}}},
		{CenterID: center.ID, ServiceLevel: "overnight", Items: []OrderItemInput{{SKU: "A", Quantity: 1}}},
	}
	for i, input := range cases {
		if _, err := svc.CreateOrder(input); !errors.Is(err, ErrOrderInvalid) {
			t.Fatalf("case %d: expected invalid order, got: %v", i, err)
		}
	}

	if _, err := svc.CreateOrder(CreateOrderInput{
		CenterID: center.ID + 999,
		Items:    []OrderItemInput{{SKU: "A", Quantity: 1}},
	}); !errors.Is(err, ErrCenterNotFound) {
		t.Fatalf("expected center not found, got: %v", err)
	}
}

func TestOrderServiceStatusWalkToShippedReleasesReservation(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	center := createTestCenter(t, db, "OC-04", 100)

	// 先通过收货占用容积，发货缩容才有可验证的基线
	inventorySvc := NewInventoryService(repository.NewInventoryRepository(db), repository.NewCenterRepository(db), nil)
	if _, err := inventorySvc.Receive(ReceiveInput{
		CenterID: center.ID,
		Items:    []ReceiveItemInput{{SKU: "SKU-TSHIRT", Variant: "L", Quantity: 10, UnitWeightKg: 0.3, UnitVolumeCubicM: 0.5}},
	}); err != nil {
		t.Fatalf("receive failed: %v", err)
	}

	order, err := svc.CreateOrder(CreateOrderInput{
		CenterID:    center.ID,
		ShipCountry: "CN",
		Items:       []OrderItemInput{{SKU: "SKU-TSHIRT", Variant: "L", Quantity: 4, UnitPrice: money("59.00")}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	for _, status := range []string{
		constants.OrderStatusConfirmed,
		constants.OrderStatusPicking,
		constants.OrderStatusPacked,
		constants.OrderStatusShipped,
	} {
		if _, err := svc.UpdateStatus(order.ID, status, 1); err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
	}

	refreshed, err := svc.GetOrder(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if refreshed.Status != constants.OrderStatusShipped || refreshed.ShippedAt == nil {
		t.Fatalf("unexpected shipped order: status=%s shipped_at=%v", refreshed.Status, refreshed.ShippedAt)
	}

	var row models.FulfillmentInventory
	db.Where("center_id = ? AND sku = ?", center.ID, "SKU-TSHIRT").First(&row)
	if row.QuantityAvailable != 6 || row.QuantityReserved != 0 {
		t.Fatalf("expected reservation released without restock: %+v", row)
	}

	// 4 件 * 0.5 立方米随发货移出中心
	var refreshedCenter models.FulfillmentCenter
	db.First(&refreshedCenter, center.ID)
	if refreshedCenter.UsedCapacityCubicM != 3 {
		t.Fatalf("unexpected used capacity after ship: %v", refreshedCenter.UsedCapacityCubicM)
	}
}

func TestOrderServiceCancelRestoresReservation(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	center := createTestCenter(t, db, "OC-05", 100)
	createTestInventoryRow(t, db, center.ID, "SKU-TSHIRT", "L", 10, 0)

	order, err := svc.CreateOrder(CreateOrderInput{
		CenterID:    center.ID,
		ShipCountry: "CN",
		Items:       []OrderItemInput{{SKU: "SKU-TSHIRT", Variant: "L", Quantity: 4, UnitPrice: money("59.00")}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	cancelled, err := svc.UpdateStatus(order.ID, constants.OrderStatusCancelled, 1)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.CancelledAt == nil {
		t.Fatalf("expected cancelled_at to be set")
	}

	var row models.FulfillmentInventory
	db.Where("center_id = ? AND sku = ?", center.ID, "SKU-TSHIRT").First(&row)
	if row.QuantityAvailable != 10 || row.QuantityReserved != 0 {
		t.Fatalf("expected reservation restored: %+v", row)
	}

	// 终态不可再流转
	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusConfirmed, 1); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got: %v", err)
	}
	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusCancelled, 1); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition on repeat cancel, got: %v", err)
	}
}

func TestOrderServiceRejectsStatusSkip(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	center := createTestCenter(t, db, "OC-06", 100)
	createTestInventoryRow(t, db, center.ID, "SKU-TSHIRT", "L", 10, 0)

	order, err := svc.CreateOrder(CreateOrderInput{
		CenterID:    center.ID,
		ShipCountry: "CN",
		Items:       []OrderItemInput{{SKU: "SKU-TSHIRT", Variant: "L", Quantity: 1, UnitPrice: money("59.00")}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusPacked, 1); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got: %v", err)
	}
	if _, err := svc.UpdateStatus(order.ID+999, constants.OrderStatusConfirmed, 1); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected order not found, got: %v", err)
	}
}

func TestOrderServiceCancelIfPending(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	center := createTestCenter(t, db, "OC-07", 100)
	createTestInventoryRow(t, db, center.ID, "SKU-TSHIRT", "L", 10, 0)

	order, err := svc.CreateOrder(CreateOrderInput{
		CenterID:    center.ID,
		ShipCountry: "CN",
		Items:       []OrderItemInput{{SKU: "SKU-TSHIRT", Variant: "L", Quantity: 2, UnitPrice: money("59.00")}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := svc.CancelIfPending(order.ID); err != nil {
		t.Fatalf("cancel if pending failed: %v", err)
	}
	refreshed, _ := svc.GetOrder(order.ID)
	if refreshed.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", refreshed.Status)
	}

	// 已确认的订单不受超时取消影响
	order2, err := svc.CreateOrder(CreateOrderInput{
		CenterID:    center.ID,
		ShipCountry: "CN",
		Items:       []OrderItemInput{{SKU: "SKU-TSHIRT", Variant: "L", Quantity: 2, UnitPrice: money("59.00")}},
	})
	if err != nil {
		t.Fatalf("create second order failed: %v", err)
	}
	if _, err := svc.UpdateStatus(order2.ID, constants.OrderStatusConfirmed, 1); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if err := svc.CancelIfPending(order2.ID); err != nil {
		t.Fatalf("cancel if pending should be a no-op: %v", err)
	}
	refreshed2, _ := svc.GetOrder(order2.ID)
	if refreshed2.Status != constants.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", refreshed2.Status)
	}

	// 不存在的订单同样静默返回
	if err := svc.CancelIfPending(order2.ID + 999); err != nil {
		t.Fatalf("cancel if pending on missing order should be a no-op: %v", err)
	}
}

func TestOrderServiceListFilters(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	center := createTestCenter(t, db, "OC-08", 100)
	createTestInventoryRow(t, db, center.ID, "SKU-TSHIRT", "L", 100, 0)

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateOrder(CreateOrderInput{
			CenterID:      center.ID,
			SourceOrderNo: fmt.Sprintf("SO-%d", i),
			VendorID:      uint(i%2 + 1),
			ShipCountry:   "CN",
			Items:         []OrderItemInput{{SKU: "SKU-TSHIRT", Variant: "L", Quantity: 1, UnitPrice: money("59.00")}},
		}); err != nil {
			t.Fatalf("create order %d failed: %v", i, err)
		}
	}

	orders, total, err := svc.ListOrders(repository.OrderListFilter{CenterID: center.ID, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if total != 3 || len(orders) != 3 {
		t.Fatalf("expected 3 orders, got total=%d len=%d", total, len(orders))
	}

	_, vendorTotal, err := svc.ListOrders(repository.OrderListFilter{VendorID: 1, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by vendor failed: %v", err)
	}
	if vendorTotal != 2 {
		t.Fatalf("expected 2 vendor orders, got %d", vendorTotal)
	}
}
