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

func setupShipmentServiceTest(t *testing.T) (*ShipmentService, *OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:shipment_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	orderRepo := repository.NewOrderRepository(db)
	centerRepo := repository.NewCenterRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	orderSvc := NewOrderService(orderRepo, centerRepo, inventoryRepo, nil, NewStandardCostCalculator(config.CostConfig{}), 0)
	return NewShipmentService(shipmentRepo, orderRepo, orderSvc, nil), orderSvc, db
}

// createPackedOrder 建一张已打包待发的订单（含足量预占库存）
func createPackedOrder(t *testing.T, db *gorm.DB, orderSvc *OrderService, centerCode string) *models.FulfillmentOrder {
	t.Helper()
	center := createTestCenter(t, db, centerCode, 100)
	createTestInventoryRow(t, db, center.ID, "SKU-TSHIRT", "L", 10, 0)

	order, err := orderSvc.CreateOrder(CreateOrderInput{
		CenterID:    center.ID,
		ShipCountry: "CN",
		Items:       []OrderItemInput{{SKU: "SKU-TSHIRT", Variant: "L", Quantity: 2, UnitPrice: money("59.00")}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	for _, status := range []string{
		constants.OrderStatusConfirmed,
		constants.OrderStatusPicking,
		constants.OrderStatusPacked,
	} {
		if _, err := orderSvc.UpdateStatus(order.ID, status, 1); err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
	}
	return order
}

func TestShipmentServiceCreateDrivesOrderShipped(t *testing.T) {
	svc, orderSvc, db := setupShipmentServiceTest(t)
	order := createPackedOrder(t, db, orderSvc, "SC-01")

	eta := time.Now().Add(48 * time.Hour)
	shipment, err := svc.CreateShipment(CreateShipmentInput{
		OrderID:           order.ID,
		TrackingNumber:    "SF1234567890",
		CarrierCode:       "SF",
		ServiceType:       "ground",
		Cost:              money("12.50"),
		WeightKg:          1.0,
		Dimensions:        models.JSON{"length_cm": 30, "width_cm": 20, "height_cm": 10},
		EstimatedDelivery: &eta,
	})
	if err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}
	if shipment.ShipmentNo == "" || shipment.Status != constants.ShipmentStatusCreated {
		t.Fatalf("unexpected shipment: %+v", shipment)
	}

	// 同一事务内订单进入 shipped 并回写承运信息
	refreshed, err := orderSvc.GetOrder(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if refreshed.Status != constants.OrderStatusShipped {
		t.Fatalf("expected order shipped, got %s", refreshed.Status)
	}
	if refreshed.CarrierCode != "SF" || refreshed.TrackingNumber != "SF1234567890" {
		t.Fatalf("expected carrier backfill, got: %+v", refreshed)
	}

	// 预占随发货释放
	var row models.FulfillmentInventory
	db.Where("center_id = ? AND sku = ?", order.CenterID, "SKU-TSHIRT").First(&row)
	if row.QuantityReserved != 0 || row.QuantityAvailable != 8 {
		t.Fatalf("expected reservation released: %+v", row)
	}

	// 初始事件已写入
	loaded, err := svc.GetShipment(shipment.ID)
	if err != nil {
		t.Fatalf("get shipment failed: %v", err)
	}
	if len(loaded.Events) != 1 || loaded.Events[0].Status != constants.ShipmentStatusCreated {
		t.Fatalf("expected single created event, got: %+v", loaded.Events)
	}
}

func TestShipmentServiceCreateRejectsUnshippableOrder(t *testing.T) {
	svc, orderSvc, db := setupShipmentServiceTest(t)
	center := createTestCenter(t, db, "SC-02", 100)
	createTestInventoryRow(t, db, center.ID, "SKU-TSHIRT", "L", 10, 0)

	order, err := orderSvc.CreateOrder(CreateOrderInput{
		CenterID:    center.ID,
		ShipCountry: "CN",
		Items:       []OrderItemInput{{SKU: "SKU-TSHIRT", Variant: "L", Quantity: 1, UnitPrice: money("59.00")}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// pending 不可发货，必须走到 packed
	_, err = svc.CreateShipment(CreateShipmentInput{
		OrderID:        order.ID,
		TrackingNumber: "SF000",
		CarrierCode:    "SF",
	})
	if !errors.Is(err, ErrOrderNotShippable) {
		t.Fatalf("expected order not shippable, got: %v", err)
	}
}

func TestShipmentServiceCreateValidation(t *testing.T) {
	svc, orderSvc, db := setupShipmentServiceTest(t)
	order := createPackedOrder(t, db, orderSvc, "SC-03")

	cases := []CreateShipmentInput{
		{OrderID: 0, TrackingNumber: "X", CarrierCode: "SF"},
		{OrderID: order.ID, TrackingNumber: "  ", CarrierCode: "SF"},
		{OrderID: order.ID, TrackingNumber: "X", CarrierCode: ""},
	}
	for i, input := range cases {
		if _, err := svc.CreateShipment(input); !errors.Is(err, ErrShipmentInvalid) {
			t.Fatalf("case %d: expected invalid shipment, got: %v", i, err)
		}
	}

	if _, err := svc.CreateShipment(CreateShipmentInput{
		OrderID:        order.ID + 999,
		TrackingNumber: "X",
		CarrierCode:    "SF",
	}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected order not found, got: %v", err)
	}
}

func TestShipmentServiceRejectsDuplicateShipment(t *testing.T) {
	svc, orderSvc, db := setupShipmentServiceTest(t)
	order := createPackedOrder(t, db, orderSvc, "SC-04")

	if _, err := svc.CreateShipment(CreateShipmentInput{
		OrderID:        order.ID,
		TrackingNumber: "SF111",
		CarrierCode:    "SF",
	}); err != nil {
		t.Fatalf("first shipment failed: %v", err)
	}

	// 订单已 shipped，第二次登记先被可发货校验拦下
	_, err := svc.CreateShipment(CreateShipmentInput{
		OrderID:        order.ID,
		TrackingNumber: "SF222",
		CarrierCode:    "SF",
	})
	if !errors.Is(err, ErrOrderNotShippable) {
		t.Fatalf("expected order not shippable on duplicate, got: %v", err)
	}
}

func TestShipmentServiceStatusFlowAppendsEvents(t *testing.T) {
	svc, orderSvc, db := setupShipmentServiceTest(t)
	order := createPackedOrder(t, db, orderSvc, "SC-05")

	shipment, err := svc.CreateShipment(CreateShipmentInput{
		OrderID:        order.ID,
		TrackingNumber: "SF333",
		CarrierCode:    "SF",
	})
	if err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}

	if _, err := svc.UpdateStatus(shipment.ID, constants.ShipmentStatusInTransit, "上海分拨中心", "已揽收"); err != nil {
		t.Fatalf("in_transit failed: %v", err)
	}
	// 承运商重复上报同一状态：状态不变但事件留痕
	if _, err := svc.UpdateStatus(shipment.ID, constants.ShipmentStatusInTransit, "杭州分拨中心", "干线运输中"); err != nil {
		t.Fatalf("repeat in_transit failed: %v", err)
	}
	if _, err := svc.UpdateStatus(shipment.ID, constants.ShipmentStatusOutForDelivery, "杭州西湖站", ""); err != nil {
		t.Fatalf("out_for_delivery failed: %v", err)
	}
	delivered, err := svc.UpdateStatus(shipment.ID, constants.ShipmentStatusDelivered, "", "签收")
	if err != nil {
		t.Fatalf("delivered failed: %v", err)
	}
	if delivered.Status != constants.ShipmentStatusDelivered || delivered.DeliveredAt == nil {
		t.Fatalf("unexpected delivered shipment: %+v", delivered)
	}
	// created + in_transit*2 + out_for_delivery + delivered
	if len(delivered.Events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(delivered.Events))
	}

	// 终态后任何流转都被拒绝
	if _, err := svc.UpdateStatus(shipment.ID, constants.ShipmentStatusException, "", ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition after delivered, got: %v", err)
	}
}

func TestShipmentServiceRejectsStatusSkip(t *testing.T) {
	svc, orderSvc, db := setupShipmentServiceTest(t)
	order := createPackedOrder(t, db, orderSvc, "SC-06")

	shipment, err := svc.CreateShipment(CreateShipmentInput{
		OrderID:        order.ID,
		TrackingNumber: "SF444",
		CarrierCode:    "SF",
	})
	if err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}

	if _, err := svc.UpdateStatus(shipment.ID, constants.ShipmentStatusDelivered, "", ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got: %v", err)
	}
	if _, err := svc.UpdateStatus(shipment.ID+999, constants.ShipmentStatusInTransit, "", ""); !errors.Is(err, ErrShipmentNotFound) {
		t.Fatalf("expected shipment not found, got: %v", err)
	}
}
