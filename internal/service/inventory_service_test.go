package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupInventoryServiceTest(t *testing.T) (*InventoryService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:inventory_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.FulfillmentCenter{},
		&models.FulfillmentInventory{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	inventoryRepo := repository.NewInventoryRepository(db)
	centerRepo := repository.NewCenterRepository(db)
	return NewInventoryService(inventoryRepo, centerRepo, NewThresholdRestockPolicy(10)), db
}

func createTestCenter(t *testing.T, db *gorm.DB, code string, capacityCubicM float64) *models.FulfillmentCenter {
	t.Helper()
	center := &models.FulfillmentCenter{
		Code:                code,
		Name:                fmt.Sprintf("测试中心 %s", code),
		Type:                constants.CenterTypeWarehouse,
		Street:              "测试街道 1 号",
		City:                "上海",
		Region:              "华东",
		Country:             "CN",
		TotalCapacityCubicM: capacityCubicM,
		TotalStorageUnits:   1000,
		AvailableStorage:    1000,
		Capabilities: models.StringArray{
			constants.ServiceLevelStandard,
			constants.ServiceLevelExpress,
		},
		Status:             constants.CenterStatusActive,
		OrderAccuracy:      100,
		OnTimeShipmentRate: 100,
	}
	if err := db.Create(center).Error; err != nil {
		t.Fatalf("create center failed: %v", err)
	}
	return center
}

func createTestInventoryRow(t *testing.T, db *gorm.DB, centerID uint, sku, variant string, available, reserved int) *models.FulfillmentInventory {
	t.Helper()
	row := &models.FulfillmentInventory{
		CenterID:          centerID,
		SKU:               sku,
		Variant:           variant,
		QuantityAvailable: available,
		QuantityReserved:  reserved,
		UnitWeightKg:      0.5,
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("create inventory row failed: %v", err)
	}
	return row
}

func TestInventoryServiceReceiveCreatesRowsAndOccupiesCapacity(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	center := createTestCenter(t, db, "SH-01", 100)

	rows, err := svc.Receive(ReceiveInput{
		CenterID:  center.ID,
		VendorID:  7,
		Reference: "PO-1001",
		Items: []ReceiveItemInput{
			{SKU: "SKU-TSHIRT", Variant: "L", Quantity: 40, UnitWeightKg: 0.3, UnitVolumeCubicM: 0.5, Aisle: "A1", Shelf: "S2", Bin: "B3"},
			{SKU: "SKU-MUG", Quantity: 10, UnitWeightKg: 0.5, UnitVolumeCubicM: 0.1},
		},
	})
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].QuantityAvailable != 40 || rows[0].LastReceiptRef != "PO-1001" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}

	var refreshed models.FulfillmentCenter
	if err := db.First(&refreshed, center.ID).Error; err != nil {
		t.Fatalf("reload center failed: %v", err)
	}
	// 40*0.5 + 10*0.1 = 21 立方米
	if refreshed.UsedCapacityCubicM != 21 {
		t.Fatalf("unexpected used capacity: %v", refreshed.UsedCapacityCubicM)
	}
	if refreshed.CapacityUtilization != 21 {
		t.Fatalf("unexpected capacity utilization: %v", refreshed.CapacityUtilization)
	}
}

func TestInventoryServiceReceiveAccumulatesExistingRow(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	center := createTestCenter(t, db, "SH-02", 100)
	createTestInventoryRow(t, db, center.ID, "SKU-TSHIRT", "L", 10, 0)

	rows, err := svc.Receive(ReceiveInput{
		CenterID: center.ID,
		Items: []ReceiveItemInput{
			{SKU: "SKU-TSHIRT", Variant: "L", Quantity: 5, BatchNo: "B202608"},
		},
	})
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if rows[0].QuantityAvailable != 15 {
		t.Fatalf("expected accumulated quantity 15, got %d", rows[0].QuantityAvailable)
	}
	if rows[0].BatchNo != "B202608" {
		t.Fatalf("expected batch refreshed, got %q", rows[0].BatchNo)
	}
}

func TestInventoryServiceReceiveCapacityConflictRollsBack(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	center := createTestCenter(t, db, "SH-03", 1)

	_, err := svc.Receive(ReceiveInput{
		CenterID: center.ID,
		Items: []ReceiveItemInput{
			{SKU: "SKU-BULKY", Quantity: 3, UnitVolumeCubicM: 0.5},
		},
	})
	if !errors.Is(err, ErrCapacityConflict) {
		t.Fatalf("expected capacity conflict, got: %v", err)
	}

	// 整个事务回滚，库存行不应落库
	var count int64
	db.Model(&models.FulfillmentInventory{}).Where("center_id = ?", center.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected rollback, found %d rows", count)
	}
}

func TestInventoryServiceReceiveRejectsInvalidInput(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	center := createTestCenter(t, db, "SH-04", 100)

	cases := []ReceiveInput{
		{CenterID: 0, Items: []ReceiveItemInput{{SKU: "SKU-A", Quantity: 1}}},
		{CenterID: center.ID},
		{CenterID: center.ID, Items: []ReceiveItemInput{{SKU: " ", Quantity: 1}}},
		{CenterID: center.ID, Items: []ReceiveItemInput{{SKU: "SKU-A", Quantity: 0}}},
		{CenterID: center.ID, Items: []ReceiveItemInput{{SKU: "SKU-A", Quantity: 1, UnitWeightKg: -1}}},
	}
	for i, input := range cases {
		if _, err := svc.Receive(input); !errors.Is(err, ErrInventoryInvalid) {
			t.Fatalf("case %d: expected invalid inventory, got: %v", i, err)
		}
	}

	if _, err := svc.Receive(ReceiveInput{
		CenterID: center.ID + 999,
		Items:    []ReceiveItemInput{{SKU: "SKU-A", Quantity: 1}},
	}); !errors.Is(err, ErrCenterNotFound) {
		t.Fatalf("expected center not found, got: %v", err)
	}
}

func TestInventoryServiceReserveMovesAvailableToReserved(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	center := createTestCenter(t, db, "SH-05", 100)
	row := createTestInventoryRow(t, db, center.ID, "SKU-TSHIRT", "L", 10, 0)

	if err := svc.Reserve(center.ID, "SKU-TSHIRT", "L", 6); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	var refreshed models.FulfillmentInventory
	if err := db.First(&refreshed, row.ID).Error; err != nil {
		t.Fatalf("reload inventory failed: %v", err)
	}
	if refreshed.QuantityAvailable != 4 || refreshed.QuantityReserved != 6 {
		t.Fatalf("unexpected quantities: available=%d reserved=%d", refreshed.QuantityAvailable, refreshed.QuantityReserved)
	}
}

func TestInventoryServiceReserveInsufficientReportsAvailability(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	center := createTestCenter(t, db, "SH-06", 100)
	createTestInventoryRow(t, db, center.ID, "SKU-TSHIRT", "L", 10, 0)

	// 先占走 6 件，再要 6 件必然不足
	if err := svc.Reserve(center.ID, "SKU-TSHIRT", "L", 6); err != nil {
		t.Fatalf("first reserve failed: %v", err)
	}
	err := svc.Reserve(center.ID, "SKU-TSHIRT", "L", 6)
	if !errors.Is(err, ErrInsufficientInventory) {
		t.Fatalf("expected insufficient inventory, got: %v", err)
	}
	var shortErr *InsufficientInventoryError
	if !errors.As(err, &shortErr) {
		t.Fatalf("expected shortfall detail, got: %v", err)
	}
	if len(shortErr.Shortfalls) != 1 || shortErr.Shortfalls[0].Available != 4 || shortErr.Shortfalls[0].Requested != 6 {
		t.Fatalf("unexpected shortfall: %+v", shortErr.Shortfalls)
	}
}

func TestInventoryServiceReserveUnknownRow(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	center := createTestCenter(t, db, "SH-07", 100)

	err := svc.Reserve(center.ID, "SKU-GHOST", "", 1)
	var shortErr *InsufficientInventoryError
	if !errors.As(err, &shortErr) {
		t.Fatalf("expected insufficient inventory, got: %v", err)
	}
	if shortErr.Shortfalls[0].Available != 0 {
		t.Fatalf("expected zero availability, got: %+v", shortErr.Shortfalls)
	}
}

func TestInventoryServiceReleaseAndRestore(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	center := createTestCenter(t, db, "SH-08", 100)
	row := createTestInventoryRow(t, db, center.ID, "SKU-TSHIRT", "L", 4, 6)

	// 发货释放：reserved 扣减，available 不回补
	if err := svc.Release(center.ID, "SKU-TSHIRT", "L", 2); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	var refreshed models.FulfillmentInventory
	db.First(&refreshed, row.ID)
	if refreshed.QuantityAvailable != 4 || refreshed.QuantityReserved != 4 {
		t.Fatalf("unexpected after release: available=%d reserved=%d", refreshed.QuantityAvailable, refreshed.QuantityReserved)
	}

	// 取消回补：reserved -> available
	if err := svc.Restore(center.ID, "SKU-TSHIRT", "L", 4); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	db.First(&refreshed, row.ID)
	if refreshed.QuantityAvailable != 8 || refreshed.QuantityReserved != 0 {
		t.Fatalf("unexpected after restore: available=%d reserved=%d", refreshed.QuantityAvailable, refreshed.QuantityReserved)
	}

	// 预占已清零，再释放应失败
	if err := svc.Release(center.ID, "SKU-TSHIRT", "L", 1); !errors.Is(err, ErrInventoryNotFound) {
		t.Fatalf("expected inventory not found, got: %v", err)
	}
}

func TestInventoryServiceRelocate(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	center := createTestCenter(t, db, "SH-09", 100)
	row := createTestInventoryRow(t, db, center.ID, "SKU-TSHIRT", "L", 10, 2)

	updated, err := svc.Relocate(row.ID, "B2", "S7", "B9")
	if err != nil {
		t.Fatalf("relocate failed: %v", err)
	}
	if updated.Aisle != "B2" || updated.Shelf != "S7" || updated.Bin != "B9" {
		t.Fatalf("unexpected location: %+v", updated)
	}

	var refreshed models.FulfillmentInventory
	db.First(&refreshed, row.ID)
	if refreshed.QuantityAvailable != 10 || refreshed.QuantityReserved != 2 {
		t.Fatalf("relocate must not touch quantities: %+v", refreshed)
	}

	if _, err := svc.Relocate(row.ID+999, "A", "B", "C"); !errors.Is(err, ErrInventoryNotFound) {
		t.Fatalf("expected inventory not found, got: %v", err)
	}
}

func TestInventoryServiceViewsCarryRestockFlag(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	center := createTestCenter(t, db, "SH-10", 100)
	createTestInventoryRow(t, db, center.ID, "SKU-LOW", "", 3, 0)
	createTestInventoryRow(t, db, center.ID, "SKU-OK", "", 500, 0)

	views, err := svc.ByCenter(center.ID)
	if err != nil {
		t.Fatalf("by center failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	// ListByCenter 按 sku 升序：SKU-LOW 在前
	if !views[0].NeedsRestock || views[1].NeedsRestock {
		t.Fatalf("unexpected restock flags: %+v", views)
	}

	bySKU, err := svc.BySKU("SKU-LOW")
	if err != nil {
		t.Fatalf("by sku failed: %v", err)
	}
	if len(bySKU) != 1 || !bySKU[0].NeedsRestock {
		t.Fatalf("unexpected sku view: %+v", bySKU)
	}
}
