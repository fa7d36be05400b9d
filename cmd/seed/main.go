package main

import (
	"fmt"

	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认运营账号
	if err := models.InitDefaultOperator("", ""); err != nil {
		stdLog.Fatalf("Failed to init default operator: %v", err)
	}

	var centerCount int64
	models.DB.Model(&models.FulfillmentCenter{}).Count(&centerCount)
	if centerCount > 0 {
		stdLog.Printf("Centers already seeded, skip")
		return
	}

	centers := []models.FulfillmentCenter{
		{
			Code:                "SH-01",
			Name:                "上海一号仓",
			Type:                constants.CenterTypeWarehouse,
			Street:              "漕河泾开发区 88 号",
			City:                "上海",
			Region:              "华东",
			Country:             "CN",
			TotalCapacityCubicM: 5000,
			TotalStorageUnits:   20000,
			AvailableStorage:    20000,
			Capabilities: models.StringArray{
				constants.ServiceLevelStandard,
				constants.ServiceLevelExpress,
				constants.ServiceLevelSameDay,
			},
			ServiceAreasJSON: models.JSON{
				constants.ServiceLevelSameDay: []string{"华东", "2000"},
			},
			Status:              constants.CenterStatusActive,
			OrderAccuracy:       100,
			OnTimeShipmentRate:  100,
			CapacityUtilization: 0,
		},
		{
			Code:                "GZ-01",
			Name:                "广州一号仓",
			Type:                constants.CenterTypeWarehouse,
			Street:              "黄埔区开创大道 1 号",
			City:                "广州",
			Region:              "华南",
			Country:             "CN",
			TotalCapacityCubicM: 3000,
			TotalStorageUnits:   12000,
			AvailableStorage:    12000,
			Capabilities: models.StringArray{
				constants.ServiceLevelStandard,
				constants.ServiceLevelExpress,
			},
			Status:              constants.CenterStatusActive,
			OrderAccuracy:       100,
			OnTimeShipmentRate:  100,
			CapacityUtilization: 0,
		},
	}
	if err := models.DB.Create(&centers).Error; err != nil {
		stdLog.Fatalf("Failed to seed centers: %v", err)
	}

	inventory := []models.FulfillmentInventory{
		{CenterID: centers[0].ID, SKU: "SKU-TSHIRT", Variant: "L", QuantityAvailable: 500, UnitWeightKg: 0.3, UnitVolumeCubicM: 0.002, Aisle: "A1", Shelf: "S2", Bin: "B3", ReorderThreshold: 50},
		{CenterID: centers[0].ID, SKU: "SKU-MUG", QuantityAvailable: 200, UnitWeightKg: 0.5, UnitVolumeCubicM: 0.001, Aisle: "A2", Shelf: "S1", Bin: "B1", ReorderThreshold: 20},
		{CenterID: centers[1].ID, SKU: "SKU-TSHIRT", Variant: "L", QuantityAvailable: 120, UnitWeightKg: 0.3, UnitVolumeCubicM: 0.002, Aisle: "C1", Shelf: "S4", Bin: "B2", ReorderThreshold: 50},
	}
	if err := models.DB.Create(&inventory).Error; err != nil {
		stdLog.Fatalf("Failed to seed inventory: %v", err)
	}

	fmt.Printf("Seeded %d centers and %d inventory rows\n", len(centers), len(inventory))
}
