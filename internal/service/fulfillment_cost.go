package service

import (
	"strings"

	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/models"

	"github.com/shopspring/decimal"
)

// CostInput 履约成本计算输入
type CostInput struct {
	ItemCount     int
	TotalWeightKg float64
	ServiceLevel  string
	OriginCountry string
	DestCountry   string
}

// CostBreakdown 履约成本拆分
type CostBreakdown struct {
	Handling         models.Money `json:"handling"`
	Packaging        models.Money `json:"packaging"`
	ShippingEstimate models.Money `json:"shipping_estimate"`
	Total            models.Money `json:"total"`
}

// CostCalculator 履约成本计算器，可插拔
type CostCalculator interface {
	Calculate(input CostInput) CostBreakdown
}

// StandardCostCalculator 标准费率计算器：
// 拣货按件、包装按重量、运费 = 起步价 + 重量费率 × 服务等级系数，跨国另加附加费。
type StandardCostCalculator struct {
	handlingPerItem   decimal.Decimal
	packagingPerKg    decimal.Decimal
	shippingBase      decimal.Decimal
	shippingPerKg     decimal.Decimal
	expressMultiplier decimal.Decimal
	sameDayMultiplier decimal.Decimal
	crossBorderExtra  decimal.Decimal
}

// NewStandardCostCalculator 根据费率配置创建标准计算器
func NewStandardCostCalculator(cfg config.CostConfig) *StandardCostCalculator {
	return &StandardCostCalculator{
		handlingPerItem:   parseRate(cfg.HandlingPerItem, "1.50"),
		packagingPerKg:    parseRate(cfg.PackagingPerKg, "0.80"),
		shippingBase:      parseRate(cfg.ShippingBase, "6.00"),
		shippingPerKg:     parseRate(cfg.ShippingPerKg, "2.40"),
		expressMultiplier: parseRate(cfg.ExpressMultiplier, "1.5"),
		sameDayMultiplier: parseRate(cfg.SameDayMultiplier, "2.0"),
		crossBorderExtra:  parseRate(cfg.CrossBorderExtra, "15.00"),
	}
}

// Calculate 计算履约成本拆分
func (c *StandardCostCalculator) Calculate(input CostInput) CostBreakdown {
	itemCount := input.ItemCount
	if itemCount < 0 {
		itemCount = 0
	}
	weight := decimal.NewFromFloat(input.TotalWeightKg)
	if weight.IsNegative() {
		weight = decimal.Zero
	}

	handling := c.handlingPerItem.Mul(decimal.NewFromInt(int64(itemCount)))
	packaging := c.packagingPerKg.Mul(weight)

	shipping := c.shippingBase.Add(c.shippingPerKg.Mul(weight))
	switch input.ServiceLevel {
	case constants.ServiceLevelExpress:
		shipping = shipping.Mul(c.expressMultiplier)
	case constants.ServiceLevelSameDay:
		shipping = shipping.Mul(c.sameDayMultiplier)
	}
	if isCrossBorder(input.OriginCountry, input.DestCountry) {
		shipping = shipping.Add(c.crossBorderExtra)
	}

	total := handling.Add(packaging).Add(shipping)
	return CostBreakdown{
		Handling:         models.NewMoneyFromDecimal(handling),
		Packaging:        models.NewMoneyFromDecimal(packaging),
		ShippingEstimate: models.NewMoneyFromDecimal(shipping),
		Total:            models.NewMoneyFromDecimal(total),
	}
}

func isCrossBorder(origin, dest string) bool {
	o := strings.ToLower(strings.TrimSpace(origin))
	d := strings.ToLower(strings.TrimSpace(dest))
	return o != "" && d != "" && o != d
}

func parseRate(raw, fallback string) decimal.Decimal {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		value, _ = decimal.NewFromString(fallback)
	}
	return value
}
