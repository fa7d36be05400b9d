package service

import (
	"testing"

	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/constants"

	"github.com/shopspring/decimal"
)

func TestStandardCostCalculatorDomesticStandard(t *testing.T) {
	calc := NewStandardCostCalculator(config.CostConfig{})

	breakdown := calc.Calculate(CostInput{
		ItemCount:     3,
		TotalWeightKg: 2,
		ServiceLevel:  constants.ServiceLevelStandard,
		OriginCountry: "CN",
		DestCountry:   "CN",
	})

	if !breakdown.Handling.Decimal.Equal(decimal.RequireFromString("4.50")) {
		t.Fatalf("unexpected handling: %s", breakdown.Handling.String())
	}
	if !breakdown.Packaging.Decimal.Equal(decimal.RequireFromString("1.60")) {
		t.Fatalf("unexpected packaging: %s", breakdown.Packaging.String())
	}
	if !breakdown.ShippingEstimate.Decimal.Equal(decimal.RequireFromString("10.80")) {
		t.Fatalf("unexpected shipping: %s", breakdown.ShippingEstimate.String())
	}
	if !breakdown.Total.Decimal.Equal(decimal.RequireFromString("16.90")) {
		t.Fatalf("unexpected total: %s", breakdown.Total.String())
	}
}

func TestStandardCostCalculatorServiceLevelMultipliers(t *testing.T) {
	calc := NewStandardCostCalculator(config.CostConfig{})
	input := CostInput{
		ItemCount:     1,
		TotalWeightKg: 1,
		OriginCountry: "CN",
		DestCountry:   "CN",
	}

	// 基准运费 6.00 + 2.40 = 8.40
	input.ServiceLevel = constants.ServiceLevelExpress
	if got := calc.Calculate(input).ShippingEstimate; !got.Decimal.Equal(decimal.RequireFromString("12.60")) {
		t.Fatalf("unexpected express shipping: %s", got.String())
	}
	input.ServiceLevel = constants.ServiceLevelSameDay
	if got := calc.Calculate(input).ShippingEstimate; !got.Decimal.Equal(decimal.RequireFromString("16.80")) {
		t.Fatalf("unexpected same-day shipping: %s", got.String())
	}
}

func TestStandardCostCalculatorCrossBorderSurcharge(t *testing.T) {
	calc := NewStandardCostCalculator(config.CostConfig{})

	breakdown := calc.Calculate(CostInput{
		ItemCount:     1,
		TotalWeightKg: 1,
		ServiceLevel:  constants.ServiceLevelStandard,
		OriginCountry: "CN",
		DestCountry:   "JP",
	})
	// 8.40 + 跨国附加 15.00
	if !breakdown.ShippingEstimate.Decimal.Equal(decimal.RequireFromString("23.40")) {
		t.Fatalf("unexpected cross-border shipping: %s", breakdown.ShippingEstimate.String())
	}

	// 国家缺省时不加收附加费
	domestic := calc.Calculate(CostInput{
		ItemCount:     1,
		TotalWeightKg: 1,
		ServiceLevel:  constants.ServiceLevelStandard,
		DestCountry:   "JP",
	})
	if !domestic.ShippingEstimate.Decimal.Equal(decimal.RequireFromString("8.40")) {
		t.Fatalf("unexpected shipping with missing origin: %s", domestic.ShippingEstimate.String())
	}
}

func TestStandardCostCalculatorClampsNegativeInput(t *testing.T) {
	calc := NewStandardCostCalculator(config.CostConfig{})

	breakdown := calc.Calculate(CostInput{
		ItemCount:     -2,
		TotalWeightKg: -1.5,
		ServiceLevel:  constants.ServiceLevelStandard,
	})
	if !breakdown.Handling.Decimal.IsZero() || !breakdown.Packaging.Decimal.IsZero() {
		t.Fatalf("negative input must clamp to zero: %+v", breakdown)
	}
	if !breakdown.ShippingEstimate.Decimal.Equal(decimal.RequireFromString("6.00")) {
		t.Fatalf("expected base shipping only, got: %s", breakdown.ShippingEstimate.String())
	}
}

func TestStandardCostCalculatorCustomRates(t *testing.T) {
	calc := NewStandardCostCalculator(config.CostConfig{
		HandlingPerItem:   "2.00",
		PackagingPerKg:    "1.00",
		ShippingBase:      "5.00",
		ShippingPerKg:     "3.00",
		ExpressMultiplier: "2.0",
		SameDayMultiplier: "3.0",
		CrossBorderExtra:  "20.00",
	})

	breakdown := calc.Calculate(CostInput{
		ItemCount:     2,
		TotalWeightKg: 1,
		ServiceLevel:  constants.ServiceLevelExpress,
		OriginCountry: "CN",
		DestCountry:   "US",
	})
	// 拣货 4.00，包装 1.00，运费 (5+3)*2 + 20 = 36.00
	if !breakdown.Total.Decimal.Equal(decimal.RequireFromString("41.00")) {
		t.Fatalf("unexpected total with custom rates: %s", breakdown.Total.String())
	}
}

func TestParseRateFallsBackOnGarbage(t *testing.T) {
	calc := NewStandardCostCalculator(config.CostConfig{
		HandlingPerItem: "not-a-number",
	})
	breakdown := calc.Calculate(CostInput{ItemCount: 2})
	if !breakdown.Handling.Decimal.Equal(decimal.RequireFromString("3.00")) {
		t.Fatalf("expected fallback handling rate, got: %s", breakdown.Handling.String())
	}
}
