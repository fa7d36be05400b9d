package service

import "github.com/cangchu-next/internal/models"

// RestockPolicy 补货判定策略，可插拔
type RestockPolicy interface {
	NeedsRestock(row models.FulfillmentInventory) bool
}

// ThresholdRestockPolicy 阈值补货策略：行内阈值优先，缺省回退全局默认
type ThresholdRestockPolicy struct {
	DefaultThreshold int
}

// NewThresholdRestockPolicy 创建阈值补货策略
func NewThresholdRestockPolicy(defaultThreshold int) *ThresholdRestockPolicy {
	if defaultThreshold < 0 {
		defaultThreshold = 0
	}
	return &ThresholdRestockPolicy{DefaultThreshold: defaultThreshold}
}

// NeedsRestock 判定库存行是否需要补货
func (p *ThresholdRestockPolicy) NeedsRestock(row models.FulfillmentInventory) bool {
	threshold := row.ReorderThreshold
	if threshold <= 0 {
		threshold = p.DefaultThreshold
	}
	return row.QuantityAvailable <= threshold
}
