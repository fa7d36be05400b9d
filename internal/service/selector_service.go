package service

import (
	"sort"
	"strings"

	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/repository"
)

// SelectorService 选仓服务。只读评估，不做任何变更，
// 允许读到轻微过期的快照：下单时会在预占处原子复核。
type SelectorService struct {
	centerRepo    repository.CenterRepository
	inventoryRepo repository.InventoryRepository
	weights       config.SelectorWeights
}

// NewSelectorService 创建选仓服务
func NewSelectorService(centerRepo repository.CenterRepository, inventoryRepo repository.InventoryRepository, weights config.SelectorWeights) *SelectorService {
	return &SelectorService{
		centerRepo:    centerRepo,
		inventoryRepo: inventoryRepo,
		weights:       weights,
	}
}

// Destination 收件目的地
type Destination struct {
	City       string
	Region     string
	PostalCode string
	Country    string
}

// SelectItemInput 选仓需求行
type SelectItemInput struct {
	SKU      string
	Variant  string
	Quantity int
}

// CenterScore 候选中心评分明细
type CenterScore struct {
	Center *models.FulfillmentCenter `json:"center"`
	Score  float64                   `json:"score"`
}

// Select 挑选单个最优履约中心；无存活候选时返回 nil（由调用方决定拆单或拒绝）
func (s *SelectorService) Select(destination Destination, items []SelectItemInput, serviceLevel string) (*models.FulfillmentCenter, error) {
	ranked, err := s.Rank(destination, items, serviceLevel)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, nil
	}
	return ranked[0].Center, nil
}

// Rank 返回按分值排序的全部存活候选（调试与运营可视化用）
func (s *SelectorService) Rank(destination Destination, items []SelectItemInput, serviceLevel string) ([]CenterScore, error) {
	level := strings.TrimSpace(serviceLevel)
	if level == "" {
		level = constants.ServiceLevelStandard
	}
	if !isSupportedServiceLevel(level) || len(items) == 0 {
		return nil, ErrOrderInvalid
	}
	for _, item := range items {
		if strings.TrimSpace(item.SKU) == "" || item.Quantity <= 0 {
			return nil, ErrOrderInvalid
		}
	}

	centers, err := s.centerRepo.ListByStatus(constants.CenterStatusActive)
	if err != nil {
		return nil, err
	}

	ranked := make([]CenterScore, 0, len(centers))
	for i := range centers {
		center := &centers[i]
		if !center.Capabilities.Contains(level) {
			continue
		}
		if !servesDestination(center, level, destination) {
			continue
		}
		if center.CapacityUtilization >= 100 {
			continue
		}
		ok, err := s.hasFullStock(center.ID, items)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		ranked = append(ranked, CenterScore{
			Center: center,
			Score:  s.score(center, level, destination),
		})
	}

	// 确定性排序：分值降序 → 利用率升序 → 编码升序
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Center.CapacityUtilization != ranked[j].Center.CapacityUtilization {
			return ranked[i].Center.CapacityUtilization < ranked[j].Center.CapacityUtilization
		}
		return ranked[i].Center.Code < ranked[j].Center.Code
	})
	return ranked, nil
}

// servesDestination 判定中心在指定服务等级下是否覆盖目的地。
// 服务区域为空表示全域可达；区域 token 匹配 region 或邮编前缀。
func servesDestination(center *models.FulfillmentCenter, serviceLevel string, destination Destination) bool {
	areas := center.ServiceAreasFor(serviceLevel)
	if len(areas) == 0 {
		return true
	}
	region := strings.ToLower(strings.TrimSpace(destination.Region))
	postal := strings.ToLower(strings.TrimSpace(destination.PostalCode))
	for _, area := range areas {
		token := strings.ToLower(strings.TrimSpace(area))
		if token == "" {
			continue
		}
		if region != "" && token == region {
			return true
		}
		if postal != "" && strings.HasPrefix(postal, token) {
			return true
		}
	}
	return false
}

func (s *SelectorService) hasFullStock(centerID uint, items []SelectItemInput) (bool, error) {
	for _, item := range items {
		row, err := s.inventoryRepo.GetByKey(centerID, strings.TrimSpace(item.SKU), item.Variant)
		if err != nil {
			return false, err
		}
		if row == nil || row.QuantityAvailable < item.Quantity {
			return false, nil
		}
	}
	return true, nil
}

func (s *SelectorService) score(center *models.FulfillmentCenter, serviceLevel string, destination Destination) float64 {
	score := 0.0
	if destination.Region != "" && strings.EqualFold(center.Region, destination.Region) {
		score += s.weights.RegionMatchBonus
	}
	if destination.City != "" && strings.EqualFold(center.City, destination.City) {
		score += s.weights.CityMatchBonus
	}
	score += s.weights.AccuracyWeight * center.OrderAccuracy
	score += s.weights.PunctualityWeight * center.OnTimeShipmentRate
	score += s.weights.HeadroomWeight * (100 - center.CapacityUtilization)
	switch serviceLevel {
	case constants.ServiceLevelSameDay:
		score += s.weights.SameDayBonus
	case constants.ServiceLevelExpress:
		score += s.weights.ExpressBonus
	}
	return score
}
