package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/queue"
	"github.com/cangchu-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 履约订单服务
type OrderService struct {
	orderRepo            repository.OrderRepository
	centerRepo           repository.CenterRepository
	inventoryRepo        repository.InventoryRepository
	queueClient          *queue.Client
	costCalc             CostCalculator
	pendingExpireMinutes int
}

// NewOrderService 创建履约订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	centerRepo repository.CenterRepository,
	inventoryRepo repository.InventoryRepository,
	queueClient *queue.Client,
	costCalc CostCalculator,
	pendingExpireMinutes int,
) *OrderService {
	return &OrderService{
		orderRepo:            orderRepo,
		centerRepo:           centerRepo,
		inventoryRepo:        inventoryRepo,
		queueClient:          queueClient,
		costCalc:             costCalc,
		pendingExpireMinutes: pendingExpireMinutes,
	}
}

// OrderItemInput 履约订单行输入
type OrderItemInput struct {
	SKU       string
	Variant   string
	Quantity  int
	UnitPrice models.Money
}

// CreateOrderInput 创建履约订单输入
type CreateOrderInput struct {
	CenterID             uint
	SourceOrderNo        string
	VendorID             uint
	CustomerID           uint
	Priority             int
	ShipStreet           string
	ShipCity             string
	ShipRegion           string
	ShipPostalCode       string
	ShipCountry          string
	ServiceLevel         string
	RequestedShipDate    *time.Time
	PromisedDeliveryDate *time.Time
	Items                []OrderItemInput
}

// CreateOrder 创建履约订单：整单预检 → 事务内逐行预占（失败整体回滚）→ 落库 pending
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.FulfillmentOrder, error) {
	if input.CenterID == 0 || len(input.Items) == 0 {
		return nil, ErrOrderInvalid
	}
	for _, item := range input.Items {
		if strings.TrimSpace(item.SKU) == "" || item.Quantity <= 0 {
			return nil, ErrOrderInvalid
		}
	}
	serviceLevel := strings.TrimSpace(input.ServiceLevel)
	if serviceLevel == "" {
		serviceLevel = constants.ServiceLevelStandard
	}
	if !isSupportedServiceLevel(serviceLevel) {
		return nil, ErrOrderInvalid
	}

	center, err := s.centerRepo.GetByID(input.CenterID)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, ErrCenterNotFound
	}

	// 整单预检：一次性汇总全部缺口，调用方能看到完整缺货清单
	shortfalls := make([]InventoryShortfall, 0)
	totalWeight := 0.0
	for _, item := range input.Items {
		row, err := s.inventoryRepo.GetByKey(input.CenterID, strings.TrimSpace(item.SKU), item.Variant)
		if err != nil {
			return nil, err
		}
		available := 0
		if row != nil {
			available = row.QuantityAvailable
			totalWeight += float64(item.Quantity) * row.UnitWeightKg
		}
		if available < item.Quantity {
			shortfalls = append(shortfalls, InventoryShortfall{
				SKU:       strings.TrimSpace(item.SKU),
				Variant:   item.Variant,
				Requested: item.Quantity,
				Available: available,
			})
		}
	}
	if len(shortfalls) > 0 {
		return nil, &InsufficientInventoryError{CenterID: input.CenterID, Shortfalls: shortfalls}
	}

	totalAmount := decimal.Zero
	itemCount := 0
	orderItems := make([]models.FulfillmentOrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		totalAmount = totalAmount.Add(item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
		itemCount += item.Quantity
		orderItems = append(orderItems, models.FulfillmentOrderItem{
			SKU:       strings.TrimSpace(item.SKU),
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	costs := s.costCalc.Calculate(CostInput{
		ItemCount:     itemCount,
		TotalWeightKg: totalWeight,
		ServiceLevel:  serviceLevel,
		OriginCountry: center.Country,
		DestCountry:   input.ShipCountry,
	})

	now := time.Now()
	order := &models.FulfillmentOrder{
		FulfillmentNo:        generateFulfillmentNo(),
		CenterID:             input.CenterID,
		SourceOrderNo:        strings.TrimSpace(input.SourceOrderNo),
		VendorID:             input.VendorID,
		CustomerID:           input.CustomerID,
		Priority:             input.Priority,
		ShipStreet:           strings.TrimSpace(input.ShipStreet),
		ShipCity:             strings.TrimSpace(input.ShipCity),
		ShipRegion:           strings.TrimSpace(input.ShipRegion),
		ShipPostalCode:       strings.TrimSpace(input.ShipPostalCode),
		ShipCountry:          strings.TrimSpace(input.ShipCountry),
		ServiceLevel:         serviceLevel,
		Status:               constants.OrderStatusPending,
		TotalAmount:          models.NewMoneyFromDecimal(totalAmount),
		TotalWeightKg:        totalWeight,
		HandlingCost:         costs.Handling,
		PackagingCost:        costs.Packaging,
		ShippingEstimate:     costs.ShippingEstimate,
		TotalCost:            costs.Total,
		RequestedShipDate:    input.RequestedShipDate,
		PromisedDeliveryDate: input.PromisedDeliveryDate,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		inventoryRepo := s.inventoryRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		// 事务内逐行条件更新预占；任何一行落败则整体回滚，保证整单原子性
		for _, item := range orderItems {
			affected, err := inventoryRepo.Reserve(input.CenterID, item.SKU, item.Variant, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				row, err := inventoryRepo.GetByKey(input.CenterID, item.SKU, item.Variant)
				if err != nil {
					return err
				}
				available := 0
				if row != nil {
					available = row.QuantityAvailable
				}
				return &InsufficientInventoryError{
					CenterID: input.CenterID,
					Shortfalls: []InventoryShortfall{
						{SKU: item.SKU, Variant: item.Variant, Requested: item.Quantity, Available: available},
					},
				}
			}
		}
		return orderRepo.Create(order, orderItems)
	})
	if err != nil {
		var shortErr *InsufficientInventoryError
		if errors.As(err, &shortErr) {
			return nil, shortErr
		}
		return nil, err
	}
	order.Items = orderItems

	if s.queueClient != nil && s.pendingExpireMinutes > 0 {
		delay := time.Duration(s.pendingExpireMinutes) * time.Minute
		if err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{
			OrderID: order.ID,
		}, delay); err != nil {
			logger.Warnw("order_enqueue_timeout_cancel_failed",
				"order_id", order.ID,
				"fulfillment_no", order.FulfillmentNo,
				"error", err,
			)
		}
	}

	logger.Infow("fulfillment_order_created",
		"order_id", order.ID,
		"fulfillment_no", order.FulfillmentNo,
		"center_id", order.CenterID,
		"items", len(orderItems),
	)
	return order, nil
}

// GetOrder 获取履约订单
func (s *OrderService) GetOrder(id uint) (*models.FulfillmentOrder, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders 查询履约订单列表
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.FulfillmentOrder, int64, error) {
	return s.orderRepo.List(filter)
}

// UpdateStatus 驱动订单状态机。
// 转入 shipped 释放预占并缩减中心已用容积；转入 cancelled 将预占回补为可售。
func (s *OrderService) UpdateStatus(orderID uint, newStatus string, actorID uint) (*models.FulfillmentOrder, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !canTransitionOrder(order.Status, newStatus) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return s.applyStatusTransition(tx, order, newStatus, now)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("fulfillment_order_status_updated",
		"order_id", order.ID,
		"fulfillment_no", order.FulfillmentNo,
		"from", order.Status,
		"to", newStatus,
		"actor_id", actorID,
	)
	order.Status = newStatus
	switch newStatus {
	case constants.OrderStatusShipped:
		order.ShippedAt = &now
	case constants.OrderStatusCancelled:
		order.CancelledAt = &now
	}
	return order, nil
}

// applyStatusTransition 在事务内执行状态写入及其库存副作用
func (s *OrderService) applyStatusTransition(tx *gorm.DB, order *models.FulfillmentOrder, newStatus string, now time.Time) error {
	orderRepo := s.orderRepo.WithTx(tx)
	inventoryRepo := s.inventoryRepo.WithTx(tx)
	centerRepo := s.centerRepo.WithTx(tx)

	updates := map[string]interface{}{}
	switch newStatus {
	case constants.OrderStatusShipped:
		updates["shipped_at"] = now
		for _, item := range order.Items {
			affected, err := inventoryRepo.ReleaseReserved(order.CenterID, item.SKU, item.Variant, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrInventoryNotFound
			}
			row, err := inventoryRepo.GetByKey(order.CenterID, item.SKU, item.Variant)
			if err != nil {
				return err
			}
			if row != nil && row.UnitVolumeCubicM > 0 {
				delta := -float64(item.Quantity) * row.UnitVolumeCubicM
				if _, err := centerRepo.AdjustUsedCapacity(order.CenterID, delta); err != nil {
					return err
				}
			}
		}
	case constants.OrderStatusCancelled:
		updates["cancelled_at"] = now
		for _, item := range order.Items {
			affected, err := inventoryRepo.RestoreReserved(order.CenterID, item.SKU, item.Variant, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrInventoryNotFound
			}
		}
	}
	return orderRepo.UpdateStatus(order.ID, newStatus, updates)
}

// CancelIfPending 待确认超时取消：仍处 pending 才取消并回补库存（队列任务用）
func (s *OrderService) CancelIfPending(orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil || order.Status != constants.OrderStatusPending {
		return nil
	}
	if _, err := s.UpdateStatus(orderID, constants.OrderStatusCancelled, 0); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return nil
		}
		return err
	}
	logger.Infow("fulfillment_order_timeout_cancelled", "order_id", orderID)
	return nil
}

func generateFulfillmentNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("FC%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
