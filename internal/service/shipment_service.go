package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/queue"
	"github.com/cangchu-next/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShipmentService 运单追踪服务
type ShipmentService struct {
	shipmentRepo repository.ShipmentRepository
	orderRepo    repository.OrderRepository
	orderService *OrderService
	queueClient  *queue.Client
}

// NewShipmentService 创建运单服务
func NewShipmentService(shipmentRepo repository.ShipmentRepository, orderRepo repository.OrderRepository, orderService *OrderService, queueClient *queue.Client) *ShipmentService {
	return &ShipmentService{
		shipmentRepo: shipmentRepo,
		orderRepo:    orderRepo,
		orderService: orderService,
		queueClient:  queueClient,
	}
}

// CreateShipmentInput 创建运单输入。运单号由上游承运对接方生成后传入，
// 本服务不调用承运商接口。
type CreateShipmentInput struct {
	OrderID           uint
	TrackingNumber    string
	CarrierCode       string
	ServiceType       string
	Cost              models.Money
	WeightKg          float64
	Dimensions        models.JSON
	EstimatedDelivery *time.Time
}

// CreateShipment 登记发运：校验订单可发货（packed），同一事务内建运单、
// 写初始事件、回写承运信息并驱动订单到 shipped（触发库存释放）。
func (s *ShipmentService) CreateShipment(input CreateShipmentInput) (*models.FulfillmentShipment, error) {
	if input.OrderID == 0 {
		return nil, ErrShipmentInvalid
	}
	trackingNumber := strings.TrimSpace(input.TrackingNumber)
	carrierCode := strings.TrimSpace(input.CarrierCode)
	if trackingNumber == "" || carrierCode == "" {
		return nil, ErrShipmentInvalid
	}

	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPacked {
		return nil, ErrOrderNotShippable
	}

	now := time.Now()
	shipment := &models.FulfillmentShipment{
		ShipmentNo:        generateShipmentNo(now),
		OrderID:           order.ID,
		TrackingNumber:    trackingNumber,
		CarrierCode:       carrierCode,
		ServiceType:       strings.TrimSpace(input.ServiceType),
		Status:            constants.ShipmentStatusCreated,
		Cost:              input.Cost,
		WeightKg:          input.WeightKg,
		DimensionsJSON:    input.Dimensions,
		EstimatedDelivery: input.EstimatedDelivery,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		shipmentRepo := s.shipmentRepo.WithTx(tx)
		existing, err := shipmentRepo.GetByOrderID(order.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrShipmentExists
		}

		if err := shipmentRepo.Create(shipment); err != nil {
			return err
		}
		if err := shipmentRepo.AppendEvent(&models.ShipmentEvent{
			ShipmentID: shipment.ID,
			Status:     constants.ShipmentStatusCreated,
			Note:       "shipment created",
			OccurredAt: now,
		}); err != nil {
			return err
		}

		if err := tx.Model(&models.FulfillmentOrder{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"carrier_code":    carrierCode,
				"tracking_number": trackingNumber,
				"updated_at":      now,
			}).Error; err != nil {
			return err
		}
		return s.orderService.applyStatusTransition(tx, order, constants.OrderStatusShipped, now)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("shipment_created",
		"shipment_id", shipment.ID,
		"shipment_no", shipment.ShipmentNo,
		"order_id", order.ID,
		"carrier_code", carrierCode,
		"tracking_number", trackingNumber,
	)
	return shipment, nil
}

// GetShipment 获取运单（含事件）
func (s *ShipmentService) GetShipment(id uint) (*models.FulfillmentShipment, error) {
	shipment, err := s.shipmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}
	return shipment, nil
}

// ListShipments 查询运单列表
func (s *ShipmentService) ListShipments(filter repository.ShipmentListFilter) ([]models.FulfillmentShipment, int64, error) {
	return s.shipmentRepo.List(filter)
}

// UpdateStatus 推进运单状态机。每次合法调用都会追加一条不可变事件
// （承运商回调重复上报同一状态也要留痕）；delivered 记录实际送达时间
// 并触发中心绩效刷新。
func (s *ShipmentService) UpdateStatus(shipmentID uint, newStatus, location, note string) (*models.FulfillmentShipment, error) {
	shipment, err := s.shipmentRepo.GetByID(shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}
	if !canTransitionShipment(shipment.Status, newStatus) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		shipmentRepo := s.shipmentRepo.WithTx(tx)
		if err := shipmentRepo.AppendEvent(&models.ShipmentEvent{
			ShipmentID: shipment.ID,
			Status:     newStatus,
			Note:       strings.TrimSpace(note),
			Location:   strings.TrimSpace(location),
			OccurredAt: now,
		}); err != nil {
			return err
		}
		if newStatus == shipment.Status {
			return nil
		}
		updates := map[string]interface{}{}
		if newStatus == constants.ShipmentStatusDelivered {
			updates["delivered_at"] = now
		}
		return shipmentRepo.UpdateStatus(shipment.ID, newStatus, updates)
	})
	if err != nil {
		return nil, err
	}

	if newStatus == constants.ShipmentStatusDelivered && s.queueClient != nil {
		order, err := s.orderRepo.GetByID(shipment.OrderID)
		if err == nil && order != nil {
			if err := s.queueClient.EnqueueCenterMetricsRefresh(queue.CenterMetricsRefreshPayload{
				CenterID: order.CenterID,
			}); err != nil {
				logger.Warnw("shipment_enqueue_metrics_refresh_failed",
					"shipment_id", shipment.ID,
					"center_id", order.CenterID,
					"error", err,
				)
			}
		}
	}

	return s.shipmentRepo.GetByID(shipment.ID)
}

func generateShipmentNo(now time.Time) string {
	return fmt.Sprintf("SP%s%s", now.Format("20060102150405"), strings.ToUpper(uuid.NewString()[:8]))
}
