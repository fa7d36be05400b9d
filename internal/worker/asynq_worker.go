package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/provider"
	"github.com/cangchu-next/internal/queue"
	"github.com/cangchu-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
	mux.HandleFunc(queue.TaskCenterMetricsRefresh, c.handleCenterMetricsRefresh)
}

func (c *Consumer) handleOrderTimeoutCancel(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_timeout_cancel_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderTimeoutCancelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_timeout_cancel_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_timeout_cancel_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_timeout_cancel_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	if err := c.OrderService.CancelIfPending(payload.OrderID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			logger.Debugw("worker_order_timeout_cancel_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		}
		logger.Warnw("worker_order_timeout_cancel_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleCenterMetricsRefresh(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_center_metrics_refresh_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CenterMetricsRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_center_metrics_refresh_unmarshal_failed", "error", err)
		return err
	}
	if payload.CenterID == 0 {
		logger.Debugw("worker_center_metrics_refresh_skip_invalid_payload", "center_id", payload.CenterID)
		return nil
	}
	if c.AnalyticsService == nil {
		logger.Warnw("worker_center_metrics_refresh_skip_service_nil", "center_id", payload.CenterID)
		return nil
	}
	if err := c.AnalyticsService.RefreshCenterPerformance(payload.CenterID); err != nil {
		if errors.Is(err, service.ErrCenterNotFound) {
			logger.Debugw("worker_center_metrics_refresh_skip_center_not_found", "center_id", payload.CenterID)
			return nil
		}
		logger.Warnw("worker_center_metrics_refresh_failed", "center_id", payload.CenterID, "error", err)
		return err
	}
	return nil
}
