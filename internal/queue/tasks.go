package queue

import (
	"encoding/json"

	"github.com/cangchu-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderTimeoutCancel 待确认订单超时取消任务
	TaskOrderTimeoutCancel = constants.TaskOrderTimeoutCancel
	// TaskCenterMetricsRefresh 中心绩效刷新任务
	TaskCenterMetricsRefresh = constants.TaskCenterMetricsRefresh
)

// OrderTimeoutCancelPayload 超时取消任务载荷
type OrderTimeoutCancelPayload struct {
	OrderID uint `json:"order_id"`
}

// CenterMetricsRefreshPayload 绩效刷新任务载荷
type CenterMetricsRefreshPayload struct {
	CenterID uint `json:"center_id"`
}

// NewOrderTimeoutCancelTask 创建超时取消任务
func NewOrderTimeoutCancelTask(payload OrderTimeoutCancelPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderTimeoutCancel, body), nil
}

// NewCenterMetricsRefreshTask 创建绩效刷新任务
func NewCenterMetricsRefreshTask(payload CenterMetricsRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCenterMetricsRefresh, body), nil
}
