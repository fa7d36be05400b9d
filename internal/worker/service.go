package worker

import (
	"context"
	"errors"
	"time"

	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultMetricsRefreshInterval = 10 * time.Minute

// Service 异步队列服务
type Service struct {
	name            string
	server          *asynq.Server
	mux             *asynq.ServeMux
	consumer        *Consumer
	refreshInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	refreshInterval := defaultMetricsRefreshInterval
	if cfg.Fulfillment.Analytics.MetricsRefreshIntervalMin > 0 {
		refreshInterval = time.Duration(cfg.Fulfillment.Analytics.MetricsRefreshIntervalMin) * time.Minute
	}
	return &Service{
		name:            "worker",
		server:          server,
		mux:             mux,
		consumer:        consumer,
		refreshInterval: refreshInterval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.AnalyticsService != nil {
		go s.runMetricsRefreshLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runMetricsRefreshLoop 定时刷新全部在营中心的绩效指标
func (s *Service) runMetricsRefreshLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.AnalyticsService == nil || s.consumer.CenterRepo == nil {
		return
	}
	runOnce := func() {
		centers, err := s.consumer.CenterRepo.ListByStatus(constants.CenterStatusActive)
		if err != nil {
			logger.Warnw("worker_metrics_refresh_list_centers_failed", "error", err)
			return
		}
		for _, center := range centers {
			if err := s.consumer.AnalyticsService.RefreshCenterPerformance(center.ID); err != nil {
				logger.Warnw("worker_metrics_refresh_failed", "center_id", center.ID, "error", err)
			}
		}
	}
	runOnce()

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
