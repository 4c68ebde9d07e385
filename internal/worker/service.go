package worker

import (
	"context"
	"errors"
	"time"

	"github.com/quickcart-next/internal/config"
	"github.com/quickcart-next/internal/logger"
	"github.com/quickcart-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	cartSweepInterval  = 10 * time.Minute
	cartSweepBatchSize = 200
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
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
	if s.consumer != nil && s.consumer.CartRepo != nil {
		go s.runCartSweepLoop(ctx)
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

// runCartSweepLoop 定时兜底扫描：补偿入队丢失或 worker 停机期间积压的过期购物车
func (s *Service) runCartSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.CartRepo == nil {
		return
	}
	runOnce := func() {
		carts, err := s.consumer.CartRepo.ListExpired(time.Now(), cartSweepBatchSize)
		if err != nil {
			logger.Warnw("worker_cart_sweep_list_failed", "error", err)
			return
		}
		for _, cart := range carts {
			if err := s.consumer.expireCart(cart.ID); err != nil {
				logger.Warnw("worker_cart_sweep_expire_failed", "cart_id", cart.ID, "error", err)
			}
		}
	}
	runOnce()

	ticker := time.NewTicker(cartSweepInterval)
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
