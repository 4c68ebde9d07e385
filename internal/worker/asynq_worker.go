package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/quickcart-next/internal/logger"
	"github.com/quickcart-next/internal/provider"
	"github.com/quickcart-next/internal/queue"

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
	mux.HandleFunc(queue.TaskCartTimeoutExpire, c.handleCartTimeoutExpire)
}

// handleCartTimeoutExpire 处理购物车过期：清空条目并标记 expired。
// 任务触达时购物车可能已被下单清空或再次活跃，逐项检查后再动手。
func (c *Consumer) handleCartTimeoutExpire(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_cart_expire_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CartTimeoutExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cart_expire_unmarshal_failed", "error", err)
		return err
	}
	if payload.CartID == 0 {
		logger.Debugw("worker_cart_expire_skip_invalid_payload", "cart_id", payload.CartID)
		return nil
	}
	return c.expireCart(payload.CartID)
}

func (c *Consumer) expireCart(cartID uint) error {
	cart, err := c.CartRepo.GetByID(cartID)
	if err != nil {
		logger.Warnw("worker_cart_expire_fetch_failed", "cart_id", cartID, "error", err)
		return err
	}
	if cart == nil {
		logger.Debugw("worker_cart_expire_skip_not_found", "cart_id", cartID)
		return nil
	}
	now := time.Now()
	if cart.ExpiresAt == nil || cart.ExpiresAt.After(now) {
		logger.Debugw("worker_cart_expire_skip_not_due", "cart_id", cartID)
		return nil
	}

	removed, err := c.CartRepo.ClearItems(cart.ID)
	if err != nil {
		logger.Warnw("worker_cart_expire_clear_failed", "cart_id", cartID, "error", err)
		return err
	}
	if err := c.CartRepo.MarkExpired(cart.ID, now); err != nil {
		logger.Warnw("worker_cart_expire_mark_failed", "cart_id", cartID, "error", err)
		return err
	}

	if c.CartService != nil {
		c.CartService.InvalidateCustomerCache(cart.CustomerID)
	}
	logger.Infow("cart_expired",
		"cart_id", cart.ID,
		"customer_id", cart.CustomerID,
		"items_removed", removed,
	)
	return nil
}
