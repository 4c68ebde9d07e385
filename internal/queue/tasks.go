package queue

import (
	"encoding/json"

	"github.com/quickcart-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCartTimeoutExpire 购物车闲置过期任务
	TaskCartTimeoutExpire = constants.TaskCartTimeoutExpire
)

// CartTimeoutExpirePayload 购物车过期任务载荷
type CartTimeoutExpirePayload struct {
	CartID uint `json:"cart_id"`
}

// NewCartTimeoutExpireTask 创建购物车过期任务
func NewCartTimeoutExpireTask(payload CartTimeoutExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartTimeoutExpire, body), nil
}
