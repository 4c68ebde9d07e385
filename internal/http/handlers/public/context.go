package public

import (
	"github.com/quickcart-next/internal/http/response"
	"github.com/quickcart-next/internal/logger"

	"github.com/gin-gonic/gin"
)

// getCustomerID 从请求上下文读取认证中间件注入的客户 ID；
// 缺失或类型异常直接返回 401 并终止处理
func getCustomerID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("customer_id")
	if !exists {
		response.Unauthorized(c, "Authentication required.")
		return 0, false
	}
	id, ok := value.(uint)
	if !ok || id == 0 {
		logger.Warnw("customer_id_context_invalid", "value", value)
		response.Unauthorized(c, "Authentication required.")
		return 0, false
	}
	return id, true
}
