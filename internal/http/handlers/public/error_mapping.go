package public

import (
	"errors"
	"net/http"

	"github.com/quickcart-next/internal/http/response"
	"github.com/quickcart-next/internal/logger"
	"github.com/quickcart-next/internal/service"

	"github.com/gin-gonic/gin"
)

// 业务错误码到 HTTP 状态码的映射；未列出的错误码按 500 处理
var errorCodeStatus = map[string]int{
	service.CodeValidationError:        http.StatusBadRequest,
	service.CodeInsufficientStock:      http.StatusBadRequest,
	service.CodeProductNotFound:        http.StatusNotFound,
	service.CodeCartItemNotFound:       http.StatusNotFound,
	service.CodeOrderNotFound:          http.StatusNotFound,
	service.CodeUnauthorizedCartAccess: http.StatusForbidden,
	service.CodeCartFetchError:         http.StatusInternalServerError,
	service.CodeCartAccessError:        http.StatusInternalServerError,
	service.CodeCartClearError:         http.StatusInternalServerError,
	service.CodeOrderCreateError:       http.StatusInternalServerError,
	service.CodeCustomerFetchError:     http.StatusInternalServerError,
}

// respondServiceError 将业务错误渲染为统一响应；
// 非业务错误（底层故障）不向调用方透出细节
func respondServiceError(c *gin.Context, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		status, ok := errorCodeStatus[svcErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		if status >= http.StatusInternalServerError {
			logger.Errorw("request_failed",
				"path", c.FullPath(),
				"code", svcErr.Code,
				"error", err,
			)
		}
		response.Fail(c, status, svcErr.Code, svcErr.Message)
		return
	}

	logger.Errorw("request_failed", "path", c.FullPath(), "error", err)
	response.InternalError(c, "INTERNAL_ERROR", "An unexpected error occurred.")
}
