package service

import "fmt"

// 业务错误码；跨服务稳定，处理器据此映射 HTTP 状态
const (
	CodeValidationError        = "VALIDATION_ERROR"
	CodeCartFetchError         = "CART_FETCH_ERROR"
	CodeCartItemNotFound       = "CART_ITEM_NOT_FOUND"
	CodeUnauthorizedCartAccess = "UNAUTHORIZED_CART_ACCESS"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeProductNotFound        = "PRODUCT_NOT_FOUND"
	CodeCartClearError         = "CART_CLEAR_ERROR"
	CodeCartAccessError        = "CART_ACCESS_ERROR"
	CodeOrderCreateError       = "ORDER_CREATE_ERROR"
	CodeOrderNotFound          = "ORDER_NOT_FOUND"
	CodeCustomerFetchError     = "CUSTOMER_FETCH_ERROR"
)

// Error 业务错误：稳定错误码 + 面向调用方的消息。
// errors.Is 按错误码匹配，动态消息不影响哨兵比较。
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按错误码匹配
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError 创建业务错误
func NewError(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError 创建携带底层错误的业务错误
func WrapError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// 哨兵错误（errors.Is 按 Code 匹配）
var (
	ErrCartItemNotFound       = NewError(CodeCartItemNotFound, "Cart item not found.")
	ErrUnauthorizedCartAccess = NewError(CodeUnauthorizedCartAccess, "You do not have access to this cart.")
	ErrProductNotFound        = NewError(CodeProductNotFound, "Product not found.")
	ErrOrderNotFound          = NewError(CodeOrderNotFound, "Order not found.")
	ErrOrderItemsCreateFailed = NewError(CodeOrderCreateError, "Failed to create order items.")
)
