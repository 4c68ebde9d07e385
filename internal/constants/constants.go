package constants

// 购物车状态常量
const (
	CartStatusActive  = "active"
	CartStatusExpired = "expired"
)

// 订单状态常量
const (
	OrderStatusPendingConfirmation = "pending_confirmation"
	OrderStatusConfirmed           = "confirmed"
	OrderStatusCanceled            = "canceled"
)

// 购物车条目数量限制常量
const (
	CartItemMinQuantity = 1
	CartItemMaxQuantity = 100
)

// LowStockThreshold 库存低于或等于该值时购物车校验产生 low_stock 警告
const LowStockThreshold = 5

// 购物车校验问题类型常量
const (
	CartIssueProductUnavailable = "product_unavailable"
	CartIssueOutOfStock         = "out_of_stock"
	CartIssueInsufficientStock  = "insufficient_stock"
	CartIssueLowStock           = "low_stock"
	CartIssuePriceIncrease      = "price_increase"
)

// 客户状态常量
const (
	CustomerStatusActive   = "active"
	CustomerStatusDisabled = "disabled"
)

// 队列常量
const (
	QueueDefault          = "default"
	TaskCartTimeoutExpire = "cart:timeout_expire"
)

// 缓存键前缀常量
const (
	CacheKeyCartPrefix = "cart:customer:"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "qc"
)

// 分页默认值常量
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
