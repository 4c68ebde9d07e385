package public

import (
	"strconv"

	"github.com/quickcart-next/internal/constants"
	"github.com/quickcart-next/internal/http/response"
	"github.com/quickcart-next/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 下单请求（以当前购物车内容下单）
type CreateOrderRequest struct {
	ShippingAddressID uint         `json:"shipping_address_id"`
	PaymentMethod     string       `json:"payment_method"`
	Notes             string       `json:"notes"`
	DeliveryFee       models.Money `json:"delivery_fee"`
}

// GetCheckoutDetails 获取结算页客户信息；无地址时 address 为 null
func (h *Handler) GetCheckoutDetails(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	details, err := h.CheckoutService.GetCustomerDetailsForCheckout(customerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, details)
}

// CreateOrder 以当前购物车下单
func (h *Handler) CreateOrder(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", "Invalid request body.")
		return
	}

	orderID, err := h.CheckoutService.CheckoutCart(
		customerID,
		req.ShippingAddressID,
		req.PaymentMethod,
		req.Notes,
		req.DeliveryFee,
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := h.CheckoutService.GetOrder(customerID, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, order)
}

// GetOrder 客户订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "order_id")
	if !ok {
		return
	}

	order, err := h.CheckoutService.GetOrder(customerID, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, order)
}

// ListOrders 客户订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)

	orders, total, err := h.CheckoutService.ListOrders(customerID, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	response.OKWithPage(c, orders, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// DeleteOrder 删除客户自己的订单（物理删除）
func (h *Handler) DeleteOrder(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "order_id")
	if !ok {
		return
	}

	// 归属校验先行：他人订单一律按不存在处理
	if _, err := h.CheckoutService.GetOrder(customerID, orderID); err != nil {
		respondServiceError(c, err)
		return
	}
	if err := h.CheckoutService.DeleteOrder(orderID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func pageParams(c *gin.Context) (int, int) {
	page := queryInt(c, "page", constants.DefaultPage)
	pageSize := queryInt(c, "page_size", constants.DefaultPageSize)
	if page < 1 {
		page = constants.DefaultPage
	}
	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}
	return page, pageSize
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
