package public

import (
	"strconv"

	"github.com/quickcart-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加购请求
type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// UpdateCartItemRequest 购物车项更新请求
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart 获取当前购物车（无则创建空购物车）
func (h *Handler) GetCart(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	cart, err := h.CartService.GetOrCreateCart(customerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, cart)
}

// AddCartItem 加购商品；重复加购合并数量
func (h *Handler) AddCartItem(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", "Invalid request body.")
		return
	}

	cart, err := h.CartService.AddItem(customerID, req.ProductID, req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, cart)
}

// UpdateCartItem 更新购物车项数量；数量为 0 时转为删除
func (h *Handler) UpdateCartItem(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", "Invalid request body.")
		return
	}

	if req.Quantity == 0 {
		cart, err := h.CartService.RemoveItem(customerID, itemID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		response.OK(c, cart)
		return
	}

	cart, err := h.CartService.UpdateItem(customerID, itemID, req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, cart)
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	cart, err := h.CartService.RemoveItem(customerID, itemID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, cart)
}

// ClearCart 清空购物车；无购物车时返回 0，不报错
func (h *Handler) ClearCart(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	removed, err := h.CartService.ClearCart(customerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, gin.H{"items_removed": removed})
}

// ValidateCart 对照最新商品状态校验购物车
func (h *Handler) ValidateCart(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	result, err := h.CartService.ValidateCart(customerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// CartCacheStats 购物车读缓存状态（运维接口）
func (h *Handler) CartCacheStats(c *gin.Context) {
	response.OK(c, h.CartService.CacheStats())
}

func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "VALIDATION_ERROR", "Invalid "+name+".")
		return 0, false
	}
	return uint(id), true
}
