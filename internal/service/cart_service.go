package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/quickcart-next/internal/cache"
	"github.com/quickcart-next/internal/constants"
	"github.com/quickcart-next/internal/logger"
	"github.com/quickcart-next/internal/models"
	"github.com/quickcart-next/internal/queue"
	"github.com/quickcart-next/internal/repository"
)

// CartService 购物车业务服务。
// 读路径走进程内 TTL 缓存，所有写路径以数据库为准并在成功后
// 按客户维度整体失效缓存。
type CartService struct {
	cartRepo repository.CartRepository
	products ProductLookup
	cache    *cache.TTLCache[*CartDetail]
	queue    *queue.Client

	cacheTTL   time.Duration
	cartExpiry time.Duration
}

// NewCartService 创建购物车服务
func NewCartService(
	cartRepo repository.CartRepository,
	products ProductLookup,
	queueClient *queue.Client,
	cacheTTL time.Duration,
	cartExpiry time.Duration,
) *CartService {
	return &CartService{
		cartRepo:   cartRepo,
		products:   products,
		cache:      cache.NewTTLCache[*CartDetail](),
		queue:      queueClient,
		cacheTTL:   cacheTTL,
		cartExpiry: cartExpiry,
	}
}

// CartItemDetail 购物车项视图
type CartItemDetail struct {
	ID          uint         `json:"id"`
	ProductID   uint         `json:"product_id"`
	ProductName string       `json:"product_name"`
	Quantity    int          `json:"quantity"`
	UnitPrice   models.Money `json:"unit_price"`
	TotalPrice  models.Money `json:"total_price"`
}

// CartDetail 购物车视图（含汇总）
type CartDetail struct {
	ID          uint             `json:"id"`
	CustomerID  uint             `json:"customer_id"`
	Status      string           `json:"status"`
	Items       []CartItemDetail `json:"items"`
	TotalItems  int              `json:"total_items"`
	TotalAmount models.Money     `json:"total_amount"`
	ExpiresAt   *time.Time       `json:"expires_at"`
}

// GetOrCreateCart 获取客户当前购物车；不存在则创建空购物车。读路径缓存优先。
func (s *CartService) GetOrCreateCart(customerID uint) (*CartDetail, error) {
	if customerID == 0 {
		return nil, NewError(CodeValidationError, "Customer id is required.")
	}

	cacheKey := cache.CustomerCartKey(customerID)
	if detail, ok := s.cache.Get(cacheKey); ok {
		return detail, nil
	}

	cart, err := s.cartRepo.GetActiveByCustomer(customerID)
	if err != nil {
		return nil, WrapError(CodeCartFetchError, "Failed to fetch cart.", err)
	}
	if cart == nil {
		cart, err = s.createCart(customerID)
		if err != nil {
			return nil, WrapError(CodeCartFetchError, "Failed to create cart.", err)
		}
	}

	detail := buildCartDetail(cart)
	s.cache.Set(cacheKey, detail, s.cacheTTL)
	return detail, nil
}

func (s *CartService) createCart(customerID uint) (*models.Cart, error) {
	cart := &models.Cart{
		CustomerID: customerID,
		Status:     constants.CartStatusActive,
	}
	if s.cartExpiry > 0 {
		expiresAt := time.Now().Add(s.cartExpiry)
		cart.ExpiresAt = &expiresAt
	}
	if err := s.cartRepo.Create(cart); err != nil {
		return nil, err
	}

	// 过期清扫任务入队失败不阻塞主流程，worker 侧有兜底扫描
	if s.queue != nil && s.queue.Enabled() && cart.ExpiresAt != nil {
		if err := s.queue.EnqueueCartExpire(cart.ID, time.Until(*cart.ExpiresAt)); err != nil {
			logger.Warnw("cart_expire_enqueue_failed", "cart_id", cart.ID, "error", err)
		}
	}
	return cart, nil
}

// AddItem 加购。重复加购合并数量，合并后的总量同时受单品上限与库存约束；
// 任一校验失败不产生写入。
func (s *CartService) AddItem(customerID, productID uint, quantity int) (*CartDetail, error) {
	if customerID == 0 {
		return nil, NewError(CodeValidationError, "Customer id is required.")
	}
	if quantity < constants.CartItemMinQuantity {
		return nil, NewError(CodeValidationError, "Quantity must be greater than 0.")
	}
	if quantity > constants.CartItemMaxQuantity {
		return nil, NewError(CodeValidationError, "Quantity cannot exceed %d per item.", constants.CartItemMaxQuantity)
	}

	product, err := s.products.GetProduct(productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, NewError(CodeProductNotFound, "Product %d is not available.", productID)
	}

	cart, err := s.cartRepo.GetActiveByCustomer(customerID)
	if err != nil {
		return nil, WrapError(CodeCartAccessError, "Failed to access cart.", err)
	}
	if cart == nil {
		cart, err = s.createCart(customerID)
		if err != nil {
			return nil, WrapError(CodeCartAccessError, "Failed to create cart.", err)
		}
	}

	existing, err := s.cartRepo.GetItemByCartAndProduct(cart.ID, productID)
	if err != nil {
		return nil, WrapError(CodeCartAccessError, "Failed to access cart.", err)
	}

	// 库存校验针对合并后的总量
	requested := quantity
	if existing != nil {
		requested += existing.Quantity
	}
	if requested > constants.CartItemMaxQuantity {
		return nil, NewError(CodeValidationError, "Quantity cannot exceed %d per item.", constants.CartItemMaxQuantity)
	}
	if requested > product.Stock {
		return nil, NewError(CodeInsufficientStock,
			"Not enough stock for %s. Available: %d, Requested: %d",
			product.Name, product.Stock, requested)
	}

	if existing != nil {
		if err := s.cartRepo.UpdateItemQuantity(existing.ID, requested); err != nil {
			return nil, WrapError(CodeCartAccessError, "Failed to update cart item.", err)
		}
	} else {
		item := &models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: product.PriceAmount,
		}
		if err := s.cartRepo.CreateItem(item); err != nil {
			return nil, WrapError(CodeCartAccessError, "Failed to add cart item.", err)
		}
	}

	s.invalidateCustomerCart(customerID)
	return s.GetOrCreateCart(customerID)
}

// UpdateItem 更新购物车项数量。数量必须为正；归零语义由调用方转换为删除。
func (s *CartService) UpdateItem(customerID, itemID uint, quantity int) (*CartDetail, error) {
	if quantity < constants.CartItemMinQuantity {
		return nil, NewError(CodeValidationError, "Quantity must be greater than 0.")
	}
	if quantity > constants.CartItemMaxQuantity {
		return nil, NewError(CodeValidationError, "Quantity cannot exceed %d per item.", constants.CartItemMaxQuantity)
	}

	item, err := s.ownedItem(customerID, itemID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetProduct(item.ProductID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		return nil, NewError(CodeInsufficientStock,
			"Not enough stock for %s. Available: %d, Requested: %d",
			product.Name, product.Stock, quantity)
	}

	if err := s.cartRepo.UpdateItemQuantity(item.ID, quantity); err != nil {
		return nil, WrapError(CodeCartAccessError, "Failed to update cart item.", err)
	}

	s.invalidateCustomerCart(customerID)
	return s.GetOrCreateCart(customerID)
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(customerID, itemID uint) (*CartDetail, error) {
	item, err := s.ownedItem(customerID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.DeleteItem(item.ID); err != nil {
		return nil, WrapError(CodeCartAccessError, "Failed to remove cart item.", err)
	}

	s.invalidateCustomerCart(customerID)
	return s.GetOrCreateCart(customerID)
}

// ownedItem 读取购物车项并校验归属；不存在与越权分别报错
func (s *CartService) ownedItem(customerID, itemID uint) (*models.CartItem, error) {
	if customerID == 0 || itemID == 0 {
		return nil, NewError(CodeValidationError, "Customer id and item id are required.")
	}
	item, err := s.cartRepo.GetItemByID(itemID)
	if err != nil {
		return nil, WrapError(CodeCartAccessError, "Failed to access cart.", err)
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	if item.Cart == nil || item.Cart.CustomerID != customerID {
		return nil, ErrUnauthorizedCartAccess
	}
	return item, nil
}

// ClearCart 清空客户购物车，返回删除的条目数。无购物车时为幂等空操作。
func (s *CartService) ClearCart(customerID uint) (int64, error) {
	if customerID == 0 {
		return 0, NewError(CodeValidationError, "Customer id is required.")
	}

	cart, err := s.cartRepo.GetActiveByCustomer(customerID)
	if err != nil {
		return 0, WrapError(CodeCartFetchError, "Failed to fetch cart.", err)
	}
	if cart == nil {
		return 0, nil
	}

	removed, err := s.cartRepo.ClearItems(cart.ID)
	if err != nil {
		return 0, WrapError(CodeCartClearError, "Failed to clear cart.", err)
	}

	s.invalidateCustomerCart(customerID)
	return removed, nil
}

// CartIssue 购物车校验问题（错误或警告）
type CartIssue struct {
	Type        string        `json:"type"`
	ItemID      uint          `json:"item_id"`
	ProductID   uint          `json:"product_id"`
	ProductName string        `json:"product_name,omitempty"`
	Message     string        `json:"message"`
	Available   int           `json:"available,omitempty"`
	Requested   int           `json:"requested,omitempty"`
	OldPrice    *models.Money `json:"old_price,omitempty"`
	NewPrice    *models.Money `json:"new_price,omitempty"`
}

// CartValidationResult 购物车校验结果；警告不影响 IsValid
type CartValidationResult struct {
	IsValid  bool        `json:"is_valid"`
	Errors   []CartIssue `json:"errors"`
	Warnings []CartIssue `json:"warnings"`
}

// ValidateCart 对照最新商品状态校验购物车。绕过缓存读库，
// 仅报告问题，不修改购物车内容。
func (s *CartService) ValidateCart(customerID uint) (*CartValidationResult, error) {
	if customerID == 0 {
		return nil, NewError(CodeValidationError, "Customer id is required.")
	}

	cart, err := s.cartRepo.GetActiveByCustomer(customerID)
	if err != nil {
		return nil, WrapError(CodeCartFetchError, "Failed to fetch cart.", err)
	}

	result := &CartValidationResult{
		Errors:   []CartIssue{},
		Warnings: []CartIssue{},
	}
	if cart == nil || len(cart.Items) == 0 {
		result.IsValid = true
		return result, nil
	}

	for _, item := range cart.Items {
		product, err := s.products.GetProduct(item.ProductID)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				product = nil
			} else {
				return nil, WrapError(CodeCartAccessError, "Failed to validate cart.", err)
			}
		}

		if product == nil || !product.IsActive {
			result.Errors = append(result.Errors, CartIssue{
				Type:      constants.CartIssueProductUnavailable,
				ItemID:    item.ID,
				ProductID: item.ProductID,
				Message:   fmt.Sprintf("Product %d is no longer available.", item.ProductID),
			})
			continue
		}

		if product.Stock == 0 {
			result.Errors = append(result.Errors, CartIssue{
				Type:        constants.CartIssueOutOfStock,
				ItemID:      item.ID,
				ProductID:   item.ProductID,
				ProductName: product.Name,
				Message:     fmt.Sprintf("%s is out of stock.", product.Name),
			})
			continue
		}
		if product.Stock < item.Quantity {
			result.Errors = append(result.Errors, CartIssue{
				Type:        constants.CartIssueInsufficientStock,
				ItemID:      item.ID,
				ProductID:   item.ProductID,
				ProductName: product.Name,
				Message: fmt.Sprintf("Not enough stock for %s. Available: %d, Requested: %d",
					product.Name, product.Stock, item.Quantity),
				Available: product.Stock,
				Requested: item.Quantity,
			})
			continue
		}

		if product.Stock <= constants.LowStockThreshold {
			result.Warnings = append(result.Warnings, CartIssue{
				Type:        constants.CartIssueLowStock,
				ItemID:      item.ID,
				ProductID:   item.ProductID,
				ProductName: product.Name,
				Message:     fmt.Sprintf("Only %d left in stock for %s.", product.Stock, product.Name),
				Available:   product.Stock,
			})
		}
		if product.PriceAmount.GreaterThanMoney(item.UnitPrice) {
			oldPrice := item.UnitPrice
			newPrice := product.PriceAmount
			result.Warnings = append(result.Warnings, CartIssue{
				Type:        constants.CartIssuePriceIncrease,
				ItemID:      item.ID,
				ProductID:   item.ProductID,
				ProductName: product.Name,
				Message: fmt.Sprintf("Price of %s increased from %s to %s.",
					product.Name, oldPrice.String(), newPrice.String()),
				OldPrice: &oldPrice,
				NewPrice: &newPrice,
			})
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}

// ClearCache 清空购物车读缓存（运维入口）
func (s *CartService) ClearCache() {
	s.cache.Clear()
}

// CacheStats 购物车读缓存状态
func (s *CartService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// InvalidateCustomerCache 按客户失效购物车缓存（供结算等外部写路径调用）
func (s *CartService) InvalidateCustomerCache(customerID uint) {
	s.invalidateCustomerCart(customerID)
}

// invalidateCustomerCart 每个客户只占用一个缓存键，按键精确失效；
// 前缀失效会把 "…:1" 连带命中 "…:10"，误伤其他客户。
func (s *CartService) invalidateCustomerCart(customerID uint) {
	s.cache.Invalidate(cache.CustomerCartKey(customerID))
}

func buildCartDetail(cart *models.Cart) *CartDetail {
	detail := &CartDetail{
		ID:         cart.ID,
		CustomerID: cart.CustomerID,
		Status:     cart.Status,
		Items:      make([]CartItemDetail, 0, len(cart.Items)),
		ExpiresAt:  cart.ExpiresAt,
	}

	total := models.Money{}
	for _, item := range cart.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		lineTotal := item.UnitPrice.MulInt(item.Quantity)
		detail.Items = append(detail.Items, CartItemDetail{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  lineTotal,
		})
		detail.TotalItems += item.Quantity
		total = total.AddMoney(lineTotal)
	}
	detail.TotalAmount = total
	return detail
}
