package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/quickcart-next/internal/constants"
	"github.com/quickcart-next/internal/logger"
	"github.com/quickcart-next/internal/models"
	"github.com/quickcart-next/internal/repository"
)

// CheckoutService 结算编排服务。
// 下单采用先写订单行、再写订单项、失败补偿删除订单的顺序；
// 写入成功后尽力清空购物车，清空失败只记日志。
type CheckoutService struct {
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	customerRepo repository.CustomerRepository
	carts        *CartService
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	customerRepo repository.CustomerRepository,
	carts *CartService,
) *CheckoutService {
	return &CheckoutService{
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		customerRepo: customerRepo,
		carts:        carts,
	}
}

// CreateOrderItemInput 下单条目输入（价格为快照价）
type CreateOrderItemInput struct {
	ProductID   uint
	ProductName string
	Quantity    int
	Price       models.Money
}

// CreateOrderInput 下单输入
type CreateOrderInput struct {
	CustomerID        uint
	ShippingAddressID uint
	Items             []CreateOrderItemInput
	DeliveryFee       models.Money
	PaymentMethod     string
	Notes             string
}

// CreateOrder 创建订单。订单行与订单项分步写入，订单项写入失败时
// 补偿删除已写入的订单行并返回固定错误；成功后尽力清空客户购物车。
func (s *CheckoutService) CreateOrder(input CreateOrderInput) (uint, error) {
	if input.CustomerID == 0 {
		return 0, NewError(CodeValidationError, "Customer id is required.")
	}
	if len(input.Items) == 0 {
		return 0, NewError(CodeValidationError, "Order must contain at least one item.")
	}
	for _, item := range input.Items {
		if item.ProductID == 0 || item.Quantity < 1 {
			return 0, NewError(CodeValidationError, "Order item product id and quantity are required.")
		}
	}

	total := input.DeliveryFee
	for _, item := range input.Items {
		total = total.AddMoney(item.Price.MulInt(item.Quantity))
	}

	order := &models.Order{
		OrderNo:           generateOrderNo(),
		CustomerID:        input.CustomerID,
		ShippingAddressID: input.ShippingAddressID,
		Status:            constants.OrderStatusPendingConfirmation,
		TotalAmount:       total,
		DeliveryFee:       input.DeliveryFee,
		PaymentMethod:     input.PaymentMethod,
		Notes:             input.Notes,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return 0, WrapError(CodeOrderCreateError, "Failed to create order.", err)
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, models.OrderItem{
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.Price,
			Quantity:    item.Quantity,
			TotalPrice:  item.Price.MulInt(item.Quantity),
		})
	}
	if err := s.orderRepo.CreateItems(items); err != nil {
		// 补偿删除孤儿订单行；删除失败也不能掩盖原始失败
		if rollbackErr := s.orderRepo.HardDelete(order.ID); rollbackErr != nil {
			logger.Errorw("order_rollback_failed",
				"order_id", order.ID,
				"error", rollbackErr,
			)
		}
		logger.Errorw("order_items_create_failed", "order_id", order.ID, "error", err)
		return 0, &Error{Code: CodeOrderCreateError, Message: ErrOrderItemsCreateFailed.Message, Err: err}
	}

	// 下单成功后清空购物车属于尽力而为，失败不回滚订单
	if err := s.cartRepo.DeleteItemsByCustomer(input.CustomerID); err != nil {
		logger.Warnw("post_order_cart_clear_failed",
			"customer_id", input.CustomerID,
			"order_id", order.ID,
			"error", err,
		)
	}
	if s.carts != nil {
		s.carts.InvalidateCustomerCache(input.CustomerID)
	}

	logger.Infow("order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"customer_id", input.CustomerID,
		"total_amount", order.TotalAmount.String(),
	)
	return order.ID, nil
}

// CheckoutCart 以当前购物车内容下单：先校验购物车，再按加购价快照生成订单。
func (s *CheckoutService) CheckoutCart(customerID, shippingAddressID uint, paymentMethod, notes string, deliveryFee models.Money) (uint, error) {
	if s.carts == nil {
		return 0, NewError(CodeOrderCreateError, "Checkout is not available.")
	}

	validation, err := s.carts.ValidateCart(customerID)
	if err != nil {
		return 0, err
	}
	if !validation.IsValid {
		messages := make([]string, 0, len(validation.Errors))
		for _, issue := range validation.Errors {
			messages = append(messages, issue.Message)
		}
		return 0, NewError(CodeValidationError, "Cart validation failed: %s", strings.Join(messages, " "))
	}

	detail, err := s.carts.GetOrCreateCart(customerID)
	if err != nil {
		return 0, err
	}
	if len(detail.Items) == 0 {
		return 0, NewError(CodeValidationError, "Cart is empty.")
	}

	if shippingAddressID != 0 {
		address, err := s.customerRepo.GetAddressByID(shippingAddressID)
		if err != nil {
			return 0, WrapError(CodeCustomerFetchError, "Failed to fetch shipping address.", err)
		}
		if address == nil || address.CustomerID != customerID {
			return 0, NewError(CodeValidationError, "Shipping address does not belong to this customer.")
		}
	}

	items := make([]CreateOrderItemInput, 0, len(detail.Items))
	for _, item := range detail.Items {
		items = append(items, CreateOrderItemInput{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.UnitPrice,
		})
	}

	return s.CreateOrder(CreateOrderInput{
		CustomerID:        customerID,
		ShippingAddressID: shippingAddressID,
		Items:             items,
		DeliveryFee:       deliveryFee,
		PaymentMethod:     paymentMethod,
		Notes:             notes,
	})
}

// DeleteOrder 物理删除订单及其订单项
func (s *CheckoutService) DeleteOrder(orderID uint) error {
	if orderID == 0 {
		return NewError(CodeValidationError, "Order id is required.")
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return WrapError(CodeOrderNotFound, "Failed to fetch order.", err)
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if err := s.orderRepo.HardDelete(orderID); err != nil {
		return WrapError(CodeOrderCreateError, "Failed to delete order.", err)
	}
	logger.Infow("order_deleted", "order_id", orderID, "order_no", order.OrderNo)
	return nil
}

// GetOrder 获取客户订单详情
func (s *CheckoutService) GetOrder(customerID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndCustomer(orderID, customerID)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders 客户订单列表
func (s *CheckoutService) ListOrders(customerID uint, page, pageSize int) ([]models.Order, int64, error) {
	return s.orderRepo.ListByCustomer(repository.OrderListFilter{
		Page:       page,
		PageSize:   pageSize,
		CustomerID: customerID,
	})
}

// CheckoutCustomerDetails 结算页客户信息
type CheckoutCustomerDetails struct {
	CustomerID uint                    `json:"customer_id"`
	Email      string                  `json:"email"`
	FirstName  string                  `json:"first_name"`
	LastName   string                  `json:"last_name"`
	Address    *models.ShippingAddress `json:"address"`
}

// GetCustomerDetailsForCheckout 获取结算页客户信息；无地址时 Address 为 nil，不算失败
func (s *CheckoutService) GetCustomerDetailsForCheckout(customerID uint) (*CheckoutCustomerDetails, error) {
	if customerID == 0 {
		return nil, NewError(CodeValidationError, "Customer id is required.")
	}

	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, WrapError(CodeCustomerFetchError, "Failed to fetch customer.", err)
	}
	if customer == nil {
		return nil, NewError(CodeCustomerFetchError, "Customer %d not found.", customerID)
	}

	address, err := s.customerRepo.GetPreferredAddress(customerID)
	if err != nil {
		return nil, WrapError(CodeCustomerFetchError, "Failed to fetch shipping address.", err)
	}

	return &CheckoutCustomerDetails{
		CustomerID: customer.ID,
		Email:      customer.Email,
		FirstName:  customer.FirstName,
		LastName:   customer.LastName,
		Address:    address,
	}, nil
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("QC%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		fmt.Fprintf(&b, "%d", n.Int64())
	}
	return b.String()
}
