package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/quickcart-next/internal/constants"
	"github.com/quickcart-next/internal/models"
	"github.com/quickcart-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCheckoutServiceTest(t *testing.T) (*CheckoutService, *CartService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.ShippingAddress{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	cartRepo := repository.NewCartRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	products := NewProductService(repository.NewProductRepository(db))
	carts := NewCartService(cartRepo, products, nil, time.Minute, time.Hour)
	checkout := NewCheckoutService(orderRepo, cartRepo, customerRepo, carts)
	return checkout, carts, db
}

func createCheckoutCustomer(t *testing.T, db *gorm.DB, email string) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Ada",
		LastName:     "Lin",
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	return customer
}

func TestCheckoutCartCreatesOrderAndEmptiesCart(t *testing.T) {
	checkout, carts, db := setupCheckoutServiceTest(t)
	customer := createCheckoutCustomer(t, db, "ada@example.com")
	product := createCartTestProduct(t, db, "Smart Watch", 100, 50, true)

	if _, err := carts.AddItem(customer.ID, product.ID, 2); err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}

	deliveryFee := models.NewMoneyFromDecimal(decimal.NewFromInt(20))
	orderID, err := checkout.CheckoutCart(customer.ID, 0, "card", "leave at door", deliveryFee)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	order, err := checkout.GetOrder(customer.ID, orderID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if order.TotalAmount.String() != "220.00" {
		t.Fatalf("expected total 220.00, got %s", order.TotalAmount.String())
	}
	if order.Status != constants.OrderStatusPendingConfirmation {
		t.Fatalf("unexpected status: %s", order.Status)
	}
	if !strings.HasPrefix(order.OrderNo, "QC") {
		t.Fatalf("unexpected order no: %s", order.OrderNo)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected 1 order item, got %d", len(order.Items))
	}
	item := order.Items[0]
	if item.ProductID != product.ID || item.Quantity != 2 || item.TotalPrice.String() != "200.00" {
		t.Fatalf("unexpected order item: %+v", item)
	}

	// 下单成功后购物车应被清空
	detail, err := carts.GetOrCreateCart(customer.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(detail.Items) != 0 {
		t.Fatalf("cart should be empty after checkout, got %d items", len(detail.Items))
	}
}

func TestCheckoutCartRejectsInvalidCart(t *testing.T) {
	checkout, carts, db := setupCheckoutServiceTest(t)
	customer := createCheckoutCustomer(t, db, "ada@example.com")
	product := createCartTestProduct(t, db, "Power Bank", 50, 10, true)

	if _, err := carts.AddItem(customer.ID, product.ID, 3); err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("stock", 0).Error; err != nil {
		t.Fatalf("zero stock failed: %v", err)
	}

	_, err := checkout.CheckoutCart(customer.ID, 0, "card", "", models.Money{})
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	if code := serviceErrorCode(t, err); code != CodeValidationError {
		t.Fatalf("expected %s, got %s", CodeValidationError, code)
	}
	if !strings.Contains(err.Error(), "Cart validation failed") {
		t.Fatalf("unexpected message: %v", err)
	}

	var count int64
	if err := db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("no order should exist after rejected checkout, got %d", count)
	}
}

func TestCheckoutCartRejectsEmptyCartAndForeignAddress(t *testing.T) {
	checkout, carts, db := setupCheckoutServiceTest(t)
	customer := createCheckoutCustomer(t, db, "ada@example.com")
	other := createCheckoutCustomer(t, db, "other@example.com")
	otherAddress := &models.ShippingAddress{
		CustomerID:    other.ID,
		RecipientName: "Other",
		Line1:         "9 Elm St",
		City:          "Denver",
		Country:       "US",
	}
	if err := db.Create(otherAddress).Error; err != nil {
		t.Fatalf("create address failed: %v", err)
	}

	_, err := checkout.CheckoutCart(customer.ID, 0, "card", "", models.Money{})
	if err == nil || !strings.Contains(err.Error(), "Cart is empty") {
		t.Fatalf("expected empty cart error, got: %v", err)
	}

	product := createCartTestProduct(t, db, "Earphones", 100, 50, true)
	if _, err := carts.AddItem(customer.ID, product.ID, 1); err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}

	_, err = checkout.CheckoutCart(customer.ID, otherAddress.ID, "card", "", models.Money{})
	if err == nil || !strings.Contains(err.Error(), "does not belong") {
		t.Fatalf("expected address ownership error, got: %v", err)
	}
}

// failingOrderItemsRepository 模拟订单项写入失败，用于验证补偿删除
type failingOrderItemsRepository struct {
	repository.OrderRepository
}

func (r *failingOrderItemsRepository) CreateItems(items []models.OrderItem) error {
	return errors.New("simulated items write failure")
}

func TestCreateOrderRollsBackOnItemsFailure(t *testing.T) {
	_, carts, db := setupCheckoutServiceTest(t)
	customer := createCheckoutCustomer(t, db, "ada@example.com")
	product := createCartTestProduct(t, db, "Smart Watch", 100, 50, true)

	failing := &failingOrderItemsRepository{OrderRepository: repository.NewOrderRepository(db)}
	checkout := NewCheckoutService(failing, repository.NewCartRepository(db), repository.NewCustomerRepository(db), carts)

	if _, err := carts.AddItem(customer.ID, product.ID, 1); err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}

	_, err := checkout.CheckoutCart(customer.ID, 0, "card", "", models.Money{})
	if err == nil {
		t.Fatalf("expected items failure")
	}
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected service error, got: %v", err)
	}
	if svcErr.Code != CodeOrderCreateError {
		t.Fatalf("expected %s, got %s", CodeOrderCreateError, svcErr.Code)
	}
	if svcErr.Message != "Failed to create order items." {
		t.Fatalf("unexpected message: %q", svcErr.Message)
	}

	// 补偿删除后订单行不可见
	var orderCount int64
	if err := db.Model(&models.Order{}).Unscoped().Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("expected orphan order to be rolled back, found %d rows", orderCount)
	}

	// 下单失败时购物车保持原样
	detail, err := carts.GetOrCreateCart(customer.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(detail.Items) != 1 {
		t.Fatalf("cart should be untouched after failed checkout, got %d items", len(detail.Items))
	}
}

func TestDeleteOrderRemovesOrderAndItems(t *testing.T) {
	checkout, carts, db := setupCheckoutServiceTest(t)
	customer := createCheckoutCustomer(t, db, "ada@example.com")
	product := createCartTestProduct(t, db, "Backpack", 80, 20, true)

	if _, err := carts.AddItem(customer.ID, product.ID, 2); err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}
	orderID, err := checkout.CheckoutCart(customer.ID, 0, "card", "", models.Money{})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if err := checkout.DeleteOrder(orderID); err != nil {
		t.Fatalf("delete order failed: %v", err)
	}

	var orderCount, itemCount int64
	if err := db.Model(&models.Order{}).Unscoped().Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if err := db.Model(&models.OrderItem{}).Unscoped().Count(&itemCount).Error; err != nil {
		t.Fatalf("count order items failed: %v", err)
	}
	if orderCount != 0 || itemCount != 0 {
		t.Fatalf("expected hard delete, orders=%d items=%d", orderCount, itemCount)
	}

	if err := checkout.DeleteOrder(orderID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected order not found on repeat delete, got: %v", err)
	}
}

func TestGetOrderScopedToCustomer(t *testing.T) {
	checkout, carts, db := setupCheckoutServiceTest(t)
	customer := createCheckoutCustomer(t, db, "ada@example.com")
	stranger := createCheckoutCustomer(t, db, "other@example.com")
	product := createCartTestProduct(t, db, "Earphones", 100, 50, true)

	if _, err := carts.AddItem(customer.ID, product.ID, 1); err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}
	orderID, err := checkout.CheckoutCart(customer.ID, 0, "card", "", models.Money{})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if _, err := checkout.GetOrder(stranger.ID, orderID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign order must read as not found, got: %v", err)
	}
}

func TestGetCustomerDetailsForCheckout(t *testing.T) {
	checkout, _, db := setupCheckoutServiceTest(t)
	customer := createCheckoutCustomer(t, db, "ada@example.com")

	secondary := &models.ShippingAddress{
		CustomerID:    customer.ID,
		RecipientName: "Ada Lin",
		Line1:         "200 Congress Ave",
		City:          "Austin",
		Country:       "US",
		IsDefault:     false,
	}
	preferred := &models.ShippingAddress{
		CustomerID:    customer.ID,
		RecipientName: "Ada Lin",
		Line1:         "1 Market Street",
		City:          "San Francisco",
		Country:       "US",
		IsDefault:     true,
	}
	if err := db.Create(secondary).Error; err != nil {
		t.Fatalf("create secondary address failed: %v", err)
	}
	if err := db.Create(preferred).Error; err != nil {
		t.Fatalf("create preferred address failed: %v", err)
	}

	details, err := checkout.GetCustomerDetailsForCheckout(customer.ID)
	if err != nil {
		t.Fatalf("get details failed: %v", err)
	}
	if details.Email != "ada@example.com" || details.FirstName != "Ada" {
		t.Fatalf("unexpected customer details: %+v", details)
	}
	if details.Address == nil || details.Address.ID != preferred.ID {
		t.Fatalf("expected default address to be preferred, got: %+v", details.Address)
	}

	// 无地址客户不算失败，Address 为 nil
	addressless := createCheckoutCustomer(t, db, "new@example.com")
	details, err = checkout.GetCustomerDetailsForCheckout(addressless.ID)
	if err != nil {
		t.Fatalf("get details for addressless customer failed: %v", err)
	}
	if details.Address != nil {
		t.Fatalf("expected nil address, got: %+v", details.Address)
	}

	if _, err := checkout.GetCustomerDetailsForCheckout(9999); err == nil {
		t.Fatalf("expected error for unknown customer")
	}
}
