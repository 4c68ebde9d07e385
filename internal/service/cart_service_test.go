package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/quickcart-next/internal/models"
	"github.com/quickcart-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Customer{}, &models.Product{}, &models.Cart{}, &models.CartItem{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func setupCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	db := openCartTestDB(t)
	cartRepo := repository.NewCartRepository(db)
	products := NewProductService(repository.NewProductRepository(db))
	svc := NewCartService(cartRepo, products, nil, time.Minute, time.Hour)
	return svc, db
}

func createCartTestProduct(t *testing.T, db *gorm.DB, name string, price int64, stock int, active bool) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:        name,
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		Stock:       stock,
		IsActive:    active,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func serviceErrorCode(t *testing.T, err error) string {
	t.Helper()
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected service error, got: %v", err)
	}
	return svcErr.Code
}

func TestAddItemMergesQuantities(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "Smart Watch", 100, 50, true)

	if _, err := svc.AddItem(1, product.ID, 1); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	detail, err := svc.AddItem(1, product.ID, 2)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	if len(detail.Items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(detail.Items))
	}
	if detail.Items[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", detail.Items[0].Quantity)
	}
	if detail.TotalItems != 3 {
		t.Fatalf("expected total items 3, got %d", detail.TotalItems)
	}
	if detail.TotalAmount.String() != "300.00" {
		t.Fatalf("expected total 300.00, got %s", detail.TotalAmount.String())
	}
}

// 库存校验是先读后写，并发加购之间不做串行化；两个同时通过校验的加购
// 都会落库，库存的最终约束在下单事务。这里只验证单请求内拒绝即无写入。
func TestAddItemInsufficientStockLeavesCartUnchanged(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "Power Bank", 50, 2, true)

	if _, err := svc.AddItem(1, product.ID, 1); err != nil {
		t.Fatalf("first add failed: %v", err)
	}

	// 合并后 1+2=3 超过库存 2，应整体拒绝
	_, err := svc.AddItem(1, product.ID, 2)
	if err == nil {
		t.Fatalf("expected insufficient stock error")
	}
	if code := serviceErrorCode(t, err); code != CodeInsufficientStock {
		t.Fatalf("expected %s, got %s", CodeInsufficientStock, code)
	}
	if !strings.Contains(err.Error(), "Power Bank") {
		t.Fatalf("expected product name in message, got: %v", err)
	}
	if !strings.Contains(err.Error(), "Available: 2, Requested: 3") {
		t.Fatalf("expected availability detail in message, got: %v", err)
	}

	detail, err := svc.GetOrCreateCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(detail.Items) != 1 || detail.Items[0].Quantity != 1 {
		t.Fatalf("cart should be unchanged after rejected add: %+v", detail.Items)
	}
}

func TestAddItemQuantityBounds(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "Earphones", 100, 500, true)

	_, err := svc.AddItem(1, product.ID, 0)
	if err == nil || !strings.Contains(err.Error(), "must be greater than 0") {
		t.Fatalf("expected positive quantity error, got: %v", err)
	}

	if _, err := svc.AddItem(1, product.ID, 101); err == nil {
		t.Fatalf("expected per-item maximum error")
	}

	// 合并后超过单品上限同样拒绝
	if _, err := svc.AddItem(1, product.ID, 60); err != nil {
		t.Fatalf("add 60 failed: %v", err)
	}
	_, err = svc.AddItem(1, product.ID, 41)
	if err == nil {
		t.Fatalf("expected merged quantity cap error")
	}
	if code := serviceErrorCode(t, err); code != CodeValidationError {
		t.Fatalf("expected %s, got %s", CodeValidationError, code)
	}
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "Retired Hub", 20, 30, false)

	_, err := svc.AddItem(1, product.ID, 1)
	if err == nil {
		t.Fatalf("expected inactive product to be rejected")
	}
	if code := serviceErrorCode(t, err); code != CodeProductNotFound {
		t.Fatalf("expected %s, got %s", CodeProductNotFound, code)
	}
}

func TestUpdateItemZeroQuantityRejected(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "Smart Watch", 200, 10, true)

	detail, err := svc.AddItem(1, product.ID, 2)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	_, err = svc.UpdateItem(1, detail.Items[0].ID, 0)
	if err == nil || !strings.Contains(err.Error(), "must be greater than 0") {
		t.Fatalf("expected positive quantity error, got: %v", err)
	}
}

func TestUpdateItemOwnership(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "Backpack", 80, 10, true)

	detail, err := svc.AddItem(1, product.ID, 1)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if _, err := svc.UpdateItem(2, detail.Items[0].ID, 3); !errors.Is(err, ErrUnauthorizedCartAccess) {
		t.Fatalf("expected unauthorized cart access, got: %v", err)
	}
	if _, err := svc.RemoveItem(2, detail.Items[0].ID); !errors.Is(err, ErrUnauthorizedCartAccess) {
		t.Fatalf("expected unauthorized cart access on remove, got: %v", err)
	}
	if _, err := svc.UpdateItem(1, 9999, 3); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected cart item not found, got: %v", err)
	}
}

func TestUpdateItemChecksFreshStock(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "Power Bank", 50, 10, true)

	detail, err := svc.AddItem(1, product.ID, 2)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("stock", 3).Error; err != nil {
		t.Fatalf("update stock failed: %v", err)
	}

	_, err = svc.UpdateItem(1, detail.Items[0].ID, 5)
	if err == nil {
		t.Fatalf("expected stock check to reject update")
	}
	if code := serviceErrorCode(t, err); code != CodeInsufficientStock {
		t.Fatalf("expected %s, got %s", CodeInsufficientStock, code)
	}

	updated, err := svc.UpdateItem(1, detail.Items[0].ID, 3)
	if err != nil {
		t.Fatalf("update within stock failed: %v", err)
	}
	if updated.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", updated.Items[0].Quantity)
	}
}

func TestClearCartIdempotent(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	p1 := createCartTestProduct(t, db, "Earphones", 100, 50, true)
	p2 := createCartTestProduct(t, db, "Smart Watch", 200, 50, true)

	if _, err := svc.AddItem(1, p1.ID, 1); err != nil {
		t.Fatalf("add p1 failed: %v", err)
	}
	if _, err := svc.AddItem(1, p2.ID, 2); err != nil {
		t.Fatalf("add p2 failed: %v", err)
	}

	removed, err := svc.ClearCart(1)
	if err != nil {
		t.Fatalf("first clear failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed items, got %d", removed)
	}

	removed, err = svc.ClearCart(1)
	if err != nil {
		t.Fatalf("second clear failed: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected 0 removed items on repeat clear, got %d", removed)
	}

	// 从未有过购物车的客户同样幂等
	removed, err = svc.ClearCart(42)
	if err != nil || removed != 0 {
		t.Fatalf("expected no-op clear for unknown customer, removed=%d err=%v", removed, err)
	}
}

// countingCartRepository 统计底层读库次数，用于验证缓存命中
type countingCartRepository struct {
	repository.CartRepository
	activeFetches     int
	fetchesByCustomer map[uint]int
}

func (r *countingCartRepository) GetActiveByCustomer(customerID uint) (*models.Cart, error) {
	r.activeFetches++
	if r.fetchesByCustomer == nil {
		r.fetchesByCustomer = map[uint]int{}
	}
	r.fetchesByCustomer[customerID]++
	return r.CartRepository.GetActiveByCustomer(customerID)
}

func TestGetOrCreateCartServesSecondReadFromCache(t *testing.T) {
	db := openCartTestDB(t)
	counting := &countingCartRepository{CartRepository: repository.NewCartRepository(db)}
	products := NewProductService(repository.NewProductRepository(db))
	svc := NewCartService(counting, products, nil, time.Minute, time.Hour)

	if _, err := svc.GetOrCreateCart(1); err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	first := counting.activeFetches

	if _, err := svc.GetOrCreateCart(1); err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if counting.activeFetches != first {
		t.Fatalf("second read should hit cache, fetches went %d -> %d", first, counting.activeFetches)
	}

	// 写路径失效缓存后需要重新读库
	product := createCartTestProduct(t, db, "Earphones", 100, 50, true)
	if _, err := svc.AddItem(1, product.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	afterWrite := counting.activeFetches
	if afterWrite == first {
		t.Fatalf("write path should have re-read the database")
	}
}

func TestCartMutationKeepsOtherCustomersCacheWarm(t *testing.T) {
	db := openCartTestDB(t)
	counting := &countingCartRepository{CartRepository: repository.NewCartRepository(db)}
	products := NewProductService(repository.NewProductRepository(db))
	svc := NewCartService(counting, products, nil, time.Minute, time.Hour)
	product := createCartTestProduct(t, db, "Earphones", 100, 50, true)

	// 预热客户 10 的缓存。客户 id 取 1 与 10：键 "…:1" 是 "…:10" 的字符串前缀
	if _, err := svc.GetOrCreateCart(10); err != nil {
		t.Fatalf("warm read failed: %v", err)
	}
	warmed := counting.fetchesByCustomer[10]

	if _, err := svc.AddItem(1, product.ID, 1); err != nil {
		t.Fatalf("add for customer 1 failed: %v", err)
	}

	if _, err := svc.GetOrCreateCart(10); err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if got := counting.fetchesByCustomer[10]; got != warmed {
		t.Fatalf("customer 1's mutation must not evict customer 10's cache, fetches went %d -> %d", warmed, got)
	}
}

func TestValidateCartReportsErrorsAndWarnings(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	unavailable := createCartTestProduct(t, db, "Discontinued", 10, 10, true)
	soldOut := createCartTestProduct(t, db, "Sold Out Hub", 20, 10, true)
	short := createCartTestProduct(t, db, "Short Stock", 30, 10, true)
	repriced := createCartTestProduct(t, db, "Repriced Watch", 100, 50, true)

	for _, add := range []struct {
		productID uint
		quantity  int
	}{
		{unavailable.ID, 1},
		{soldOut.ID, 1},
		{short.ID, 5},
		{repriced.ID, 2},
	} {
		if _, err := svc.AddItem(1, add.productID, add.quantity); err != nil {
			t.Fatalf("add product %d failed: %v", add.productID, err)
		}
	}

	// 加购后商品状态发生变化
	if err := db.Model(&models.Product{}).Where("id = ?", unavailable.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if err := db.Model(&models.Product{}).Where("id = ?", soldOut.ID).Update("stock", 0).Error; err != nil {
		t.Fatalf("zero stock failed: %v", err)
	}
	if err := db.Model(&models.Product{}).Where("id = ?", short.ID).Update("stock", 2).Error; err != nil {
		t.Fatalf("reduce stock failed: %v", err)
	}
	if err := db.Model(&models.Product{}).Where("id = ?", repriced.ID).
		Update("price_amount", models.NewMoneyFromDecimal(decimal.NewFromInt(120))).Error; err != nil {
		t.Fatalf("reprice failed: %v", err)
	}

	result, err := svc.ValidateCart(1)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if result.IsValid {
		t.Fatalf("expected invalid cart")
	}
	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %d: %+v", len(result.Errors), result.Errors)
	}

	errorTypes := map[uint]string{}
	for _, issue := range result.Errors {
		errorTypes[issue.ProductID] = issue.Type
	}
	if errorTypes[unavailable.ID] != "product_unavailable" {
		t.Fatalf("expected product_unavailable for %d, got %s", unavailable.ID, errorTypes[unavailable.ID])
	}
	if errorTypes[soldOut.ID] != "out_of_stock" {
		t.Fatalf("expected out_of_stock for %d, got %s", soldOut.ID, errorTypes[soldOut.ID])
	}
	if errorTypes[short.ID] != "insufficient_stock" {
		t.Fatalf("expected insufficient_stock for %d, got %s", short.ID, errorTypes[short.ID])
	}
	for _, issue := range result.Errors {
		if issue.ProductID == short.ID {
			if issue.Available != 2 || issue.Requested != 5 {
				t.Fatalf("unexpected stock detail: %+v", issue)
			}
		}
	}

	var priceWarning *CartIssue
	for i := range result.Warnings {
		if result.Warnings[i].Type == "price_increase" {
			priceWarning = &result.Warnings[i]
		}
	}
	if priceWarning == nil {
		t.Fatalf("expected price_increase warning, got: %+v", result.Warnings)
	}
	if priceWarning.OldPrice == nil || priceWarning.OldPrice.String() != "100.00" {
		t.Fatalf("unexpected old price: %+v", priceWarning.OldPrice)
	}
	if priceWarning.NewPrice == nil || priceWarning.NewPrice.String() != "120.00" {
		t.Fatalf("unexpected new price: %+v", priceWarning.NewPrice)
	}
	if !strings.Contains(priceWarning.Message, "increased from 100.00 to 120.00") {
		t.Fatalf("unexpected price warning message: %s", priceWarning.Message)
	}
}

func TestValidateCartLowStockWarningKeepsCartValid(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "Almost Gone", 40, 4, true)

	if _, err := svc.AddItem(1, product.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	result, err := svc.ValidateCart(1)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("warnings must not invalidate the cart: %+v", result.Errors)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Type != "low_stock" {
		t.Fatalf("expected single low_stock warning, got: %+v", result.Warnings)
	}
	if result.Warnings[0].Available != 4 {
		t.Fatalf("expected available 4, got %d", result.Warnings[0].Available)
	}
}

func TestValidateCartEmptyIsValid(t *testing.T) {
	svc, _ := setupCartServiceTest(t)

	result, err := svc.ValidateCart(7)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !result.IsValid || len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Fatalf("expected empty valid result, got: %+v", result)
	}
}
