package repository

import (
	"errors"
	"time"

	"github.com/quickcart-next/internal/constants"
	"github.com/quickcart-next/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口；查询未命中返回 (nil, nil)，与底层错误区分
type CartRepository interface {
	GetActiveByCustomer(customerID uint) (*models.Cart, error)
	GetByID(cartID uint) (*models.Cart, error)
	Create(cart *models.Cart) error
	GetItemByID(itemID uint) (*models.CartItem, error)
	GetItemByCartAndProduct(cartID, productID uint) (*models.CartItem, error)
	CreateItem(item *models.CartItem) error
	UpdateItemQuantity(itemID uint, quantity int) error
	DeleteItem(itemID uint) error
	ClearItems(cartID uint) (int64, error)
	DeleteItemsByCustomer(customerID uint) error
	MarkExpired(cartID uint, expiredAt time.Time) error
	ListExpired(before time.Time, limit int) ([]models.Cart, error)
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetActiveByCustomer 获取客户当前的 active 购物车；并发下出现多行时取最新一行
func (r *GormCartRepository) GetActiveByCustomer(customerID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC, cart_items.id ASC")
		}).
		Preload("Items.Product").
		Where("customer_id = ? AND status = ?", customerID, constants.CartStatusActive).
		Order("created_at DESC, id DESC").
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// GetByID 根据 ID 获取购物车
func (r *GormCartRepository) GetByID(cartID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items").Preload("Items.Product").First(&cart, cartID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// Create 创建购物车
func (r *GormCartRepository) Create(cart *models.Cart) error {
	return r.db.Create(cart).Error
}

// GetItemByID 根据 ID 获取购物车项（带所属购物车与商品）
func (r *GormCartRepository) GetItemByID(itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Preload("Cart").Preload("Product").First(&item, itemID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetItemByCartAndProduct 查找购物车内指定商品的条目
func (r *GormCartRepository) GetItemByCartAndProduct(cartID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// CreateItem 新增购物车项
func (r *GormCartRepository) CreateItem(item *models.CartItem) error {
	return r.db.Create(item).Error
}

// UpdateItemQuantity 更新购物车项数量
func (r *GormCartRepository) UpdateItemQuantity(itemID uint, quantity int) error {
	return r.db.Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		}).Error
}

// DeleteItem 删除购物车项
func (r *GormCartRepository) DeleteItem(itemID uint) error {
	return r.db.Unscoped().Delete(&models.CartItem{}, itemID).Error
}

// ClearItems 清空购物车项，返回删除行数
func (r *GormCartRepository) ClearItems(cartID uint) (int64, error) {
	result := r.db.Unscoped().Where("cart_id = ?", cartID).Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

// DeleteItemsByCustomer 删除客户全部购物车项（下单成功后清空）
func (r *GormCartRepository) DeleteItemsByCustomer(customerID uint) error {
	subQuery := r.db.Model(&models.Cart{}).Select("id").Where("customer_id = ?", customerID)
	return r.db.Unscoped().Where("cart_id IN (?)", subQuery).Delete(&models.CartItem{}).Error
}

// ListExpired 列出已过既定过期时间但仍为 active 的购物车（兜底扫描用）
func (r *GormCartRepository) ListExpired(before time.Time, limit int) ([]models.Cart, error) {
	if limit <= 0 {
		limit = 100
	}
	var carts []models.Cart
	err := r.db.
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", constants.CartStatusActive, before).
		Order("expires_at ASC").
		Limit(limit).
		Find(&carts).Error
	if err != nil {
		return nil, err
	}
	return carts, nil
}

// MarkExpired 将购物车标记为已过期
func (r *GormCartRepository) MarkExpired(cartID uint, expiredAt time.Time) error {
	return r.db.Model(&models.Cart{}).
		Where("id = ? AND status = ?", cartID, constants.CartStatusActive).
		Updates(map[string]interface{}{
			"status":     constants.CartStatusExpired,
			"updated_at": expiredAt,
		}).Error
}
