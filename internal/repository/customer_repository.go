package repository

import (
	"errors"

	"github.com/quickcart-next/internal/models"

	"gorm.io/gorm"
)

// CustomerRepository 客户数据访问接口
type CustomerRepository interface {
	GetByID(id uint) (*models.Customer, error)
	GetByEmail(email string) (*models.Customer, error)
	Create(customer *models.Customer) error
	GetPreferredAddress(customerID uint) (*models.ShippingAddress, error)
	GetAddressByID(addressID uint) (*models.ShippingAddress, error)
	CreateAddress(address *models.ShippingAddress) error
	WithTx(tx *gorm.DB) CustomerRepository
}

// GormCustomerRepository GORM 实现
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建客户仓库
func NewCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCustomerRepository) WithTx(tx *gorm.DB) CustomerRepository {
	if tx == nil {
		return r
	}
	return &GormCustomerRepository{db: tx}
}

// GetByID 根据 ID 获取客户
func (r *GormCustomerRepository) GetByID(id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// GetByEmail 根据邮箱获取客户
func (r *GormCustomerRepository) GetByEmail(email string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.Where("email = ?", email).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// Create 创建客户
func (r *GormCustomerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

// GetPreferredAddress 获取结算用地址：默认地址优先，其次最新创建的地址
func (r *GormCustomerRepository) GetPreferredAddress(customerID uint) (*models.ShippingAddress, error) {
	var address models.ShippingAddress
	err := r.db.Where("customer_id = ?", customerID).
		Order("is_default DESC, created_at DESC, id DESC").
		First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// GetAddressByID 根据 ID 获取收货地址
func (r *GormCustomerRepository) GetAddressByID(addressID uint) (*models.ShippingAddress, error) {
	var address models.ShippingAddress
	if err := r.db.First(&address, addressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// CreateAddress 创建收货地址
func (r *GormCustomerRepository) CreateAddress(address *models.ShippingAddress) error {
	return r.db.Create(address).Error
}
