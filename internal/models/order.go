package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                      // 主键
	OrderNo           string         `gorm:"uniqueIndex;not null" json:"order_no"`                      // 订单编号
	CustomerID        uint           `gorm:"index;not null" json:"customer_id"`                         // 客户ID
	ShippingAddressID uint           `gorm:"index" json:"shipping_address_id"`                          // 收货地址ID
	Status            string         `gorm:"index;not null" json:"status"`                              // 订单状态
	TotalAmount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 实付金额（含运费）
	DeliveryFee       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"delivery_fee"` // 运费
	PaymentMethod     string         `gorm:"type:varchar(32)" json:"payment_method"`                    // 支付方式（仅记录）
	Notes             string         `gorm:"type:text" json:"notes"`                                    // 订单备注
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
