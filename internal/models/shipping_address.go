package models

import (
	"time"

	"gorm.io/gorm"
)

// ShippingAddress 收货地址表
type ShippingAddress struct {
	ID            uint           `gorm:"primarykey" json:"id"`                        // 主键
	CustomerID    uint           `gorm:"not null;index" json:"customer_id"`           // 客户ID
	RecipientName string         `gorm:"not null" json:"recipient_name"`              // 收件人姓名
	Phone         string         `gorm:"type:varchar(32)" json:"phone"`               // 联系电话
	Line1         string         `gorm:"not null" json:"line1"`                       // 地址行1
	Line2         string         `gorm:"default:''" json:"line2"`                     // 地址行2
	City          string         `gorm:"not null" json:"city"`                        // 城市
	State         string         `gorm:"default:''" json:"state"`                     // 省/州
	PostalCode    string         `gorm:"type:varchar(20)" json:"postal_code"`         // 邮编
	Country       string         `gorm:"type:varchar(64);not null" json:"country"`    // 国家
	IsDefault     bool           `gorm:"default:false;index" json:"is_default"`       // 是否默认地址
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                  // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间
}

// TableName 指定表名
func (ShippingAddress) TableName() string {
	return "shipping_addresses"
}
