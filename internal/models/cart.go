package models

import (
	"time"

	"gorm.io/gorm"
)

// Cart 购物车表（每个客户同一时间只应有一个 active 购物车）
type Cart struct {
	ID         uint           `gorm:"primarykey" json:"id"`                          // 主键
	CustomerID uint           `gorm:"not null;index" json:"customer_id"`             // 客户ID
	Status     string         `gorm:"not null;default:'active';index" json:"status"` // 状态（active/expired）
	ExpiresAt  *time.Time     `gorm:"index" json:"expires_at"`                       // 闲置过期时间
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                       // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间

	Items []CartItem `gorm:"foreignKey:CartID" json:"items,omitempty"` // 购物车项
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}
