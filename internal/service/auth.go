package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomerJWTClaims 客户令牌声明。令牌由外部身份系统签发，
// 本服务只做校验与取值。
type CustomerJWTClaims struct {
	CustomerID uint   `json:"customer_id"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateCustomerToken 签发客户令牌（开发与演示数据用，线上签发在外部身份系统）
func GenerateCustomerToken(secretKey string, customerID uint, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := CustomerJWTClaims{
		CustomerID: customerID,
		Email:      email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}
