package main

import (
	"fmt"
	"time"

	"github.com/quickcart-next/internal/config"
	"github.com/quickcart-next/internal/logger"
	"github.com/quickcart-next/internal/models"
	"github.com/quickcart-next/internal/service"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 演示客户
	passwordHash, err := bcrypt.GenerateFromPassword([]byte("demo123456"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash demo password: %v", err)
	}
	customer := models.Customer{
		Email:        "demo@quickcart.dev",
		PasswordHash: string(passwordHash),
		FirstName:    "Demo",
		LastName:     "Customer",
	}
	var existingCustomer models.Customer
	if err := models.DB.Where("email = ?", customer.Email).First(&existingCustomer).Error; err != nil {
		if err := models.DB.Create(&customer).Error; err != nil {
			stdLog.Fatalf("Failed to create demo customer: %v", err)
		}
		stdLog.Printf("Created customer: %s", customer.Email)
	} else {
		customer = existingCustomer
		stdLog.Printf("Customer already exists: %s", customer.Email)
	}

	// 收货地址（一个默认，一个备用）
	addresses := []models.ShippingAddress{
		{
			CustomerID:    customer.ID,
			RecipientName: "Demo Customer",
			Phone:         "+1-555-0100",
			Line1:         "1 Market Street",
			City:          "San Francisco",
			State:         "CA",
			PostalCode:    "94105",
			Country:       "US",
			IsDefault:     true,
		},
		{
			CustomerID:    customer.ID,
			RecipientName: "Demo Customer",
			Phone:         "+1-555-0101",
			Line1:         "200 Congress Ave",
			Line2:         "Suite 12",
			City:          "Austin",
			State:         "TX",
			PostalCode:    "78701",
			Country:       "US",
			IsDefault:     false,
		},
	}
	for _, addr := range addresses {
		var existing models.ShippingAddress
		if err := models.DB.Where("customer_id = ? AND line1 = ?", addr.CustomerID, addr.Line1).First(&existing).Error; err != nil {
			if err := models.DB.Create(&addr).Error; err != nil {
				stdLog.Printf("Failed to create address %s: %v", addr.Line1, err)
			} else {
				stdLog.Printf("Created address: %s", addr.Line1)
			}
		} else {
			stdLog.Printf("Address already exists: %s", addr.Line1)
		}
	}

	// 演示商品（覆盖上架/下架、零库存、低库存等状态）
	products := []models.Product{
		{
			Name:        "Wireless Bluetooth Earphones",
			Description: "High quality sound, long battery life, comfortable to wear.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99)),
			Stock:       120,
			IsActive:    true,
			SortOrder:   300,
		},
		{
			Name:        "Smart Watch",
			Description: "Health monitoring, fitness tracking, message notifications.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(199.99)),
			Stock:       45,
			IsActive:    true,
			SortOrder:   280,
		},
		{
			Name:        "Portable Power Bank",
			Description: "High capacity, fast charging, multi-device compatible.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(49.99)),
			Stock:       4,
			IsActive:    true,
			SortOrder:   260,
		},
		{
			Name:        "Multi-function Backpack",
			Description: "Large capacity, waterproof and anti-theft, USB charging port.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(79.99)),
			Stock:       0,
			IsActive:    true,
			SortOrder:   240,
		},
		{
			Name:        "Retired USB Hub",
			Description: "Discontinued model, no longer available for sale.",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(19.99)),
			Stock:       30,
			IsActive:    false,
			SortOrder:   100,
		},
	}
	for _, prod := range products {
		var existing models.Product
		if err := models.DB.Where("name = ?", prod.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Name, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Name)
			}
		} else {
			existing.Description = prod.Description
			existing.PriceAmount = prod.PriceAmount
			existing.Stock = prod.Stock
			existing.IsActive = prod.IsActive
			existing.SortOrder = prod.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Name, err)
			} else {
				stdLog.Printf("Updated product: %s", prod.Name)
			}
		}
	}

	// 开发用令牌（线上令牌由外部身份系统签发）
	token, err := service.GenerateCustomerToken(cfg.JWT.SecretKey, customer.ID, customer.Email, 24*time.Hour)
	if err != nil {
		stdLog.Printf("Failed to generate dev token: %v", err)
	}

	fmt.Println("\n✅ Demo data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 1 Customer (demo@quickcart.dev / demo123456)")
	fmt.Println("- 2 Shipping addresses (1 default)")
	fmt.Println("- 5 Products (active, low stock, sold out, inactive)")
	if token != "" {
		fmt.Printf("\nDev token (24h):\n%s\n", token)
	}
}
