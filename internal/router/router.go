package router

import (
	"fmt"
	"strings"

	"github.com/quickcart-next/internal/cache"
	"github.com/quickcart-next/internal/config"
	"github.com/quickcart-next/internal/constants"
	publichandlers "github.com/quickcart-next/internal/http/handlers/public"
	"github.com/quickcart-next/internal/logger"
	"github.com/quickcart-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	cartWriteRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:cart_write", redisPrefix),
		WindowSeconds: cfg.RateLimit.WindowSeconds,
		MaxRequests:   cfg.RateLimit.MaxRequests,
	}
	if !cfg.RateLimit.Enabled {
		redisClient = nil
	}
	cartWriteLimiter := RateLimitMiddleware(redisClient, cartWriteRule, KeyByCustomer)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	api := r.Group("/api")
	{
		// 公开接口
		api.GET("/products", publicHandler.ListProducts)
		api.GET("/products/:product_id", publicHandler.GetProduct)

		// 客户接口（需鉴权）
		customer := api.Group("")
		customer.Use(CustomerJWTAuthMiddleware(cfg.JWT.SecretKey, c.CustomerRepo))
		{
			customer.GET("/cart", publicHandler.GetCart)
			customer.POST("/cart/items", cartWriteLimiter, publicHandler.AddCartItem)
			customer.PUT("/cart/items/:item_id", cartWriteLimiter, publicHandler.UpdateCartItem)
			customer.DELETE("/cart/items/:item_id", cartWriteLimiter, publicHandler.DeleteCartItem)
			customer.DELETE("/cart", cartWriteLimiter, publicHandler.ClearCart)
			customer.GET("/cart/validate", publicHandler.ValidateCart)
			customer.GET("/cart/cache/stats", publicHandler.CartCacheStats)

			customer.GET("/checkout/details", publicHandler.GetCheckoutDetails)
			customer.POST("/checkout/orders", cartWriteLimiter, publicHandler.CreateOrder)
			customer.GET("/orders", publicHandler.ListOrders)
			customer.GET("/orders/:order_id", publicHandler.GetOrder)
			customer.DELETE("/orders/:order_id", publicHandler.DeleteOrder)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
