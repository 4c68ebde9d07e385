package service

import (
	"fmt"

	"github.com/quickcart-next/internal/models"
	"github.com/quickcart-next/internal/repository"
)

// ProductLookup 商品读取接口：购物车与结算只依赖该最小面
type ProductLookup interface {
	GetProduct(productID uint) (*models.Product, error)
}

// ProductService 商品业务服务
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// GetProduct 按 ID 读取商品；不存在返回 PRODUCT_NOT_FOUND，底层故障原样上抛
func (s *ProductService) GetProduct(productID uint) (*models.Product, error) {
	if productID == 0 {
		return nil, NewError(CodeValidationError, "Product id is required.")
	}
	product, err := s.repo.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	if product == nil {
		return nil, NewError(CodeProductNotFound, "Product %d not found.", productID)
	}
	return product, nil
}

// ProductListResult 商品列表结果
type ProductListResult struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// ListPublic 获取公开商品列表（仅上架商品）
func (s *ProductService) ListPublic(search string, page, pageSize int) (*ProductListResult, error) {
	filter := repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     search,
		OnlyActive: true,
	}
	products, total, err := s.repo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &ProductListResult{
		Products: products,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// GetPublicByID 获取公开商品详情；下架商品对外视为不存在
func (s *ProductService) GetPublicByID(productID uint) (*models.Product, error) {
	product, err := s.GetProduct(productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, NewError(CodeProductNotFound, "Product %d not found.", productID)
	}
	return product, nil
}
