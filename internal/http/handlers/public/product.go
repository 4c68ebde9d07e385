package public

import (
	"github.com/quickcart-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListProducts 公开商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := pageParams(c)
	search := c.Query("search")

	result, err := h.ProductService.ListPublic(search, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (result.Total + int64(pageSize) - 1) / int64(pageSize)
	}
	response.OKWithPage(c, result.Products, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     result.Total,
		TotalPage: totalPage,
	})
}

// GetProduct 公开商品详情；下架商品视为不存在
func (h *Handler) GetProduct(c *gin.Context) {
	productID, ok := pathID(c, "product_id")
	if !ok {
		return
	}

	product, err := h.ProductService.GetPublicByID(productID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.OK(c, product)
}
