package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/auth"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/service"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/utils"
)

// ProductController 产品控制器
type ProductController struct {
	productService service.ProductService
}

// NewProductController 创建产品控制器
func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// validateProductID 验证产品 ID 并返回错误响应（如果无效）
func (c *ProductController) validateProductID(ctx *gin.Context, id string) bool {
	if err := utils.ValidateResourceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid product ID", err.Error())
		return false
	}
	return true
}

// Create 创建产品
func (c *ProductController) Create(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)

	var req service.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := utils.ValidateProductName(req.Name); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid product name", err.Error())
		return
	}
	req.Name, _ = utils.TrimAndValidate(req.Name, 255)

	product, err := c.productService.Create(identity.BusinessID, &req)
	if err != nil {
		serviceError(ctx, err, "product", "create product")
		return
	}

	Success(ctx, product)
}

// Get 获取产品详情
func (c *ProductController) Get(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)
	id := ctx.Param("id")
	if !c.validateProductID(ctx, id) {
		return
	}

	product, err := c.productService.Get(identity.BusinessID, id)
	if err != nil {
		serviceError(ctx, err, "product", "get product")
		return
	}

	Success(ctx, product)
}

// List 查询产品列表
func (c *ProductController) List(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)

	products, err := c.productService.List(identity.BusinessID)
	if err != nil {
		serviceError(ctx, err, "product", "list products")
		return
	}

	Success(ctx, products)
}

// Update 更新产品
func (c *ProductController) Update(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)
	id := ctx.Param("id")
	if !c.validateProductID(ctx, id) {
		return
	}

	var req service.UpdateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if req.Name != nil {
		if err := utils.ValidateProductName(*req.Name); err != nil {
			Error(ctx, http.StatusBadRequest, "invalid product name", err.Error())
			return
		}
	}

	product, err := c.productService.Update(identity.BusinessID, id, &req)
	if err != nil {
		serviceError(ctx, err, "product", "update product")
		return
	}

	Success(ctx, product)
}

// Delete 删除产品
func (c *ProductController) Delete(ctx *gin.Context) {
	identity := auth.CurrentIdentity(ctx)
	id := ctx.Param("id")
	if !c.validateProductID(ctx, id) {
		return
	}

	if err := c.productService.Delete(identity.BusinessID, id); err != nil {
		serviceError(ctx, err, "product", "delete product")
		return
	}

	SuccessWithMessage(ctx, "product deleted", nil)
}
