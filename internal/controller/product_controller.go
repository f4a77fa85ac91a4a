package controller

import (
	"mdla_service/internal/model"
	"mdla_service/internal/service"
	"mdla_service/internal/util"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	ProductService *service.ProductService
}

func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{ProductService: productService}
}

// @Summary Shop catalog
// @Tags Products
// @Produce json
// @Param category query string false "Category"
// @Param status query string false "Status, admins only"
// @Param search query string false "Name search"
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/products [get]
func (c *ProductController) List(ctx *gin.Context) {
	page, pageSize := util.Pagination(ctx)
	products, total, err := c.ProductService.List(currentActor(ctx), service.ProductFilter{
		Category: model.ProductCategory(ctx.Query("category")),
		Status:   model.ProductStatus(ctx.Query("status")),
		Search:   ctx.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPage(products, total, page, pageSize))
}

// @Summary Get a product
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} util.Response{data=model.Product}
// @Failure 404 {object} util.Response
// @Router /api/products/{id} [get]
func (c *ProductController) Get(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	product, err := c.ProductService.Get(currentActor(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, product)
}

// @Summary Create a product
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ProductRequest true "Product"
// @Success 201 {object} util.Response{data=model.Product}
// @Router /api/products [post]
func (c *ProductController) Create(ctx *gin.Context) {
	var req service.ProductRequest
	if !bindJSON(ctx, &req) {
		return
	}
	product, err := c.ProductService.Create(req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, product)
}

// @Summary Update a product
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param body body service.ProductRequest true "Product"
// @Success 200 {object} util.Response{data=model.Product}
// @Router /api/products/{id} [put]
func (c *ProductController) Update(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.ProductRequest
	if !bindJSON(ctx, &req) {
		return
	}
	product, err := c.ProductService.Update(id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, product)
}

// @Summary Delete a product
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} util.Response
// @Router /api/products/{id} [delete]
func (c *ProductController) Delete(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.ProductService.Delete(id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
