package controller

import (
	"mdla_service/internal/model"
	"mdla_service/internal/service"
	"mdla_service/internal/util"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	OrderService *service.OrderService
}

func NewOrderController(orderService *service.OrderService) *OrderController {
	return &OrderController{OrderService: orderService}
}

// @Summary Place an order
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.PlaceOrderRequest true "Order"
// @Success 201 {object} util.Response{data=model.Order}
// @Failure 409 {object} util.Response "Insufficient stock"
// @Router /api/orders [post]
func (c *OrderController) Place(ctx *gin.Context) {
	var req service.PlaceOrderRequest
	if !bindJSON(ctx, &req) {
		return
	}
	order, err := c.OrderService.Place(currentActor(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, order)
}

// @Summary List orders
// @Description Staff see every order, clients their own.
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "Order status"
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/orders [get]
func (c *OrderController) List(ctx *gin.Context) {
	page, pageSize := util.Pagination(ctx)
	orders, total, err := c.OrderService.List(currentActor(ctx), model.OrderStatus(ctx.Query("status")), page, pageSize)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPage(orders, total, page, pageSize))
}

// @Summary Get an order
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} util.Response{data=model.Order}
// @Router /api/orders/{id} [get]
func (c *OrderController) Get(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	order, err := c.OrderService.Get(currentActor(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, order)
}

// @Summary Move an order along its lifecycle
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param body body service.OrderStatusRequest true "Target status"
// @Success 200 {object} util.Response{data=model.Order}
// @Failure 409 {object} util.Response
// @Router /api/orders/{id}/status [put]
func (c *OrderController) UpdateStatus(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.OrderStatusRequest
	if !bindJSON(ctx, &req) {
		return
	}
	order, err := c.OrderService.UpdateStatus(currentActor(ctx), id, req.Status)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, order)
}

// @Summary Cancel an order and restore stock
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} util.Response{data=model.Order}
// @Router /api/orders/{id}/cancel [post]
func (c *OrderController) Cancel(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	order, err := c.OrderService.Cancel(currentActor(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, order)
}
