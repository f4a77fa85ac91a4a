package controller

import (
	"mdla_service/internal/model"
	"mdla_service/internal/service"
	"mdla_service/internal/util"

	"github.com/gin-gonic/gin"
)

type SourcingController struct {
	SourcingService *service.SourcingService
}

func NewSourcingController(sourcingService *service.SourcingService) *SourcingController {
	return &SourcingController{SourcingService: sourcingService}
}

// @Summary Ask the transit team to source a product
// @Tags Sourcing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SourcingRequestInput true "Request"
// @Success 201 {object} util.Response{data=model.SourcingRequest}
// @Router /api/sourcing [post]
func (c *SourcingController) Create(ctx *gin.Context) {
	var req service.SourcingRequestInput
	if !bindJSON(ctx, &req) {
		return
	}
	sr, err := c.SourcingService.Create(currentActor(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, sr)
}

// @Summary List sourcing requests
// @Tags Sourcing
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/sourcing [get]
func (c *SourcingController) List(ctx *gin.Context) {
	page, pageSize := util.Pagination(ctx)
	list, total, err := c.SourcingService.List(currentActor(ctx), model.SourcingStatus(ctx.Query("status")), page, pageSize)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPage(list, total, page, pageSize))
}

// @Summary Quote a sourcing request
// @Tags Sourcing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body service.SourcingOfferRequest true "Offer"
// @Success 200 {object} util.Response{data=model.SourcingRequest}
// @Router /api/sourcing/{id}/offer [put]
func (c *SourcingController) Offer(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.SourcingOfferRequest
	if !bindJSON(ctx, &req) {
		return
	}
	sr, err := c.SourcingService.SubmitOffer(currentActor(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sr)
}

// @Summary Accept or decline an offer
// @Tags Sourcing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body service.SourcingResponseRequest true "Decision"
// @Success 200 {object} util.Response{data=model.SourcingRequest}
// @Router /api/sourcing/{id}/respond [put]
func (c *SourcingController) Respond(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.SourcingResponseRequest
	if !bindJSON(ctx, &req) {
		return
	}
	sr, err := c.SourcingService.Respond(currentActor(ctx), id, *req.Accept)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sr)
}

// @Summary Close a sourcing request
// @Tags Sourcing
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} util.Response{data=model.SourcingRequest}
// @Router /api/sourcing/{id}/close [put]
func (c *SourcingController) Close(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	sr, err := c.SourcingService.Close(currentActor(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sr)
}
