package controller

import (
	"mdla_service/internal/model"
	"mdla_service/internal/service"
	"mdla_service/internal/util"

	"github.com/gin-gonic/gin"
)

type ContactController struct {
	ContactService *service.ContactService
}

func NewContactController(contactService *service.ContactService) *ContactController {
	return &ContactController{ContactService: contactService}
}

// @Summary Send a message to the staff
// @Tags Contact
// @Accept json
// @Produce json
// @Param body body service.ContactRequest true "Message"
// @Success 201 {object} util.Response{data=model.ContactMessage}
// @Router /api/contact [post]
func (c *ContactController) Submit(ctx *gin.Context) {
	var req service.ContactRequest
	if !bindJSON(ctx, &req) {
		return
	}
	msg, err := c.ContactService.Submit(req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, msg)
}

// @Summary List contact messages
// @Tags Contact
// @Produce json
// @Security BearerAuth
// @Param status query string false "new, read, replied or archived"
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/contact [get]
func (c *ContactController) List(ctx *gin.Context) {
	page, pageSize := util.Pagination(ctx)
	messages, total, err := c.ContactService.List(model.ContactStatus(ctx.Query("status")), page, pageSize)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPage(messages, total, page, pageSize))
}

// @Summary Mark a message read or archived
// @Tags Contact
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Param body body service.ContactStatusRequest true "Status"
// @Success 200 {object} util.Response{data=model.ContactMessage}
// @Router /api/contact/{id}/status [put]
func (c *ContactController) UpdateStatus(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.ContactStatusRequest
	if !bindJSON(ctx, &req) {
		return
	}
	msg, err := c.ContactService.UpdateStatus(id, req.Status)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, msg)
}

// @Summary Delete a message
// @Tags Contact
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} util.Response
// @Router /api/contact/{id} [delete]
func (c *ContactController) Delete(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.ContactService.Delete(id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
