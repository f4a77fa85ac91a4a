package controller

import (
	"mdla_service/internal/service"
	"mdla_service/internal/util"

	"github.com/gin-gonic/gin"
)

type CurriculumController struct {
	CurriculumService *service.CurriculumService
}

func NewCurriculumController(curriculumService *service.CurriculumService) *CurriculumController {
	return &CurriculumController{CurriculumService: curriculumService}
}

// @Summary Ordered modules and items of a course
// @Tags Curriculum
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} util.Response{data=[]model.Module}
// @Router /api/curriculum/courses/{courseId} [get]
func (c *CurriculumController) GetCurriculum(ctx *gin.Context) {
	courseID, ok := util.ParamID(ctx, "courseId")
	if !ok {
		return
	}
	modules, err := c.CurriculumService.GetCurriculum(currentActor(ctx), courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, modules)
}

// @Summary Replace the whole curriculum
// @Description Modules and items without an id are created, listed ones updated and missing ones deleted.
// @Tags Curriculum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Param body body service.SaveCurriculumRequest true "Curriculum"
// @Success 200 {object} util.Response{data=service.CurriculumSyncResult}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/curriculum/courses/{courseId} [put]
func (c *CurriculumController) SaveCurriculum(ctx *gin.Context) {
	courseID, ok := util.ParamID(ctx, "courseId")
	if !ok {
		return
	}
	var req service.SaveCurriculumRequest
	if !bindJSON(ctx, &req) {
		return
	}
	result, err := c.CurriculumService.SaveCurriculum(currentActor(ctx), courseID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Add a module to a course
// @Tags Curriculum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Param body body service.ModuleRequest true "Module"
// @Success 201 {object} util.Response{data=model.Module}
// @Router /api/curriculum/courses/{courseId}/modules [post]
func (c *CurriculumController) CreateModule(ctx *gin.Context) {
	courseID, ok := util.ParamID(ctx, "courseId")
	if !ok {
		return
	}
	var req service.ModuleRequest
	if !bindJSON(ctx, &req) {
		return
	}
	module, err := c.CurriculumService.CreateModule(currentActor(ctx), courseID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, module)
}

// @Summary Rename or reorder a module
// @Tags Curriculum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Param body body service.ModuleUpdateRequest true "Fields to change"
// @Success 200 {object} util.Response{data=model.Module}
// @Router /api/curriculum/modules/{id} [put]
func (c *CurriculumController) UpdateModule(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.ModuleUpdateRequest
	if !bindJSON(ctx, &req) {
		return
	}
	module, err := c.CurriculumService.UpdateModule(currentActor(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// @Summary Delete a module and its items
// @Tags Curriculum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Success 200 {object} util.Response
// @Router /api/curriculum/modules/{id} [delete]
func (c *CurriculumController) DeleteModule(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CurriculumService.DeleteModule(currentActor(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Add an item to a module
// @Tags Curriculum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path int true "Module ID"
// @Param body body service.ItemRequest true "Item"
// @Success 201 {object} util.Response{data=model.CurriculumItem}
// @Router /api/curriculum/modules/{moduleId}/items [post]
func (c *CurriculumController) CreateItem(ctx *gin.Context) {
	moduleID, ok := util.ParamID(ctx, "moduleId")
	if !ok {
		return
	}
	var req service.ItemRequest
	if !bindJSON(ctx, &req) {
		return
	}
	item, err := c.CurriculumService.CreateItem(currentActor(ctx), moduleID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, item)
}

// @Summary Update, reorder or move an item
// @Tags Curriculum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param body body service.ItemUpdateRequest true "Fields to change"
// @Success 200 {object} util.Response{data=model.CurriculumItem}
// @Router /api/curriculum/items/{id} [put]
func (c *CurriculumController) UpdateItem(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.ItemUpdateRequest
	if !bindJSON(ctx, &req) {
		return
	}
	item, err := c.CurriculumService.UpdateItem(currentActor(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, item)
}

// @Summary Delete an item
// @Tags Curriculum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Success 200 {object} util.Response
// @Router /api/curriculum/items/{id} [delete]
func (c *CurriculumController) DeleteItem(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CurriculumService.DeleteItem(currentActor(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
