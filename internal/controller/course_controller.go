package controller

import (
	"mdla_service/internal/model"
	"mdla_service/internal/service"
	"mdla_service/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// List godoc
// @Summary List courses
// @Description Anonymous callers and clients only see published courses. Teachers see published courses and their own.
// @Tags Courses
// @Produce json
// @Param status query string false "draft, pending_review, published or rejected"
// @Param level query string false "Course level"
// @Param search query string false "Title search"
// @Param teacherId query int false "Teacher ID"
// @Param mine query bool false "Only the caller's courses"
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	page, pageSize := util.Pagination(ctx)
	courses, total, err := c.CourseService.List(currentActor(ctx), service.CourseFilter{
		Status:    model.CourseStatus(ctx.Query("status")),
		Level:     model.CourseLevel(ctx.Query("level")),
		Search:    ctx.Query("search"),
		TeacherID: util.MustParseUint(ctx.Query("teacherId")),
		Mine:      ctx.Query("mine") == "true",
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPage(courses, total, page, pageSize))
}

// Get godoc
// @Summary Course with its modules and items
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) Get(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.CourseService.Get(currentActor(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// Create godoc
// @Summary Create a draft course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CourseRequest true "Course"
// @Success 201 {object} util.Response{data=model.Course}
// @Router /api/courses [post]
func (c *CourseController) Create(ctx *gin.Context) {
	var req service.CourseRequest
	if !bindJSON(ctx, &req) {
		return
	}
	course, err := c.CourseService.Create(currentActor(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// Update godoc
// @Summary Update course fields
// @Description Teachers may only edit draft or rejected courses.
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param body body service.CourseRequest true "Course"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 409 {object} util.Response "Locked or stale version"
// @Router /api/courses/{id} [put]
func (c *CourseController) Update(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.CourseRequest
	if !bindJSON(ctx, &req) {
		return
	}
	course, err := c.CourseService.Update(currentActor(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// Submit godoc
// @Summary Submit a draft for review
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param body body service.VersionRequest false "Expected version"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 409 {object} util.Response
// @Router /api/courses/{id}/submit [post]
func (c *CourseController) Submit(ctx *gin.Context) {
	c.versioned(ctx, c.CourseService.Submit)
}

// Resubmit godoc
// @Summary Send a rejected course back to review
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param body body service.VersionRequest false "Expected version"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 409 {object} util.Response
// @Router /api/courses/{id}/resubmit [post]
func (c *CourseController) Resubmit(ctx *gin.Context) {
	c.versioned(ctx, c.CourseService.Resubmit)
}

func (c *CourseController) versioned(ctx *gin.Context, op func(service.Actor, uint, *int) (*model.Course, error)) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.VersionRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}
	course, err := op(currentActor(ctx), id, req.Version)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// Approve godoc
// @Summary Publish a course under review
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param body body service.ApproveRequest true "Price and discount percent"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 409 {object} util.Response
// @Router /api/courses/{id}/approve [post]
func (c *CourseController) Approve(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.ApproveRequest
	if !bindJSON(ctx, &req) {
		return
	}
	course, err := c.CourseService.Approve(currentActor(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// Reject godoc
// @Summary Reject a course under review
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param body body service.RejectRequest true "Reason"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /api/courses/{id}/reject [post]
func (c *CourseController) Reject(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.RejectRequest
	if !bindJSON(ctx, &req) {
		return
	}
	course, err := c.CourseService.Reject(currentActor(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// Delete godoc
// @Summary Delete a course with its curriculum and enrollments
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [delete]
func (c *CourseController) Delete(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CourseService.Delete(currentActor(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
