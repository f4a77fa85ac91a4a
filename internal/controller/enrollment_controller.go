package controller

import (
	"mdla_service/internal/model"
	"mdla_service/internal/service"
	"mdla_service/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// @Summary Enrollments of the current user
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.EnrollmentView}
// @Router /api/enrollments [get]
func (c *EnrollmentController) ListMine(ctx *gin.Context) {
	views, err := c.EnrollmentService.ListForUser(currentActor(ctx).UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, views)
}

// @Summary Enroll in a published course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.EnrollRequest true "Course and learning mode"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 409 {object} util.Response "Already enrolled"
// @Router /api/enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	var req service.EnrollRequest
	if !bindJSON(ctx, &req) {
		return
	}
	enrollment, err := c.EnrollmentService.Enroll(currentActor(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

// @Summary All enrollments
// @Description Admins see every enrollment, teachers those of their own courses.
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param userId query int false "Learner ID"
// @Param courseId query int false "Course ID"
// @Param status query string false "active or completed"
// @Param learningMode query string false "Learning mode"
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/enrollments/admin/all [get]
func (c *EnrollmentController) ListAll(ctx *gin.Context) {
	page, pageSize := util.Pagination(ctx)
	views, total, err := c.EnrollmentService.ListAll(currentActor(ctx), service.EnrollmentFilter{
		UserID:       util.MustParseUint(ctx.Query("userId")),
		CourseID:     util.MustParseUint(ctx.Query("courseId")),
		Status:       model.EnrollmentStatus(ctx.Query("status")),
		LearningMode: model.LearningMode(ctx.Query("learningMode")),
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPage(views, total, page, pageSize))
}

// @Summary Enrollment statistics
// @Description Platform wide for admins, limited to the caller's courses for teachers.
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.EnrollmentStats}
// @Router /api/enrollments/admin/stats [get]
func (c *EnrollmentController) Stats(ctx *gin.Context) {
	actor := currentActor(ctx)
	var teacherID uint
	if !actor.IsAdmin() {
		teacherID = actor.UserID
	}
	stats, err := c.EnrollmentService.Stats(teacherID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary Mark an item as completed
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param body body service.CompleteItemRequest true "Item"
// @Success 200 {object} util.Response{data=service.EnrollmentProgress}
// @Router /api/enrollments/{id}/progress [post]
func (c *EnrollmentController) RecordProgress(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.CompleteItemRequest
	if !bindJSON(ctx, &req) {
		return
	}
	progress, err := c.EnrollmentService.RecordLessonCompletion(currentActor(ctx), id, req.ItemID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary Progress of an enrollment
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} util.Response{data=service.EnrollmentProgress}
// @Router /api/enrollments/{id}/progress [get]
func (c *EnrollmentController) Progress(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	progress, err := c.EnrollmentService.Progress(currentActor(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
