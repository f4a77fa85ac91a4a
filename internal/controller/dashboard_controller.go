package controller

import (
	"mdla_service/internal/service"
	"mdla_service/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// @Summary Role-specific dashboard
// @Description Learners get their enrollments, orders and sourcing requests. Teachers get their courses and enrollments. Transit staff get orders and open sourcing. Admins get platform totals.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.Dashboard}
// @Router /api/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	actor := currentActor(ctx)
	if actor.Anonymous() {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.DashboardService.Summary(actor)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}
