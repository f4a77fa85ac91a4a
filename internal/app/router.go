package app

import (
	"mdla_service/docs"
	"mdla_service/internal/config"
	"mdla_service/internal/middleware"
	"mdla_service/internal/model"
	"mdla_service/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. public and optionally authenticated routes
	a.registerPublicRoutes(router, c, cfg)

	// 2. everything else needs a token
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerAccountRoutes(authGroup, c)
		a.registerCourseRoutes(authGroup, c)
		a.registerCurriculumRoutes(authGroup, c)
		a.registerEnrollmentRoutes(authGroup, c)
		a.registerShopRoutes(authGroup, c)
	}

	// 3. admin back office
	a.registerAdminRoutes(authGroup, c)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
		public.POST("/contact", c.contact.Submit)
	}

	// catalog pages: anonymous visitors see published content, staff see more
	catalog := router.Group("/api")
	catalog.Use(middleware.TryAuthMiddleware(cfg))
	{
		catalog.GET("/courses", c.course.List)
		catalog.GET("/courses/:id", c.course.Get)
		catalog.GET("/products", c.product.List)
		catalog.GET("/products/:id", c.product.Get)
	}
}

func (a *App) registerAccountRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/auth/me", c.auth.Me)
	rg.GET("/dashboard", c.dashboard.GetDashboard)
	rg.GET("/users/:id", c.user.Get)
	rg.PUT("/users/:id", c.user.Update)

	upload := rg.Group("/upload")
	{
		upload.POST("", c.upload.Upload)
		upload.POST("/image", c.upload.UploadImage)
		upload.POST("/video", c.upload.UploadVideo)
	}
}

func (a *App) registerCourseRoutes(rg *gin.RouterGroup, c *controllers) {
	courses := rg.Group("/courses")
	courses.Use(middleware.RoleMiddleware(model.Teacher))
	{
		courses.POST("", c.course.Create)
		courses.PUT("/:id", c.course.Update)
		courses.POST("/:id/submit", c.course.Submit)
		courses.POST("/:id/resubmit", c.course.Resubmit)
		courses.DELETE("/:id", c.course.Delete)
	}

	review := rg.Group("/courses")
	review.Use(middleware.RoleMiddleware(model.Admin))
	{
		review.POST("/:id/approve", c.course.Approve)
		review.POST("/:id/reject", c.course.Reject)
	}
}

func (a *App) registerCurriculumRoutes(rg *gin.RouterGroup, c *controllers) {
	curriculum := rg.Group("/curriculum")
	{
		curriculum.GET("/courses/:courseId", c.curriculum.GetCurriculum)

		editor := curriculum.Group("")
		editor.Use(middleware.RoleMiddleware(model.Teacher))
		{
			editor.PUT("/courses/:courseId", c.curriculum.SaveCurriculum)
			editor.POST("/courses/:courseId/modules", c.curriculum.CreateModule)
			editor.PUT("/modules/:id", c.curriculum.UpdateModule)
			editor.DELETE("/modules/:id", c.curriculum.DeleteModule)
			editor.POST("/modules/:moduleId/items", c.curriculum.CreateItem)
			editor.PUT("/items/:id", c.curriculum.UpdateItem)
			editor.DELETE("/items/:id", c.curriculum.DeleteItem)
		}
	}
}

func (a *App) registerEnrollmentRoutes(rg *gin.RouterGroup, c *controllers) {
	enrollments := rg.Group("/enrollments")
	{
		enrollments.GET("", c.enrollment.ListMine)
		enrollments.POST("", c.enrollment.Enroll)
		enrollments.POST("/:id/progress", c.enrollment.RecordProgress)
		enrollments.GET("/:id/progress", c.enrollment.Progress)

		reports := enrollments.Group("/admin")
		reports.Use(middleware.RoleMiddleware(model.Teacher))
		{
			reports.GET("/all", c.enrollment.ListAll)
			reports.GET("/stats", c.enrollment.Stats)
		}
	}
}

func (a *App) registerShopRoutes(rg *gin.RouterGroup, c *controllers) {
	orders := rg.Group("/orders")
	{
		orders.POST("", c.order.Place)
		orders.GET("", c.order.List)
		orders.GET("/:id", c.order.Get)
		orders.POST("/:id/cancel", c.order.Cancel)
		orders.PUT("/:id/status", middleware.RoleMiddleware(model.Transit), c.order.UpdateStatus)
	}

	sourcing := rg.Group("/sourcing")
	{
		sourcing.POST("", c.sourcing.Create)
		sourcing.GET("", c.sourcing.List)
		sourcing.PUT("/:id/offer", middleware.RoleMiddleware(model.Transit), c.sourcing.Offer)
		sourcing.PUT("/:id/respond", c.sourcing.Respond)
		sourcing.PUT("/:id/close", c.sourcing.Close)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.user.List)
		admin.POST("/users", c.user.Create)
		admin.DELETE("/users/:id", c.user.Delete)

		admin.POST("/products", c.product.Create)
		admin.PUT("/products/:id", c.product.Update)
		admin.DELETE("/products/:id", c.product.Delete)

		admin.GET("/contact", c.contact.List)
		admin.PUT("/contact/:id/status", c.contact.UpdateStatus)
		admin.DELETE("/contact/:id", c.contact.Delete)
	}
}
