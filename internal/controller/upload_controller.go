package controller

import (
	"mdla_service/internal/service"
	"mdla_service/internal/util"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	UploadService *service.UploadService
}

func NewUploadController(uploadService *service.UploadService) *UploadController {
	return &UploadController{UploadService: uploadService}
}

// @Summary Upload a file
// @Description Accepts images, pdf, audio and video. The type is sniffed from the content.
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File"
// @Success 200 {object} util.Response{data=service.UploadResult}
// @Failure 400 {object} util.Response
// @Router /api/upload [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	c.upload(ctx, service.UploadAny)
}

// @Summary Upload an image
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Success 200 {object} util.Response{data=service.UploadResult}
// @Router /api/upload/image [post]
func (c *UploadController) UploadImage(ctx *gin.Context) {
	c.upload(ctx, service.UploadImage)
}

// @Summary Upload a video
// @Description The response carries the duration in minutes when ffprobe is available.
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Video"
// @Success 200 {object} util.Response{data=service.UploadResult}
// @Router /api/upload/video [post]
func (c *UploadController) UploadVideo(ctx *gin.Context) {
	c.upload(ctx, service.UploadVideo)
}

func (c *UploadController) upload(ctx *gin.Context, kind service.UploadKind) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	result, err := c.UploadService.Upload(ctx.Request.Context(), file, kind)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
