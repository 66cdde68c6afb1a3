package controller

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"aimage-backend/logic"
)

// ImageController handles HTTP requests
type ImageController struct {
	generationLogic *logic.GenerationLogic
	imageLogic      *logic.ImageLogic
}

func NewImageController(generationLogic *logic.GenerationLogic, imageLogic *logic.ImageLogic) *ImageController {
	return &ImageController{
		generationLogic: generationLogic,
		imageLogic:      imageLogic,
	}
}

// GenerateImage handles POST /image/generate
func (c *ImageController) GenerateImage(ctx *gin.Context) {
	var req logic.GenerateInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := extractUserID(ctx)
	if err != nil {
		return
	}

	result, err := c.generationLogic.Generate(ctx.Request.Context(), userID, req)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, result)
}

// GetHistory handles GET /image/history
func (c *ImageController) GetHistory(ctx *gin.Context) {
	userID, err := extractUserID(ctx)
	if err != nil {
		return
	}

	page, limit := paginationParams(ctx)
	images, total, err := c.imageLogic.GetHistory(userID, page, limit)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"images": images,
		"total":  total,
		"page":   page,
	})
}

// GetImage handles GET /image/:id
func (c *ImageController) GetImage(ctx *gin.Context) {
	userID, err := extractUserID(ctx)
	if err != nil {
		return
	}

	imageID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image ID"})
		return
	}

	img, err := c.imageLogic.GetImage(userID, imageID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, img)
}

// DeleteImage handles DELETE /image/:id
func (c *ImageController) DeleteImage(ctx *gin.Context) {
	userID, err := extractUserID(ctx)
	if err != nil {
		return
	}

	imageID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image ID"})
		return
	}

	if err := c.imageLogic.DeleteImage(userID, imageID); err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{})
}

// DownloadImage handles GET /download/:id. The route is deliberately
// unauthenticated: possession of the artifact id is the access control,
// and a given id serves its payload at most once.
func (c *ImageController) DownloadImage(ctx *gin.Context) {
	imageID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image ID"})
		return
	}

	stream, size, err := c.imageLogic.OpenDownload(imageID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	defer stream.Close()

	ctx.Header("Content-Type", "image/png")
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", imageID.String()+".png"))
	ctx.Header("Content-Length", fmt.Sprintf("%d", size))
	ctx.Status(http.StatusOK)
	if _, err := io.Copy(ctx.Writer, stream); err != nil {
		// consumed state is already committed; no second chance
		log.Printf("Download stream for %s aborted: %v", imageID, err)
	}
}
