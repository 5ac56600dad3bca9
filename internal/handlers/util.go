package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionrelay/internal/imaging"
	"auctionrelay/internal/util"
	"auctionrelay/internal/validation"
)

// ImageProcessor crops an image and rehosts it.
type ImageProcessor interface {
	CropAndUpload(ctx context.Context, imageURL string) (string, error)
}

type UtilHandler struct {
	images ImageProcessor
}

func NewUtilHandler(images ImageProcessor) *UtilHandler {
	return &UtilHandler{images: images}
}

type CropImageRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"`
}

// CropImage godoc
// @Summary Crop the bottom strip of an image and rehost it
// @Description Downloads the image, removes the bottom 20 pixels and uploads the result to ImgBB.
// @Tags util
// @Accept json
// @Produce json
// @Param request body CropImageRequest true "Image URL"
// @Success 200 {object} map[string]interface{} "success and url"
// @Failure 400 {object} map[string]string "error: Image URL is required"
// @Failure 500 {object} map[string]interface{} "processing failed"
// @Failure 503 {object} map[string]interface{} "image host not configured"
// @Router /util/crop_img [post]
func (h *UtilHandler) CropImage(c *gin.Context) {
	var req CropImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image URL is required"})
		return
	}
	if _, err := validation.ValidatePublicURL(req.ImageURL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.images.CropAndUpload(c.Request.Context(), req.ImageURL)
	if errors.Is(err, imaging.ErrNoUploadKey) {
		util.SafeErrorResponse(c, http.StatusServiceUnavailable, "Image host is not configured", err)
		return
	}
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to process image", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}
