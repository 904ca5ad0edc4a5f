package image

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts image operations under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.POST("/images", handler.uploadImage)
	group.GET("/images", handler.listImages)
	group.GET("/images/:imageID", handler.viewImage)
	group.DELETE("/images/:imageID", handler.deleteImage)
}

type httpHandler struct {
	service *Service
}

type uploadRequest struct {
	UserID      string   `json:"user_id"`
	ImageData   string   `json:"image_data"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (h *httpHandler) uploadImage(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	meta, err := h.service.Upload(c.Request.Context(), UploadInput{
		UserID:      req.UserID,
		ImageData:   req.ImageData,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Image uploaded successfully",
		"image_id": meta.ImageID,
		"metadata": meta,
	})
}

func (h *httpHandler) listImages(c *gin.Context) {
	in := ListInput{
		UserID:           c.Query("user_id"),
		Tag:              c.Query("tag"),
		LastEvaluatedKey: c.Query("last_evaluated_key"),
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		in.Limit = limit
	}

	result, err := h.service.List(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	body := gin.H{
		"images":   result.Images,
		"count":    result.Count,
		"has_more": result.HasMore,
	}
	if result.HasMore {
		body["last_evaluated_key"] = result.LastEvaluatedKey
	}
	c.JSON(http.StatusOK, body)
}

func (h *httpHandler) viewImage(c *gin.Context) {
	imageID := c.Param("imageID")
	download := strings.EqualFold(c.DefaultQuery("download", "false"), "true")

	result, err := h.service.View(c.Request.Context(), imageID, download)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"image_id":      result.Metadata.ImageID,
		"metadata":      result.Metadata,
		"presigned_url": result.PresignedURL,
		"expires_in":    result.ExpiresIn,
	})
}

func (h *httpHandler) deleteImage(c *gin.Context) {
	imageID := c.Param("imageID")

	if err := h.service.Delete(c.Request.Context(), imageID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Image deleted successfully",
		"image_id": imageID,
	})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
