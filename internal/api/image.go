package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/storage"
)

// multipartOverhead allows room for boundaries and headers around the file
const multipartOverhead = 1 << 20

// ImageHandler handles recipe image uploads
type ImageHandler struct {
	imageService service.IImageService
	storage      storage.Storage
	maxBytes     int64
	uploadLimit  gin.HandlerFunc
	logger       *slog.Logger
}

// NewImageHandler creates a new image handler. uploadLimit may be nil.
func NewImageHandler(imageService service.IImageService, store storage.Storage, maxBytes int64, uploadLimit gin.HandlerFunc, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		storage:      store,
		maxBytes:     maxBytes,
		uploadLimit:  uploadLimit,
		logger:       logger,
	}
}

// RegisterRoutes expects router to be behind the auth middleware
func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	upload := []gin.HandlerFunc{h.UploadRecipeImage}
	if h.uploadLimit != nil {
		upload = append([]gin.HandlerFunc{h.uploadLimit}, upload...)
	}

	router.POST("/recipes/:id/upload-image", upload...)
	router.DELETE("/recipes/:id/upload-image", h.DeleteRecipeImage)
}

// UploadRecipeImage stores the multipart "image" field as the recipe image
func (h *ImageHandler) UploadRecipeImage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := recipeID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	fileHeader, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"image": []string{
				fmt.Sprintf("Ensure this file is no larger than %d bytes.", h.maxBytes),
			}})
		case errors.Is(err, http.ErrMissingFile):
			c.JSON(http.StatusBadRequest, gin.H{"image": []string{"No file was submitted."}})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"image": []string{
				"The submitted data was not a file. Check the encoding type on the form.",
			}})
		}
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer file.Close()

	recipe, err := h.imageService.UploadRecipeImage(c.Request.Context(), userID, id, fileHeader.Filename, file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	image, err := imageURL(c.Request.Context(), h.storage, recipe.Image)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, RecipeImageResponse{ID: recipe.ID, Image: image})
}

// DeleteRecipeImage clears the recipe image
func (h *ImageHandler) DeleteRecipeImage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.imageService.ClearRecipeImage(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
