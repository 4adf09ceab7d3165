package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/storage"
	"gorm.io/gorm"
)

const invalidImageMessage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// imageTypes maps accepted content types to their canonical extension
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// imageExtensions lists the filename extensions kept for each content type
var imageExtensions = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
}

// ImageService stores uploaded recipe images
type ImageService struct {
	db       *gorm.DB
	storage  storage.Storage
	maxBytes int64
	logger   *slog.Logger
}

// Ensure ImageService implements IImageService
var _ IImageService = (*ImageService)(nil)

func NewImageService(db *gorm.DB, store storage.Storage, maxBytes int64, logger *slog.Logger) *ImageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageService{
		db:       db,
		storage:  store,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// UploadRecipeImage validates r as an image, stores it under a fresh key and
// points the recipe at it. The previous image is removed afterwards. On any
// validation failure the recipe is left unchanged.
func (s *ImageService) UploadRecipeImage(ctx context.Context, userID uuid.UUID, recipeID uint, filename string, r io.Reader) (*models.Recipe, error) {
	recipe, err := s.ownedRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, newValidationError("image", "The submitted file is empty.")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, newValidationError("image", fmt.Sprintf("Ensure this file is no larger than %d bytes.", s.maxBytes))
	}

	contentType, ext, err := detectImage(data)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(imageExtensions[contentType], strings.ToLower(filepath.Ext(filename))) {
		filename = ""
	}

	key := models.RecipeImageFilePath(filename, ext)
	if err := s.storage.Save(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	previous := recipe.Image
	if err := s.db.WithContext(ctx).Model(recipe).Update("image", key).Error; err != nil {
		removeStoredFile(ctx, s.storage, s.logger, key)
		return nil, fmt.Errorf("failed to save image reference: %w", err)
	}
	recipe.Image = key
	if previous != "" && previous != key {
		removeStoredFile(ctx, s.storage, s.logger, previous)
	}

	s.logger.InfoContext(ctx, "recipe image stored", "recipe_id", recipe.ID, "key", key, "bytes", len(data))
	return recipe, nil
}

// ClearRecipeImage removes the recipe's image reference and the stored file
func (s *ImageService) ClearRecipeImage(ctx context.Context, userID uuid.UUID, recipeID uint) error {
	recipe, err := s.ownedRecipe(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if recipe.Image == "" {
		return nil
	}

	previous := recipe.Image
	if err := s.db.WithContext(ctx).Model(recipe).Update("image", "").Error; err != nil {
		return fmt.Errorf("failed to clear image reference: %w", err)
	}
	removeStoredFile(ctx, s.storage, s.logger, previous)
	return nil
}

func (s *ImageService) ownedRecipe(ctx context.Context, userID uuid.UUID, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", recipeID, userID).First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}

// detectImage sniffs the content type and checks that the header decodes
func detectImage(data []byte) (string, string, error) {
	mtype := mimetype.Detect(data)
	for contentType, ext := range imageTypes {
		if mtype.Is(contentType) {
			if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
				return "", "", newValidationError("image", invalidImageMessage)
			}
			return contentType, ext, nil
		}
	}
	return "", "", newValidationError("image", invalidImageMessage)
}
