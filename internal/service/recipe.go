package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/storage"
	"github.com/pageza/recipebox/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeService handles recipe operations, including reconciling the
// nested tag and ingredient lists against the catalog.
type RecipeService struct {
	db          *gorm.DB
	tags        *CatalogService
	ingredients *CatalogService
	storage     storage.Storage
	logger      *slog.Logger
}

// Ensure RecipeService implements IRecipeService
var _ IRecipeService = (*RecipeService)(nil)

// NewRecipeService creates a new RecipeService instance. store may be nil,
// in which case image files are left in place when a recipe is deleted.
func NewRecipeService(db *gorm.DB, store storage.Storage, logger *slog.Logger) *RecipeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecipeService{
		db:          db,
		tags:        NewTagService(db),
		ingredients: NewIngredientService(db),
		storage:     store,
		logger:      logger,
	}
}

// CreateRecipe inserts a recipe owned by userID and links the named tags
// and ingredients, creating catalog entries as needed.
func (s *RecipeService) CreateRecipe(ctx context.Context, userID uuid.UUID, in types.RecipeInput) (*models.Recipe, error) {
	verr := &ValidationError{Fields: map[string][]string{}}
	if in.Title == nil {
		verr.Fields["title"] = []string{"This field is required."}
	}
	if in.TimeMinutes == nil {
		verr.Fields["time_minutes"] = []string{"This field is required."}
	}
	if in.Price == nil {
		verr.Fields["price"] = []string{"This field is required."}
	}
	validateRecipeInput(in, verr)
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	recipe := &models.Recipe{
		UserID:      userID,
		Title:       strings.TrimSpace(*in.Title),
		TimeMinutes: *in.TimeMinutes,
		Price:       *in.Price,
	}
	if in.Link != nil {
		recipe.Link = strings.TrimSpace(*in.Link)
	}
	if in.Description != nil {
		recipe.Description = *in.Description
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return s.reconcile(tx, recipe.ID, in)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, userID, recipe.ID)
}

// GetRecipe loads a recipe owned by userID. Recipes of other users are
// reported as ErrNotFound.
func (s *RecipeService) GetRecipe(ctx context.Context, userID uuid.UUID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.withRelations(s.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, userID).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}

// ListRecipes returns the user's recipes, newest first. Each filter keeps
// recipes linked to any of its ids; both filters must match when given.
func (s *RecipeService) ListRecipes(ctx context.Context, userID uuid.UUID, filter types.RecipeFilter) ([]models.Recipe, error) {
	query := s.withRelations(s.db.WithContext(ctx)).Where("recipes.user_id = ?", userID)
	if len(filter.TagIDs) > 0 {
		query = query.Where("recipes.id IN (?)",
			s.db.Table(models.TagKind.JoinTable).Select("recipe_id").Where("tag_id IN ?", filter.TagIDs))
	}
	if len(filter.IngredientIDs) > 0 {
		query = query.Where("recipes.id IN (?)",
			s.db.Table(models.IngredientKind.JoinTable).Select("recipe_id").Where("ingredient_id IN ?", filter.IngredientIDs))
	}

	recipes := []models.Recipe{}
	if err := query.Order("recipes.id DESC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// UpdateRecipe writes the fields present in the input. Tag and ingredient
// lists replace the current links when non-nil.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID uuid.UUID, id uint, in types.RecipeInput) (*models.Recipe, error) {
	verr := &ValidationError{Fields: map[string][]string{}}
	validateRecipeInput(in, verr)
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.TimeMinutes != nil {
		updates["time_minutes"] = *in.TimeMinutes
	}
	if in.Price != nil {
		updates["price"] = *in.Price
	}
	if in.Link != nil {
		updates["link"] = strings.TrimSpace(*in.Link)
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load recipe: %w", err)
		}
		if len(updates) > 0 {
			if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update recipe: %w", err)
			}
		}
		return s.reconcile(tx, recipe.ID, in)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, userID, id)
}

// DeleteRecipe removes the recipe and its links. Catalog entries stay. The
// stored image, if any, is removed after the transaction commits.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID uuid.UUID, id uint) error {
	var image string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load recipe: %w", err)
		}
		image = recipe.Image

		if err := s.tags.unlinkRecipe(tx, recipe.ID); err != nil {
			return err
		}
		if err := s.ingredients.unlinkRecipe(tx, recipe.ID); err != nil {
			return err
		}
		if err := tx.Delete(&recipe).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if image != "" {
		removeStoredFile(ctx, s.storage, s.logger, image)
	}
	return nil
}

func (s *RecipeService) reconcile(tx *gorm.DB, recipeID uint, in types.RecipeInput) error {
	if in.Tags != nil {
		if err := s.tags.replaceLinks(tx, recipeID, in.Tags); err != nil {
			return err
		}
	}
	if in.Ingredients != nil {
		if err := s.ingredients.replaceLinks(tx, recipeID, in.Ingredients); err != nil {
			return err
		}
	}
	return nil
}

func (s *RecipeService) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredients.id") })
}

func validateRecipeInput(in types.RecipeInput, verr *ValidationError) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		verr.Fields["title"] = []string{"This field may not be blank."}
	}
	if in.TimeMinutes != nil && *in.TimeMinutes < 0 {
		verr.Fields["time_minutes"] = []string{"Ensure this value is greater than or equal to 0."}
	}
	if in.Price != nil && *in.Price < 0 {
		verr.Fields["price"] = []string{"Ensure this value is greater than or equal to 0."}
	}
}

// removeStoredFile deletes a stored file, logging instead of failing
func removeStoredFile(ctx context.Context, store storage.Storage, logger *slog.Logger, key string) {
	if store == nil {
		return
	}
	if err := store.Delete(ctx, key); err != nil {
		logger.WarnContext(ctx, "failed to remove stored file", "key", key, "error", err)
	}
}
