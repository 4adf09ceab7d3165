package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/types"
)

// IAuthService defines the interface for account and token operations
type IAuthService interface {
	CreateUser(ctx context.Context, email, password, name string) (*models.User, error)
	CreateSuperuser(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(claims *types.TokenClaims) (string, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// IProfileService defines the interface for the authenticated user's profile
type IProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateUserRequest) (*models.User, error)
}

// IRecipeService defines the interface for recipe operations. Every call is
// scoped to the owning user.
type IRecipeService interface {
	CreateRecipe(ctx context.Context, userID uuid.UUID, in types.RecipeInput) (*models.Recipe, error)
	GetRecipe(ctx context.Context, userID uuid.UUID, id uint) (*models.Recipe, error)
	ListRecipes(ctx context.Context, userID uuid.UUID, filter types.RecipeFilter) ([]models.Recipe, error)
	UpdateRecipe(ctx context.Context, userID uuid.UUID, id uint, in types.RecipeInput) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, userID uuid.UUID, id uint) error
}

// ICatalogService defines the interface for tag and ingredient operations
type ICatalogService interface {
	Kind() models.CatalogKind
	List(ctx context.Context, userID uuid.UUID, assignedOnly bool) ([]models.CatalogItem, error)
	Get(ctx context.Context, id uint) (*models.CatalogItem, error)
	Create(ctx context.Context, name string) (*models.CatalogItem, error)
	Rename(ctx context.Context, id uint, name string) (*models.CatalogItem, error)
	Delete(ctx context.Context, id uint) error
}

// IImageService defines the interface for recipe image uploads
type IImageService interface {
	UploadRecipeImage(ctx context.Context, userID uuid.UUID, recipeID uint, filename string, r io.Reader) (*models.Recipe, error)
	ClearRecipeImage(ctx context.Context, userID uuid.UUID, recipeID uint) error
}
