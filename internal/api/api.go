package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/storage"
)

// Dependencies are the shared resources the API is built from
type Dependencies struct {
	DB      *gorm.DB
	Config  *config.Config
	Storage storage.Storage
	// Redis backs the rate limiters. Nil selects in-process limiting.
	Redis  *redis.Client
	Logger *slog.Logger
}

// SetupAPI registers every /api/v1 route on router
func SetupAPI(router *gin.Engine, deps Dependencies) {
	useJSONFieldNames()

	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Initialize services
	authService := service.NewAuthService(deps.DB, cfg.JWTSecret, cfg.TokenTTL)
	profileService := service.NewProfileService(deps.DB)
	recipeService := service.NewRecipeService(deps.DB, deps.Storage, logger)
	imageService := service.NewImageService(deps.DB, deps.Storage, cfg.MaxUploadBytes, logger)
	tagService := service.NewTagService(deps.DB)
	ingredientService := service.NewIngredientService(deps.DB)

	createLimit := middleware.RateLimit(
		middleware.NewRecipeCreationRateLimiter(deps.Redis, cfg.RecipeCreateLimit), "recipe_create", logger)
	uploadLimit := middleware.RateLimit(
		middleware.NewImageUploadRateLimiter(deps.Redis, cfg.ImageUploadLimit), "image_upload", logger)

	// Initialize handlers
	authHandler := NewAuthHandler(authService, logger)
	profileHandler := NewProfileHandler(profileService, logger)
	recipeHandler := NewRecipeHandler(recipeService, deps.Storage, createLimit, logger)
	imageHandler := NewImageHandler(imageService, deps.Storage, cfg.MaxUploadBytes, uploadLimit, logger)
	tagHandler := NewCatalogHandler(tagService, logger)
	ingredientHandler := NewCatalogHandler(ingredientService, logger)

	v1 := router.Group("/api/v1")
	v1.GET("/health", HealthCheck(deps.DB, deps.Redis, logger))
	authHandler.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService), middleware.RequireActiveUser(deps.DB))
	{
		profileHandler.RegisterRoutes(protected)
		recipeHandler.RegisterRoutes(protected)
		imageHandler.RegisterRoutes(protected)
		tagHandler.RegisterRoutes(protected)
		ingredientHandler.RegisterRoutes(protected)
	}
}
