package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/storage"
	"github.com/pageza/recipebox/backend/internal/types"
)

// RecipeHandler serves the caller's recipes
type RecipeHandler struct {
	recipeService service.IRecipeService
	storage       storage.Storage
	createLimit   gin.HandlerFunc
	logger        *slog.Logger
}

// NewRecipeHandler creates the handler. createLimit guards recipe creation
// and may be nil.
func NewRecipeHandler(recipeService service.IRecipeService, store storage.Storage, createLimit gin.HandlerFunc, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		storage:       store,
		createLimit:   createLimit,
		logger:        logger,
	}
}

// RegisterRoutes expects router to be behind the auth middleware
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	create := []gin.HandlerFunc{h.CreateRecipe}
	if h.createLimit != nil {
		create = append([]gin.HandlerFunc{h.createLimit}, create...)
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", create...)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PATCH("/:id", h.PatchRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
	}
}

// ListRecipes returns the caller's recipes, newest first. ?tags=1,2 and
// ?ingredients=3 keep recipes linked to any of the given ids.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var filter types.RecipeFilter
	var err error
	if filter.TagIDs, err = parseIDList(c.Query("tags")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"tags": []string{"Enter a comma separated list of ids."}})
		return
	}
	if filter.IngredientIDs, err = parseIDList(c.Query("ingredients")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ingredients": []string{"Enter a comma separated list of ids."}})
		return
	}

	recipes, err := h.recipeService.ListRecipes(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]RecipeResponse, len(recipes))
	for i := range recipes {
		resp[i] = newRecipeResponse(&recipes[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.respondDetail(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.RecipeRequest
	if err := bindJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), userID, req.RecipeInput())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "recipe created", "recipe_id", recipe.ID, "user_id", userID)
	h.respondDetail(c, http.StatusCreated, recipe)
}

// UpdateRecipe handles PUT. Title, time and price are required.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if err := bindJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}
	h.update(c, req.RecipeInput())
}

// PatchRecipe handles PATCH. Only the fields present are written.
func (h *RecipeHandler) PatchRecipe(c *gin.Context) {
	var req types.PatchRecipeRequest
	if err := bindJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}
	h.update(c, req.RecipeInput())
}

func (h *RecipeHandler) update(c *gin.Context, in types.RecipeInput) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), userID, id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.respondDetail(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "recipe deleted", "recipe_id", id, "user_id", userID)
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) respondDetail(c *gin.Context, status int, recipe *models.Recipe) {
	resp, err := newRecipeDetailResponse(c.Request.Context(), h.storage, recipe)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(status, resp)
}

// recipeID parses the :id path parameter. Anything that is not a positive
// integer cannot name a recipe and answers 404.
func recipeID(c *gin.Context) (uint, bool) {
	return pathID(c, "id")
}

// pathID parses a positive id. Ids are bigint columns, so values past
// MaxInt64 are treated as unknown.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 63)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return uint(id), true
}

// parseIDList parses "1,2,3". Blank input yields nil.
func parseIDList(raw string) ([]uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 63)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
