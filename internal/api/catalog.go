package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

// CatalogHandler serves one catalog, tags or ingredients, under the
// catalog's table name.
type CatalogHandler struct {
	catalog service.ICatalogService
	logger  *slog.Logger
}

func NewCatalogHandler(catalog service.ICatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes expects router to be behind the auth middleware
func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/" + h.catalog.Kind().Table)
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.GET("/:id", h.Get)
		group.PATCH("/:id", h.Rename)
		group.PUT("/:id", h.Rename)
		group.DELETE("/:id", h.Delete)
	}
}

// List returns every entry, or with ?assigned_only=1 only the entries used
// by the caller's recipes
func (h *CatalogHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	assignedOnly := false
	if raw := c.Query("assigned_only"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"assigned_only": []string{"A valid integer is required."}})
			return
		}
		assignedOnly = n != 0
	}

	items, err := h.catalog.List(c.Request.Context(), userID, assignedOnly)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Create returns the existing entry when the name is already taken
func (h *CatalogHandler) Create(c *gin.Context) {
	var req types.CatalogRequest
	if err := bindJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.catalog.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *CatalogHandler) Rename(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.CatalogRequest
	if err := bindJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.catalog.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.logger.InfoContext(c.Request.Context(), "catalog entry deleted", "kind", h.catalog.Kind().Name, "id", id)
	c.Status(http.StatusNoContent)
}
