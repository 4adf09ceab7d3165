package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

// ProfileHandler serves the authenticated user's own account
type ProfileHandler struct {
	profileService service.IProfileService
	logger         *slog.Logger
}

func NewProfileHandler(profileService service.IProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// RegisterRoutes expects router to be behind the auth middleware
func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	me := router.Group("/users/me")
	{
		me.GET("", h.GetProfile)
		me.PATCH("", h.UpdateProfile)
		me.PUT("", h.ReplaceProfile)
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// UpdateProfile applies a partial update
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req types.UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}
	h.update(c, &req)
}

// ReplaceProfile requires the full representation. The password stays
// optional so a client can resend its profile without re-entering it.
func (h *ProfileHandler) ReplaceProfile(c *gin.Context) {
	var req types.ReplaceUserRequest
	if err := bindJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}
	h.update(c, &types.UpdateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
}

func (h *ProfileHandler) update(c *gin.Context, req *types.UpdateUserRequest) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.profileService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}
