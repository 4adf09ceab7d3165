package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

// AuthHandler serves registration and token issue
type AuthHandler struct {
	authService service.IAuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService service.IAuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.POST("/token", h.CreateToken)
	}
}

// CreateUser registers a new account
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req types.CreateUserRequest
	if err := bindJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.authService.CreateUser(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "user registered", "user_id", user.ID)
	c.JSON(http.StatusCreated, newUserResponse(user))
}

// CreateToken exchanges credentials for an access token
func (h *AuthHandler) CreateToken(c *gin.Context) {
	var req types.TokenRequest
	if err := bindJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	_, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token})
}
