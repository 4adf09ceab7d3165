package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
	"github.com/pageza/recipebox/backend/internal/types"
	"github.com/stretchr/testify/assert"
)

func authRouter(validator TokenValidator) *gin.Engine {
	router := gin.New()
	router.Use(AuthMiddleware(validator))
	router.GET("/me", func(c *gin.Context) {
		id, ok := UserID(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, id.String())
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		header     string
		setup      func(m *testhelpers.MockTokenValidator)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing header",
			header:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown scheme",
			header:     "Basic abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "scheme without token",
			header:     "Bearer ",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "invalid token",
			header: "Bearer bad",
			setup: func(m *testhelpers.MockTokenValidator) {
				m.On("ValidateToken", "bad").Return(nil, errors.New("invalid token"))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "bearer scheme",
			header: "Bearer good",
			setup: func(m *testhelpers.MockTokenValidator) {
				m.On("ValidateToken", "good").Return(&types.TokenClaims{UserID: userID}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   userID.String(),
		},
		{
			name:   "token scheme",
			header: "Token good",
			setup: func(m *testhelpers.MockTokenValidator) {
				m.On("ValidateToken", "good").Return(&types.TokenClaims{UserID: userID}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   userID.String(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := new(testhelpers.MockTokenValidator)
			if tt.setup != nil {
				tt.setup(validator)
			}

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			authRouter(validator).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			}
			validator.AssertExpectations(t)
		})
	}
}
