package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/storage"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
	"github.com/pageza/recipebox/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// TestEnv is a router wired to an in-memory database and a temp media root
type TestEnv struct {
	Router  *gin.Engine
	DB      *gorm.DB
	Storage *storage.Local
	Auth    *service.AuthService
	Config  *config.Config
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "test-secret",
		TokenTTL:          time.Hour,
		MaxUploadBytes:    1 << 20,
		RecipeCreateLimit: 1000,
		ImageUploadLimit:  1000,
	}
}

// SetupTestRouter creates a new router with test configuration
func SetupTestRouter(t *testing.T) *TestEnv {
	return setupTestRouterWithConfig(t, testConfig())
}

func setupTestRouterWithConfig(t *testing.T, cfg *config.Config) *TestEnv {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	store, err := storage.NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)

	logger := testhelpers.DiscardLogger()
	router := gin.New()
	router.Use(middleware.Recovery(logger))
	SetupAPI(router, Dependencies{
		DB:      db,
		Config:  cfg,
		Storage: store,
		Logger:  logger,
	})

	return &TestEnv{
		Router:  router,
		DB:      db,
		Storage: store,
		Auth:    service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL),
		Config:  cfg,
	}
}

// CreateTestUserAndToken creates an active user and returns it with a valid token
func CreateTestUserAndToken(t *testing.T, env *TestEnv, email string) (*models.User, string) {
	t.Helper()
	user := testhelpers.CreateTestUser(t, env.DB, email)
	token, err := env.Auth.GenerateToken(&types.TokenClaims{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)
	return user, token
}

// PerformRequest sends an unauthenticated JSON request
func PerformRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	return PerformRequestWithToken(router, method, path, body, "")
}

// PerformRequestWithToken sends a JSON request with a bearer token when token is set
func PerformRequestWithToken(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	router.ServeHTTP(w, req)
	return w
}

// PerformUpload posts data as the multipart field "image"
func PerformUpload(t *testing.T, router *gin.Engine, path, filename string, data []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
