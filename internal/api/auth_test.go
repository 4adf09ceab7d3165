package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
)

func TestCreateUser(t *testing.T) {
	env := SetupTestRouter(t)

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"email":    "Test2@Example.com",
		"password": "testpass123",
		"name":     "Test Name",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]interface{}
	decodeBody(t, w, &resp)
	assert.Equal(t, "Test2@example.com", resp["email"])
	assert.Equal(t, "Test Name", resp["name"])
	assert.NotContains(t, resp, "password")

	var user models.User
	require.NoError(t, env.DB.Where("email = ?", "Test2@example.com").First(&user).Error)
	assert.NotEqual(t, "testpass123", user.PasswordHash)
	assert.True(t, user.IsActive)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	env := SetupTestRouter(t)
	testhelpers.CreateTestUser(t, env.DB, "taken@example.com")

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"email":    "taken@example.com",
		"password": "testpass123",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string][]string
	decodeBody(t, w, &resp)
	assert.Contains(t, resp, "email")
}

func TestCreateUserPasswordTooShort(t *testing.T) {
	env := SetupTestRouter(t)

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"email":    "short@example.com",
		"password": "pw",
		"name":     "Short",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string][]string
	decodeBody(t, w, &resp)
	assert.Equal(t, []string{"Ensure this field has at least 5 characters."}, resp["password"])

	var count int64
	require.NoError(t, env.DB.Model(&models.User{}).Where("email = ?", "short@example.com").Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateUserMissingFields(t *testing.T) {
	env := SetupTestRouter(t)

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/users", map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string][]string
	decodeBody(t, w, &resp)
	assert.Equal(t, []string{"This field is required."}, resp["email"])
	assert.Equal(t, []string{"This field is required."}, resp["password"])
}

func TestCreateToken(t *testing.T) {
	env := SetupTestRouter(t)
	user := testhelpers.CreateTestUser(t, env.DB, "login@example.com")

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/users/token", map[string]interface{}{
		"email":    "login@example.com",
		"password": testhelpers.TestPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TokenResponse
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.Token)

	claims, err := env.Auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	var reloaded models.User
	require.NoError(t, env.DB.First(&reloaded, "id = ?", user.ID).Error)
	assert.NotNil(t, reloaded.LastLogin)
}

func TestCreateTokenFailures(t *testing.T) {
	env := SetupTestRouter(t)
	testhelpers.CreateTestUser(t, env.DB, "login@example.com")

	inactive := testhelpers.CreateTestUser(t, env.DB, "inactive@example.com")
	require.NoError(t, env.DB.Model(inactive).Update("is_active", false).Error)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "login@example.com", "wrongpass"},
		{"unknown email", "nobody@example.com", testhelpers.TestPassword},
		{"blank password", "login@example.com", ""},
		{"inactive account", "inactive@example.com", testhelpers.TestPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := PerformRequest(env.Router, http.MethodPost, "/api/v1/users/token", map[string]interface{}{
				"email":    tt.email,
				"password": tt.password,
			})
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string][]string
			decodeBody(t, w, &resp)
			assert.Equal(t, []string{"Unable to authenticate user"}, resp["non_field_errors"])
			assert.NotContains(t, resp, "token")
		})
	}
}

func TestProfileRequiresAuth(t *testing.T) {
	env := SetupTestRouter(t)

	w := PerformRequest(env.Router, http.MethodGet, "/api/v1/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetProfile(t *testing.T) {
	env := SetupTestRouter(t)
	_, token := CreateTestUserAndToken(t, env, "me@example.com")

	w := PerformRequestWithToken(env.Router, http.MethodGet, "/api/v1/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var resp UserResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, UserResponse{Email: "me@example.com", Name: "Test User"}, resp)
}

func TestUpdateProfile(t *testing.T) {
	env := SetupTestRouter(t)
	user, token := CreateTestUserAndToken(t, env, "me@example.com")

	w := PerformRequestWithToken(env.Router, http.MethodPatch, "/api/v1/users/me", map[string]interface{}{
		"name":     "Updated Name",
		"password": "newpassword123",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp UserResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "Updated Name", resp.Name)

	w = PerformRequest(env.Router, http.MethodPost, "/api/v1/users/token", map[string]interface{}{
		"email":    user.Email,
		"password": "newpassword123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReplaceProfileRequiresFullRepresentation(t *testing.T) {
	env := SetupTestRouter(t)
	_, token := CreateTestUserAndToken(t, env, "me@example.com")

	w := PerformRequestWithToken(env.Router, http.MethodPut, "/api/v1/users/me", map[string]interface{}{
		"name": "Only Name",
	}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string][]string
	decodeBody(t, w, &resp)
	assert.Contains(t, resp, "email")

	w = PerformRequestWithToken(env.Router, http.MethodPut, "/api/v1/users/me", map[string]interface{}{
		"email": "me@example.com",
		"name":  "Full Name",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestDeactivatedUserTokenRejected(t *testing.T) {
	env := SetupTestRouter(t)
	user, token := CreateTestUserAndToken(t, env, "me@example.com")
	require.NoError(t, env.DB.Model(user).Update("is_active", false).Error)

	w := PerformRequestWithToken(env.Router, http.MethodGet, "/api/v1/users/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealth(t *testing.T) {
	env := SetupTestRouter(t)

	w := PerformRequest(env.Router, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	decodeBody(t, w, &resp)
	assert.Equal(t, "healthy", resp["status"])
}
