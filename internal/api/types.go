package api

import (
	"context"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/storage"
)

// UserResponse is the public representation of an account
type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenResponse is returned by POST /users/token
type TokenResponse struct {
	Token string `json:"token"`
}

// RecipeResponse is the list representation of a recipe
type RecipeResponse struct {
	ID          uint                 `json:"id"`
	Title       string               `json:"title"`
	TimeMinutes int                  `json:"time_minutes"`
	Price       models.Price         `json:"price"`
	Link        string               `json:"link"`
	Tags        []models.CatalogItem `json:"tags"`
	Ingredients []models.CatalogItem `json:"ingredients"`
}

// RecipeDetailResponse adds the description and image URL
type RecipeDetailResponse struct {
	RecipeResponse
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

// RecipeImageResponse is returned by the image upload endpoint
type RecipeImageResponse struct {
	ID    uint    `json:"id"`
	Image *string `json:"image"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{Email: u.Email, Name: u.Name}
}

func newRecipeResponse(r *models.Recipe) RecipeResponse {
	tags := make([]models.CatalogItem, len(r.Tags))
	for i, t := range r.Tags {
		tags[i] = models.CatalogItem{ID: t.ID, Name: t.Name}
	}
	ingredients := make([]models.CatalogItem, len(r.Ingredients))
	for i, in := range r.Ingredients {
		ingredients[i] = models.CatalogItem{ID: in.ID, Name: in.Name}
	}
	return RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Tags:        tags,
		Ingredients: ingredients,
	}
}

func newRecipeDetailResponse(ctx context.Context, store storage.Storage, r *models.Recipe) (RecipeDetailResponse, error) {
	image, err := imageURL(ctx, store, r.Image)
	if err != nil {
		return RecipeDetailResponse{}, err
	}
	return RecipeDetailResponse{
		RecipeResponse: newRecipeResponse(r),
		Description:    r.Description,
		Image:          image,
	}, nil
}

// imageURL resolves a storage key, or nil when the recipe has no image
func imageURL(ctx context.Context, store storage.Storage, key string) (*string, error) {
	if key == "" {
		return nil, nil
	}
	url, err := store.URL(ctx, key)
	if err != nil {
		return nil, err
	}
	return &url, nil
}
