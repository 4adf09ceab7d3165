package types

import (
	"github.com/pageza/recipebox/backend/internal/models"
)

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=5,max=128"`
	Name     string `json:"name" binding:"max=255"`
}

// TokenRequest is the body of POST /users/token. The password is not
// validated here so that every credential failure yields the same error.
type TokenRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
}

// UpdateUserRequest is used by both PUT and PATCH on /users/me
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Password *string `json:"password" binding:"omitempty,min=5,max=128"`
	Name     *string `json:"name" binding:"omitempty,max=255"`
}

// ReplaceUserRequest is the full representation required by PUT /users/me
type ReplaceUserRequest struct {
	Email    *string `json:"email" binding:"required,email,max=255"`
	Password *string `json:"password" binding:"omitempty,min=5,max=128"`
	Name     *string `json:"name" binding:"required,max=255"`
}

// NameRequest references a tag or ingredient by name
type NameRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// CatalogRequest is the body for creating or renaming a tag or ingredient
type CatalogRequest = NameRequest

// RecipeRequest is the body of POST and PUT on /recipes. Tags and
// Ingredients left out of the body (or null) keep their current value on
// update; an empty list clears them.
type RecipeRequest struct {
	Title       *string       `json:"title" binding:"required,min=1,max=255"`
	TimeMinutes *int          `json:"time_minutes" binding:"required,min=0,max=2147483647"`
	Price       *models.Price `json:"price" binding:"required"`
	Link        *string       `json:"link" binding:"omitempty,max=255"`
	Description *string       `json:"description"`
	Tags        []NameRequest `json:"tags" binding:"omitempty,dive"`
	Ingredients []NameRequest `json:"ingredients" binding:"omitempty,dive"`
}

// PatchRecipeRequest is the body of PATCH /recipes/:id
type PatchRecipeRequest struct {
	Title       *string       `json:"title" binding:"omitempty,min=1,max=255"`
	TimeMinutes *int          `json:"time_minutes" binding:"omitempty,min=0,max=2147483647"`
	Price       *models.Price `json:"price"`
	Link        *string       `json:"link" binding:"omitempty,max=255"`
	Description *string       `json:"description"`
	Tags        []NameRequest `json:"tags" binding:"omitempty,dive"`
	Ingredients []NameRequest `json:"ingredients" binding:"omitempty,dive"`
}

// RecipeInput converts the request to the service input
func (r *RecipeRequest) RecipeInput() RecipeInput {
	return RecipeInput{
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Description: r.Description,
		Tags:        names(r.Tags),
		Ingredients: names(r.Ingredients),
	}
}

// RecipeInput converts the request to the service input
func (r *PatchRecipeRequest) RecipeInput() RecipeInput {
	return RecipeInput{
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Description: r.Description,
		Tags:        names(r.Tags),
		Ingredients: names(r.Ingredients),
	}
}

// RecipeInput carries the fields to write on a recipe. A nil pointer or a
// nil slice leaves the stored value untouched.
type RecipeInput struct {
	Title       *string
	TimeMinutes *int
	Price       *models.Price
	Link        *string
	Description *string
	Tags        []string
	Ingredients []string
}

// RecipeFilter narrows a recipe listing to recipes carrying any of the ids
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

func names(in []NameRequest) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, n := range in {
		out[i] = n.Name
	}
	return out
}
