package models

import (
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecipeImageDir is the storage prefix for recipe images
const RecipeImageDir = "uploads/recipe"

// newImageToken is swapped in tests
var newImageToken = uuid.NewString

// Recipe is owned by a single user and links to shared tags and ingredients
type Recipe struct {
	ID          uint         `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	UserID      uuid.UUID    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	User        *User        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	TimeMinutes int          `gorm:"not null" json:"time_minutes"`
	Price       Price        `gorm:"type:decimal(5,2);not null" json:"price"`
	Link        string       `gorm:"size:255;not null;default:''" json:"link"`
	Description string       `gorm:"type:text;not null;default:''" json:"description"`
	Image       string       `gorm:"size:255;not null;default:''" json:"-"`
	Tags        []Tag        `gorm:"many2many:recipe_tags" json:"tags"`
	Ingredients []Ingredient `gorm:"many2many:recipe_ingredients" json:"ingredients"`
}

func (r *Recipe) String() string {
	return r.Title
}

// RecipeImageFilePath builds the storage key for an uploaded recipe image.
// The client filename only contributes its extension; fallbackExt is used
// when the filename has none.
func RecipeImageFilePath(filename, fallbackExt string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || ext == "." {
		ext = fallbackExt
	}
	return path.Join(RecipeImageDir, newImageToken()+ext)
}
