package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.SetupJoinTable(&Recipe{}, "Tags", &RecipeTag{}))
	require.NoError(t, db.SetupJoinTable(&Recipe{}, "Ingredients", &RecipeIngredient{}))
	require.NoError(t, db.AutoMigrate(&User{}, &Tag{}, &Ingredient{}, &Recipe{}))
	return db
}

func TestUserBeforeCreateAssignsID(t *testing.T) {
	db := setupTestDB(t)
	user := &User{Email: "test@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(user).Error)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "test@example.com", user.String())

	var loaded User
	require.NoError(t, db.First(&loaded, "id = ?", user.ID).Error)
	assert.Equal(t, user.ID, loaded.ID)
	assert.True(t, loaded.IsActive)
}

func TestUserEmailUnique(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&User{Email: "dup@example.com", PasswordHash: "x"}).Error)
	assert.Error(t, db.Create(&User{Email: "dup@example.com", PasswordHash: "y"}).Error)
}

func TestRecipeRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	user := &User{Email: "cook@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)

	recipe := &Recipe{
		UserID:      user.ID,
		Title:       "Sample recipe name",
		TimeMinutes: 5,
		Price:       MustParsePrice("5.50"),
		Tags:        []Tag{{Name: "Vegan"}},
		Ingredients: []Ingredient{{Name: "Kale"}},
	}
	require.NoError(t, db.Create(recipe).Error)
	assert.Equal(t, "Sample recipe name", recipe.String())

	var loaded Recipe
	require.NoError(t, db.Preload("Tags").Preload("Ingredients").First(&loaded, recipe.ID).Error)
	assert.Equal(t, Price(550), loaded.Price)
	require.Len(t, loaded.Tags, 1)
	assert.Equal(t, "Vegan", loaded.Tags[0].String())
	require.Len(t, loaded.Ingredients, 1)
	assert.Equal(t, "Kale", loaded.Ingredients[0].String())
}

func TestCatalogNameUnique(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&Tag{Name: "Dessert"}).Error)
	assert.Error(t, db.Create(&Tag{Name: "Dessert"}).Error)

	var items []CatalogItem
	require.NoError(t, db.Table(TagKind.Table).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, "Dessert", items[0].Name)
}

func TestRecipeImageFilePath(t *testing.T) {
	orig := newImageToken
	t.Cleanup(func() { newImageToken = orig })
	newImageToken = func() string { return "test-uuid" }

	assert.Equal(t, "uploads/recipe/test-uuid.jpg", RecipeImageFilePath("example.jpg", ".png"))
	assert.Equal(t, "uploads/recipe/test-uuid.png", RecipeImageFilePath("EXAMPLE.PNG", ".jpg"))
	assert.Equal(t, "uploads/recipe/test-uuid.gif", RecipeImageFilePath("noext", ".gif"))
}

func TestRecipeImageFilePathUnique(t *testing.T) {
	a := RecipeImageFilePath("a.jpg", "")
	b := RecipeImageFilePath("a.jpg", "")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, RecipeImageDir+"/"))
}
