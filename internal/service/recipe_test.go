package service_test

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
	"github.com/pageza/recipebox/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRecipeTest(t *testing.T) (*gorm.DB, *service.RecipeService, *models.User) {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewRecipeService(db, nil, testhelpers.DiscardLogger())
	user := testhelpers.CreateTestUser(t, db, "user@example.com")
	return db, svc, user
}

func tagNames(tags []models.Tag) []string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	sort.Strings(names)
	return names
}

func ingredientNames(items []models.Ingredient) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	sort.Strings(names)
	return names
}

func TestCreateRecipe(t *testing.T) {
	_, svc, user := setupRecipeTest(t)

	in := recipeInput("Thai Prawn Curry", []string{"Thai", "Dinner"}, []string{"Prawns", "Coconut milk"})
	link := "https://example.com/curry"
	in.Link = &link

	recipe, err := svc.CreateRecipe(context.Background(), user.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Thai Prawn Curry", recipe.Title)
	assert.Equal(t, 10, recipe.TimeMinutes)
	assert.Equal(t, "5.00", recipe.Price.String())
	assert.Equal(t, link, recipe.Link)
	assert.Equal(t, user.ID, recipe.UserID)
	assert.Equal(t, []string{"Dinner", "Thai"}, tagNames(recipe.Tags))
	assert.Equal(t, []string{"Coconut milk", "Prawns"}, ingredientNames(recipe.Ingredients))
}

func TestCreateRecipeRequiresFields(t *testing.T) {
	db, svc, user := setupRecipeTest(t)

	_, err := svc.CreateRecipe(context.Background(), user.ID, types.RecipeInput{})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "time_minutes")
	assert.Contains(t, verr.Fields, "price")

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRecipeWithExistingTag(t *testing.T) {
	db, svc, user := setupRecipeTest(t)
	ctx := context.Background()

	indian, err := service.NewTagService(db).Create(ctx, "Indian")
	require.NoError(t, err)

	recipe, err := svc.CreateRecipe(ctx, user.ID, recipeInput("Pongal", []string{"Indian", "Breakfast"}, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"Breakfast", "Indian"}, tagNames(recipe.Tags))

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var found bool
	for _, tag := range recipe.Tags {
		if tag.ID == indian.ID {
			found = true
		}
	}
	assert.True(t, found, "existing tag should be reused")
}

func TestCreateRecipeDuplicateNamesInPayload(t *testing.T) {
	db, svc, user := setupRecipeTest(t)

	recipe, err := svc.CreateRecipe(context.Background(), user.ID,
		recipeInput("Salad", []string{"Vegan", "Vegan"}, []string{"Kale", "Kale", "Salt"}))
	require.NoError(t, err)
	assert.Len(t, recipe.Tags, 1)
	assert.Len(t, recipe.Ingredients, 2)

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Where("name = ?", "Vegan").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateRecipeReplacesTags(t *testing.T) {
	db, svc, user := setupRecipeTest(t)
	ctx := context.Background()

	recipe, err := svc.CreateRecipe(ctx, user.ID, recipeInput("Toast", []string{"Breakfast", "Quick"}, nil))
	require.NoError(t, err)

	updated, err := svc.UpdateRecipe(ctx, user.ID, recipe.ID, types.RecipeInput{Tags: []string{"Lunch"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Lunch"}, tagNames(updated.Tags))

	// the catalog keeps entries that are no longer linked
	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Where("name IN ?", []string{"Breakfast", "Quick"}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestUpdateRecipeEmptyListClears(t *testing.T) {
	_, svc, user := setupRecipeTest(t)
	ctx := context.Background()

	recipe, err := svc.CreateRecipe(ctx, user.ID, recipeInput("Soup", []string{"Dinner"}, []string{"Leek"}))
	require.NoError(t, err)

	// absent lists are left alone
	title := "Leek soup"
	updated, err := svc.UpdateRecipe(ctx, user.ID, recipe.ID, types.RecipeInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Leek soup", updated.Title)
	assert.Len(t, updated.Tags, 1)
	assert.Len(t, updated.Ingredients, 1)

	updated, err = svc.UpdateRecipe(ctx, user.ID, recipe.ID, types.RecipeInput{Tags: []string{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
	assert.Len(t, updated.Ingredients, 1)
}

func TestUpdateRecipeScalars(t *testing.T) {
	_, svc, user := setupRecipeTest(t)
	ctx := context.Background()

	recipe, err := svc.CreateRecipe(ctx, user.ID, recipeInput("Bread", nil, nil))
	require.NoError(t, err)

	minutes := 90
	price := models.MustParsePrice("2.50")
	desc := "Slow rise"
	updated, err := svc.UpdateRecipe(ctx, user.ID, recipe.ID, types.RecipeInput{
		TimeMinutes: &minutes,
		Price:       &price,
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bread", updated.Title)
	assert.Equal(t, 90, updated.TimeMinutes)
	assert.Equal(t, "2.50", updated.Price.String())
	assert.Equal(t, "Slow rise", updated.Description)

	blank := " "
	_, err = svc.UpdateRecipe(ctx, user.ID, recipe.ID, types.RecipeInput{Title: &blank})
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRecipesAreScopedToOwner(t *testing.T) {
	db, svc, user := setupRecipeTest(t)
	other := testhelpers.CreateTestUser(t, db, "other@example.com")
	ctx := context.Background()

	theirs := testhelpers.CreateTestRecipe(t, db, other.ID, "Not yours")

	_, err := svc.GetRecipe(ctx, user.ID, theirs.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	title := "Stolen"
	_, err = svc.UpdateRecipe(ctx, user.ID, theirs.ID, types.RecipeInput{Title: &title})
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteRecipe(ctx, user.ID, theirs.ID), service.ErrNotFound)

	var stored models.Recipe
	require.NoError(t, db.First(&stored, theirs.ID).Error)
	assert.Equal(t, "Not yours", stored.Title)
}

func TestListRecipes(t *testing.T) {
	db, svc, user := setupRecipeTest(t)
	other := testhelpers.CreateTestUser(t, db, "other@example.com")
	ctx := context.Background()

	first := testhelpers.CreateTestRecipe(t, db, user.ID, "First")
	second := testhelpers.CreateTestRecipe(t, db, user.ID, "Second")
	testhelpers.CreateTestRecipe(t, db, other.ID, "Someone else's")

	recipes, err := svc.ListRecipes(ctx, user.ID, types.RecipeFilter{})
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, second.ID, recipes[0].ID)
	assert.Equal(t, first.ID, recipes[1].ID)
}

func TestListRecipesFilters(t *testing.T) {
	_, svc, user := setupRecipeTest(t)
	ctx := context.Background()

	curry, err := svc.CreateRecipe(ctx, user.ID, recipeInput("Curry", []string{"Vegan"}, []string{"Chickpeas"}))
	require.NoError(t, err)
	tahini, err := svc.CreateRecipe(ctx, user.ID, recipeInput("Tahini", []string{"Vegetarian"}, []string{"Sesame"}))
	require.NoError(t, err)
	_, err = svc.CreateRecipe(ctx, user.ID, recipeInput("Fish and chips", nil, []string{"Cod"}))
	require.NoError(t, err)

	byTag, err := svc.ListRecipes(ctx, user.ID, types.RecipeFilter{
		TagIDs: []uint{curry.Tags[0].ID, tahini.Tags[0].ID},
	})
	require.NoError(t, err)
	require.Len(t, byTag, 2)
	assert.Equal(t, tahini.ID, byTag[0].ID)
	assert.Equal(t, curry.ID, byTag[1].ID)

	byIngredient, err := svc.ListRecipes(ctx, user.ID, types.RecipeFilter{
		IngredientIDs: []uint{curry.Ingredients[0].ID},
	})
	require.NoError(t, err)
	require.Len(t, byIngredient, 1)
	assert.Equal(t, curry.ID, byIngredient[0].ID)

	both, err := svc.ListRecipes(ctx, user.ID, types.RecipeFilter{
		TagIDs:        []uint{curry.Tags[0].ID},
		IngredientIDs: []uint{tahini.Ingredients[0].ID},
	})
	require.NoError(t, err)
	assert.Empty(t, both)
}

func TestDeleteRecipe(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	store := new(testhelpers.MockStorage)
	svc := service.NewRecipeService(db, store, testhelpers.DiscardLogger())
	user := testhelpers.CreateTestUser(t, db, "user@example.com")
	ctx := context.Background()

	recipe, err := svc.CreateRecipe(ctx, user.ID, recipeInput("Cake", []string{"Dessert"}, []string{"Flour"}))
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Update("image", "uploads/recipe/cake.png").Error)

	store.On("Delete", mock.Anything, "uploads/recipe/cake.png").Return(nil).Once()

	require.NoError(t, svc.DeleteRecipe(ctx, user.ID, recipe.ID))
	store.AssertExpectations(t)

	_, err = svc.GetRecipe(ctx, user.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	var links int64
	require.NoError(t, db.Table("recipe_tags").Where("recipe_id = ?", recipe.ID).Count(&links).Error)
	assert.Zero(t, links)

	var tags int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tags).Error)
	assert.Equal(t, int64(1), tags)
}

func TestGetRecipeUnknownUser(t *testing.T) {
	_, svc, _ := setupRecipeTest(t)
	_, err := svc.GetRecipe(context.Background(), uuid.New(), 1)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
