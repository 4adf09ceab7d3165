package models

// Tag labels recipes. Tags are shared between recipes and users.
type Tag struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:255;not null;uniqueIndex" json:"name"`
}

func (t Tag) String() string { return t.Name }

// Ingredient is a shared catalog entry referenced by recipes
type Ingredient struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:255;not null;uniqueIndex" json:"name"`
}

func (i Ingredient) String() string { return i.Name }

// CatalogItem is the column shape shared by tags and ingredients. It is used
// together with CatalogKind to address either table.
type CatalogItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// CatalogKind names the tables backing one catalog entity
type CatalogKind struct {
	Name       string
	Table      string
	JoinTable  string
	JoinColumn string
}

var (
	TagKind = CatalogKind{
		Name:       "tag",
		Table:      "tags",
		JoinTable:  "recipe_tags",
		JoinColumn: "tag_id",
	}
	IngredientKind = CatalogKind{
		Name:       "ingredient",
		Table:      "ingredients",
		JoinTable:  "recipe_ingredients",
		JoinColumn: "ingredient_id",
	}
)

// RecipeTag is a row of the recipe_tags join table
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey"`
	TagID    uint `gorm:"primaryKey;index"`
}

// RecipeIngredient is a row of the recipe_ingredients join table
type RecipeIngredient struct {
	RecipeID     uint `gorm:"primaryKey"`
	IngredientID uint `gorm:"primaryKey;index"`
}
