package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogService manages one catalog table (tags or ingredients). Names are
// unique; creation is get-or-create.
type CatalogService struct {
	db   *gorm.DB
	kind models.CatalogKind
}

// Ensure CatalogService implements ICatalogService
var _ ICatalogService = (*CatalogService)(nil)

func NewCatalogService(db *gorm.DB, kind models.CatalogKind) *CatalogService {
	return &CatalogService{db: db, kind: kind}
}

func NewTagService(db *gorm.DB) *CatalogService {
	return NewCatalogService(db, models.TagKind)
}

func NewIngredientService(db *gorm.DB) *CatalogService {
	return NewCatalogService(db, models.IngredientKind)
}

func (s *CatalogService) Kind() models.CatalogKind {
	return s.kind
}

// List returns catalog entries ordered by name descending. With assignedOnly
// set, only entries linked to at least one of the user's recipes are returned.
func (s *CatalogService) List(ctx context.Context, userID uuid.UUID, assignedOnly bool) ([]models.CatalogItem, error) {
	table := s.kind.Table
	query := s.db.WithContext(ctx).Table(table).Select(table + ".id, " + table + ".name")
	if assignedOnly {
		assigned := s.db.Table(s.kind.JoinTable).
			Select(s.kind.JoinTable+"."+s.kind.JoinColumn).
			Joins("JOIN recipes ON recipes.id = "+s.kind.JoinTable+".recipe_id").
			Where("recipes.user_id = ?", userID)
		query = query.Where(table+".id IN (?)", assigned)
	}

	items := []models.CatalogItem{}
	if err := query.Order(table + ".name DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", s.kind.Name, err)
	}
	return items, nil
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.CatalogItem, error) {
	var item models.CatalogItem
	err := s.db.WithContext(ctx).Table(s.kind.Table).Where("id = ?", id).Take(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load %s: %w", s.kind.Name, err)
	}
	return &item, nil
}

// Create returns the entry with the given name, inserting it if needed
func (s *CatalogService) Create(ctx context.Context, name string) (*models.CatalogItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidationError("name", "This field may not be blank.")
	}
	items, err := s.ensure(s.db.WithContext(ctx), []string{name})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Rename changes the name of an entry. Renaming onto a name held by another
// entry is a validation error.
func (s *CatalogService) Rename(ctx context.Context, id uint, name string) (*models.CatalogItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidationError("name", "This field may not be blank.")
	}

	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Name == name {
		return item, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Table(s.kind.Table).
		Where("name = ? AND id <> ?", name, id).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check %s name: %w", s.kind.Name, err)
	}
	if count > 0 {
		return nil, s.nameTaken()
	}

	if err := s.db.WithContext(ctx).Table(s.kind.Table).Where("id = ?", id).Update("name", name).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.nameTaken()
		}
		return nil, fmt.Errorf("failed to rename %s: %w", s.kind.Name, err)
	}
	item.Name = name
	return item, nil
}

// Delete removes the entry and its links to recipes. Recipes are kept.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM "+s.kind.JoinTable+" WHERE "+s.kind.JoinColumn+" = ?", id).Error; err != nil {
			return fmt.Errorf("failed to unlink %s: %w", s.kind.Name, err)
		}
		res := tx.Exec("DELETE FROM "+s.kind.Table+" WHERE id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete %s: %w", s.kind.Name, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *CatalogService) nameTaken() error {
	return newValidationError("name", fmt.Sprintf("%s with this name already exists.", s.kind.Name))
}

// ensure resolves names to entries, inserting the missing ones. Duplicate
// names collapse to one entry. Concurrent callers racing on the same name
// both end up with the single row the unique index allows.
func (s *CatalogService) ensure(tx *gorm.DB, names []string) ([]models.CatalogItem, error) {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, newValidationError(s.kind.Table, "This field may not be blank.")
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		unique = append(unique, n)
	}
	if len(unique) == 0 {
		return nil, nil
	}
	// a stable insert order keeps concurrent transactions from deadlocking
	sort.Strings(unique)

	rows := make([]map[string]interface{}, len(unique))
	for i, n := range unique {
		rows[i] = map[string]interface{}{"name": n}
	}
	if err := tx.Table(s.kind.Table).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(rows).Error; err != nil {
		return nil, fmt.Errorf("failed to insert %ss: %w", s.kind.Name, err)
	}

	var items []models.CatalogItem
	if err := tx.Table(s.kind.Table).Where("name IN ?", unique).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load %ss: %w", s.kind.Name, err)
	}
	if len(items) != len(unique) {
		return nil, fmt.Errorf("resolved %d of %d %ss", len(items), len(unique), s.kind.Name)
	}
	return items, nil
}

// replaceLinks makes the recipe's links in this catalog exactly the
// entries named, creating missing entries.
func (s *CatalogService) replaceLinks(tx *gorm.DB, recipeID uint, names []string) error {
	items, err := s.ensure(tx, names)
	if err != nil {
		return err
	}

	if err := tx.Exec("DELETE FROM "+s.kind.JoinTable+" WHERE recipe_id = ?", recipeID).Error; err != nil {
		return fmt.Errorf("failed to clear %s links: %w", s.kind.Name, err)
	}
	if len(items) == 0 {
		return nil
	}

	links := make([]map[string]interface{}, len(items))
	for i, item := range items {
		links[i] = map[string]interface{}{
			"recipe_id":       recipeID,
			s.kind.JoinColumn: item.ID,
		}
	}
	if err := tx.Table(s.kind.JoinTable).Create(links).Error; err != nil {
		return fmt.Errorf("failed to link %ss: %w", s.kind.Name, err)
	}
	return nil
}

// unlinkRecipe removes every link from the recipe into this catalog
func (s *CatalogService) unlinkRecipe(tx *gorm.DB, recipeID uint) error {
	if err := tx.Exec("DELETE FROM "+s.kind.JoinTable+" WHERE recipe_id = ?", recipeID).Error; err != nil {
		return fmt.Errorf("failed to unlink recipe from %ss: %w", s.kind.Name, err)
	}
	return nil
}
