package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
)

// sqliteEnv points configuration at a fresh sqlite file
func sqliteEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manage.db")
	t.Setenv("ENV", "test")
	t.Setenv("CI", "")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("LOG_LEVEL", "error")
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(context.Background(), append([]string{"manage"}, args...))
	return out.String(), err
}

func openSQLite(t *testing.T, path string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestCreateSuperuser(t *testing.T) {
	path := sqliteEnv(t)

	_, err := runApp(t, "migrate", "up")
	require.NoError(t, err)

	out, err := runApp(t, "createsuperuser", "--email", "admin@Example.com", "--password", "adminpass", "--name", "Admin")
	require.NoError(t, err)
	assert.Contains(t, out, "admin@example.com")

	db := openSQLite(t, path)
	var user models.User
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&user).Error)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
	assert.True(t, user.IsActive)
}

func TestCreateSuperuserShortPassword(t *testing.T) {
	sqliteEnv(t)

	_, err := runApp(t, "migrate", "up")
	require.NoError(t, err)

	_, err = runApp(t, "createsuperuser", "--email", "admin@example.com", "--password", "abc")
	assert.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	path := sqliteEnv(t)

	_, err := runApp(t, "migrate", "up")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		out, err := runApp(t, "seed")
		require.NoError(t, err)
		assert.Contains(t, out, "catalog seeded")
	}

	db := openSQLite(t, path)
	var tags, ingredients int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tags).Error)
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&ingredients).Error)
	assert.Equal(t, int64(len(seedTags)), tags)
	assert.Equal(t, int64(len(seedIngredients)), ingredients)
}

func TestMigrateVersionRequiresPostgres(t *testing.T) {
	sqliteEnv(t)

	_, err := runApp(t, "migrate", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}
