// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"agora/internal/database"
	"agora/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB returns an in-memory database with every model migrated.
// A single connection keeps the memory database alive for the whole test.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// CreateUser inserts a member whose password is "password123".
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	u := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: string(hash),
		Role:     models.RoleMember,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePost inserts a post by author published at the given time.
func CreatePost(t *testing.T, db *gorm.DB, author *models.User, title string, published time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:         title,
		Content:       title + " body",
		UserID:        author.ID,
		PublishedDate: published,
	}
	require.NoError(t, db.Omit("User", "Tags").Create(p).Error)
	return p
}
