package database

import "agora/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters for AutoMigrate: referenced tables come first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Group{},
		&models.GroupPermission{},
		&models.User{},
		&models.Follow{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Notification{},
		&models.Author{},
		&models.Book{},
		&models.Library{},
		&models.Librarian{},
	}
}
