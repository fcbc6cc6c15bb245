package repository

import (
	"context"
	"errors"

	"agora/internal/listquery"
	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LibraryRepository persists libraries, their shelves and their librarian.
type LibraryRepository interface {
	Create(ctx context.Context, library *models.Library) error
	GetByID(ctx context.Context, id uint) (*models.Library, error)
	List(ctx context.Context, page listquery.Page) ([]models.Library, error)
	Rename(ctx context.Context, id uint, name string) error
	Delete(ctx context.Context, id uint) error
	AddBook(ctx context.Context, libraryID, bookID uint) error
	RemoveBook(ctx context.Context, libraryID, bookID uint) error
	AssignLibrarian(ctx context.Context, libraryID uint, name string) (*models.Librarian, error)
}

type libraryRepository struct {
	db *gorm.DB
}

// NewLibraryRepository creates a LibraryRepository.
func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &libraryRepository{db: db}
}

func withShelves(db *gorm.DB) *gorm.DB {
	return db.Preload("Books", booksByTitle).Preload("Librarian")
}

func (r *libraryRepository) Create(ctx context.Context, library *models.Library) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(library).Error; err != nil {
		return models.NewInternalError(err)
	}
	library.Books = []models.Book{}
	return nil
}

func (r *libraryRepository) GetByID(ctx context.Context, id uint) (*models.Library, error) {
	var library models.Library
	if err := withShelves(r.db.WithContext(ctx)).First(&library, id).Error; err != nil {
		return nil, lookupError(err, "Library", id)
	}
	return &library, nil
}

func (r *libraryRepository) List(ctx context.Context, page listquery.Page) ([]models.Library, error) {
	libraries := []models.Library{}
	if err := withShelves(r.db.WithContext(ctx)).
		Order("name").Order("id").
		Limit(page.Limit).Offset(page.Offset).
		Find(&libraries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return libraries, nil
}

func (r *libraryRepository) Rename(ctx context.Context, id uint, name string) error {
	res := r.db.WithContext(ctx).Model(&models.Library{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Library", id)
	}
	return nil
}

func (r *libraryRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		library := models.Library{ID: id}
		if err := tx.Model(&library).Association("Books").Clear(); err != nil {
			return err
		}
		res := tx.Select("Librarian").Delete(&library)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return lookupError(err, "Library", id)
	}
	return nil
}

func (r *libraryRepository) AddBook(ctx context.Context, libraryID, bookID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var library models.Library
		if err := tx.First(&library, libraryID).Error; err != nil {
			return lookupError(err, "Library", libraryID)
		}
		var book models.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			return lookupError(err, "Book", bookID)
		}
		if err := tx.Model(&library).Omit("Books.*").Association("Books").Append(&book); err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *libraryRepository) RemoveBook(ctx context.Context, libraryID, bookID uint) error {
	library := models.Library{ID: libraryID}
	if err := r.db.WithContext(ctx).Model(&library).Association("Books").Delete(&models.Book{ID: bookID}); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// AssignLibrarian sets or replaces the single librarian of a library.
func (r *libraryRepository) AssignLibrarian(ctx context.Context, libraryID uint, name string) (*models.Librarian, error) {
	librarian := models.Librarian{Name: name, LibraryID: libraryID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Library{}).Where("id = ?", libraryID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "library_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).Create(&librarian).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Library", libraryID)
		}
		return nil, models.NewInternalError(err)
	}

	var stored models.Librarian
	if err := r.db.WithContext(ctx).Where("library_id = ?", libraryID).First(&stored).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &stored, nil
}
