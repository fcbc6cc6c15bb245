package repository

import (
	"context"
	"net/url"

	"agora/internal/cache"
	"agora/internal/listquery"
	"agora/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// BookRepository persists books.
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	List(ctx context.Context, q url.Values) ([]models.Book, error)
	ListByAuthor(ctx context.Context, authorID uint, page listquery.Page) ([]models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uint) error
}

// AuthorRepository persists authors with their books.
type AuthorRepository interface {
	Create(ctx context.Context, author *models.Author) error
	GetByID(ctx context.Context, id uint) (*models.Author, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, q url.Values) ([]models.Author, error)
}

type bookRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewBookRepository creates a BookRepository. rdb may be nil; it is used to
// drop cached authors whose nested book list changed.
func NewBookRepository(db *gorm.DB, rdb *redis.Client) BookRepository {
	return &bookRepository{db: db, rdb: rdb}
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		if isForeignKeyViolation(err) {
			return models.NewValidationError("Author does not exist")
		}
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, r.rdb, cache.AuthorKey(book.AuthorID))
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, lookupError(err, "Book", id)
	}
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context, q url.Values) ([]models.Book, error) {
	books := []models.Book{}
	if err := BookListSpec.Apply(r.db.WithContext(ctx).Model(&models.Book{}), q).Find(&books).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return books, nil
}

func (r *bookRepository) ListByAuthor(ctx context.Context, authorID uint, page listquery.Page) ([]models.Book, error) {
	books := []models.Book{}
	if err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("title").Order("id").
		Limit(page.Limit).Offset(page.Offset).
		Find(&books).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return books, nil
}

// Update rewrites every book field. Moving a book invalidates both authors.
func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	var before models.Book
	if err := r.db.WithContext(ctx).Select("id", "author_id").First(&before, book.ID).Error; err != nil {
		return lookupError(err, "Book", book.ID)
	}
	if err := r.db.WithContext(ctx).Model(book).
		Select("title", "publication_year", "author_id").
		Updates(book).Error; err != nil {
		if isForeignKeyViolation(err) {
			return models.NewValidationError("Author does not exist")
		}
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, r.rdb, cache.AuthorKey(before.AuthorID), cache.AuthorKey(book.AuthorID))
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	var book models.Book
	if err := r.db.WithContext(ctx).Select("id", "author_id").First(&book, id).Error; err != nil {
		return lookupError(err, "Book", id)
	}
	if err := r.db.WithContext(ctx).Delete(&models.Book{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, r.rdb, cache.AuthorKey(book.AuthorID))
	return nil
}

type authorRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewAuthorRepository creates an AuthorRepository. rdb may be nil.
func NewAuthorRepository(db *gorm.DB, rdb *redis.Client) AuthorRepository {
	return &authorRepository{db: db, rdb: rdb}
}

func booksByTitle(db *gorm.DB) *gorm.DB { return db.Order("books.title").Order("books.id") }

func (r *authorRepository) Create(ctx context.Context, author *models.Author) error {
	if err := r.db.WithContext(ctx).Omit("Books").Create(author).Error; err != nil {
		return models.NewInternalError(err)
	}
	author.Books = []models.Book{}
	return nil
}

func (r *authorRepository) GetByID(ctx context.Context, id uint) (*models.Author, error) {
	var author models.Author
	err := cache.Aside(ctx, r.rdb, cache.AuthorKey(id), &author, cache.AuthorTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("Books", booksByTitle).First(&author, id).Error; err != nil {
			return lookupError(err, "Author", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *authorRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Author{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *authorRepository) List(ctx context.Context, q url.Values) ([]models.Author, error) {
	authors := []models.Author{}
	db := r.db.WithContext(ctx).Model(&models.Author{}).Preload("Books", booksByTitle)
	if err := AuthorListSpec.Apply(db, q).Find(&authors).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return authors, nil
}
