package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"agora/internal/listquery"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"
)

const (
	maxBookTitleLen  = 200
	maxAuthorNameLen = 100
)

// CatalogService manages authors and their books.
type CatalogService struct {
	books   repository.BookRepository
	authors repository.AuthorRepository
	now     func() time.Time
}

// BookInput is shared by create and update. On create a nil PublicationYear
// means the current year; on update nil fields are left alone.
type BookInput struct {
	Title           *string
	PublicationYear *int
	AuthorID        *uint
}

func NewCatalogService(books repository.BookRepository, authors repository.AuthorRepository) *CatalogService {
	return &CatalogService{books: books, authors: authors, now: time.Now}
}

func (s *CatalogService) checkAuthor(ctx context.Context, id uint) error {
	ok, err := s.authors.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewValidationError("Author does not exist")
	}
	return nil
}

func (s *CatalogService) CreateBook(ctx context.Context, in BookInput) (*models.Book, error) {
	if in.Title == nil {
		return nil, models.NewValidationError("Title is required")
	}
	if in.AuthorID == nil || *in.AuthorID == 0 {
		return nil, models.NewValidationError("Author is required")
	}

	book := &models.Book{
		Title:           strings.TrimSpace(*in.Title),
		PublicationYear: s.now().Year(),
		AuthorID:        *in.AuthorID,
	}
	if in.PublicationYear != nil {
		book.PublicationYear = *in.PublicationYear
	}
	if err := s.validateBook(ctx, book); err != nil {
		return nil, err
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *CatalogService) validateBook(ctx context.Context, book *models.Book) error {
	if err := validation.ValidateTitle("Title", book.Title, maxBookTitleLen); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePublicationYear(book.PublicationYear, s.now()); err != nil {
		return models.NewValidationError(err.Error())
	}
	return s.checkAuthor(ctx, book.AuthorID)
}

func (s *CatalogService) UpdateBook(ctx context.Context, id uint, in BookInput) (*models.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		book.Title = strings.TrimSpace(*in.Title)
	}
	if in.PublicationYear != nil {
		book.PublicationYear = *in.PublicationYear
	}
	if in.AuthorID != nil {
		book.AuthorID = *in.AuthorID
	}
	if err := s.validateBook(ctx, book); err != nil {
		return nil, err
	}
	if err := s.books.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *CatalogService) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	return s.books.GetByID(ctx, id)
}

func (s *CatalogService) ListBooks(ctx context.Context, q url.Values) ([]models.Book, error) {
	return s.books.List(ctx, q)
}

func (s *CatalogService) DeleteBook(ctx context.Context, id uint) error {
	return s.books.Delete(ctx, id)
}

// BooksByAuthor lists one author's books; an unknown author is a 404.
func (s *CatalogService) BooksByAuthor(ctx context.Context, authorID uint, page listquery.Page) ([]models.Book, error) {
	ok, err := s.authors.Exists(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("Author", authorID)
	}
	return s.books.ListByAuthor(ctx, authorID, page)
}

func (s *CatalogService) CreateAuthor(ctx context.Context, name string) (*models.Author, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateTitle("Name", name, maxAuthorNameLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	author := &models.Author{Name: name}
	if err := s.authors.Create(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *CatalogService) GetAuthor(ctx context.Context, id uint) (*models.Author, error) {
	return s.authors.GetByID(ctx, id)
}

func (s *CatalogService) ListAuthors(ctx context.Context, q url.Values) ([]models.Author, error) {
	return s.authors.List(ctx, q)
}
