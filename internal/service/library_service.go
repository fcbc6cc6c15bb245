package service

import (
	"context"
	"strings"

	"agora/internal/listquery"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"
)

const maxLibraryNameLen = 100

type LibraryService struct {
	libraries repository.LibraryRepository
}

func NewLibraryService(libraries repository.LibraryRepository) *LibraryService {
	return &LibraryService{libraries: libraries}
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateTitle("Name", name, maxLibraryNameLen); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	return name, nil
}

func (s *LibraryService) CreateLibrary(ctx context.Context, name string) (*models.Library, error) {
	name, err := validName(name)
	if err != nil {
		return nil, err
	}
	library := &models.Library{Name: name}
	if err := s.libraries.Create(ctx, library); err != nil {
		return nil, err
	}
	return library, nil
}

func (s *LibraryService) GetLibrary(ctx context.Context, id uint) (*models.Library, error) {
	return s.libraries.GetByID(ctx, id)
}

func (s *LibraryService) ListLibraries(ctx context.Context, page listquery.Page) ([]models.Library, error) {
	return s.libraries.List(ctx, page)
}

func (s *LibraryService) RenameLibrary(ctx context.Context, id uint, name string) (*models.Library, error) {
	name, err := validName(name)
	if err != nil {
		return nil, err
	}
	if err := s.libraries.Rename(ctx, id, name); err != nil {
		return nil, err
	}
	return s.libraries.GetByID(ctx, id)
}

// DeleteLibrary removes the library and its librarian. Books stay in the catalog.
func (s *LibraryService) DeleteLibrary(ctx context.Context, id uint) error {
	return s.libraries.Delete(ctx, id)
}

// AddBook shelves a book; adding it twice is a no-op.
func (s *LibraryService) AddBook(ctx context.Context, libraryID, bookID uint) (*models.Library, error) {
	if err := s.libraries.AddBook(ctx, libraryID, bookID); err != nil {
		return nil, err
	}
	return s.libraries.GetByID(ctx, libraryID)
}

func (s *LibraryService) RemoveBook(ctx context.Context, libraryID, bookID uint) (*models.Library, error) {
	if _, err := s.libraries.GetByID(ctx, libraryID); err != nil {
		return nil, err
	}
	if err := s.libraries.RemoveBook(ctx, libraryID, bookID); err != nil {
		return nil, err
	}
	return s.libraries.GetByID(ctx, libraryID)
}

// AssignLibrarian replaces the library's librarian.
func (s *LibraryService) AssignLibrarian(ctx context.Context, libraryID uint, name string) (*models.Librarian, error) {
	name, err := validName(name)
	if err != nil {
		return nil, err
	}
	return s.libraries.AssignLibrarian(ctx, libraryID, name)
}
