package server

import (
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (r bookRequest) input() service.BookInput {
	return service.BookInput{
		Title:           r.Title,
		PublicationYear: r.PublicationYear,
		AuthorID:        r.Author,
	}
}

// ListBooks handles GET /api/books
// @Summary List books
// @Tags catalog
// @Produce json
// @Param title query string false "Exact title"
// @Param author query int false "Author ID"
// @Param publication_year query int false "Publication year"
// @Param search query string false "Search title and author name"
// @Param ordering query string false "title, publication_year (prefix - for descending)"
// @Success 200 {array} models.Book
// @Router /books [get]
func (s *Server) ListBooks(c *fiber.Ctx) error {
	books, err := s.catalogService.ListBooks(reqCtx(c), queryValues(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(books)
}

// GetBook handles GET /api/books/:id
func (s *Server) GetBook(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	book, err := s.catalogService.GetBook(reqCtx(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(book)
}

// CreateBook handles POST /api/books
// @Summary Create book
// @Description A missing publication_year defaults to the current year
// @Tags catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{title=string,publication_year=int,author=int} true "Book"
// @Success 201 {object} models.Book
// @Failure 400 {object} models.ErrorResponse
// @Router /books [post]
func (s *Server) CreateBook(c *fiber.Ctx) error {
	book, err := s.catalogService.CreateBook(reqCtx(c), body[bookRequest](c).input())
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(book)
}

// UpdateBook handles PUT|PATCH /api/books/:id
func (s *Server) UpdateBook(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	book, err := s.catalogService.UpdateBook(reqCtx(c), id, body[bookRequest](c).input())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(book)
}

// DeleteBook handles DELETE /api/books/:id
func (s *Server) DeleteBook(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.catalogService.DeleteBook(reqCtx(c), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListAuthors handles GET /api/authors
// @Summary List authors with their books
// @Tags catalog
// @Produce json
// @Param search query string false "Search by name"
// @Success 200 {array} models.Author
// @Router /authors [get]
func (s *Server) ListAuthors(c *fiber.Ctx) error {
	authors, err := s.catalogService.ListAuthors(reqCtx(c), queryValues(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(authors)
}

// GetAuthor handles GET /api/authors/:id
func (s *Server) GetAuthor(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	author, err := s.catalogService.GetAuthor(reqCtx(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(author)
}

// CreateAuthor handles POST /api/authors
func (s *Server) CreateAuthor(c *fiber.Ctx) error {
	author, err := s.catalogService.CreateAuthor(reqCtx(c), body[nameRequest](c).Name)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(author)
}

// ListAuthorBooks handles GET /api/authors/:id/books
func (s *Server) ListAuthorBooks(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	books, err := s.catalogService.BooksByAuthor(reqCtx(c), id, page(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(books)
}
