package server

import (
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListLibraries handles GET /api/libraries
// @Summary List libraries with books and librarian
// @Tags libraries
// @Produce json
// @Success 200 {array} models.Library
// @Router /libraries [get]
func (s *Server) ListLibraries(c *fiber.Ctx) error {
	libraries, err := s.libraryService.ListLibraries(reqCtx(c), page(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(libraries)
}

// GetLibrary handles GET /api/libraries/:id
func (s *Server) GetLibrary(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	library, err := s.libraryService.GetLibrary(reqCtx(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(library)
}

// CreateLibrary handles POST /api/libraries. Requires can_create.
// @Summary Create library
// @Tags libraries
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{name=string} true "Library"
// @Success 201 {object} models.Library
// @Failure 403 {object} models.ErrorResponse
// @Router /libraries [post]
func (s *Server) CreateLibrary(c *fiber.Ctx) error {
	library, err := s.libraryService.CreateLibrary(reqCtx(c), body[nameRequest](c).Name)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(library)
}

// RenameLibrary handles PUT /api/libraries/:id. Requires can_edit.
func (s *Server) RenameLibrary(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	library, err := s.libraryService.RenameLibrary(reqCtx(c), id, body[nameRequest](c).Name)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(library)
}

// DeleteLibrary handles DELETE /api/libraries/:id. Requires can_delete.
func (s *Server) DeleteLibrary(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.libraryService.DeleteLibrary(reqCtx(c), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func libraryBookIDs(c *fiber.Ctx) (uint, uint, bool) {
	libraryID, err := parseID(c, "id")
	if err != nil {
		return 0, 0, false
	}
	bookID, err := parseID(c, "bookId")
	if err != nil {
		return 0, 0, false
	}
	return libraryID, bookID, true
}

// AddLibraryBook handles POST /api/libraries/:id/books/:bookId
func (s *Server) AddLibraryBook(c *fiber.Ctx) error {
	libraryID, bookID, ok := libraryBookIDs(c)
	if !ok {
		return nil
	}
	library, err := s.libraryService.AddBook(reqCtx(c), libraryID, bookID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(library)
}

// RemoveLibraryBook handles DELETE /api/libraries/:id/books/:bookId
func (s *Server) RemoveLibraryBook(c *fiber.Ctx) error {
	libraryID, bookID, ok := libraryBookIDs(c)
	if !ok {
		return nil
	}
	library, err := s.libraryService.RemoveBook(reqCtx(c), libraryID, bookID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(library)
}

// AssignLibrarian handles PUT /api/libraries/:id/librarian
func (s *Server) AssignLibrarian(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	librarian, err := s.libraryService.AssignLibrarian(reqCtx(c), id, body[nameRequest](c).Name)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(librarian)
}

// RoleView handles GET /api/roles/:role. It answers 200 when the caller holds
// the role and 403 otherwise.
// @Summary Role-restricted view
// @Tags libraries
// @Security BearerAuth
// @Param role path string true "admin, librarian or member"
// @Success 200 {object} object{role=string,message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /roles/{role} [get]
func (s *Server) RoleView(c *fiber.Ctx) error {
	role := models.UserRole(c.Params("role"))
	ok, err := s.permissionService.HasRole(reqCtx(c), currentUserID(c), role)
	if err != nil {
		return respond(c, err)
	}
	if !ok {
		return respond(c, models.NewPermissionDeniedError("This view requires the "+string(role)+" role"))
	}
	return c.JSON(fiber.Map{
		"role":    role,
		"message": "Welcome to the " + string(role) + " view",
	})
}
