package server

import (
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/profile
// @Summary Own profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Router /profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	user, err := s.userService.Profile(reqCtx(c), currentUserID(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}

// UpdateProfile handles PUT|PATCH /api/profile
// @Summary Update own profile
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{email=string,bio=string,profile_picture=string} true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /profile [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	req := body[profileRequest](c)
	user, err := s.userService.UpdateProfile(reqCtx(c), service.UpdateProfileInput{
		UserID:         currentUserID(c),
		Email:          req.Email,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}

// ListUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.User
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	users, err := s.userService.ListUsers(reqCtx(c), page(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(users)
}

// GetUser handles GET /api/users/:id
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetUser(reqCtx(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}

// PromoteToAdmin handles POST /api/users/:id/promote-admin
func (s *Server) PromoteToAdmin(c *fiber.Ctx) error {
	return s.setAdmin(c, true)
}

// DemoteFromAdmin handles POST /api/users/:id/demote-admin
func (s *Server) DemoteFromAdmin(c *fiber.Ctx) error {
	return s.setAdmin(c, false)
}

func (s *Server) setAdmin(c *fiber.Ctx, isAdmin bool) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.SetAdmin(reqCtx(c), id, isAdmin)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}

// GetFeatureFlags returns configured feature flags and their state for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(currentUserID(c)),
	})
}
