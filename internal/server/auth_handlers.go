package server

import (
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
// @Summary Register
// @Description Create an account and return it with an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string,bio=string,profile_picture=string} true "Registration"
// @Success 201 {object} service.AuthResult
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	req := body[registerRequest](c)
	res, err := s.authService.Register(reqCtx(c), service.RegisterInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Login handles POST /api/auth/login
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Credentials"
// @Success 200 {object} object{token=string,user_id=int}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	req := body[loginRequest](c)
	res, err := s.authService.Login(reqCtx(c), req.Username, req.Password)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{
		"token":   res.Token,
		"user_id": res.User.ID,
	})
}

// Logout handles POST /api/auth/logout by revoking the presented token.
// @Summary Logout
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} object{status=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromCtx(c)
	if !ok {
		return respond(c, models.NewAuthenticationRequiredError("Authentication credentials were not provided"))
	}
	if err := s.tokens.Revoke(reqCtx(c), claims); err != nil {
		return respond(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"status": "Logged out"})
}
