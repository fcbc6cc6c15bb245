package server

import (
	"context"
	"errors"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Policies run in a fixed order on every protected route:
// Authenticated, then Owner or Permission, then Validate.

const bodyKey = "validatedBody"

// OwnerLoader returns the id of the user owning the resource with the given id.
type OwnerLoader func(ctx context.Context, id uint) (uint, error)

var errForbidden = models.NewPermissionDeniedError("You do not have permission to perform this action.")

// Owner allows the request only when the caller owns the resource named by
// the route parameter param. Missing resources are 404.
func (s *Server) Owner(param string, loader OwnerLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, param)
		if err != nil {
			return nil
		}
		ownerID, err := loader(reqCtx(c), id)
		if err != nil {
			return respond(c, err)
		}
		if ownerID != currentUserID(c) {
			return respond(c, errForbidden)
		}
		return c.Next()
	}
}

// Permission allows the request only when the caller holds codename.
func (s *Server) Permission(codename string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := s.permissionService.Allowed(reqCtx(c), currentUserID(c), codename)
		if err != nil {
			return respond(c, err)
		}
		if !ok {
			return respond(c, errForbidden)
		}
		return c.Next()
	}
}

// AdminRequired rejects non-admin users with 403.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.userService.GetUser(reqCtx(c), currentUserID(c))
		if err != nil {
			return respond(c, err)
		}
		if !user.IsAdmin {
			return respond(c, models.NewPermissionDeniedError("Admin access required"))
		}
		return c.Next()
	}
}

// Validate decodes the JSON body into T and runs check on it. The decoded
// value is available to the handler through body.
func Validate[T any](check func(T) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var v T
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&v); err != nil {
				return respond(c, models.NewValidationError("Invalid request body"))
			}
		}
		if err := check(v); err != nil {
			var appErr *models.AppError
			if !errors.As(err, &appErr) {
				err = models.NewValidationError(err.Error())
			}
			return respond(c, err)
		}
		c.Locals(bodyKey, v)
		return c.Next()
	}
}

// body returns the value stored by Validate.
func body[T any](c *fiber.Ctx) T {
	v, _ := c.Locals(bodyKey).(T)
	return v
}
