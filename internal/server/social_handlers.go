package server

import (
	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/users/:id/follow
// @Summary Follow a user
// @Tags social
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{status=string}
// @Failure 400 {object} models.ErrorResponse "Self-follow"
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.socialService.Follow(reqCtx(c), currentUserID(c), id); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"status": "Now following user"})
}

// UnfollowUser handles POST /api/users/:id/unfollow
// @Summary Unfollow a user
// @Tags social
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{status=string}
// @Router /users/{id}/unfollow [post]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.socialService.Unfollow(reqCtx(c), currentUserID(c), id); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"status": "Unfollowed user"})
}

// ListFollowers handles GET /api/users/:id/followers
func (s *Server) ListFollowers(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	users, err := s.socialService.Followers(reqCtx(c), id, page(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(users)
}

// ListFollowing handles GET /api/users/:id/following
func (s *Server) ListFollowing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	users, err := s.socialService.Following(reqCtx(c), id, page(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(users)
}

// LikePost handles POST /api/posts/:id/like
// @Summary Like a post
// @Tags social
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 201 {object} object{status=string}
// @Failure 400 {object} models.ErrorResponse "Already liked"
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.socialService.Like(reqCtx(c), currentUserID(c), id); err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "Post liked"})
}

// UnlikePost handles POST /api/posts/:id/unlike
// @Summary Unlike a post
// @Tags social
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{status=string}
// @Failure 400 {object} models.ErrorResponse "Not liked"
// @Router /posts/{id}/unlike [post]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.socialService.Unlike(reqCtx(c), currentUserID(c), id); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"status": "Post unliked"})
}
