package server

import (
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListComments handles GET /api/comments?post=
// @Summary List comments
// @Tags comments
// @Produce json
// @Param post query int false "Post ID"
// @Success 200 {array} models.Comment
// @Router /comments [get]
func (s *Server) ListComments(c *fiber.Ctx) error {
	comments, err := s.commentService.ListComments(reqCtx(c), queryValues(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(comments)
}

// GetComment handles GET /api/comments/:id
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.GetComment(reqCtx(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(comment)
}

// CreateComment handles POST /api/comments
// @Summary Comment on a post
// @Tags comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{post=int,content=string,tags=[]string} true "Comment"
// @Success 201 {object} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	req := body[commentRequest](c)
	in := service.CreateCommentInput{
		UserID:  currentUserID(c),
		PostID:  req.Post,
		Content: req.Content,
	}
	if req.Tags != nil {
		in.Tags = *req.Tags
	}
	comment, err := s.commentService.CreateComment(reqCtx(c), in)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT|PATCH /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	req := body[commentRequest](c)
	comment, err := s.commentService.UpdateComment(reqCtx(c), id, service.UpdateCommentInput{
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteComment(reqCtx(c), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
