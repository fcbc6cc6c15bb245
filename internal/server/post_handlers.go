package server

import (
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPosts handles GET /api/posts
// @Summary List posts
// @Description Filter with author, author_id or tag; search with search; order with ordering
// @Tags posts
// @Produce json
// @Param author query string false "Author username"
// @Param tag query string false "Tag slug"
// @Param search query string false "Search title and content"
// @Param ordering query string false "published_date, -published_date, title or -title"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(reqCtx(c), queryValues(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(reqCtx(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{title=string,content=string,image_url=string,tags=[]string} true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	req := body[postRequest](c)
	in := service.CreatePostInput{
		UserID:  currentUserID(c),
		Title:   *req.Title,
		Content: *req.Content,
	}
	if req.ImageURL != nil {
		in.ImageURL = *req.ImageURL
	}
	if req.Tags != nil {
		in.Tags = *req.Tags
	}

	post, err := s.postService.CreatePost(reqCtx(c), in)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT|PATCH /api/posts/:id. Only the author may update.
// @Summary Update post
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	req := body[postRequest](c)
	post, err := s.postService.UpdatePost(reqCtx(c), service.UpdatePostInput{
		PostID:   id,
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		Tags:     req.Tags,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id. Only the author may delete.
// @Summary Delete post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(reqCtx(c), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListTags handles GET /api/tags
func (s *Server) ListTags(c *fiber.Ctx) error {
	tags, err := s.postService.ListTags(reqCtx(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(tags)
}

// ListPostsByTag handles GET /api/tags/:slug/posts
// @Summary Posts by tag
// @Tags posts
// @Produce json
// @Param slug path string true "Tag slug"
// @Success 200 {array} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /tags/{slug}/posts [get]
func (s *Server) ListPostsByTag(c *fiber.Ctx) error {
	posts, err := s.postService.PostsByTag(reqCtx(c), c.Params("slug"), page(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(posts)
}

// SearchPosts handles GET /api/search?q=
// @Summary Search posts
// @Description Matches title, content and tag names
// @Tags posts
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	posts, err := s.postService.SearchPosts(reqCtx(c), c.Query("q"), page(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(posts)
}

// GetFeed handles GET /api/feed
// @Summary Feed
// @Description Posts by followed users, newest first
// @Tags social
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Post
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	posts, err := s.postService.Feed(reqCtx(c), currentUserID(c), page(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(posts)
}
