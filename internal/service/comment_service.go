package service

import (
	"context"
	"net/url"
	"strings"

	"agora/internal/models"
	"agora/internal/repository"
)

const maxCommentLen = 10000

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
	Tags    []string
}

// UpdateCommentInput carries a comment edit. A nil Tags leaves tags untouched;
// an empty slice clears them.
type UpdateCommentInput struct {
	Content string
	Tags    *[]string
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts}
}

func validateComment(content string, tags []string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return models.NewValidationError("Comment too long (max 10000 characters)")
	}
	if len(tags) > maxTags {
		return models.NewValidationError("Too many tags (max 20)")
	}
	return nil
}

// CreateComment attaches a comment by in.UserID to an existing post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := requireActor(in.UserID); err != nil {
		return nil, err
	}
	if err := validateComment(in.Content, in.Tags); err != nil {
		return nil, err
	}
	if _, err := s.posts.AuthorID(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: in.Content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.comments.Create(ctx, comment, in.Tags); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, comment.ID)
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	return s.comments.GetByID(ctx, id)
}

// CommentAuthor returns the owner of a comment.
func (s *CommentService) CommentAuthor(ctx context.Context, id uint) (uint, error) {
	return s.comments.AuthorID(ctx, id)
}

func (s *CommentService) ListComments(ctx context.Context, q url.Values) ([]models.Comment, error) {
	return s.comments.List(ctx, q)
}

func (s *CommentService) UpdateComment(ctx context.Context, id uint, in UpdateCommentInput) (*models.Comment, error) {
	var tags []string
	if in.Tags != nil {
		tags = *in.Tags
		if tags == nil {
			tags = []string{}
		}
	}
	if err := validateComment(in.Content, tags); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comment.Content = in.Content
	if err := s.comments.Update(ctx, comment, tags); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, id)
}

func (s *CommentService) DeleteComment(ctx context.Context, id uint) error {
	return s.comments.Delete(ctx, id)
}
