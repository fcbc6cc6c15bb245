package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"agora/internal/listquery"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxTitleLen   = 200
	maxContentLen = 50000
	maxTags       = 20
)

// PostService holds the blog and social post rules.
type PostService struct {
	posts repository.PostRepository
	tags  repository.TagRepository
	now   func() time.Time
}

type CreatePostInput struct {
	UserID   uint
	Title    string
	Content  string
	ImageURL string
	Tags     []string
}

// UpdatePostInput carries the fields to change; nil fields keep their value.
type UpdatePostInput struct {
	PostID   uint
	Title    *string
	Content  *string
	ImageURL *string
	Tags     *[]string
}

func NewPostService(posts repository.PostRepository, tags repository.TagRepository) *PostService {
	return &PostService{posts: posts, tags: tags, now: time.Now}
}

func validatePostFields(title, content, imageURL string, tags []string) error {
	if err := validation.ValidateTitle("Title", title, maxTitleLen); err != nil {
		return models.NewValidationError(err.Error())
	}
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 50000 characters)")
	}
	if err := validation.ValidateURL(imageURL); err != nil {
		return models.NewValidationError("image_url " + err.Error())
	}
	if len(tags) > maxTags {
		return models.NewValidationError("Too many tags (max 20)")
	}
	return nil
}

// CreatePost stores a post authored by in.UserID. The author always comes from
// the caller's identity.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (_ *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "CreatePost",
		attribute.Int64("author_id", int64(in.UserID)))
	defer func() { observability.EndSpan(span, err) }()

	if err := requireActor(in.UserID); err != nil {
		return nil, err
	}
	if err := validatePostFields(in.Title, in.Content, in.ImageURL, in.Tags); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:         strings.TrimSpace(in.Title),
		Content:       in.Content,
		ImageURL:      in.ImageURL,
		UserID:        in.UserID,
		PublishedDate: s.now(),
	}
	if err := s.posts.Create(ctx, post, in.Tags); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, post.ID)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// PostAuthor returns the owner of a post.
func (s *PostService) PostAuthor(ctx context.Context, id uint) (uint, error) {
	return s.posts.AuthorID(ctx, id)
}

func (s *PostService) ListPosts(ctx context.Context, q url.Values) ([]models.Post, error) {
	return s.posts.List(ctx, q)
}

// SearchPosts matches title, content and tag names.
func (s *PostService) SearchPosts(ctx context.Context, term string, page listquery.Page) ([]models.Post, error) {
	if strings.TrimSpace(term) == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.posts.Search(ctx, term, page)
}

// PostsByTag lists posts carrying the tag with the given slug.
func (s *PostService) PostsByTag(ctx context.Context, slug string, page listquery.Page) ([]models.Post, error) {
	if _, err := s.tags.GetBySlug(ctx, slug); err != nil {
		return nil, err
	}
	return s.posts.ListByTag(ctx, slug, page)
}

func (s *PostService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.tags.List(ctx)
}

// Feed returns posts by the accounts userID follows, newest first.
func (s *PostService) Feed(ctx context.Context, userID uint, page listquery.Page) (_ []models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Feed",
		attribute.Int64("user_id", int64(userID)))
	defer func() { observability.EndSpan(span, err) }()

	if err := requireActor(userID); err != nil {
		return nil, err
	}
	return s.posts.Feed(ctx, userID, page)
}

// UpdatePost applies the non-nil fields of in. The author never changes.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.ImageURL != nil {
		post.ImageURL = *in.ImageURL
	}
	var tags []string
	if in.Tags != nil {
		tags = *in.Tags
		if tags == nil {
			tags = []string{}
		}
	}
	if err := validatePostFields(post.Title, post.Content, post.ImageURL, tags); err != nil {
		return nil, err
	}

	if err := s.posts.Update(ctx, post, tags); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, post.ID)
}

func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	return s.posts.Delete(ctx, id)
}
