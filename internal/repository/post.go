package repository

import (
	"context"
	"net/url"
	"strings"

	"agora/internal/cache"
	"agora/internal/listquery"
	"agora/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, tags []string) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	AuthorID(ctx context.Context, id uint) (uint, error)
	List(ctx context.Context, q url.Values) ([]models.Post, error)
	ListByTag(ctx context.Context, slug string, page listquery.Page) ([]models.Post, error)
	Search(ctx context.Context, term string, page listquery.Page) ([]models.Post, error)
	Feed(ctx context.Context, userID uint, page listquery.Page) ([]models.Post, error)
	Update(ctx context.Context, post *models.Post, tags []string) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewPostRepository creates a new post repository. rdb may be nil.
func NewPostRepository(db *gorm.DB, rdb *redis.Client) PostRepository {
	return &postRepository{db: db, rdb: rdb}
}

// withPostDetails adds subqueries to fetch counts in a single query and preloads
// the author and tags.
func withPostDetails(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Post{}).
		Select("posts.*, " +
			"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count, " +
			"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count").
		Preload("User").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") })
}

func (r *postRepository) Create(ctx context.Context, post *models.Post, tags []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "Tags").Create(post).Error; err != nil {
			return err
		}
		return replacePostTags(tx, post, tags)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func replacePostTags(tx *gorm.DB, post *models.Post, names []string) error {
	tags, err := replaceTags(tx, post, names)
	if err != nil {
		return err
	}
	post.Tags = tags
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, r.rdb, cache.PostKey(id), &post, cache.PostTTL, func() error {
		if err := withPostDetails(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
			return lookupError(err, "Post", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The cached entry carries counts and tags; the author is read live so a
	// profile edit shows up before the entry expires.
	post.User = models.User{}
	if err := r.db.WithContext(ctx).First(&post.User, post.UserID).Error; err != nil {
		return nil, lookupError(err, "User", post.UserID)
	}
	return &post, nil
}

// AuthorID returns the owner of a post without loading it.
func (r *postRepository) AuthorID(ctx context.Context, id uint) (uint, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Select("id", "user_id").First(&post, id).Error; err != nil {
		return 0, lookupError(err, "Post", id)
	}
	return post.UserID, nil
}

func (r *postRepository) List(ctx context.Context, q url.Values) ([]models.Post, error) {
	return r.find(PostListSpec.Apply(withPostDetails(r.db.WithContext(ctx)), q))
}

func (r *postRepository) ListByTag(ctx context.Context, slug string, page listquery.Page) ([]models.Post, error) {
	db := withPostDetails(r.db.WithContext(ctx)).
		Where(PostListSpec.Filters["tag"].Where, slug)
	return r.find(newestFirst(db, page))
}

// Search matches title, content or a tag name.
func (r *postRepository) Search(ctx context.Context, term string, page listquery.Page) ([]models.Post, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	db := withPostDetails(r.db.WithContext(ctx)).
		Where("LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ? OR posts.id IN "+
			"(SELECT pt.post_id FROM post_tags pt JOIN tags ON tags.id = pt.tag_id WHERE LOWER(tags.name) LIKE ?)",
			pattern, pattern, pattern)
	return r.find(newestFirst(db, page))
}

// Feed lists posts by the users userID follows, newest first. It is never cached.
func (r *postRepository) Feed(ctx context.Context, userID uint, page listquery.Page) ([]models.Post, error) {
	db := withPostDetails(r.db.WithContext(ctx)).
		Where("posts.user_id IN (SELECT following_id FROM follows WHERE follower_id = ?)", userID)
	return r.find(newestFirst(db, page))
}

func newestFirst(db *gorm.DB, page listquery.Page) *gorm.DB {
	return db.Order("posts.published_date DESC").Order("posts.id DESC").
		Limit(page.Limit).Offset(page.Offset)
}

func (r *postRepository) find(db *gorm.DB) ([]models.Post, error) {
	posts := []models.Post{}
	if err := db.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Update writes title, content and image. A nil tags slice leaves tags untouched.
func (r *postRepository) Update(ctx context.Context, post *models.Post, tags []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(post).Select("title", "content", "image_url", "updated_at").Updates(post).Error; err != nil {
			return err
		}
		if tags == nil {
			return nil
		}
		return replacePostTags(tx, post, tags)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, r.rdb, cache.PostKey(post.ID))
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.Invalidate(ctx, r.rdb, cache.PostKey(id))
	return nil
}
