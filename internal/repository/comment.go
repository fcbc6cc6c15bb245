package repository

import (
	"context"
	"net/url"

	"agora/internal/cache"
	"agora/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment, tags []string) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	AuthorID(ctx context.Context, id uint) (uint, error)
	List(ctx context.Context, q url.Values) ([]models.Comment, error)
	Update(ctx context.Context, comment *models.Comment, tags []string) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewCommentRepository creates a new CommentRepository. rdb may be nil.
// Creating or deleting a comment evicts the cached post, whose
// comments_count it changes.
func NewCommentRepository(db *gorm.DB, rdb *redis.Client) CommentRepository {
	return &commentRepository{db: db, rdb: rdb}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment, tags []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "Post", "Tags").Create(comment).Error; err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}
		stored, err := replaceTags(tx, comment, tags)
		if err != nil {
			return err
		}
		comment.Tags = stored
		return nil
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.NewNotFoundError("Post", comment.PostID)
		}
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, r.rdb, cache.PostKey(comment.PostID))
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		First(&comment, id).Error
	if err != nil {
		return nil, lookupError(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) AuthorID(ctx context.Context, id uint) (uint, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Select("id", "user_id").First(&comment, id).Error; err != nil {
		return 0, lookupError(err, "Comment", id)
	}
	return comment.UserID, nil
}

func (r *commentRepository) List(ctx context.Context, q url.Values) ([]models.Comment, error) {
	comments := []models.Comment{}
	db := r.db.WithContext(ctx).Model(&models.Comment{}).Preload("User").Preload("Tags")
	if err := CommentListSpec.Apply(db, q).Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// Update writes the content. A nil tags slice leaves tags untouched.
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment, tags []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(comment).Select("content", "updated_at").Updates(comment).Error; err != nil {
			return err
		}
		if tags == nil {
			return nil
		}
		stored, err := replaceTags(tx, comment, tags)
		if err != nil {
			return err
		}
		comment.Tags = stored
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Select("id", "post_id").First(&comment, id).Error; err != nil {
		return lookupError(err, "Comment", id)
	}
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	cache.Invalidate(ctx, r.rdb, cache.PostKey(comment.PostID))
	return nil
}
