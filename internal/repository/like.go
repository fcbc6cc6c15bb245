package repository

import (
	"context"

	"agora/internal/cache"
	"agora/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository records likes and the notifications they cause.
type LikeRepository interface {
	// Like inserts the like and, when the post belongs to someone else, the
	// notification for its author in the same transaction. The returned
	// notification is nil for self-likes.
	Like(ctx context.Context, userID, postID uint) (*models.Notification, error)
	Unlike(ctx context.Context, userID, postID uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Count(ctx context.Context, postID uint) (int64, error)
}

type likeRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewLikeRepository creates a LikeRepository. rdb may be nil.
func NewLikeRepository(db *gorm.DB, rdb *redis.Client) LikeRepository {
	return &likeRepository{db: db, rdb: rdb}
}

func (r *likeRepository) Like(ctx context.Context, userID, postID uint) (*models.Notification, error) {
	var created *models.Notification

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "user_id", "title").First(&post, postID).Error; err != nil {
			return lookupError(err, "Post", postID)
		}

		// Concurrent likes race on the unique index; exactly one insert lands.
		like := models.Like{UserID: userID, PostID: postID}
		res := tx.Omit("User", "Post").
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
				DoNothing: true,
			}).
			Create(&like)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError(models.ErrDuplicateLike)
		}

		if post.UserID == userID {
			return nil
		}

		var actor models.User
		if err := tx.Select("id", "username").First(&actor, userID).Error; err != nil {
			return lookupError(err, "User", userID)
		}

		n := models.Notification{
			RecipientID: post.UserID,
			ActorID:     userID,
			Verb:        models.VerbLikedPost,
			TargetType:  models.TargetPost,
			TargetID:    post.ID,
			Data: datatypes.JSON(mustJSON(map[string]any{
				"post_title": post.Title,
				"actor":      actor.Username,
			})),
		}
		if err := tx.Omit("Actor", "Recipient").Create(&n).Error; err != nil {
			return models.NewInternalError(err)
		}
		n.Actor = actor
		created = &n
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, r.rdb, cache.PostKey(postID))
	return created, nil
}

// Unlike hard-deletes the like. Notifications already sent stay.
func (r *likeRepository) Unlike(ctx context.Context, userID, postID uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return models.NewInternalError(err)
	}
	if count == 0 {
		return models.NewNotFoundError("Post", postID)
	}

	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewConflictError(models.ErrLikeNotFound)
	}

	cache.Invalidate(ctx, r.rdb, cache.PostKey(postID))
	return nil
}

func (r *likeRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *likeRepository) Count(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
