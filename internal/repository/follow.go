package repository

import (
	"context"

	"agora/internal/cache"
	"agora/internal/listquery"
	"agora/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository manages the directed follow graph.
type FollowRepository interface {
	// Follow inserts the edge; it reports false when the edge already existed.
	Follow(ctx context.Context, followerID, followingID uint) (bool, error)
	// Unfollow removes the edge if present.
	Unfollow(ctx context.Context, followerID, followingID uint) error
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	Followers(ctx context.Context, userID uint, page listquery.Page) ([]models.User, error)
	Following(ctx context.Context, userID uint, page listquery.Page) ([]models.User, error)
}

type followRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewFollowRepository creates a FollowRepository. rdb may be nil.
func NewFollowRepository(db *gorm.DB, rdb *redis.Client) FollowRepository {
	return &followRepository{db: db, rdb: rdb}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followingID uint) (bool, error) {
	edge := models.Follow{FollowerID: followerID, FollowingID: followingID}
	res := r.db.WithContext(ctx).
		Omit("Follower", "Following").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
			DoNothing: true,
		}).
		Create(&edge)
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return false, models.NewNotFoundError("User", followingID)
		}
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.Invalidate(ctx, r.rdb, cache.UserKey(followerID), cache.UserKey(followingID))
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followingID uint) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.Invalidate(ctx, r.rdb, cache.UserKey(followerID), cache.UserKey(followingID))
	}
	return nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) Followers(ctx context.Context, userID uint, page listquery.Page) ([]models.User, error) {
	return r.listUsers(ctx, "users.id IN (SELECT follower_id FROM follows WHERE following_id = ?)", userID, page)
}

func (r *followRepository) Following(ctx context.Context, userID uint, page listquery.Page) ([]models.User, error) {
	return r.listUsers(ctx, "users.id IN (SELECT following_id FROM follows WHERE follower_id = ?)", userID, page)
}

func (r *followRepository) listUsers(ctx context.Context, where string, userID uint, page listquery.Page) ([]models.User, error) {
	users := []models.User{}
	if err := withFollowCounts(r.db.WithContext(ctx)).
		Where(where, userID).
		Order("users.username").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
