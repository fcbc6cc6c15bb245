// Package service holds the business rules behind the HTTP handlers.
package service

import (
	"context"

	"agora/internal/listquery"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// NotificationSink receives notifications after their transaction commits.
type NotificationSink interface {
	NotificationCreated(ctx context.Context, n models.Notification, actor string)
}

// SocialService owns the follow graph and likes.
type SocialService struct {
	follows repository.FollowRepository
	likes   repository.LikeRepository
	users   repository.UserRepository
	sink    NotificationSink
}

// NewSocialService returns a SocialService. sink may be nil.
func NewSocialService(
	follows repository.FollowRepository,
	likes repository.LikeRepository,
	users repository.UserRepository,
	sink NotificationSink,
) *SocialService {
	return &SocialService{follows: follows, likes: likes, users: users, sink: sink}
}

func requireActor(actorID uint) error {
	if actorID == 0 {
		return models.NewAuthenticationRequiredError("Authentication credentials were not provided")
	}
	return nil
}

// Follow adds the edge actor -> target. Following someone twice is a no-op.
func (s *SocialService) Follow(ctx context.Context, actorID, targetID uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "SocialService", "Follow",
		attribute.Int64("actor_id", int64(actorID)), attribute.Int64("target_id", int64(targetID)))
	defer func() {
		observability.RecordInteraction("follow", err)
		observability.EndSpan(span, err)
	}()

	if err := requireActor(actorID); err != nil {
		return err
	}
	if actorID == targetID {
		return models.NewConflictError(models.ErrSelfFollow)
	}
	exists, err := s.users.Exists(ctx, targetID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("User", targetID)
	}
	_, err = s.follows.Follow(ctx, actorID, targetID)
	return err
}

// Unfollow removes the edge actor -> target whether or not it exists.
func (s *SocialService) Unfollow(ctx context.Context, actorID, targetID uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "SocialService", "Unfollow",
		attribute.Int64("actor_id", int64(actorID)), attribute.Int64("target_id", int64(targetID)))
	defer func() {
		observability.RecordInteraction("unfollow", err)
		observability.EndSpan(span, err)
	}()

	if err := requireActor(actorID); err != nil {
		return err
	}
	exists, err := s.users.Exists(ctx, targetID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("User", targetID)
	}
	return s.follows.Unfollow(ctx, actorID, targetID)
}

// Followers lists who follows userID.
func (s *SocialService) Followers(ctx context.Context, userID uint, page listquery.Page) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Followers(ctx, userID, page)
}

// Following lists who userID follows.
func (s *SocialService) Following(ctx context.Context, userID uint, page listquery.Page) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Following(ctx, userID, page)
}

// IsFollowing reports whether followerID follows followingID.
func (s *SocialService) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.follows.IsFollowing(ctx, followerID, followingID)
}

// Like records actor's like on postID. The post author is notified unless they
// liked their own post; fan-out to the sink happens after commit.
func (s *SocialService) Like(ctx context.Context, actorID, postID uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "SocialService", "Like",
		attribute.Int64("actor_id", int64(actorID)), attribute.Int64("post_id", int64(postID)))
	defer func() {
		observability.RecordInteraction("like", err)
		observability.EndSpan(span, err)
	}()

	if err := requireActor(actorID); err != nil {
		return err
	}
	n, err := s.likes.Like(ctx, actorID, postID)
	if err != nil {
		return err
	}
	if n != nil && s.sink != nil {
		s.sink.NotificationCreated(ctx, *n, n.Actor.Username)
	}
	return nil
}

// Unlike removes actor's like on postID. Notifications already created stay.
func (s *SocialService) Unlike(ctx context.Context, actorID, postID uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "SocialService", "Unlike",
		attribute.Int64("actor_id", int64(actorID)), attribute.Int64("post_id", int64(postID)))
	defer func() {
		observability.RecordInteraction("unlike", err)
		observability.EndSpan(span, err)
	}()

	if err := requireActor(actorID); err != nil {
		return err
	}
	return s.likes.Unlike(ctx, actorID, postID)
}

// IsLiked reports whether userID likes postID.
func (s *SocialService) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.likes.IsLiked(ctx, userID, postID)
}
