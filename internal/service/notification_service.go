package service

import (
	"context"

	"agora/internal/featureflags"
	"agora/internal/listquery"
	"agora/internal/models"
	"agora/internal/repository"
)

// NotificationService lists and acknowledges a user's notifications.
type NotificationService struct {
	repo  repository.NotificationRepository
	flags *featureflags.Manager
}

// NewNotificationService returns a NotificationService. A nil flag manager
// keeps read-on-fetch enabled.
func NewNotificationService(repo repository.NotificationRepository, flags *featureflags.Manager) *NotificationService {
	return &NotificationService{repo: repo, flags: flags}
}

// List returns recipientID's notifications newest first; a zero page returns
// all of them. Unless read-on-fetch
// is switched off, listing marks the returned unread items read; the response
// still shows them as unread.
func (s *NotificationService) List(ctx context.Context, recipientID uint, page listquery.Page) ([]models.NotificationView, error) {
	if err := requireActor(recipientID); err != nil {
		return nil, err
	}
	markRead := s.flags.Enabled(featureflags.NotificationsReadOnFetch, recipientID)
	rows, err := s.repo.List(ctx, recipientID, page, markRead)
	if err != nil {
		return nil, err
	}

	views := make([]models.NotificationView, 0, len(rows))
	for _, n := range rows {
		views = append(views, n.View())
	}
	return views, nil
}

// MarkRead acknowledges ids, or everything when ids is empty. It returns how
// many notifications changed state.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID uint, ids []uint) (int64, error) {
	if err := requireActor(recipientID); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return s.repo.MarkAllRead(ctx, recipientID)
	}
	return s.repo.MarkRead(ctx, recipientID, ids)
}

// UnreadCount returns how many notifications recipientID has not read.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	if err := requireActor(recipientID); err != nil {
		return 0, err
	}
	return s.repo.UnreadCount(ctx, recipientID)
}
