package repository

import (
	"context"
	"time"

	"agora/internal/listquery"
	"agora/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository reads and acknowledges a recipient's notifications.
type NotificationRepository interface {
	// List returns notifications newest first, all of them for a zero page.
	// With markRead, the unread ones returned are flagged read in the same
	// transaction; the returned rows keep the state they had before the update.
	List(ctx context.Context, recipientID uint, page listquery.Page, markRead bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, recipientID uint, ids []uint) (int64, error)
	MarkAllRead(ctx context.Context, recipientID uint) (int64, error)
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
}

type notificationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewNotificationRepository creates a NotificationRepository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db, now: time.Now}
}

func (r *notificationRepository) List(ctx context.Context, recipientID uint, page listquery.Page, markRead bool) ([]models.Notification, error) {
	out := []models.Notification{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Preload("Actor").
			Where("recipient_id = ?", recipientID).
			Order("timestamp DESC").Order("id DESC")
		if err := page.Scope(q).Find(&out).Error; err != nil {
			return err
		}
		if !markRead {
			return nil
		}

		unread := make([]uint, 0, len(out))
		for _, n := range out {
			if !n.IsRead {
				unread = append(unread, n.ID)
			}
		}
		if len(unread) == 0 {
			return nil
		}
		return r.markRead(tx, recipientID, unread).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *notificationRepository) markRead(tx *gorm.DB, recipientID uint, ids []uint) *gorm.DB {
	q := tx.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", recipientID, false)
	if ids != nil {
		q = q.Where("id IN ?", ids)
	}
	return q.Updates(map[string]any{"is_read": true, "read_at": r.now()})
}

// MarkRead flags the given ids read. Ids owned by other users are skipped.
func (r *notificationRepository) MarkRead(ctx context.Context, recipientID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.markRead(r.db.WithContext(ctx), recipientID, ids)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	res := r.markRead(r.db.WithContext(ctx), recipientID, nil)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
