package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification verbs.
const (
	VerbLikedPost = "liked your post"
)

// Notification target types.
const (
	TargetPost = "post"
)

// Notification records that Actor performed Verb on a target for Recipient.
// Rows are append-only history; only the read state changes after creation.
type Notification struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	RecipientID uint           `gorm:"not null;index:idx_notifications_recipient_read" json:"recipient_id"`
	ActorID     uint           `gorm:"not null" json:"actor_id"`
	Actor       User           `gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE" json:"-"`
	Recipient   User           `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"-"`
	Verb        string         `gorm:"size:255;not null" json:"verb"`
	TargetType  string         `gorm:"size:50" json:"target_type"`
	TargetID    uint           `json:"target_id"`
	Data        datatypes.JSON `json:"data,omitempty"`
	IsRead      bool           `gorm:"default:false;not null;index:idx_notifications_recipient_read" json:"is_read"`
	ReadAt      *time.Time     `json:"read_at,omitempty"`
	Timestamp   time.Time      `gorm:"autoCreateTime;index" json:"timestamp"`
}

// NotificationView is the listing shape returned to the recipient.
type NotificationView struct {
	ID         uint           `json:"id"`
	Actor      string         `json:"actor"`
	ActorID    uint           `json:"actor_id"`
	Verb       string         `json:"verb"`
	TargetType string         `json:"target_type"`
	TargetID   uint           `json:"target_id"`
	Data       datatypes.JSON `json:"data,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	IsRead     bool           `json:"is_read"`
}

// View converts n into its listing shape. Actor must be preloaded for the username.
func (n Notification) View() NotificationView {
	return NotificationView{
		ID:         n.ID,
		Actor:      n.Actor.Username,
		ActorID:    n.ActorID,
		Verb:       n.Verb,
		TargetType: n.TargetType,
		TargetID:   n.TargetID,
		Data:       n.Data,
		Timestamp:  n.Timestamp,
		IsRead:     n.IsRead,
	}
}
