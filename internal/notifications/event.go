package notifications

import (
	"encoding/json"

	"agora/internal/models"
)

// EventNotificationCreated is the event type for a freshly stored notification.
const EventNotificationCreated = "notification.created"

// Event is the envelope published to realtime sinks.
type Event struct {
	Type        string                  `json:"type"`
	RecipientID uint                    `json:"recipient_id"`
	Payload     models.NotificationView `json:"payload"`
}

// NewCreatedEvent wraps a stored notification; actor is the actor's username.
func NewCreatedEvent(n models.Notification, actor string) Event {
	view := n.View()
	view.Actor = actor
	return Event{
		Type:        EventNotificationCreated,
		RecipientID: n.RecipientID,
		Payload:     view,
	}
}

// Marshal encodes the event as JSON.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
