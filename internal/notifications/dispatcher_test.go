package notifications

import (
	"context"
	"errors"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	name   string
	err    error
	events []Event
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Publish(_ context.Context, e Event) error {
	s.events = append(s.events, e)
	return s.err
}

func TestDispatcher_FansOutAndSwallowsFailures(t *testing.T) {
	failing := &recordingSink{name: "failing", err: errors.New("down")}
	ok := &recordingSink{name: "ok"}
	d := NewDispatcher(failing, nil, ok)

	n := models.Notification{ID: 1, RecipientID: 2, ActorID: 3, Verb: models.VerbLikedPost}
	d.NotificationCreated(context.Background(), n, "carol")

	require.Len(t, failing.events, 1)
	require.Len(t, ok.events, 1)
	assert.Equal(t, uint(2), ok.events[0].RecipientID)
	assert.Equal(t, "carol", ok.events[0].Payload.Actor)
}

func TestDispatcher_NilIsSafe(t *testing.T) {
	var d *Dispatcher
	assert.NotPanics(t, func() {
		d.NotificationCreated(context.Background(), models.Notification{Verb: "x"}, "a")
	})
}

func TestNATSPublisher_DisabledWithoutURL(t *testing.T) {
	conn, err := ConnectNATS("")
	require.NoError(t, err)
	assert.Nil(t, conn)

	p := NewNATSPublisher(conn)
	assert.Equal(t, "nats", p.Name())
	assert.NoError(t, p.Publish(context.Background(), Event{Type: EventNotificationCreated}))
	assert.NotPanics(t, p.Close)
}
