package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(10, nil)
	require.NoError(t, err)
	b, err := hub.Register(10, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, hub.ConnectionCount(10))

	hub.UnregisterClient(a)
	hub.UnregisterClient(a)
	assert.Equal(t, 1, hub.ConnectionCount(10))

	hub.UnregisterClient(b)
	assert.Equal(t, 0, hub.ConnectionCount(10))

	_, open := <-a.Send
	assert.False(t, open, "send channel closes on unregister")
}

func TestHub_PerUserLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(1, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(1, nil)
	assert.ErrorIs(t, err, ErrUserConnLimit)

	_, err = hub.Register(2, nil)
	assert.NoError(t, err)
}

func TestHub_BroadcastOnlyReachesRecipient(t *testing.T) {
	hub := NewHub()
	alice, err := hub.Register(1, nil)
	require.NoError(t, err)
	bob, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.Broadcast(1, []byte("hello"))

	select {
	case msg := <-alice.Send:
		assert.Equal(t, "hello", string(msg))
	default:
		t.Fatal("alice should have a queued message")
	}
	assert.Empty(t, bob.Send)
}

func TestClient_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(1, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer+5; i++ {
		c.TrySend([]byte("x"))
	}
	assert.Len(t, c.Send, sendBuffer)

	hub.UnregisterClient(c)
	assert.NotPanics(t, func() { c.TrySend([]byte("late")) })
}

func TestHub_StartWiringForwardsRedisMessages(t *testing.T) {
	rdb := newTestRedis(t)
	hub := NewHub()
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	client, err := hub.Register(5, nil)
	require.NoError(t, err)
	require.NoError(t, n.PublishUser(context.Background(), 5, `{"type":"notification.created"}`))

	select {
	case msg := <-client.Send:
		assert.Contains(t, string(msg), "notification.created")
	case <-time.After(time.Second):
		t.Fatal("message was not forwarded")
	}
}

func TestHub_ShutdownRejectsNewClients(t *testing.T) {
	hub := NewHub()
	_, err := hub.Register(1, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.ConnectionCount(1))

	_, err = hub.Register(1, nil)
	assert.ErrorIs(t, err, ErrHubClosed)
}
