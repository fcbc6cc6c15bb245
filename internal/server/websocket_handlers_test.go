package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"agora/internal/notifications"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationStream(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.user("alice")
	_, bobToken := env.user("bob")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = env.app.Listener(ln) }()
	t.Cleanup(func() { _ = env.app.Shutdown() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = env.srv.hub.StartWiring(ctx, env.srv.notifier) }()
	require.Eventually(t, func() bool { return env.mr.PubSubNumPat() > 0 }, 2*time.Second, 10*time.Millisecond)

	base := "ws://" + ln.Addr().String() + "/api/ws/notifications"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	conn, _, err := websocket.DefaultDialer.Dial(base+"?token="+aliceToken, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return env.srv.hub.ConnectionCount(alice.ID) == 1 },
		2*time.Second, 10*time.Millisecond)

	status, raw := env.do(http.MethodPost, "/api/posts", map[string]any{"title": "Live", "content": "now"}, aliceToken)
	require.Equal(t, http.StatusCreated, status, string(raw))
	postID := decode[struct {
		ID uint `json:"id"`
	}](t, raw).ID

	status, _ = env.do(http.MethodPost, fmt.Sprintf("/api/posts/%d/like", postID), nil, bobToken)
	require.Equal(t, http.StatusCreated, status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event notifications.Event
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, notifications.EventNotificationCreated, event.Type)
	assert.Equal(t, alice.ID, event.RecipientID)
	assert.Equal(t, "bob", event.Payload.Actor)
	assert.Equal(t, postID, event.Payload.TargetID)
}

func TestNotificationStreamRequiresUpgrade(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user("alice")

	status, _ := env.do(http.MethodGet, "/api/ws/notifications", nil, token)
	assert.Equal(t, http.StatusUpgradeRequired, status)
}
