package server

import (
	"errors"
	"log/slog"

	"agora/internal/featureflags"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// NotificationStreamHandler serves GET /api/ws/notifications. Each new
// notification for the caller is pushed as a notification.created event.
func (s *Server) NotificationStreamHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("notification stream rejected",
				slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
			msg := `{"error":"connection limit reached"}`
			if errors.Is(err, notifications.ErrHubClosed) {
				msg = `{"error":"server shutting down"}`
			}
			_ = conn.WriteMessage(websocket.TextMessage, []byte(msg))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if s.hub == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
				Error: "Notification stream unavailable",
			})
		}
		if !s.featureFlags.Enabled(featureflags.NotificationStream, currentUserID(c)) {
			return respond(c, models.NewNotFoundError("Stream", "notifications"))
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}
