package server

import (
	"github.com/gofiber/fiber/v2"
)

// ListNotifications handles GET /api/notifications
// @Summary List notifications
// @Description Newest first, every notification unless limit or offset is given. Unread items returned are marked read by this call.
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page start"
// @Success 200 {array} models.NotificationView
// @Router /notifications [get]
func (s *Server) ListNotifications(c *fiber.Ctx) error {
	items, err := s.notificationService.List(reqCtx(c), currentUserID(c), optionalPage(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(items)
}

// MarkNotificationsRead handles POST /api/notifications/read. An empty ids
// list acknowledges everything.
// @Summary Acknowledge notifications
// @Tags notifications
// @Security BearerAuth
// @Accept json
// @Param request body object{ids=[]int} false "Notification ids"
// @Success 200 {object} object{updated=int}
// @Router /notifications/read [post]
func (s *Server) MarkNotificationsRead(c *fiber.Ctx) error {
	req := body[markReadRequest](c)
	n, err := s.notificationService.MarkRead(reqCtx(c), currentUserID(c), req.IDs)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

// UnreadNotificationCount handles GET /api/notifications/unread-count
func (s *Server) UnreadNotificationCount(c *fiber.Ctx) error {
	n, err := s.notificationService.UnreadCount(reqCtx(c), currentUserID(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"unread": n})
}
