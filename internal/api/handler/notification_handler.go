package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

// NotificationHandler serves the admin activity feed.
type NotificationHandler struct {
	service ports.NotificationService
	now     func() time.Time
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service, now: time.Now}
}

// List handles GET /admin/notifications.
//
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        filter  query     string  false  "all, contact, workshop or course"  default(all)
// @Success      200     {object}  notificationListResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /admin/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	filter, err := domain.ParseFilter(c.QueryParam("filter"))
	if err != nil {
		return err
	}

	events, err := h.service.ListNotifications(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	items, unread := toNotificationResponses(events, h.now())
	return c.JSON(http.StatusOK, notificationListResponse{
		Filter: filter,
		Items:  items,
		Unread: unread,
	})
}

// UnreadCount handles GET /admin/notifications/unread-count.
//
// @Summary      Count unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  unreadCountResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	n, err := h.service.UnreadCount(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, unreadCountResponse{Unread: n})
}

// MarkRead handles POST /admin/notifications/:id/read. Only contact
// submissions store a read flag; for other kinds persisted is false and the
// client keeps the flag locally.
//
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification id, e.g. contact:65f1..."
// @Success      200  {object}  markReadResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /admin/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id := c.Param("id")
	persisted, err := h.service.MarkRead(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, markReadResponse{ID: id, Persisted: persisted})
}
