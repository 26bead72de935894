package ports

import (
	"context"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

// NotificationService builds the admin activity feed.
type NotificationService interface {
	// ListNotifications returns the events selected by filter, newest first.
	// A failing source contributes nothing instead of failing the call.
	ListNotifications(ctx context.Context, filter domain.Filter) ([]domain.NotificationEvent, error)
	// MarkRead persists the read flag for contact events. For other kinds it
	// reports false and writes nothing.
	MarkRead(ctx context.Context, eventID string) (bool, error)
	// UnreadCount counts unread events across all kinds.
	UnreadCount(ctx context.Context) (int, error)
}
