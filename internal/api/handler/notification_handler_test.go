package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

func TestNotificationHandler_List(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	events := []domain.NotificationEvent{
		{ID: "contact:c1", Kind: domain.KindContact, Title: "New contact", OccurredAt: now.Add(-30 * time.Second)},
		{ID: "course:e1", Kind: domain.KindCourse, Title: "New enrollment", Read: true, OccurredAt: now.Add(-2 * time.Hour)},
		{ID: "workshop:r1", Kind: domain.KindWorkshop, Title: "New registration", OccurredAt: now.Add(-10 * 24 * time.Hour)},
	}

	e := newTestEcho()
	h := NewNotificationHandler(&stubNotificationService{
		listFn: func(_ context.Context, filter domain.Filter) ([]domain.NotificationEvent, error) {
			if filter != domain.FilterAll {
				t.Fatalf("expected filter all, got %q", filter)
			}
			return events, nil
		},
	})
	h.now = func() time.Time { return now }

	c, rec := jsonContext(e, http.MethodGet, "/admin/notifications", nil)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp notificationListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Unread != 2 || len(resp.Items) != 3 {
		t.Fatalf("unexpected payload %+v", resp)
	}

	want := []string{"Just now", "2 hours ago", "Feb 28, 2025"}
	for i, item := range resp.Items {
		if item.RelativeTime != want[i] {
			t.Errorf("item %d: relative time %q, want %q", i, item.RelativeTime, want[i])
		}
	}
}

func TestNotificationHandler_List_FilterIsPassedThrough(t *testing.T) {
	e := newTestEcho()
	var got domain.Filter
	h := NewNotificationHandler(&stubNotificationService{
		listFn: func(_ context.Context, filter domain.Filter) ([]domain.NotificationEvent, error) {
			got = filter
			return nil, nil
		},
	})

	c, rec := jsonContext(e, http.MethodGet, "/admin/notifications?filter=Workshop", nil)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got != domain.FilterWorkshop {
		t.Fatalf("expected workshop filter, got %q", got)
	}

	var resp notificationListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Items == nil {
		t.Errorf("empty listing should encode as [], not null")
	}
}

func TestNotificationHandler_List_UnknownFilter(t *testing.T) {
	e := newTestEcho()
	h := NewNotificationHandler(&stubNotificationService{
		listFn: func(context.Context, domain.Filter) ([]domain.NotificationEvent, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	})

	c, _ := jsonContext(e, http.MethodGet, "/admin/notifications?filter=billing", nil)
	if err := h.List(c); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	e := newTestEcho()
	h := NewNotificationHandler(&stubNotificationService{
		markFn: func(_ context.Context, id string) (bool, error) {
			return id == "contact:c1", nil
		},
	})

	c, rec := jsonContext(e, http.MethodPost, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues("contact:c1")
	if err := h.MarkRead(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp markReadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != "contact:c1" || !resp.Persisted {
		t.Fatalf("unexpected payload %+v", resp)
	}
}

func TestNotificationHandler_UnreadCount(t *testing.T) {
	e := newTestEcho()
	h := NewNotificationHandler(&stubNotificationService{
		unreadFn: func(context.Context) (int, error) { return 4, nil },
	})

	c, rec := jsonContext(e, http.MethodGet, "/admin/notifications/unread-count", nil)
	if err := h.UnreadCount(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Body.String() != "{\"unread\":4}\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
