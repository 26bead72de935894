package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/circuitcraft/academy-admin/internal/api/middleware"
	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

func TestSessionHandler_Current_Authorized(t *testing.T) {
	e := newTestEcho()
	access := &stubAccessService{
		evaluateFn: func(_ context.Context, token string) ports.Decision {
			if token != "tok" {
				t.Fatalf("unexpected token %q", token)
			}
			return ports.Decision{State: domain.GateAuthorized, Profile: &domain.Profile{ID: "u1", IsAdmin: true}}
		},
	}
	h := NewSessionHandler(access, nil, zerolog.Nop())

	c, rec := jsonContext(e, http.MethodGet, "/admin/session", nil)
	c.Set(middleware.ContextToken, "tok")
	if err := h.Current(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp gateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.State != domain.GateAuthorized || resp.Profile == nil || resp.Profile.ID != "u1" {
		t.Fatalf("unexpected payload %+v", resp)
	}
}

func TestSessionHandler_Current_NonAdminHidesProfile(t *testing.T) {
	e := newTestEcho()
	access := &stubAccessService{
		evaluateFn: func(context.Context, string) ports.Decision {
			return ports.Decision{State: domain.GateAuthenticatedNonAdmin, Profile: &domain.Profile{ID: "u1"}}
		},
	}
	h := NewSessionHandler(access, nil, zerolog.Nop())

	c, rec := jsonContext(e, http.MethodGet, "/admin/session", nil)
	c.Set(middleware.ContextToken, "tok")
	if err := h.Current(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if strings.Contains(rec.Body.String(), `"profile"`) {
		t.Fatalf("non-admin response must not carry a profile: %s", rec.Body.String())
	}
}

func TestSessionHandler_Current_NoTokenSkipsEvaluation(t *testing.T) {
	e := newTestEcho()
	access := &stubAccessService{
		evaluateFn: func(context.Context, string) ports.Decision {
			t.Fatalf("should not be called")
			return ports.Decision{}
		},
	}
	h := NewSessionHandler(access, nil, zerolog.Nop())

	c, rec := jsonContext(e, http.MethodGet, "/admin/session", nil)
	if err := h.Current(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"unauthenticated"`) {
		t.Fatalf("expected 200 unauthenticated, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSessionHandler_Stream_EndsOnSignOut(t *testing.T) {
	e := newTestEcho()
	watcher := newScriptedWatcher(
		ports.GateSnapshot{State: domain.GateAuthorized, Profile: &domain.Profile{ID: "u1", IsAdmin: true}, Seq: 1},
		ports.GateSnapshot{State: domain.GateUnauthenticated, Seq: 2},
	)
	var watched string
	h := NewSessionHandler(&stubAccessService{}, func(token string) ports.SessionWatcher {
		watched = token
		return watcher
	}, zerolog.Nop())

	c, rec := jsonContext(e, http.MethodGet, "/admin/session/stream", nil)
	c.Set(middleware.ContextToken, "tok")
	if err := h.Stream(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if watched != "tok" {
		t.Errorf("watcher built for %q", watched)
	}
	if !watcher.isClosed() {
		t.Errorf("watcher must be closed when the stream ends")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("unexpected content type %q", ct)
	}

	body := rec.Body.String()
	if n := strings.Count(body, "event: gate\n"); n != 2 {
		t.Fatalf("expected 2 gate events (start snapshot once, then sign-out), got %d:\n%s", n, body)
	}
	if !strings.Contains(body, "id: 1\n") || !strings.Contains(body, "id: 2\n") {
		t.Errorf("events should carry their sequence ids:\n%s", body)
	}
	if strings.Index(body, `"authorized"`) > strings.Index(body, `"unauthenticated"`) {
		t.Errorf("events out of order:\n%s", body)
	}
}

func TestSessionHandler_Stream_UnauthenticatedStartEndsImmediately(t *testing.T) {
	e := newTestEcho()
	watcher := newScriptedWatcher(ports.GateSnapshot{State: domain.GateUnauthenticated, Seq: 1})
	h := NewSessionHandler(&stubAccessService{}, func(string) ports.SessionWatcher { return watcher }, zerolog.Nop())

	c, rec := jsonContext(e, http.MethodGet, "/admin/session/stream", nil)
	if err := h.Stream(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if n := strings.Count(rec.Body.String(), "event: gate\n"); n != 1 {
		t.Fatalf("expected a single event, got %d", n)
	}
	if !watcher.isClosed() {
		t.Errorf("watcher must be closed")
	}
}

func TestSessionHandler_Stream_StopsOnClientDisconnect(t *testing.T) {
	e := newTestEcho()
	watcher := newScriptedWatcher(ports.GateSnapshot{State: domain.GateAuthorized, Seq: 1})
	h := NewSessionHandler(&stubAccessService{}, func(string) ports.SessionWatcher { return watcher }, zerolog.Nop())

	c, _ := jsonContext(e, http.MethodGet, "/admin/session/stream", nil)
	ctx, cancel := context.WithCancel(c.Request().Context())
	cancel()
	c.SetRequest(c.Request().WithContext(ctx))

	if err := h.Stream(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !watcher.isClosed() {
		t.Errorf("watcher must be closed after disconnect")
	}
}
