package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, target string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type stubAccessService struct {
	evaluateFn func(ctx context.Context, token string) ports.Decision
	loginFn    func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	logoutFn   func(ctx context.Context, token string) error
	refreshFn  func(ctx context.Context, token string) (*domain.Session, error)
	confirmFn  func(ctx context.Context, token string) error
	resendFn   func(ctx context.Context, email string) error
}

func (s *stubAccessService) Evaluate(ctx context.Context, token string) ports.Decision {
	return s.evaluateFn(ctx, token)
}

func (s *stubAccessService) EvaluateSession(context.Context, *domain.Session) ports.Decision {
	return ports.Decision{State: domain.GateUnauthenticated}
}

func (s *stubAccessService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAccessService) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

func (s *stubAccessService) Refresh(ctx context.Context, token string) (*domain.Session, error) {
	return s.refreshFn(ctx, token)
}

func (s *stubAccessService) ConfirmEmail(ctx context.Context, token string) error {
	return s.confirmFn(ctx, token)
}

func (s *stubAccessService) ResendConfirmation(ctx context.Context, email string) error {
	return s.resendFn(ctx, email)
}

type stubElevationService struct {
	requestFn func(ctx context.Context, req ports.AdminGrantRequest) (*ports.ElevationResult, error)
	confirmFn func(ctx context.Context, profileID string) error
}

func (s *stubElevationService) RequestElevation(ctx context.Context, req ports.AdminGrantRequest) (*ports.ElevationResult, error) {
	return s.requestFn(ctx, req)
}

func (s *stubElevationService) ConfirmAdmin(ctx context.Context, profileID string) error {
	return s.confirmFn(ctx, profileID)
}

func (s *stubElevationService) Bootstrap(context.Context, ports.AdminGrantRequest) (*ports.ElevationResult, error) {
	return nil, nil
}

type stubNotificationService struct {
	listFn   func(ctx context.Context, filter domain.Filter) ([]domain.NotificationEvent, error)
	markFn   func(ctx context.Context, id string) (bool, error)
	unreadFn func(ctx context.Context) (int, error)
}

func (s *stubNotificationService) ListNotifications(ctx context.Context, filter domain.Filter) ([]domain.NotificationEvent, error) {
	return s.listFn(ctx, filter)
}

func (s *stubNotificationService) MarkRead(ctx context.Context, id string) (bool, error) {
	return s.markFn(ctx, id)
}

func (s *stubNotificationService) UnreadCount(ctx context.Context) (int, error) {
	return s.unreadFn(ctx)
}

type stubSettingsService struct {
	getFn      func(ctx context.Context, userID string) (*domain.Profile, error)
	updateFn   func(ctx context.Context, userID string, in ports.ProfileSettings) (*domain.Profile, error)
	passwordFn func(ctx context.Context, token string, in ports.PasswordChange) error
}

func (s *stubSettingsService) GetSettings(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.getFn(ctx, userID)
}

func (s *stubSettingsService) UpdateProfile(ctx context.Context, userID string, in ports.ProfileSettings) (*domain.Profile, error) {
	return s.updateFn(ctx, userID, in)
}

func (s *stubSettingsService) ChangePassword(ctx context.Context, token string, in ports.PasswordChange) error {
	return s.passwordFn(ctx, token, in)
}

// scriptedWatcher replays a fixed start snapshot followed by whatever the
// test pushes on changes.
type scriptedWatcher struct {
	start   ports.GateSnapshot
	changes chan ports.GateSnapshot

	mu     sync.Mutex
	closed bool
}

func newScriptedWatcher(start ports.GateSnapshot, later ...ports.GateSnapshot) *scriptedWatcher {
	w := &scriptedWatcher{start: start, changes: make(chan ports.GateSnapshot, len(later)+1)}
	w.changes <- start
	for _, s := range later {
		w.changes <- s
	}
	return w
}

func (w *scriptedWatcher) Start(context.Context) ports.GateSnapshot { return w.start }

func (w *scriptedWatcher) Snapshot() ports.GateSnapshot { return w.start }

func (w *scriptedWatcher) Changes() <-chan ports.GateSnapshot { return w.changes }

func (w *scriptedWatcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

func (w *scriptedWatcher) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}
