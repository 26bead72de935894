package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

type gateFixture struct {
	provider *stubProvider
	repo     *stubProfileRepo
	session  *domain.Session
	gate     *Gate
}

func newGateFixture(t *testing.T, isAdmin bool) *gateFixture {
	t.Helper()
	provider := newStubProvider()
	identity := &domain.Identity{ID: "u1", Email: "a@b.com"}
	session := provider.addSession("tok", identity)
	repo := newStubProfileRepo(&domain.Profile{ID: "u1", Email: "a@b.com", IsAdmin: isAdmin})
	access := NewAccessService(provider, NewProfileResolver(repo, zerolog.Nop()), zerolog.Nop())

	g := NewGate(access, provider, "tok", zerolog.Nop())
	t.Cleanup(g.Close)
	return &gateFixture{provider: provider, repo: repo, session: session, gate: g}
}

// blockFirstGetUser makes the first GetUser call wait until release is
// closed. entered is closed once that call is in flight.
func blockFirstGetUser(p *stubProvider) (entered, release chan struct{}) {
	entered = make(chan struct{})
	release = make(chan struct{})
	var once sync.Once
	p.getUserHook = func(string) {
		once.Do(func() {
			close(entered)
			<-release
		})
	}
	return entered, release
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting")
	}
	var zero T
	return zero
}

func TestGate_InitialStateIsChecking(t *testing.T) {
	f := newGateFixture(t, true)
	if s := f.gate.Snapshot(); s.State != domain.GateChecking {
		t.Fatalf("expected checking before Start, got %s", s.State)
	}
}

func TestGate_Start_Authorized(t *testing.T) {
	f := newGateFixture(t, true)

	snap := f.gate.Start(context.Background())
	if snap.State != domain.GateAuthorized {
		t.Fatalf("expected authorized, got %s", snap.State)
	}
	if snap.Profile == nil || snap.Profile.ID != "u1" {
		t.Errorf("expected profile on authorized snapshot")
	}
	if got := waitFor(t, f.gate.Changes()); got.State != domain.GateAuthorized {
		t.Errorf("expected authorized on Changes, got %s", got.State)
	}
}

func TestGate_Start_NonAdmin(t *testing.T) {
	f := newGateFixture(t, false)

	snap := f.gate.Start(context.Background())
	if snap.State != domain.GateAuthenticatedNonAdmin {
		t.Fatalf("expected non-admin, got %s", snap.State)
	}
	if snap.Profile != nil {
		t.Errorf("non-admin snapshot must not carry a profile")
	}
}

func TestGate_Start_NoSession(t *testing.T) {
	provider := newStubProvider()
	access := NewAccessService(provider, NewProfileResolver(newStubProfileRepo(), zerolog.Nop()), zerolog.Nop())
	g := NewGate(access, provider, "", zerolog.Nop())
	defer g.Close()

	if snap := g.Start(context.Background()); snap.State != domain.GateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", snap.State)
	}
	if len(provider.listeners) != 0 {
		t.Errorf("no subscription expected without a session")
	}
}

func TestGate_SignOutEventSkipsStore(t *testing.T) {
	f := newGateFixture(t, true)
	f.gate.Start(context.Background())
	waitFor(t, f.gate.Changes())

	var calls atomic.Int32
	f.provider.getUserHook = func(string) { calls.Add(1) }

	f.provider.emit(domain.SessionEvent{
		Kind:    domain.SessionSignedOut,
		UserID:  "u1",
		Session: &domain.Session{ID: f.session.ID, UserID: "u1"},
	})

	if got := waitFor(t, f.gate.Changes()); got.State != domain.GateUnauthenticated {
		t.Fatalf("expected unauthenticated after sign-out, got %s", got.State)
	}
	if calls.Load() != 0 {
		t.Errorf("sign-out must not re-validate against the provider, got %d calls", calls.Load())
	}
}

func TestGate_SignOutOfOtherSessionRechecks(t *testing.T) {
	f := newGateFixture(t, true)
	f.gate.Start(context.Background())
	waitFor(t, f.gate.Changes())

	f.provider.emit(domain.SessionEvent{
		Kind:    domain.SessionSignedOut,
		UserID:  "u1",
		Session: &domain.Session{ID: "some-other-tab", UserID: "u1"},
	})

	if got := waitFor(t, f.gate.Changes()); got.State != domain.GateAuthorized {
		t.Fatalf("watched session is still valid, got %s", got.State)
	}
}

func TestGate_TokenRefreshAdoptsNewSession(t *testing.T) {
	f := newGateFixture(t, true)
	f.gate.Start(context.Background())
	waitFor(t, f.gate.Changes())

	fresh := *f.provider.addSession("tok2", &domain.Identity{ID: "u1", Email: "a@b.com"})
	f.provider.revoke("tok")

	// Events carry sessions without their token.
	fresh.AccessToken = ""
	f.provider.emit(domain.SessionEvent{
		Kind:              domain.SessionTokenRefreshed,
		UserID:            "u1",
		Session:           &fresh,
		PreviousSessionID: f.session.ID,
	})

	if got := waitFor(t, f.gate.Changes()); got.State != domain.GateAuthorized {
		t.Fatalf("expected authorized with refreshed session, got %s", got.State)
	}
}

func TestGate_RefreshDuringSubscribeIsNotLost(t *testing.T) {
	f := newGateFixture(t, true)
	f.provider.onSubscribe = func(string) {
		fresh := *f.provider.addSession("tok2", &domain.Identity{ID: "u1", Email: "a@b.com"})
		f.provider.revoke("tok")
		fresh.AccessToken = ""
		go f.provider.emit(domain.SessionEvent{
			Kind:              domain.SessionTokenRefreshed,
			UserID:            "u1",
			Session:           &fresh,
			PreviousSessionID: f.session.ID,
		})
	}

	f.gate.Start(context.Background())

	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-f.gate.Changes():
			if got.Seq < 2 {
				continue
			}
			if got.State != domain.GateAuthorized {
				t.Fatalf("check of the refreshed session gave %s", got.State)
			}
			if snap := f.gate.Snapshot(); snap.Seq != 2 || snap.State != domain.GateAuthorized {
				t.Fatalf("unexpected final snapshot %+v", snap)
			}
			return
		case <-deadline:
			t.Fatalf("timed out waiting for the refresh check, last %+v", f.gate.Snapshot())
		}
	}
}

func TestGate_DemotionIsObservedOnNextEvent(t *testing.T) {
	f := newGateFixture(t, true)
	f.gate.Start(context.Background())
	waitFor(t, f.gate.Changes())

	f.repo.mu.Lock()
	f.repo.byID["u1"].IsAdmin = false
	f.repo.mu.Unlock()

	f.provider.emit(domain.SessionEvent{Kind: domain.SessionUserUpdated, UserID: "u1"})

	if got := waitFor(t, f.gate.Changes()); got.State != domain.GateAuthenticatedNonAdmin {
		t.Fatalf("expected non-admin after demotion, got %s", got.State)
	}
}

func TestGate_StaleResultIsDiscarded(t *testing.T) {
	f := newGateFixture(t, true)
	entered, release := blockFirstGetUser(f.provider)

	started := make(chan ports.GateSnapshot, 1)
	go func() { started <- f.gate.Start(context.Background()) }()
	waitFor(t, entered)

	// The newer check settles while the first is still in flight.
	f.provider.emit(domain.SessionEvent{
		Kind:    domain.SessionSignedOut,
		UserID:  "u1",
		Session: &domain.Session{ID: f.session.ID},
	})
	if got := waitFor(t, f.gate.Changes()); got.State != domain.GateUnauthenticated {
		t.Fatalf("expected unauthenticated from newer check, got %s", got.State)
	}

	close(release)
	snap := waitFor(t, started)
	if snap.State != domain.GateUnauthenticated {
		t.Fatalf("older authorized result overwrote newer state: %s", snap.State)
	}
	if snap.Seq != 2 {
		t.Errorf("expected state from request 2, got %d", snap.Seq)
	}
}

func TestGate_CloseDiscardsInFlightResult(t *testing.T) {
	f := newGateFixture(t, true)
	entered, release := blockFirstGetUser(f.provider)

	started := make(chan ports.GateSnapshot, 1)
	go func() { started <- f.gate.Start(context.Background()) }()
	waitFor(t, entered)

	f.gate.Close()
	close(release)

	if snap := waitFor(t, started); snap.State != domain.GateChecking {
		t.Fatalf("no state may be applied after Close, got %s", snap.State)
	}
	if _, ok := <-f.gate.Changes(); ok {
		t.Errorf("expected Changes to be closed without a value")
	}
	if f.provider.unsubs != 1 {
		t.Errorf("expected one unsubscribe, got %d", f.provider.unsubs)
	}
}

func TestGate_EventsAfterCloseAreIgnored(t *testing.T) {
	f := newGateFixture(t, true)
	f.gate.Start(context.Background())
	f.gate.Close()
	f.gate.Close()

	f.provider.emit(domain.SessionEvent{Kind: domain.SessionSignedOut, UserID: "u1"})

	if s := f.gate.Snapshot(); s.State != domain.GateAuthorized {
		t.Fatalf("closed gate changed state to %s", s.State)
	}
}

func TestGate_ChangesKeepsLatestOnly(t *testing.T) {
	f := newGateFixture(t, true)
	f.gate.Start(context.Background())

	f.provider.emit(domain.SessionEvent{Kind: domain.SessionUserUpdated, UserID: "u1"})
	f.provider.emit(domain.SessionEvent{
		Kind:    domain.SessionSignedOut,
		UserID:  "u1",
		Session: &domain.Session{ID: f.session.ID},
	})

	got := waitFor(t, f.gate.Changes())
	if got.State != domain.GateUnauthenticated || got.Seq != 3 {
		t.Fatalf("expected only the latest snapshot, got %+v", got)
	}
	select {
	case extra := <-f.gate.Changes():
		t.Fatalf("unexpected buffered snapshot %+v", extra)
	default:
	}
}
