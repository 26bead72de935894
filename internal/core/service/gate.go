package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/circuitcraft/academy-admin/internal/api/metrics"
	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

// Gate watches one admin shell's session. It starts in CHECKING, settles on
// a terminal state after Start and re-checks on every session event for the
// same identity until Close.
//
// Every check takes a request token from a monotonically increasing counter,
// together with the session it checks, under the same lock. Only a result
// carrying the latest token is applied; anything older, or anything arriving
// after Close, is dropped.
type Gate struct {
	access   ports.AccessService
	provider ports.SessionProvider
	token    string
	log      zerolog.Logger

	mu          sync.Mutex
	seq         uint64
	ctx         context.Context
	session     *domain.Session
	current     ports.GateSnapshot
	closed      bool
	unsubscribe func()
	changes     chan ports.GateSnapshot
}

var _ ports.SessionWatcher = (*Gate)(nil)

// NewGateFactory returns a factory building one Gate per watched token.
func NewGateFactory(access ports.AccessService, provider ports.SessionProvider, log zerolog.Logger) ports.WatcherFactory {
	return func(token string) ports.SessionWatcher {
		return NewGate(access, provider, token, log)
	}
}

func NewGate(access ports.AccessService, provider ports.SessionProvider, token string, log zerolog.Logger) *Gate {
	return &Gate{
		access:   access,
		provider: provider,
		token:    token,
		log:      log,
		current:  ports.GateSnapshot{State: domain.GateChecking},
		changes:  make(chan ports.GateSnapshot, 1),
	}
}

// Start runs the initial check and subscribes to session events. It returns
// once the gate has left CHECKING. ctx bounds the checks triggered by later
// events as well, so it should live as long as the watcher.
func (g *Gate) Start(ctx context.Context) ports.GateSnapshot {
	session, err := g.provider.GetSession(ctx, g.token)
	if err != nil {
		g.log.Debug().Err(err).Msg("gate: session decode failed")
		session = nil
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return g.Snapshot()
	}
	g.ctx = ctx
	g.session = session
	if session != nil {
		// Subscribe before checking so an event racing the first check is
		// not lost. The event's check cannot take its token until the lock
		// is released, so it always outranks this one.
		g.unsubscribe = g.provider.OnSessionChange(session.UserID, g.handleEvent)
	}
	seq, session := g.nextRequest()
	g.mu.Unlock()

	g.check(ctx, seq, session)
	return g.Snapshot()
}

// Snapshot returns the current state.
func (g *Gate) Snapshot() ports.GateSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Changes delivers every applied snapshot. When the reader lags only the
// latest snapshot is kept. The channel is closed by Close.
func (g *Gate) Changes() <-chan ports.GateSnapshot {
	return g.changes
}

// Close stops the gate. Results of checks still in flight are discarded.
// Close is idempotent.
func (g *Gate) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	close(g.changes)
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (g *Gate) handleEvent(ev domain.SessionEvent) {
	g.mu.Lock()
	if g.closed || g.ctx == nil {
		g.mu.Unlock()
		return
	}
	ctx := g.ctx
	g.session = nextSession(g.session, ev)
	seq, session := g.nextRequest()
	g.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	g.log.Debug().
		Str("user_id", ev.UserID).
		Str("kind", string(ev.Kind)).
		Uint64("seq", seq).
		Msg("gate: session event")

	g.check(ctx, seq, session)
}

// nextRequest takes a new request token paired with the session it must
// check. g.mu must be held.
func (g *Gate) nextRequest() (uint64, *domain.Session) {
	g.seq++
	return g.seq, g.session
}

// nextSession applies ev to the watched session. A sign-out of the watched
// session (or of every session) clears it; a refresh of it swaps in the new
// one. Other events leave it as is and only trigger a re-check.
func nextSession(current *domain.Session, ev domain.SessionEvent) *domain.Session {
	if current == nil {
		return nil
	}
	switch ev.Kind {
	case domain.SessionSignedOut:
		if ev.Session == nil || ev.Session.ID == current.ID {
			return nil
		}
	case domain.SessionTokenRefreshed:
		if ev.Session != nil && ev.PreviousSessionID == current.ID {
			return ev.Session
		}
	}
	return current
}

func (g *Gate) check(ctx context.Context, seq uint64, session *domain.Session) {
	var d ports.Decision
	if session == nil {
		d = ports.Decision{State: domain.GateUnauthenticated}
	} else {
		d = g.access.EvaluateSession(ctx, session)
	}
	g.apply(seq, d)
}

func (g *Gate) apply(seq uint64, d ports.Decision) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed || seq != g.seq {
		metrics.GateStaleResultsTotal.Inc()
		return
	}

	state := d.State
	if !g.current.State.CanTransitionTo(state) {
		state = domain.GateUnauthenticated
	}

	snap := ports.GateSnapshot{State: state, Seq: seq}
	if state == domain.GateAuthorized {
		snap.Profile = d.Profile
	}
	g.current = snap

	select {
	case <-g.changes:
	default:
	}
	g.changes <- snap

	g.log.Debug().
		Str("state", string(state)).
		Uint64("seq", seq).
		Msg("gate: state applied")
}
