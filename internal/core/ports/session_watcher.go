package ports

import (
	"context"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

// GateSnapshot is the visible state of a SessionWatcher. Profile is set only
// when State is domain.GateAuthorized.
type GateSnapshot struct {
	State   domain.GateState `json:"state"`
	Profile *domain.Profile  `json:"profile"`
	// Seq is the request token of the check that produced this snapshot.
	Seq uint64 `json:"seq"`
}

// SessionWatcher follows one session for as long as an admin shell stays
// open, re-checking access on every session event.
type SessionWatcher interface {
	// Start runs the first check and returns once it has settled.
	Start(ctx context.Context) GateSnapshot
	Snapshot() GateSnapshot
	// Changes delivers every applied snapshot and is closed by Close.
	Changes() <-chan GateSnapshot
	// Close stops watching. Results still in flight are dropped.
	Close()
}

// WatcherFactory builds a SessionWatcher for an access token.
type WatcherFactory func(token string) SessionWatcher
