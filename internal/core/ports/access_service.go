package ports

import (
	"context"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

// Decision is the settled outcome of one authorization check. Identity and
// Profile are nil when the state does not carry them.
type Decision struct {
	State    domain.GateState
	Identity *domain.Identity
	Profile  *domain.Profile
}

// LoginResult is returned by a successful admin sign-in.
type LoginResult struct {
	Session *domain.Session
	Profile *domain.Profile
}

// AccessService answers who may enter the admin area.
type AccessService interface {
	// Evaluate runs the full check for token. It never returns
	// domain.GateChecking; lookup failures degrade to unauthenticated.
	Evaluate(ctx context.Context, token string) Decision
	// EvaluateSession runs the check for an already decoded session, as
	// delivered by a session event. A nil session is unauthenticated.
	EvaluateSession(ctx context.Context, session *domain.Session) Decision
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Refresh(ctx context.Context, token string) (*domain.Session, error)
	ConfirmEmail(ctx context.Context, token string) error
	// ResendConfirmation never reports whether email is registered.
	ResendConfirmation(ctx context.Context, email string) error
}
