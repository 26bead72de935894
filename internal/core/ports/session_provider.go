package ports

import (
	"context"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

// SessionProvider issues, refreshes and revokes authenticated sessions and
// reports session changes. Tokens are opaque to the core.
type SessionProvider interface {
	// GetSession decodes token locally without contacting the backend. It
	// returns a nil session when token is empty, malformed or expired. The
	// result must not be trusted for authorization on its own.
	GetSession(ctx context.Context, token string) (*domain.Session, error)
	// GetUser re-validates token server-side and returns its identity.
	GetUser(ctx context.Context, token string) (*domain.Identity, error)
	// VerifySession re-validates a session known only by its metadata, as
	// delivered by a session event: expiry, revocation and the identity row.
	VerifySession(ctx context.Context, session *domain.Session) (*domain.Identity, error)
	// OnSessionChange registers fn for session events of userID. The returned
	// func unsubscribes and is safe to call more than once.
	OnSessionChange(userID string, fn func(domain.SessionEvent)) (unsubscribe func())

	SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.Identity, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, *domain.Identity, error)
	Refresh(ctx context.Context, token string) (*domain.Session, error)
	SignOut(ctx context.Context, token string) error
	UpdateUser(ctx context.Context, token, newPassword string) error

	// ConfirmEmail redeems an email confirmation token. Redeeming it twice
	// succeeds. Returns domain.ErrConfirmationInvalid for a bad token.
	ConfirmEmail(ctx context.Context, token string) (*domain.Identity, error)
	// ResendConfirmation mails a fresh confirmation token when email belongs
	// to an unconfirmed identity and does nothing otherwise.
	ResendConfirmation(ctx context.Context, email string) error
	// ConfirmIdentity marks userID confirmed without a token, for identities
	// an admin vouches for.
	ConfirmIdentity(ctx context.Context, userID string) error
}
