package ports

import "context"

// ElevationOutcome tells the caller which elevation path ran.
type ElevationOutcome string

const (
	ElevationCreated ElevationOutcome = "created"
	ElevationUpdated ElevationOutcome = "updated"
)

// AdminGrantRequest is the transient input for granting admin status.
type AdminGrantRequest struct {
	Email    string `validate:"required,email"`
	FullName string `validate:"required"`
	Password string `validate:"required,min=6"`
}

// ElevationResult describes a successful elevation.
type ElevationResult struct {
	Outcome   ElevationOutcome
	ProfileID string
	Email     string
	// VerificationPending is set on the create path: the new identity must
	// confirm its email before it can sign in.
	VerificationPending bool
}

// ElevationService grants admin status to an email address.
type ElevationService interface {
	RequestElevation(ctx context.Context, req AdminGrantRequest) (*ElevationResult, error)
	// ConfirmAdmin confirms the email of the admin profileID on an admin's
	// word, for deployments where confirmation mail does not reach them.
	ConfirmAdmin(ctx context.Context, profileID string) error
	// Bootstrap creates a confirmed first admin from req. It does nothing and
	// returns nil when an admin already exists.
	Bootstrap(ctx context.Context, req AdminGrantRequest) (*ElevationResult, error)
}
