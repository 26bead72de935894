package ports

import (
	"context"
	"time"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

// ProfileRepository defines persistence for profiles. Every write is a single
// atomic store operation.
type ProfileRepository interface {
	// FindByID returns domain.ErrProfileNotFound when no row matches.
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	// FindByEmail matches the normalized email. Returns domain.ErrProfileNotFound.
	FindByEmail(ctx context.Context, email string) (*domain.Profile, error)
	// FindByIDs returns the profiles whose id is in ids, in no particular order.
	FindByIDs(ctx context.Context, ids []string) ([]domain.Profile, error)
	// Insert returns domain.ErrConflict when the id or email already exists.
	Insert(ctx context.Context, p *domain.Profile) error
	// Upsert writes p keyed on its id. Returns domain.ErrConflict on a
	// uniqueness violation.
	Upsert(ctx context.Context, p *domain.Profile) error
	// CountAdmins returns how many profiles have is_admin set.
	CountAdmins(ctx context.Context) (int64, error)
	// Update applies patch to the profile with id and stamps updated_at.
	Update(ctx context.Context, id string, patch domain.ProfilePatch, at time.Time) error
}
