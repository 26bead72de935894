package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/circuitcraft/academy-admin/internal/api/metrics"
	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

// ProfileResolver maps an authenticated identity to its profile, creating a
// non-admin profile the first time an identity is seen.
type ProfileResolver struct {
	profiles ports.ProfileRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewProfileResolver(profiles ports.ProfileRepository, log zerolog.Logger) *ProfileResolver {
	return &ProfileResolver{profiles: profiles, log: log, now: time.Now}
}

// Resolve returns the profile for identity and whether it was provisioned by
// this call.
func (r *ProfileResolver) Resolve(ctx context.Context, identity *domain.Identity) (*domain.Profile, bool, error) {
	profile, err := r.profiles.FindByID(ctx, identity.ID)
	if err == nil {
		return profile, false, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, false, fmt.Errorf("resolve profile: %w", err)
	}

	created := domain.NewProfile(identity, domain.DefaultFullName(identity), false, r.now().UTC())
	if err := r.profiles.Insert(ctx, created); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			return nil, false, fmt.Errorf("provision profile: %w", err)
		}
		// Another check (or a store trigger) created it first.
		existing, findErr := r.profiles.FindByID(ctx, identity.ID)
		if findErr != nil {
			return nil, false, fmt.Errorf("provision profile: re-read after conflict: %w", findErr)
		}
		return existing, false, nil
	}

	metrics.ProfilesProvisionedTotal.Inc()
	r.log.Info().
		Str("user_id", identity.ID).
		Str("email", created.Email).
		Msg("profile provisioned")

	return created, true, nil
}

// Provision creates the default profile for a newly signed-up identity. The
// identity provider calls it before sign-up returns.
func (r *ProfileResolver) Provision(ctx context.Context, identity *domain.Identity) error {
	_, _, err := r.Resolve(ctx, identity)
	return err
}
