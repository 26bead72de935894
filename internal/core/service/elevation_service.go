package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/circuitcraft/academy-admin/internal/api/metrics"
	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

var grantMessages = fieldMessages{
	"*.required":   "Please fill in all fields",
	"Email.email":  "Please enter a valid email address",
	"Password.min": "Password must be at least 6 characters long",
}

type elevationService struct {
	profiles ports.ProfileRepository
	provider ports.SessionProvider
	log      zerolog.Logger
	now      func() time.Time
}

// NewElevationService returns an ElevationService implementation.
func NewElevationService(profiles ports.ProfileRepository, provider ports.SessionProvider, log zerolog.Logger) ports.ElevationService {
	return &elevationService{profiles: profiles, provider: provider, log: log, now: time.Now}
}

// RequestElevation grants admin status to req.Email.
//
//   - existing admin profile: ErrAlreadyAdmin, nothing written
//   - existing non-admin profile: is_admin flipped and full_name replaced
//   - no profile: a new identity is signed up and an admin profile upserted
//     under its id
func (s *elevationService) RequestElevation(ctx context.Context, req ports.AdminGrantRequest) (*ports.ElevationResult, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)

	if err := validateInput(req, grantMessages, "Please fill in all fields"); err != nil {
		metrics.ElevationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	res, err := s.elevate(ctx, req)
	if err != nil {
		metrics.ElevationsTotal.WithLabelValues(elevationErrorOutcome(err)).Inc()
		return nil, err
	}

	metrics.ElevationsTotal.WithLabelValues(string(res.Outcome)).Inc()
	s.log.Info().
		Str("user_id", res.ProfileID).
		Str("email", res.Email).
		Str("outcome", string(res.Outcome)).
		Msg("admin elevation granted")

	return res, nil
}

// ConfirmAdmin marks the identity behind an admin profile as confirmed.
func (s *elevationService) ConfirmAdmin(ctx context.Context, profileID string) error {
	profile, err := s.profiles.FindByID(ctx, profileID)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		return err
	case err != nil:
		return domain.NewStoreError("find profile", err)
	case !profile.IsAdmin:
		return domain.NewValidationError("Only admin accounts can be confirmed here")
	}

	if err := s.provider.ConfirmIdentity(ctx, profile.ID); err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return domain.ErrProfileNotFound
		}
		return domain.NewStoreError("confirm identity", err)
	}

	s.log.Info().Str("user_id", profile.ID).Str("email", profile.Email).Msg("admin email confirmed by admin")
	return nil
}

// Bootstrap seeds the first admin of an empty deployment. The email is
// trusted because it comes from configuration, so the identity is confirmed
// straight away.
func (s *elevationService) Bootstrap(ctx context.Context, req ports.AdminGrantRequest) (*ports.ElevationResult, error) {
	admins, err := s.profiles.CountAdmins(ctx)
	if err != nil {
		return nil, domain.NewStoreError("count admins", err)
	}
	if admins > 0 {
		return nil, nil
	}

	res, err := s.RequestElevation(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.provider.ConfirmIdentity(ctx, res.ProfileID); err != nil {
		return nil, domain.NewStoreError("confirm bootstrap admin", err)
	}
	res.VerificationPending = false

	s.log.Info().Str("user_id", res.ProfileID).Str("email", res.Email).Msg("first admin bootstrapped")
	return res, nil
}

func (s *elevationService) elevate(ctx context.Context, req ports.AdminGrantRequest) (*ports.ElevationResult, error) {
	existing, err := s.profiles.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return s.promote(ctx, existing, req)
	case !errors.Is(err, domain.ErrProfileNotFound):
		return nil, domain.NewStoreError("find profile by email", err)
	}

	identity, err := s.provider.SignUp(ctx, domain.SignUpRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return s.recoverTaken(ctx, req, err)
		}
		return nil, domain.NewStoreError("sign up", err)
	}

	profile := domain.NewProfile(identity, req.FullName, true, s.now().UTC())
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			return nil, domain.NewStoreError("upsert admin profile", err)
		}

		// A profile for this id appeared between sign-up and upsert, usually
		// one auto-provisioned by the store. Take it over by id.
		s.log.Warn().
			Err(err).
			Str("user_id", identity.ID).
			Msg("admin profile upsert conflicted, updating by id")
		metrics.ElevationConflictFallbacksTotal.Inc()

		isAdmin := true
		patch := domain.ProfilePatch{Email: &profile.Email, FullName: &req.FullName, IsAdmin: &isAdmin}
		if err := s.profiles.Update(ctx, identity.ID, patch, s.now().UTC()); err != nil {
			return nil, domain.NewStoreError("update admin profile", err)
		}
	}

	return &ports.ElevationResult{
		Outcome:             ports.ElevationCreated,
		ProfileID:           identity.ID,
		Email:               profile.Email,
		VerificationPending: !identity.EmailConfirmed,
	}, nil
}

// recoverTaken handles an email whose identity exists without a profile. The
// provider provisions such an identity before reporting the email taken, so
// one more lookup finds the profile of an earlier, interrupted elevation.
// Without a profile the email belongs to someone else and nothing is written.
func (s *elevationService) recoverTaken(ctx context.Context, req ports.AdminGrantRequest, taken error) (*ports.ElevationResult, error) {
	existing, err := s.profiles.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		s.log.Warn().Str("user_id", existing.ID).Msg("resuming interrupted elevation")
		return s.promote(ctx, existing, req)
	case errors.Is(err, domain.ErrProfileNotFound):
		return nil, taken
	default:
		return nil, domain.NewStoreError("find profile by email", err)
	}
}

func (s *elevationService) promote(ctx context.Context, existing *domain.Profile, req ports.AdminGrantRequest) (*ports.ElevationResult, error) {
	if existing.IsAdmin {
		return nil, domain.ErrAlreadyAdmin
	}

	isAdmin := true
	patch := domain.ProfilePatch{FullName: &req.FullName, IsAdmin: &isAdmin}
	if err := s.profiles.Update(ctx, existing.ID, patch, s.now().UTC()); err != nil {
		return nil, domain.NewStoreError("promote profile", err)
	}

	return &ports.ElevationResult{
		Outcome:   ports.ElevationUpdated,
		ProfileID: existing.ID,
		Email:     existing.Email,
	}, nil
}

func elevationErrorOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyAdmin):
		return "already_admin"
	case errors.Is(err, domain.ErrEmailTaken):
		return "email_taken"
	default:
		return "error"
	}
}
