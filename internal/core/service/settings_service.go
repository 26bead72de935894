package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

var profileMessages = fieldMessages{
	"FullName.required": "Full name is required.",
	"Email.required":    "Email address is required.",
	"Email.email":       "Please enter a valid email address.",
}

var passwordMessages = fieldMessages{
	"NewPassword.required":    "New password is required.",
	"NewPassword.min":         "New password must be at least 6 characters long.",
	"NewPassword.max":         "Password is too long. Maximum 72 characters allowed.",
	"ConfirmPassword.eqfield": "New passwords do not match. Please try again.",
}

type settingsService struct {
	profiles ports.ProfileRepository
	provider ports.SessionProvider
	log      zerolog.Logger
	now      func() time.Time
}

// NewSettingsService returns a SettingsService implementation.
func NewSettingsService(profiles ports.ProfileRepository, provider ports.SessionProvider, log zerolog.Logger) ports.SettingsService {
	return &settingsService{profiles: profiles, provider: provider, log: log, now: time.Now}
}

func (s *settingsService) GetSettings(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, err
		}
		return nil, domain.NewStoreError("load settings", err)
	}
	return p, nil
}

// UpdateProfile saves the editable profile fields of userID and returns the
// stored result. The admin flag is never touched here.
func (s *settingsService) UpdateProfile(ctx context.Context, userID string, in ports.ProfileSettings) (*domain.Profile, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = domain.NormalizeEmail(in.Email)

	if err := validateInput(in, profileMessages, "Please check your profile details."); err != nil {
		return nil, err
	}

	patch := domain.ProfilePatch{
		Email:                 &in.Email,
		FullName:              &in.FullName,
		EmailNotifications:    &in.EmailNotifications,
		ContactNotifications:  &in.ContactNotifications,
		WorkshopNotifications: &in.WorkshopNotifications,
		CourseNotifications:   &in.CourseNotifications,
	}
	if err := s.profiles.Update(ctx, userID, patch, s.now().UTC()); err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			return nil, domain.ErrEmailInUse
		case errors.Is(err, domain.ErrProfileNotFound):
			return nil, err
		default:
			return nil, domain.NewStoreError("update profile", err)
		}
	}

	s.log.Info().Str("user_id", userID).Msg("profile settings updated")
	return s.GetSettings(ctx, userID)
}

// ChangePassword re-validates the session behind token and sets a new
// password for its identity.
func (s *settingsService) ChangePassword(ctx context.Context, token string, in ports.PasswordChange) error {
	if strings.TrimSpace(in.NewPassword) == "" {
		in.NewPassword = ""
	}
	if err := validateInput(in, passwordMessages, "Please check your new password."); err != nil {
		return err
	}

	identity, err := s.provider.GetUser(ctx, token)
	if err != nil {
		s.log.Debug().Err(err).Msg("password change: session rejected")
		return domain.ErrSessionInvalid
	}

	if err := s.provider.UpdateUser(ctx, token, in.NewPassword); err != nil {
		if errors.Is(err, domain.ErrSamePassword) || domain.IsAuth(err) {
			return err
		}
		return domain.NewStoreError("update password", err)
	}

	s.log.Info().Str("user_id", identity.ID).Msg("password changed")
	return nil
}
