package ports

import (
	"context"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

// ProfileSettings is the editable part of the acting admin's profile.
type ProfileSettings struct {
	FullName              string `validate:"required"`
	Email                 string `validate:"required,email"`
	EmailNotifications    bool
	ContactNotifications  bool
	WorkshopNotifications bool
	CourseNotifications   bool
}

// PasswordChange carries a new password and its confirmation.
type PasswordChange struct {
	NewPassword     string `validate:"required,min=6,max=72"`
	ConfirmPassword string `validate:"eqfield=NewPassword"`
}

// SettingsService lets an admin manage their own profile.
type SettingsService interface {
	GetSettings(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileSettings) (*domain.Profile, error)
	ChangePassword(ctx context.Context, token string, in PasswordChange) error
}
