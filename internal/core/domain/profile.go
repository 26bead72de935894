package domain

import (
	"strings"
	"time"
)

const fallbackFullName = "User"

// Profile extends an Identity with the admin flag and notification
// preferences. ID always equals the identity ID and never changes.
type Profile struct {
	ID                    string    `json:"id" bson:"_id"`
	Email                 string    `json:"email" bson:"email"`
	FullName              string    `json:"full_name" bson:"full_name"`
	IsAdmin               bool      `json:"is_admin" bson:"is_admin"`
	EmailNotifications    bool      `json:"email_notifications" bson:"email_notifications"`
	ContactNotifications  bool      `json:"contact_notifications" bson:"contact_notifications"`
	WorkshopNotifications bool      `json:"workshop_notifications" bson:"workshop_notifications"`
	CourseNotifications   bool      `json:"course_notifications" bson:"course_notifications"`
	CreatedAt             time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" bson:"updated_at"`
}

// NewProfile builds the profile for a first-seen identity. All notification
// flags start enabled.
func NewProfile(identity *Identity, fullName string, isAdmin bool, now time.Time) *Profile {
	return &Profile{
		ID:                    identity.ID,
		Email:                 NormalizeEmail(identity.Email),
		FullName:              fullName,
		IsAdmin:               isAdmin,
		EmailNotifications:    true,
		ContactNotifications:  true,
		WorkshopNotifications: true,
		CourseNotifications:   true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

// DefaultFullName picks the display name for an auto-provisioned profile:
// identity metadata first, then the email local part, then "User".
func DefaultFullName(identity *Identity) string {
	if name := strings.TrimSpace(identity.FullName); name != "" {
		return name
	}
	if local, _, _ := strings.Cut(identity.Email, "@"); local != "" {
		return local
	}
	return fallbackFullName
}

// ProfilePatch lists the profile fields an update may change. Nil pointers
// are left untouched.
type ProfilePatch struct {
	Email                 *string
	FullName              *string
	IsAdmin               *bool
	EmailNotifications    *bool
	ContactNotifications  *bool
	WorkshopNotifications *bool
	CourseNotifications   *bool
}
