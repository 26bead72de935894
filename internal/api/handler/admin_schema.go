package handler

import (
	"time"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse confirms an operation that has no other payload.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type loginResponse struct {
	Session sessionResponse `json:"session"`
	Profile profileResponse `json:"profile"`
}

type confirmEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// resendConfirmationRequest is validated by the access service.
type resendConfirmationRequest struct {
	Email string `json:"email"`
}

// --- Session gate ---

type gateResponse struct {
	State   domain.GateState `json:"state"`
	Profile *profileResponse `json:"profile,omitempty"`
	Seq     uint64           `json:"seq,omitempty"`
}

// --- Admin elevation ---

// grantAdminRequest is validated by the elevation service so its messages
// match the admin form.
type grantAdminRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type grantAdminResponse struct {
	Outcome             string `json:"outcome"`
	ProfileID           string `json:"profile_id"`
	Email               string `json:"email"`
	VerificationPending bool   `json:"verification_pending"`
	Message             string `json:"message"`
}

// --- Settings ---

type profileResponse struct {
	ID                    string    `json:"id"`
	Email                 string    `json:"email"`
	FullName              string    `json:"full_name"`
	IsAdmin               bool      `json:"is_admin"`
	EmailNotifications    bool      `json:"email_notifications"`
	ContactNotifications  bool      `json:"contact_notifications"`
	WorkshopNotifications bool      `json:"workshop_notifications"`
	CourseNotifications   bool      `json:"course_notifications"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type updateSettingsRequest struct {
	FullName              string `json:"full_name"`
	Email                 string `json:"email"`
	EmailNotifications    bool   `json:"email_notifications"`
	ContactNotifications  bool   `json:"contact_notifications"`
	WorkshopNotifications bool   `json:"workshop_notifications"`
	CourseNotifications   bool   `json:"course_notifications"`
}

type changePasswordRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// --- Notifications ---

type notificationResponse struct {
	ID           string                  `json:"id"`
	Kind         domain.NotificationKind `json:"kind"`
	Title        string                  `json:"title"`
	Summary      string                  `json:"summary"`
	Detail       any                     `json:"detail"`
	Read         bool                    `json:"read"`
	OccurredAt   time.Time               `json:"occurred_at"`
	RelativeTime string                  `json:"relative_time"`
}

type notificationListResponse struct {
	Filter domain.Filter          `json:"filter"`
	Items  []notificationResponse `json:"items"`
	Unread int                    `json:"unread"`
}

type unreadCountResponse struct {
	Unread int `json:"unread"`
}

type markReadResponse struct {
	ID        string `json:"id"`
	Persisted bool   `json:"persisted"`
}
