package domain

import "time"

// Session is an authenticated session as seen by the core. The access token
// is opaque to everything except the session provider.
type Session struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"access_token,omitempty"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}

// SessionEventKind names what happened to a session.
type SessionEventKind string

const (
	SessionSignedIn       SessionEventKind = "SIGNED_IN"
	SessionSignedOut      SessionEventKind = "SIGNED_OUT"
	SessionTokenRefreshed SessionEventKind = "TOKEN_REFRESHED"
	SessionUserUpdated    SessionEventKind = "USER_UPDATED"
)

// SessionEvent is emitted by the session provider whenever a session for an
// identity changes. For SIGNED_OUT, Session identifies the revoked session and
// carries no token. For TOKEN_REFRESHED, PreviousSessionID names the session
// the new one replaces.
type SessionEvent struct {
	Kind              SessionEventKind `json:"kind"`
	UserID            string           `json:"user_id"`
	Session           *Session         `json:"session,omitempty"`
	PreviousSessionID string           `json:"previous_session_id,omitempty"`
	OccurredAt        time.Time        `json:"occurred_at"`
}
