package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/circuitcraft/academy-admin/internal/api/metrics"
	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

type accessService struct {
	provider ports.SessionProvider
	resolver *ProfileResolver
	log      zerolog.Logger
}

// NewAccessService returns an AccessService implementation.
func NewAccessService(provider ports.SessionProvider, resolver *ProfileResolver, log zerolog.Logger) ports.AccessService {
	return &accessService{provider: provider, resolver: resolver, log: log}
}

// Evaluate decodes token and runs the authorization check for it.
func (s *accessService) Evaluate(ctx context.Context, token string) ports.Decision {
	session, err := s.provider.GetSession(ctx, token)
	if err != nil {
		s.log.Warn().Err(err).Msg("session decode failed")
		session = nil
	}
	return s.EvaluateSession(ctx, session)
}

// EvaluateSession runs steps 2 and 3 of the check for a decoded session.
func (s *accessService) EvaluateSession(ctx context.Context, session *domain.Session) ports.Decision {
	d := s.decide(ctx, session)
	metrics.GateDecisionsTotal.WithLabelValues(string(d.State)).Inc()
	return d
}

func (s *accessService) decide(ctx context.Context, session *domain.Session) ports.Decision {
	unauthenticated := ports.Decision{State: domain.GateUnauthenticated}
	if session == nil {
		return unauthenticated
	}

	// The decoded session may be stale; only the provider's answer counts.
	// Sessions delivered by events carry no token and are checked by id.
	var (
		identity *domain.Identity
		err      error
	)
	if session.AccessToken != "" {
		identity, err = s.provider.GetUser(ctx, session.AccessToken)
	} else {
		identity, err = s.provider.VerifySession(ctx, session)
	}
	if err != nil || identity == nil {
		s.log.Debug().Err(err).Str("user_id", session.UserID).Msg("session rejected by provider")
		return unauthenticated
	}

	profile, _, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", identity.ID).Msg("profile lookup failed")
		return unauthenticated
	}

	d := ports.Decision{State: domain.CheckAccess(identity, profile), Identity: identity}
	if d.State == domain.GateAuthorized {
		d.Profile = profile
	}
	return d
}

// Login signs in with a password and keeps the session only when the
// identity is an admin. Non-admin sessions are signed out again.
func (s *accessService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	session, identity, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	profile, _, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		s.signOutQuietly(ctx, session)
		return nil, fmt.Errorf("login: %w", err)
	}

	if domain.CheckAccess(identity, profile) != domain.GateAuthorized {
		s.signOutQuietly(ctx, session)
		s.log.Info().Str("user_id", identity.ID).Msg("non-admin sign-in refused")
		return nil, domain.ErrAccessDenied
	}

	s.log.Info().Str("user_id", identity.ID).Msg("admin signed in")
	return &ports.LoginResult{Session: session, Profile: profile}, nil
}

func (s *accessService) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return domain.ErrNoSession
	}
	if err := s.provider.SignOut(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *accessService) Refresh(ctx context.Context, token string) (*domain.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrNoSession
	}
	session, err := s.provider.Refresh(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return session, nil
}

// ConfirmEmail redeems a confirmation link.
func (s *accessService) ConfirmEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return domain.ErrConfirmationInvalid
	}
	identity, err := s.provider.ConfirmEmail(ctx, token)
	if err != nil {
		return fmt.Errorf("confirm email: %w", err)
	}
	s.log.Info().Str("user_id", identity.ID).Msg("email confirmed")
	return nil
}

func (s *accessService) ResendConfirmation(ctx context.Context, email string) error {
	in := struct {
		Email string `validate:"required,email"`
	}{Email: domain.NormalizeEmail(email)}
	if err := validateInput(in, grantMessages, "Please enter a valid email address"); err != nil {
		return err
	}
	if err := s.provider.ResendConfirmation(ctx, in.Email); err != nil {
		return fmt.Errorf("resend confirmation: %w", err)
	}
	return nil
}

func (s *accessService) signOutQuietly(ctx context.Context, session *domain.Session) {
	if err := s.provider.SignOut(ctx, session.AccessToken); err != nil {
		s.log.Warn().Err(err).Str("user_id", session.UserID).Msg("failed to sign out refused session")
	}
}
