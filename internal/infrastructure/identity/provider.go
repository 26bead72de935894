// Package identity is the self-hosted session provider. It stores password
// identities, issues HS256 access tokens, revokes them on sign-out and
// announces every session change on the session event bus. New identities
// get a profile before sign-up returns and, unless auto-confirmed, a mailed
// confirmation token.
package identity

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

const (
	defaultTTL        = time.Hour
	defaultConfirmTTL = 48 * time.Hour

	// Tokens of one kind are never accepted as the other.
	sessionAudience = "academy-admin-session"
	confirmAudience = "academy-admin-email-confirmation"
)

// IdentityStore persists identities.
type IdentityStore interface {
	Create(ctx context.Context, identity *domain.Identity) error
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error
	MarkEmailConfirmed(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// Provisioner creates the profile row of a new identity. It must be
// idempotent.
type Provisioner interface {
	Provision(ctx context.Context, identity *domain.Identity) error
}

// Mailer delivers email confirmation tokens.
type Mailer interface {
	SendConfirmation(ctx context.Context, identity *domain.Identity, token string, expiresAt time.Time) error
}

// Revocations remembers signed-out session ids.
type Revocations interface {
	Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// EventPublisher broadcasts session events to every instance.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.SessionEvent) error
}

// Listeners registers local callbacks for one identity's session events.
type Listeners interface {
	Subscribe(userID string, fn func(domain.SessionEvent)) func()
}

type Options struct {
	Secret string
	TTL    time.Duration
	// AutoConfirm marks new identities as confirmed. When false, sign-in is
	// refused until the email address is confirmed.
	AutoConfirm bool
	// ConfirmTTL bounds confirmation tokens. Defaults to 48h.
	ConfirmTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int

	// Provisioner runs inside SignUp. Optional.
	Provisioner Provisioner
	// Mailer sends confirmation tokens. Without one they are only logged.
	Mailer Mailer
}

// Provider implements ports.SessionProvider.
type Provider struct {
	identities  IdentityStore
	revocations Revocations
	events      EventPublisher
	listeners   Listeners
	log         zerolog.Logger

	provisioner Provisioner
	mailer      Mailer

	secret      []byte
	ttl         time.Duration
	confirmTTL  time.Duration
	autoConfirm bool
	cost        int
	now         func() time.Time
}

var _ ports.SessionProvider = (*Provider)(nil)

func NewProvider(identities IdentityStore, revocations Revocations, events EventPublisher, listeners Listeners, opts Options, log zerolog.Logger) *Provider {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.ConfirmTTL <= 0 {
		opts.ConfirmTTL = defaultConfirmTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Provider{
		identities:  identities,
		revocations: revocations,
		events:      events,
		listeners:   listeners,
		log:         log,
		provisioner: opts.Provisioner,
		mailer:      opts.Mailer,
		secret:      []byte(opts.Secret),
		ttl:         opts.TTL,
		confirmTTL:  opts.ConfirmTTL,
		autoConfirm: opts.AutoConfirm,
		cost:        opts.BcryptCost,
		now:         time.Now,
	}
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (c *tokenClaims) session(token string) *domain.Session {
	s := &domain.Session{
		ID:          c.ID,
		AccessToken: token,
		UserID:      c.Subject,
		Email:       c.Email,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}

func (p *Provider) parse(token, audience string, opts ...jwt.ParserOption) (*tokenClaims, error) {
	claims := &tokenClaims{}
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
	)
	tkn, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil || !tkn.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, domain.ErrSessionInvalid
	}
	// The parser skips audience checks when claims validation is off.
	if !slices.Contains(claims.Audience, audience) {
		return nil, domain.ErrSessionInvalid
	}
	return claims, nil
}

// GetSession verifies the token signature and expiry locally. It does not
// consult revocations or the identity store.
func (p *Provider) GetSession(_ context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := p.parse(token, sessionAudience)
	if err != nil {
		return nil, nil
	}
	return claims.session(token), nil
}

// GetUser re-validates token: signature, expiry, revocation and the
// identity row it points at.
func (p *Provider) GetUser(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := p.validate(ctx, token)
	if err != nil {
		return nil, err
	}
	identity, err := p.identities.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	return identity, nil
}

func (p *Provider) validate(ctx context.Context, token string) (*tokenClaims, error) {
	if token == "" {
		return nil, domain.ErrNoSession
	}
	claims, err := p.parse(token, sessionAudience)
	if err != nil {
		return nil, err
	}
	if err := p.checkRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}
	return claims, nil
}

func (p *Provider) checkRevoked(ctx context.Context, sessionID string) error {
	revoked, err := p.revocations.IsRevoked(ctx, sessionID)
	if err != nil {
		return err
	}
	if revoked {
		return domain.ErrSessionInvalid
	}
	return nil
}

// VerifySession re-validates a session that arrived without its token, as
// session events deliver them.
func (p *Provider) VerifySession(ctx context.Context, session *domain.Session) (*domain.Identity, error) {
	if session == nil || session.ID == "" || session.UserID == "" {
		return nil, domain.ErrNoSession
	}
	if !session.ExpiresAt.After(p.now()) {
		return nil, domain.ErrSessionInvalid
	}
	if err := p.checkRevoked(ctx, session.ID); err != nil {
		return nil, err
	}
	return p.identities.FindByID(ctx, session.UserID)
}

func (p *Provider) OnSessionChange(userID string, fn func(domain.SessionEvent)) func() {
	return p.listeners.Subscribe(userID, fn)
}

// SignUp registers a new password identity and provisions its profile. If
// provisioning fails the identity is removed again, so sign-up either leaves
// both rows or neither.
//
// A taken email yields domain.ErrEmailTaken. Before returning it, the
// existing identity is provisioned in case an earlier sign-up died between
// the two writes.
func (p *Provider) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := p.now().UTC()
	identity := &domain.Identity{
		ID:             uuid.NewString(),
		Email:          domain.NormalizeEmail(req.Email),
		FullName:       req.FullName,
		PasswordHash:   string(hash),
		EmailConfirmed: p.autoConfirm,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := p.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			p.repairTaken(ctx, identity.Email)
		}
		return nil, err
	}

	if p.provisioner != nil {
		if err := p.provisioner.Provision(ctx, identity); err != nil {
			if delErr := p.identities.Delete(context.WithoutCancel(ctx), identity.ID); delErr != nil {
				p.log.Error().Err(delErr).
					Str("user_id", identity.ID).
					Msg("identity left without profile after failed provisioning")
			}
			return nil, fmt.Errorf("provision profile: %w", err)
		}
	}

	p.log.Info().Str("user_id", identity.ID).Str("email", identity.Email).Msg("identity registered")

	if !identity.EmailConfirmed {
		if err := p.sendConfirmation(ctx, identity); err != nil {
			p.log.Warn().Err(err).Str("user_id", identity.ID).Msg("confirmation mail not sent")
		}
	}
	return identity, nil
}

func (p *Provider) repairTaken(ctx context.Context, email string) {
	if p.provisioner == nil {
		return
	}
	existing, err := p.identities.FindByEmail(ctx, email)
	if err != nil {
		return
	}
	if err := p.provisioner.Provision(ctx, existing); err != nil {
		p.log.Warn().Err(err).Str("user_id", existing.ID).Msg("profile repair failed")
	}
}

func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, *domain.Identity, error) {
	identity, err := p.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}
	if !identity.EmailConfirmed {
		return nil, nil, domain.ErrEmailNotConfirmed
	}

	session, err := p.issue(identity.ID, identity.Email)
	if err != nil {
		return nil, nil, err
	}

	p.publish(ctx, domain.SessionEvent{Kind: domain.SessionSignedIn, UserID: identity.ID, Session: withoutToken(session)})
	return session, identity, nil
}

// Refresh swaps a still valid token for a new one and revokes the old one.
func (p *Provider) Refresh(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := p.validate(ctx, token)
	if err != nil {
		return nil, err
	}

	session, err := p.issue(claims.Subject, claims.Email)
	if err != nil {
		return nil, err
	}
	if err := p.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return nil, err
	}

	// Watchers re-validate the new session by id; the token stays with the
	// caller.
	p.publish(ctx, domain.SessionEvent{
		Kind:              domain.SessionTokenRefreshed,
		UserID:            claims.Subject,
		Session:           withoutToken(session),
		PreviousSessionID: claims.ID,
	})
	return session, nil
}

// SignOut revokes the session behind token. Signing out an expired token
// succeeds without doing anything.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := p.parse(token, sessionAudience, jwt.WithoutClaimsValidation())
	if err != nil {
		return err
	}
	if claims.ExpiresAt == nil {
		return domain.ErrSessionInvalid
	}
	if !claims.ExpiresAt.Time.After(p.now()) {
		return nil
	}
	if err := p.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}

	p.publish(ctx, domain.SessionEvent{Kind: domain.SessionSignedOut, UserID: claims.Subject, Session: claims.session("")})
	return nil
}

// UpdateUser sets a new password for the identity behind token. Reusing the
// current password yields domain.ErrSamePassword.
func (p *Provider) UpdateUser(ctx context.Context, token, newPassword string) error {
	claims, err := p.validate(ctx, token)
	if err != nil {
		return err
	}
	identity, err := p.identities.FindByID(ctx, claims.Subject)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(newPassword)) == nil {
		return domain.ErrSamePassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), p.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := p.identities.UpdatePasswordHash(ctx, identity.ID, string(hash), p.now().UTC()); err != nil {
		return err
	}

	p.publish(ctx, domain.SessionEvent{Kind: domain.SessionUserUpdated, UserID: identity.ID, Session: claims.session("")})
	return nil
}

// ConfirmEmail redeems a confirmation token. The token is bound to the
// address it was mailed to and stops working if the identity's email changes.
func (p *Provider) ConfirmEmail(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := p.parse(token, confirmAudience)
	if err != nil {
		return nil, domain.ErrConfirmationInvalid
	}
	identity, err := p.identities.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, domain.ErrConfirmationInvalid
		}
		return nil, err
	}
	if identity.Email != claims.Email {
		return nil, domain.ErrConfirmationInvalid
	}
	if err := p.markConfirmed(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// ResendConfirmation mails a new token to an unconfirmed identity. Unknown
// and already confirmed addresses are ignored so callers learn nothing about
// which emails are registered.
func (p *Provider) ResendConfirmation(ctx context.Context, email string) error {
	identity, err := p.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil
		}
		return err
	}
	if identity.EmailConfirmed {
		return nil
	}
	return p.sendConfirmation(ctx, identity)
}

func (p *Provider) ConfirmIdentity(ctx context.Context, userID string) error {
	identity, err := p.identities.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return p.markConfirmed(ctx, identity)
}

func (p *Provider) markConfirmed(ctx context.Context, identity *domain.Identity) error {
	if identity.EmailConfirmed {
		return nil
	}
	if err := p.identities.MarkEmailConfirmed(ctx, identity.ID, p.now().UTC()); err != nil {
		return err
	}
	identity.EmailConfirmed = true

	p.log.Info().Str("user_id", identity.ID).Str("email", identity.Email).Msg("email confirmed")
	p.publish(ctx, domain.SessionEvent{Kind: domain.SessionUserUpdated, UserID: identity.ID})
	return nil
}

func (p *Provider) sendConfirmation(ctx context.Context, identity *domain.Identity) error {
	token, claims, err := p.sign(identity.ID, identity.Email, confirmAudience, p.confirmTTL)
	if err != nil {
		return err
	}
	if p.mailer == nil {
		p.log.Warn().Str("user_id", identity.ID).Msg("no mailer configured, confirmation token not delivered")
		return nil
	}
	return p.mailer.SendConfirmation(ctx, identity, token, claims.ExpiresAt.Time)
}

func (p *Provider) issue(userID, email string) (*domain.Session, error) {
	token, claims, err := p.sign(userID, email, sessionAudience, p.ttl)
	if err != nil {
		return nil, err
	}
	return claims.session(token), nil
}

func (p *Provider) sign(userID, email, audience string, ttl time.Duration) (string, *tokenClaims, error) {
	now := p.now()
	claims := &tokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, claims, nil
}

// publish reports a session change. Delivery is best effort; failures are
// only logged.
func (p *Provider) publish(ctx context.Context, ev domain.SessionEvent) {
	ev.OccurredAt = p.now().UTC()
	if err := p.events.Publish(ctx, ev); err != nil {
		p.log.Warn().Err(err).
			Str("user_id", ev.UserID).
			Str("kind", string(ev.Kind)).
			Msg("session event not published")
	}
}

func withoutToken(s *domain.Session) *domain.Session {
	clone := *s
	clone.AccessToken = ""
	return &clone
}
