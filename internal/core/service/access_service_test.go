package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

func newAccessSvc(repo *stubProfileRepo, provider *stubProvider) *accessService {
	return NewAccessService(provider, NewProfileResolver(repo, zerolog.Nop()), zerolog.Nop()).(*accessService)
}

func adminProfile(id, email string) *domain.Profile {
	return &domain.Profile{ID: id, Email: email, FullName: "Ada Admin", IsAdmin: true}
}

// ---------------------------------------------------------------------------
// ProfileResolver
// ---------------------------------------------------------------------------

func TestProfileResolver_ProvisionsMissingProfileOnce(t *testing.T) {
	repo := newStubProfileRepo()
	r := NewProfileResolver(repo, zerolog.Nop())
	identity := &domain.Identity{ID: "u1", Email: "Jane.Doe@Example.com"}

	p, provisioned, err := r.Resolve(context.Background(), identity)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !provisioned {
		t.Fatalf("expected profile to be provisioned")
	}
	if p.IsAdmin {
		t.Errorf("provisioned profile must not be admin")
	}
	if p.FullName != "Jane.Doe" {
		t.Errorf("expected full name from email local part, got %q", p.FullName)
	}
	if p.Email != "jane.doe@example.com" {
		t.Errorf("expected normalized email, got %q", p.Email)
	}

	if _, provisioned, err := r.Resolve(context.Background(), identity); err != nil || provisioned {
		t.Fatalf("second Resolve: provisioned=%v err=%v", provisioned, err)
	}
	if repo.inserts != 1 {
		t.Errorf("expected exactly one insert, got %d", repo.inserts)
	}
}

func TestProfileResolver_UsesMetadataName(t *testing.T) {
	repo := newStubProfileRepo()
	r := NewProfileResolver(repo, zerolog.Nop())

	p, _, err := r.Resolve(context.Background(), &domain.Identity{ID: "u1", Email: "x@y.z", FullName: " Grace Hopper "})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if p.FullName != "Grace Hopper" {
		t.Errorf("unexpected full name %q", p.FullName)
	}
}

func TestProfileResolver_ConflictRereads(t *testing.T) {
	repo := newStubProfileRepo()
	repo.insertFn = func(p *domain.Profile) error {
		// Someone else provisioned it in between.
		clone := *p
		clone.FullName = "Trigger Made"
		repo.byID[p.ID] = &clone
		return domain.ErrConflict
	}
	r := NewProfileResolver(repo, zerolog.Nop())

	p, provisioned, err := r.Resolve(context.Background(), &domain.Identity{ID: "u1", Email: "a@b.com"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if provisioned {
		t.Errorf("conflict path must not report provisioning")
	}
	if p.FullName != "Trigger Made" {
		t.Errorf("expected the concurrently created row, got %q", p.FullName)
	}
}

func TestProfileResolver_LookupError(t *testing.T) {
	repo := newStubProfileRepo()
	repo.findErr = errStore
	r := NewProfileResolver(repo, zerolog.Nop())

	if _, _, err := r.Resolve(context.Background(), &domain.Identity{ID: "u1"}); !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Evaluate
// ---------------------------------------------------------------------------

func TestAccessService_Evaluate_NoSession(t *testing.T) {
	svc := newAccessSvc(newStubProfileRepo(), newStubProvider())

	d := svc.Evaluate(context.Background(), "")
	if d.State != domain.GateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", d.State)
	}
}

func TestAccessService_Evaluate_RevokedTokenIsUnauthenticated(t *testing.T) {
	provider := newStubProvider()
	provider.addSession("tok", &domain.Identity{ID: "u1", Email: "a@b.com"})
	provider.revoke("tok") // decodes locally but fails server-side
	repo := newStubProfileRepo(adminProfile("u1", "a@b.com"))

	d := newAccessSvc(repo, provider).Evaluate(context.Background(), "tok")
	if d.State != domain.GateUnauthenticated {
		t.Fatalf("stale session must not authorize, got %s", d.State)
	}
}

func TestAccessService_Evaluate_Admin(t *testing.T) {
	provider := newStubProvider()
	provider.addSession("tok", &domain.Identity{ID: "u1", Email: "a@b.com"})
	repo := newStubProfileRepo(adminProfile("u1", "a@b.com"))

	d := newAccessSvc(repo, provider).Evaluate(context.Background(), "tok")
	if d.State != domain.GateAuthorized {
		t.Fatalf("expected authorized, got %s", d.State)
	}
	if d.Profile == nil || d.Profile.ID != "u1" {
		t.Errorf("expected admin profile on decision, got %+v", d.Profile)
	}
}

func TestAccessService_Evaluate_NewIdentityIsProvisionedNonAdmin(t *testing.T) {
	provider := newStubProvider()
	provider.addSession("tok", &domain.Identity{ID: "u1", Email: "new@b.com"})
	repo := newStubProfileRepo()

	d := newAccessSvc(repo, provider).Evaluate(context.Background(), "tok")
	if d.State != domain.GateAuthenticatedNonAdmin {
		t.Fatalf("expected non-admin, got %s", d.State)
	}
	if d.Profile != nil {
		t.Errorf("profile must only be exposed when authorized")
	}
	if p := repo.get("u1"); p == nil || p.IsAdmin {
		t.Errorf("expected a non-admin profile row, got %+v", p)
	}
}

func TestAccessService_Evaluate_ProfileLookupFailureDegrades(t *testing.T) {
	provider := newStubProvider()
	provider.addSession("tok", &domain.Identity{ID: "u1", Email: "a@b.com"})
	repo := newStubProfileRepo()
	repo.findErr = errStore

	d := newAccessSvc(repo, provider).Evaluate(context.Background(), "tok")
	if d.State != domain.GateUnauthenticated {
		t.Fatalf("expected unauthenticated on lookup failure, got %s", d.State)
	}
}

// ---------------------------------------------------------------------------
// Login / Logout / Refresh
// ---------------------------------------------------------------------------

func TestAccessService_Login_Admin(t *testing.T) {
	provider := newStubProvider()
	identity := &domain.Identity{ID: "u1", Email: "a@b.com"}
	provider.signInIdentity = identity
	provider.signInSession = &domain.Session{ID: "s1", AccessToken: "tok", UserID: "u1"}
	repo := newStubProfileRepo(adminProfile("u1", "a@b.com"))

	res, err := newAccessSvc(repo, provider).Login(context.Background(), " A@B.com ", "secret1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Session.AccessToken != "tok" || res.Profile.ID != "u1" {
		t.Errorf("unexpected login result: %+v", res)
	}
	if len(provider.signOuts) != 0 {
		t.Errorf("admin session must not be signed out")
	}
}

func TestAccessService_Login_NonAdminSignedOut(t *testing.T) {
	provider := newStubProvider()
	provider.signInIdentity = &domain.Identity{ID: "u2", Email: "student@b.com"}
	provider.signInSession = &domain.Session{ID: "s2", AccessToken: "tok2", UserID: "u2"}
	repo := newStubProfileRepo(&domain.Profile{ID: "u2", Email: "student@b.com"})

	_, err := newAccessSvc(repo, provider).Login(context.Background(), "student@b.com", "secret1")
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	if len(provider.signOuts) != 1 || provider.signOuts[0] != "tok2" {
		t.Errorf("expected refused session to be signed out, got %v", provider.signOuts)
	}
}

func TestAccessService_Login_MissingCredentials(t *testing.T) {
	svc := newAccessSvc(newStubProfileRepo(), newStubProvider())

	if _, err := svc.Login(context.Background(), "  ", "x"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "a@b.com", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAccessService_Login_ProviderRejects(t *testing.T) {
	provider := newStubProvider()
	provider.signInErr = domain.ErrInvalidCredentials

	_, err := newAccessSvc(newStubProfileRepo(), provider).Login(context.Background(), "a@b.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAccessService_LogoutAndRefresh_RequireToken(t *testing.T) {
	svc := newAccessSvc(newStubProfileRepo(), newStubProvider())

	if err := svc.Logout(context.Background(), ""); !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("Logout: expected ErrNoSession, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), " "); !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("Refresh: expected ErrNoSession, got %v", err)
	}
}

func TestAccessService_Refresh(t *testing.T) {
	provider := newStubProvider()
	provider.addSession("tok", &domain.Identity{ID: "u1", Email: "a@b.com"})

	s, err := newAccessSvc(newStubProfileRepo(), provider).Refresh(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if s.AccessToken != "tok-refreshed" {
		t.Errorf("unexpected token %q", s.AccessToken)
	}
}

func TestAccessService_EvaluateSession_WithoutToken(t *testing.T) {
	provider := newStubProvider()
	session := *provider.addSession("tok", &domain.Identity{ID: "u1", Email: "a@b.com"})
	svc := newAccessSvc(newStubProfileRepo(adminProfile("u1", "a@b.com")), provider)

	session.AccessToken = ""
	if d := svc.EvaluateSession(context.Background(), &session); d.State != domain.GateAuthorized {
		t.Fatalf("expected authorized, got %s", d.State)
	}

	provider.revoke("tok")
	if d := svc.EvaluateSession(context.Background(), &session); d.State != domain.GateUnauthenticated {
		t.Fatalf("expected unauthenticated after revocation, got %s", d.State)
	}
}

func TestAccessService_ConfirmEmail(t *testing.T) {
	provider := newStubProvider()
	provider.confirmTokens["good"] = "u1"
	svc := newAccessSvc(newStubProfileRepo(), provider)
	ctx := context.Background()

	if err := svc.ConfirmEmail(ctx, "good"); err != nil {
		t.Fatalf("ConfirmEmail returned error: %v", err)
	}
	if len(provider.confirmed) != 1 || provider.confirmed[0] != "u1" {
		t.Errorf("confirmed = %v", provider.confirmed)
	}
	for _, token := range []string{"", "  ", "bad"} {
		if err := svc.ConfirmEmail(ctx, token); !errors.Is(err, domain.ErrConfirmationInvalid) {
			t.Errorf("ConfirmEmail(%q): expected ErrConfirmationInvalid, got %v", token, err)
		}
	}
}

func TestAccessService_ResendConfirmation(t *testing.T) {
	provider := newStubProvider()
	svc := newAccessSvc(newStubProfileRepo(), provider)

	if err := svc.ResendConfirmation(context.Background(), " A@B.com "); err != nil {
		t.Fatalf("ResendConfirmation returned error: %v", err)
	}
	if len(provider.resent) != 1 || provider.resent[0] != "a@b.com" {
		t.Errorf("resent = %v", provider.resent)
	}

	var ve *domain.ValidationError
	if err := svc.ResendConfirmation(context.Background(), "nope"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(provider.resent) != 1 {
		t.Errorf("invalid email reached the provider")
	}
}
