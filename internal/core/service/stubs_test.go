package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Profile repository
// ---------------------------------------------------------------------------

type stubProfileRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.Profile
	findErr  error
	insertFn func(p *domain.Profile) error // overrides Insert when set
	upsertFn func(p *domain.Profile) error // overrides Upsert when set
	updateFn func(id string, patch domain.ProfilePatch) error

	inserts int
	upserts int
	updates int
}

func newStubProfileRepo(seed ...*domain.Profile) *stubProfileRepo {
	r := &stubProfileRepo{byID: make(map[string]*domain.Profile)}
	for _, p := range seed {
		clone := *p
		r.byID[p.ID] = &clone
	}
	return r
}

func (r *stubProfileRepo) writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inserts + r.upserts + r.updates
}

func (r *stubProfileRepo) get(id string) *domain.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil
	}
	clone := *p
	return &clone
}

func (r *stubProfileRepo) FindByID(_ context.Context, id string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProfileRepo) FindByEmail(_ context.Context, email string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, p := range r.byID {
		if p.Email == email {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (r *stubProfileRepo) FindByIDs(_ context.Context, ids []string) ([]domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []domain.Profile
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProfileRepo) Insert(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	if r.insertFn != nil {
		return r.insertFn(p)
	}
	if _, ok := r.byID[p.ID]; ok {
		return domain.ErrConflict
	}
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProfileRepo) Upsert(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	if r.upsertFn != nil {
		return r.upsertFn(p)
	}
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProfileRepo) CountAdmins(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return 0, r.findErr
	}
	var n int64
	for _, p := range r.byID {
		if p.IsAdmin {
			n++
		}
	}
	return n, nil
}

func (r *stubProfileRepo) Update(_ context.Context, id string, patch domain.ProfilePatch, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if r.updateFn != nil {
		if err := r.updateFn(id, patch); err != nil {
			return err
		}
	}
	p, ok := r.byID[id]
	if !ok {
		return domain.ErrProfileNotFound
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	if patch.IsAdmin != nil {
		p.IsAdmin = *patch.IsAdmin
	}
	if patch.EmailNotifications != nil {
		p.EmailNotifications = *patch.EmailNotifications
	}
	if patch.ContactNotifications != nil {
		p.ContactNotifications = *patch.ContactNotifications
	}
	if patch.WorkshopNotifications != nil {
		p.WorkshopNotifications = *patch.WorkshopNotifications
	}
	if patch.CourseNotifications != nil {
		p.CourseNotifications = *patch.CourseNotifications
	}
	p.UpdatedAt = at
	return nil
}

// ---------------------------------------------------------------------------
// Session provider
// ---------------------------------------------------------------------------

type stubProvider struct {
	mu sync.Mutex

	// sessions maps access token -> decoded session.
	sessions map[string]*domain.Session
	// users maps access token -> identity returned by GetUser.
	users      map[string]*domain.Identity
	getUserErr error
	// getUserHook runs before GetUser returns; tests use it to block.
	getUserHook func(token string)

	signUpIdentity *domain.Identity
	signUpErr      error
	signUps        []domain.SignUpRequest
	// signUpHook replaces the canned sign-up result when set.
	signUpHook func(req domain.SignUpRequest) (*domain.Identity, error)

	signInSession  *domain.Session
	signInIdentity *domain.Identity
	signInErr      error

	signOuts      []string
	updateUserErr error
	passwords     []string

	listeners map[string][]func(domain.SessionEvent)
	unsubs    int
	// onSubscribe runs after a listener is registered, outside the lock.
	onSubscribe func(userID string)

	confirmTokens map[string]string // token -> user id
	confirmed     []string
	confirmErr    error
	resent        []string
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		sessions:  make(map[string]*domain.Session),
		users:     make(map[string]*domain.Identity),
		listeners:     make(map[string][]func(domain.SessionEvent)),
		confirmTokens: make(map[string]string),
	}
}

// addSession registers a valid token for identity.
func (p *stubProvider) addSession(token string, identity *domain.Identity) *domain.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := &domain.Session{
		ID:          "sess-" + token,
		AccessToken: token,
		UserID:      identity.ID,
		Email:       identity.Email,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	p.sessions[token] = s
	p.users[token] = identity
	return s
}

func (p *stubProvider) revoke(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.users, token)
}

func (p *stubProvider) emit(ev domain.SessionEvent) {
	p.mu.Lock()
	fns := append([]func(domain.SessionEvent){}, p.listeners[ev.UserID]...)
	p.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (p *stubProvider) GetSession(_ context.Context, token string) (*domain.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[token]
	if !ok {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

func (p *stubProvider) GetUser(_ context.Context, token string) (*domain.Identity, error) {
	p.mu.Lock()
	hook := p.getUserHook
	p.mu.Unlock()
	if hook != nil {
		hook(token)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getUserErr != nil {
		return nil, p.getUserErr
	}
	id, ok := p.users[token]
	if !ok {
		return nil, domain.ErrSessionInvalid
	}
	clone := *id
	return &clone, nil
}

// VerifySession checks a token-less session by finding the token it was
// issued with.
func (p *stubProvider) VerifySession(ctx context.Context, session *domain.Session) (*domain.Identity, error) {
	p.mu.Lock()
	var token string
	for tok, s := range p.sessions {
		if s.ID == session.ID {
			token = tok
		}
	}
	p.mu.Unlock()
	if token == "" {
		return nil, domain.ErrSessionInvalid
	}
	return p.GetUser(ctx, token)
}

func (p *stubProvider) OnSessionChange(userID string, fn func(domain.SessionEvent)) func() {
	p.mu.Lock()
	p.listeners[userID] = append(p.listeners[userID], fn)
	idx := len(p.listeners[userID]) - 1
	hook := p.onSubscribe
	p.mu.Unlock()
	if hook != nil {
		hook(userID)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			p.listeners[userID][idx] = func(domain.SessionEvent) {}
			p.unsubs++
		})
	}
}

func (p *stubProvider) SignUp(_ context.Context, req domain.SignUpRequest) (*domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signUps = append(p.signUps, req)
	if p.signUpHook != nil {
		return p.signUpHook(req)
	}
	if p.signUpErr != nil {
		return nil, p.signUpErr
	}
	clone := *p.signUpIdentity
	return &clone, nil
}

func (p *stubProvider) SignInWithPassword(_ context.Context, _, _ string) (*domain.Session, *domain.Identity, error) {
	if p.signInErr != nil {
		return nil, nil, p.signInErr
	}
	return p.signInSession, p.signInIdentity, nil
}

func (p *stubProvider) Refresh(_ context.Context, token string) (*domain.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[token]
	if !ok {
		return nil, domain.ErrSessionInvalid
	}
	clone := *s
	clone.AccessToken = token + "-refreshed"
	return &clone, nil
}

func (p *stubProvider) SignOut(_ context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signOuts = append(p.signOuts, token)
	return nil
}

func (p *stubProvider) UpdateUser(_ context.Context, _ string, newPassword string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.updateUserErr != nil {
		return p.updateUserErr
	}
	p.passwords = append(p.passwords, newPassword)
	return nil
}

func (p *stubProvider) ConfirmEmail(_ context.Context, token string) (*domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.confirmErr != nil {
		return nil, p.confirmErr
	}
	id, ok := p.confirmTokens[token]
	if !ok {
		return nil, domain.ErrConfirmationInvalid
	}
	p.confirmed = append(p.confirmed, id)
	return &domain.Identity{ID: id, EmailConfirmed: true}, nil
}

func (p *stubProvider) ResendConfirmation(_ context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resent = append(p.resent, email)
	return nil
}

func (p *stubProvider) ConfirmIdentity(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.confirmErr != nil {
		return p.confirmErr
	}
	p.confirmed = append(p.confirmed, userID)
	return nil
}

// ---------------------------------------------------------------------------
// Activity and catalog sources
// ---------------------------------------------------------------------------

type stubContacts struct {
	rows    []domain.ContactSubmission
	listErr error
	markErr error
	marked  []string
}

func (s *stubContacts) ListContacts(context.Context) ([]domain.ContactSubmission, error) {
	return s.rows, s.listErr
}

func (s *stubContacts) MarkContactRead(_ context.Context, id string) error {
	if s.markErr != nil {
		return s.markErr
	}
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].Read = true
			s.marked = append(s.marked, id)
			return nil
		}
	}
	return domain.ErrRecordNotFound
}

type stubRegistrations struct {
	rows []domain.WorkshopRegistration
	err  error
}

func (s *stubRegistrations) ListWorkshopRegistrations(context.Context) ([]domain.WorkshopRegistration, error) {
	return s.rows, s.err
}

type stubEnrollments struct {
	rows []domain.CourseEnrollment
	err  error
}

func (s *stubEnrollments) ListCourseEnrollments(context.Context) ([]domain.CourseEnrollment, error) {
	return s.rows, s.err
}

type stubCatalog struct {
	workshops []domain.Workshop
	courses   []domain.Course
	err       error
	lookups   [][]string
}

func (s *stubCatalog) FindWorkshopsByIDs(_ context.Context, ids []string) ([]domain.Workshop, error) {
	s.lookups = append(s.lookups, ids)
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Workshop
	for _, w := range s.workshops {
		for _, id := range ids {
			if w.ID == id {
				out = append(out, w)
			}
		}
	}
	return out, nil
}

func (s *stubCatalog) FindCoursesByIDs(_ context.Context, ids []string) ([]domain.Course, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Course
	for _, c := range s.courses {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

var errStore = errors.New("store unavailable")
