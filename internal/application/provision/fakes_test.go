package provision

import (
	"context"
	"fmt"
	"sync"

	"github.com/Akr1040317/gatehouse/internal/domain"
	domerrors "github.com/Akr1040317/gatehouse/internal/domain/errors"
)

// fakeGateway is an in-memory AuthGateway for tests.
type fakeGateway struct {
	mu          sync.Mutex
	seq         int
	identities  map[string]domain.Identity // keyed by email
	passwords   map[string]string
	registerErr error
	authErr     error
	verifyErr   error
	verifyCalls []domain.UserID
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		identities: make(map[string]domain.Identity),
		passwords:  make(map[string]string),
	}
}

func (g *fakeGateway) RegisterWithCredential(ctx context.Context, email, password string) (*domain.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.registerErr != nil {
		return nil, g.registerErr
	}
	if _, ok := g.identities[email]; ok {
		return nil, domerrors.ErrEmailInUse
	}
	g.seq++
	identity := domain.Identity{
		ID:     domain.NewUserID(fmt.Sprintf("uid-%d", g.seq)),
		Email:  email,
		Method: domain.AuthMethodPassword,
	}
	g.identities[email] = identity
	g.passwords[email] = password
	return &identity, nil
}

func (g *fakeGateway) AuthenticateWithCredential(ctx context.Context, email, password string) (*domain.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.authErr != nil {
		return nil, g.authErr
	}
	identity, ok := g.identities[email]
	if !ok || g.passwords[email] != password {
		return nil, domerrors.ErrInvalidCredentials
	}
	return &identity, nil
}

func (g *fakeGateway) RequestEmailVerification(ctx context.Context, userID domain.UserID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls = append(g.verifyCalls, userID)
	return g.verifyErr
}

// memProfiles is an in-memory ProfileRepository with exclusive-create
// semantics, safe for concurrent use.
type memProfiles struct {
	mu        sync.Mutex
	profiles  map[domain.UserID]domain.UserProfile
	createErr error
}

func newMemProfiles() *memProfiles {
	return &memProfiles{profiles: make(map[domain.UserID]domain.UserProfile)}
}

func (s *memProfiles) Create(ctx context.Context, profile *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.profiles[profile.UserID]; ok {
		return domerrors.ErrProfileExists
	}
	s.profiles[profile.UserID] = *profile
	return nil
}

func (s *memProfiles) Exists(ctx context.Context, userID domain.UserID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.profiles[userID]
	return ok, nil
}

func (s *memProfiles) Get(ctx context.Context, userID domain.UserID) (*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// blindProfiles hides stored profiles from Exists, forcing the
// check-then-create race where both logins observe no profile.
type blindProfiles struct {
	*memProfiles
}

func (s blindProfiles) Exists(ctx context.Context, userID domain.UserID) (bool, error) {
	return false, nil
}

// staleGetProfiles hides the stored profile from the first Get, forcing
// the read-then-create race where a concurrent sign-in wins the insert.
type staleGetProfiles struct {
	*memProfiles
	readMu sync.Mutex
	read   bool
}

func (s *staleGetProfiles) Get(ctx context.Context, userID domain.UserID) (*domain.UserProfile, error) {
	s.readMu.Lock()
	first := !s.read
	s.read = true
	s.readMu.Unlock()
	if first {
		return nil, nil
	}
	return s.memProfiles.Get(ctx, userID)
}

// memRegistry is an in-memory UsernameRegistry with exclusive-claim
// semantics, safe for concurrent use.
type memRegistry struct {
	mu           sync.Mutex
	reservations map[string]domain.UsernameReservation
}

func newMemRegistry() *memRegistry {
	return &memRegistry{reservations: make(map[string]domain.UsernameReservation)}
}

func (r *memRegistry) IsAvailable(ctx context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.reservations[username]
	return !ok, nil
}

func (r *memRegistry) Claim(ctx context.Context, username string, userID domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reservations[username]; ok {
		return domerrors.ErrUsernameTaken
	}
	r.reservations[username] = domain.UsernameReservation{Username: username, UserID: userID}
	return nil
}

func (r *memRegistry) Release(ctx context.Context, username string, userID domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.reservations[username]; ok && res.UserID == userID {
		delete(r.reservations, username)
	}
	return nil
}

func (r *memRegistry) Get(ctx context.Context, username string) (*domain.UsernameReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[username]
	if !ok {
		return nil, nil
	}
	return &res, nil
}
