package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Akr1040317/gatehouse/internal/application/ports"
	"github.com/Akr1040317/gatehouse/internal/application/provision"
	"github.com/Akr1040317/gatehouse/internal/domain"
	domerrors "github.com/Akr1040317/gatehouse/internal/domain/errors"
)

type memProfiles struct {
	mu sync.Mutex
	m  map[domain.UserID]*domain.UserProfile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{m: make(map[domain.UserID]*domain.UserProfile)}
}

func (s *memProfiles) Create(_ context.Context, p *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[p.UserID]; ok {
		return domerrors.ErrProfileExists
	}
	cp := *p
	s.m[p.UserID] = &cp
	return nil
}

func (s *memProfiles) Exists(_ context.Context, id domain.UserID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[id]
	return ok, nil
}

func (s *memProfiles) Get(_ context.Context, id domain.UserID) (*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

type memRegistry struct {
	mu sync.Mutex
	m  map[string]domain.UserID
}

func newMemRegistry() *memRegistry {
	return &memRegistry{m: make(map[string]domain.UserID)}
}

func (s *memRegistry) IsAvailable(_ context.Context, username string) (bool, error) {
	if username == "" {
		return true, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[username]
	return !ok, nil
}

func (s *memRegistry) Claim(_ context.Context, username string, id domain.UserID) error {
	if username == "" {
		return domerrors.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[username]; ok {
		return domerrors.ErrUsernameTaken
	}
	s.m[username] = id
	return nil
}

func (s *memRegistry) Release(_ context.Context, username string, id domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.m[username]; ok && owner == id {
		delete(s.m, username)
	}
	return nil
}

func (s *memRegistry) Get(_ context.Context, username string) (*domain.UsernameReservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.m[username]
	if !ok {
		return nil, nil
	}
	return &domain.UsernameReservation{Username: username, UserID: owner}, nil
}

type fakeGateway struct {
	mu          sync.Mutex
	accounts    map[string]domain.UserID // email -> id
	passwords   map[string]string
	seq         int
	verifyCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{accounts: make(map[string]domain.UserID), passwords: make(map[string]string)}
}

func (g *fakeGateway) RegisterWithCredential(_ context.Context, email, password string) (*domain.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.accounts[email]; ok {
		return nil, domerrors.ErrEmailInUse
	}
	g.seq++
	id := domain.NewUserID(fmt.Sprintf("uid-%d", g.seq))
	g.accounts[email] = id
	g.passwords[email] = password
	return &domain.Identity{ID: id, Email: email, Method: domain.AuthMethodPassword}, nil
}

func (g *fakeGateway) AuthenticateWithCredential(_ context.Context, email, password string) (*domain.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.accounts[email]
	if !ok || g.passwords[email] != password {
		return nil, domerrors.ErrInvalidCredentials
	}
	return &domain.Identity{ID: id, Email: email, Method: domain.AuthMethodPassword}, nil
}

func (g *fakeGateway) RequestEmailVerification(_ context.Context, _ domain.UserID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls++
	return nil
}

type fakeVerifier struct {
	valid map[string]bool
}

func (v *fakeVerifier) VerifyEmail(_ context.Context, token string) error {
	if v.valid[token] {
		return nil
	}
	return domerrors.ErrInvalidInput
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, ports.AuditEvent) error { return nil }

type testEnv struct {
	router   chi.Router
	gateway  *fakeGateway
	profiles *memProfiles
	registry *memRegistry
}

func newTestEnv() *testEnv {
	gw := newFakeGateway()
	profiles := newMemProfiles()
	registry := newMemRegistry()
	h := NewProvisionHandler(
		provision.NewPasswordSignup(gw, profiles, registry),
		provision.NewCredentialSignin(gw, profiles),
		provision.NewCheckUsername(registry),
		profiles,
		&fakeVerifier{valid: map[string]bool{"good-token": true}},
		nopEmitter{},
		zerolog.Nop(),
	)
	r := chi.NewRouter()
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/verify-email", h.VerifyEmail)
	r.Get("/usernames/{username}", h.UsernameAvailability)
	r.Get("/profiles/{id}", h.GetProfile)
	return &testEnv{router: r, gateway: gw, profiles: profiles, registry: registry}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func signupBody() map[string]string {
	return map[string]string{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
		"username":   "ada",
		"password":   "Abcdef1!",
	}
}

func TestSignupProvisionsProfile(t *testing.T) {
	env := newTestEnv()
	rec := env.do(t, http.MethodPost, "/auth/signup", signupBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decode(t, rec)
	require.Equal(t, "provisioned", resp["status"])
	require.Equal(t, true, resp["verification_requested"])

	profile := resp["profile"].(map[string]interface{})
	require.Equal(t, "ada", profile["username"])
	require.Equal(t, "tier1", profile["role"])
	require.Equal(t, "password", profile["signup_method"])
	require.Equal(t, false, profile["verified"])
	require.Equal(t, 1, env.gateway.verifyCalls)
}

func TestSignupUsernameConflict(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/auth/signup", signupBody()).Code)

	second := signupBody()
	second["email"] = "grace@example.com"
	rec := env.do(t, http.MethodPost, "/auth/signup", second)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, ErrCodeUsernameConflict, decode(t, rec)["code"])
}

func TestSignupEmailInUse(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/auth/signup", signupBody()).Code)

	second := signupBody()
	second["username"] = "ada2"
	rec := env.do(t, http.MethodPost, "/auth/signup", second)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, ErrCodeEmailInUse, decode(t, rec)["code"])
}

func TestSignupRejectsWeakPassword(t *testing.T) {
	env := newTestEnv()
	body := signupBody()
	body["password"] = "abcdefgh"
	rec := env.do(t, http.MethodPost, "/auth/signup", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignupRejectsMissingFields(t *testing.T) {
	env := newTestEnv()
	body := signupBody()
	delete(body, "username")
	rec := env.do(t, http.MethodPost, "/auth/signup", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginExistingProfile(t *testing.T) {
	env := newTestEnv()
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/auth/signup", signupBody()).Code)

	rec := env.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "Abcdef1!",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "existing", decode(t, rec)["status"])
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv()
	rec := env.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "Abcdef1!",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, ErrCodeInvalidCredentials, decode(t, rec)["code"])
}

func TestUsernameAvailability(t *testing.T) {
	env := newTestEnv()
	rec := env.do(t, http.MethodGet, "/usernames/ada", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decode(t, rec)["available"])

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/auth/signup", signupBody()).Code)

	rec = env.do(t, http.MethodGet, "/usernames/ada", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, decode(t, rec)["available"])
}

func TestGetProfile(t *testing.T) {
	env := newTestEnv()
	signup := env.do(t, http.MethodPost, "/auth/signup", signupBody())
	require.Equal(t, http.StatusCreated, signup.Code)
	id := decode(t, signup)["profile"].(map[string]interface{})["user_id"].(string)

	rec := env.do(t, http.MethodGet, "/profiles/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ada@example.com", decode(t, rec)["email"])

	rec = env.do(t, http.MethodGet, "/profiles/uid-999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyEmail(t *testing.T) {
	env := newTestEnv()
	rec := env.do(t, http.MethodPost, "/auth/verify-email", map[string]string{"token": "good-token"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/verify-email", map[string]string{"token": "bad"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
