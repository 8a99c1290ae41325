package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Akr1040317/gatehouse/internal/application/ports"
	"github.com/Akr1040317/gatehouse/internal/application/provision"
	"github.com/Akr1040317/gatehouse/internal/domain"
	domerrors "github.com/Akr1040317/gatehouse/internal/domain/errors"
	"github.com/Akr1040317/gatehouse/internal/infrastructure/http/middleware"
)

// EmailVerifier consumes a verification token issued by the gateway.
type EmailVerifier interface {
	VerifyEmail(ctx context.Context, token string) error
}

// ProvisionHandler serves the account provisioning endpoints.
type ProvisionHandler struct {
	passwordSignup   *provision.PasswordSignup
	credentialSignin *provision.CredentialSignin
	checkUsername    *provision.CheckUsername
	profiles         ports.ProfileRepository
	verifier         EmailVerifier
	emitter          ports.WebhookEmitter
	validate         *validator.Validate
	log              zerolog.Logger
}

func NewProvisionHandler(passwordSignup *provision.PasswordSignup, credentialSignin *provision.CredentialSignin, checkUsername *provision.CheckUsername, profiles ports.ProfileRepository, verifier EmailVerifier, emitter ports.WebhookEmitter, log zerolog.Logger) *ProvisionHandler {
	return &ProvisionHandler{
		passwordSignup:   passwordSignup,
		credentialSignin: credentialSignin,
		checkUsername:    checkUsername,
		profiles:         profiles,
		verifier:         verifier,
		emitter:          emitter,
		validate:         validator.New(),
		log:              log,
	}
}

// Signup handles POST /auth/signup (password path).
func (h *ProvisionHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName string `json:"first_name" validate:"required,max=100"`
		LastName  string `json:"last_name" validate:"required,max=100"`
		Email     string `json:"email" validate:"required,email,max=254"`
		Username  string `json:"username" validate:"required,max=30"`
		Password  string `json:"password" validate:"required,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	email := SanitizeEmail(body.Email)
	username := SanitizeUsername(body.Username)
	password := SanitizePassword(body.Password)
	if email == "" || username == "" || password == "" {
		writeErr(w, http.StatusBadRequest, "", "invalid email, username or password length")
		return
	}
	outcome, err := h.passwordSignup.Execute(r.Context(), provision.PasswordSignupInput{
		FirstName: SanitizeName(body.FirstName),
		LastName:  SanitizeName(body.LastName),
		Email:     email,
		Username:  username,
		Password:  password,
	})
	if err != nil {
		AuditEmit(h.log, r, h.emitter, "user.signup", "", false, err.Error())
		middleware.RecordProvisionAttempt("signup", false)
		h.writeClassified(w, err)
		return
	}
	AuditEmit(h.log, r, h.emitter, "user.signup", outcome.Profile.UserID.String(), true, "")
	middleware.RecordProvisionAttempt("signup", true)
	writeJSON(w, http.StatusCreated, outcomeResponse(outcome))
}

// Login handles POST /auth/login (credential sign-in).
func (h *ProvisionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	email := SanitizeEmail(body.Email)
	password := SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusBadRequest, "", "invalid email or password length")
		return
	}
	outcome, err := h.credentialSignin.Execute(r.Context(), provision.CredentialSigninInput{
		Email:    email,
		Password: password,
	})
	if err != nil {
		AuditEmit(h.log, r, h.emitter, "user.login", "", false, err.Error())
		middleware.RecordProvisionAttempt("login", false)
		h.writeClassified(w, err)
		return
	}
	AuditEmit(h.log, r, h.emitter, "user.login", outcome.Profile.UserID.String(), true, "")
	middleware.RecordProvisionAttempt("login", true)
	status := http.StatusOK
	if outcome.Status == provision.StatusProvisioned {
		status = http.StatusCreated
	}
	writeJSON(w, status, outcomeResponse(outcome))
}

// UsernameAvailability handles GET /usernames/{username}. Advisory only:
// the answer can go stale before a claim, and a registry failure reports
// available rather than blocking an interactive signup.
func (h *ProvisionHandler) UsernameAvailability(w http.ResponseWriter, r *http.Request) {
	username := SanitizeUsername(chi.URLParam(r, "username"))
	available, err := h.checkUsername.Execute(r.Context(), username)
	if err != nil {
		h.log.Warn().Err(err).Str("username", username).Msg("availability check failed; reporting available")
		available = true
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username":  username,
		"available": available,
	})
}

// GetProfile handles GET /profiles/{id}.
func (h *ProvisionHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeErr(w, http.StatusBadRequest, "", "profile id required")
		return
	}
	profile, err := h.profiles.Get(r.Context(), domain.NewUserID(id))
	if err != nil {
		h.writeClassified(w, err)
		return
	}
	if profile == nil {
		writeErr(w, http.StatusNotFound, "", "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, profileResponse(profile))
}

// VerifyEmail handles POST /auth/verify-email.
func (h *ProvisionHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token" validate:"required,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	if err := h.verifier.VerifyEmail(r.Context(), body.Token); err != nil {
		h.writeClassified(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

func (h *ProvisionHandler) writeClassified(w http.ResponseWriter, err error) {
	status, code := classifyErr(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("provisioning failed")
		writeErr(w, status, code, "internal error")
		return
	}
	writeErr(w, status, code, err.Error())
}

// classifyErr maps domain sentinels to HTTP status and stable error code.
func classifyErr(err error) (int, string) {
	switch {
	case errors.Is(err, domerrors.ErrInvalidInput):
		return http.StatusBadRequest, ErrCodeInvalidRequest
	case errors.Is(err, domerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrCodeInvalidCredentials
	case errors.Is(err, domerrors.ErrEmailInUse):
		return http.StatusConflict, ErrCodeEmailInUse
	case errors.Is(err, domerrors.ErrUsernameTaken):
		return http.StatusConflict, ErrCodeUsernameConflict
	case errors.Is(err, domerrors.ErrCancelled):
		return http.StatusBadRequest, ErrCodeCancelled
	case errors.Is(err, domerrors.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, ErrCodeUpstreamUnavailable
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

func outcomeResponse(outcome *provision.Outcome) map[string]interface{} {
	resp := map[string]interface{}{
		"status":  string(outcome.Status),
		"profile": profileResponse(outcome.Profile),
	}
	if outcome.Status == provision.StatusProvisioned && outcome.Profile.SignupMethod == domain.AuthMethodPassword && outcome.Profile.Username != "" {
		resp["verification_requested"] = outcome.VerificationRequested
	}
	return resp
}

func profileResponse(p *domain.UserProfile) map[string]interface{} {
	return map[string]interface{}{
		"user_id":         p.UserID.String(),
		"first_name":      p.FirstName,
		"last_name":       p.LastName,
		"email":           p.Email,
		"username":        p.Username,
		"verified":        p.Verified,
		"role":            string(p.Role),
		"signup_method":   string(p.SignupMethod),
		"created_at":      p.CreatedAt.Format(time.RFC3339),
		"last_logged_on":  p.LastLoggedOn,
		"last_logged_off": p.LastLoggedOff,
	}
}
