package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/rs/zerolog"

	"github.com/Akr1040317/gatehouse/internal/application/ports"
	"github.com/Akr1040317/gatehouse/internal/application/provision"
	"github.com/Akr1040317/gatehouse/internal/domain"
	domerrors "github.com/Akr1040317/gatehouse/internal/domain/errors"
	"github.com/Akr1040317/gatehouse/internal/infrastructure/http/middleware"
)

// InitOAuthProviders registers Goth providers and session store. Call once at startup.
func InitOAuthProviders(callbackBaseURL, sessionSecret string, googleClientID, googleClientSecret string) {
	if googleClientID != "" && googleClientSecret != "" {
		callbackURL := callbackBaseURL + "/auth/google/callback"
		goth.UseProviders(google.New(googleClientID, googleClientSecret, callbackURL))
	}
	if sessionSecret != "" {
		gothic.Store = sessions.NewCookieStore([]byte(sessionSecret))
	}
}

// OAuthBegin redirects to the OAuth provider. Provider from URL: /auth/:provider.
func OAuthBegin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		if provider == "" {
			writeErr(w, http.StatusBadRequest, "", "provider required")
			return
		}
		if _, err := goth.GetProvider(provider); err != nil {
			writeErr(w, http.StatusBadRequest, "", "unknown provider")
			return
		}
		// Gothic expects provider in query
		r2 := r.Clone(r.Context())
		q := r2.URL.Query()
		q.Set("provider", provider)
		r2.URL.RawQuery = q.Encode()
		authURL, err := gothic.GetAuthURL(w, r2)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "", "internal error")
			return
		}
		http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
	}
}

// OAuthCallback completes the federated handshake, normalizes the provider's
// user into an Identity and runs federated provisioning. Sign-up and sign-in
// share this endpoint; the outcome distinguishes them.
func OAuthCallback(federated *provision.Federated, redirectURL string, emitter ports.WebhookEmitter, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		if provider == "" {
			writeErr(w, http.StatusBadRequest, "", "provider required")
			return
		}
		if denied := r.URL.Query().Get("error"); denied != "" {
			// Principal aborted at the provider (e.g. access_denied).
			AuditEmit(log, r, emitter, "user.federated", "", false, domerrors.ErrCancelled.Error())
			middleware.RecordProvisionAttempt("federated", false)
			writeErr(w, http.StatusBadRequest, ErrCodeCancelled, domerrors.ErrCancelled.Error())
			return
		}
		r2 := r.Clone(r.Context())
		q := r2.URL.Query()
		q.Set("provider", provider)
		r2.URL.RawQuery = q.Encode()
		gothUser, err := gothic.CompleteUserAuth(w, r2)
		if err != nil {
			AuditEmit(log, r, emitter, "user.federated", "", false, err.Error())
			middleware.RecordProvisionAttempt("federated", false)
			writeErr(w, http.StatusUnauthorized, "", "oauth failed")
			return
		}
		displayName := gothUser.Name
		if displayName == "" && (gothUser.FirstName != "" || gothUser.LastName != "") {
			displayName = gothUser.FirstName + " " + gothUser.LastName
		}
		identity := domain.Identity{
			ID:          domain.NewUserID(gothUser.Provider + ":" + gothUser.UserID),
			Email:       gothUser.Email,
			DisplayName: displayName,
			// The provider guarantees verified-email semantics for the
			// providers in scope.
			EmailVerified: true,
			Method:        domain.AuthMethodFederated,
		}
		outcome, err := federated.Execute(r.Context(), provision.FederatedInput{Identity: identity})
		if err != nil {
			AuditEmit(log, r, emitter, "user.federated", identity.ID.String(), false, err.Error())
			middleware.RecordProvisionAttempt("federated", false)
			status, code := classifyErr(err)
			if status == http.StatusInternalServerError {
				log.Error().Err(err).Msg("federated provisioning failed")
				writeErr(w, status, code, "internal error")
				return
			}
			writeErr(w, status, code, err.Error())
			return
		}
		AuditEmit(log, r, emitter, "user.federated", identity.ID.String(), true, "")
		middleware.RecordProvisionAttempt("federated", true)
		if redirectURL != "" {
			// Redirect to frontend with the outcome in query.
			u, _ := url.Parse(redirectURL)
			uq := u.Query()
			uq.Set("status", string(outcome.Status))
			uq.Set("user_id", outcome.Profile.UserID.String())
			u.RawQuery = uq.Encode()
			http.Redirect(w, r, u.String(), http.StatusTemporaryRedirect)
			return
		}
		status := http.StatusOK
		if outcome.Status == provision.StatusProvisioned {
			status = http.StatusCreated
		}
		writeJSON(w, status, outcomeResponse(outcome))
	}
}
