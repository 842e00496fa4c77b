package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

const flowTTL = 10 * time.Minute

// Login starts the OAuth flow: state and PKCE verifier go into cookies and
// the browser is sent to the provider.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Provider == nil {
			http.Error(w, "sign-in is not configured", http.StatusServiceUnavailable)
			return
		}

		state, verifier := auth.NewState(), auth.NewState()
		d.Sessions.SetFlowCookie(w, auth.StateCookie, state, flowTTL)
		d.Sessions.SetFlowCookie(w, auth.VerifierCookie, verifier, flowTTL)

		http.Redirect(w, r, d.Provider.AuthCodeURL(state, verifier), http.StatusFound)
	}
}

// Callback completes the OAuth flow and issues the session cookie.
func Callback(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Provider == nil {
			http.Error(w, "sign-in is not configured", http.StatusServiceUnavailable)
			return
		}

		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			d.Logger.Info("provider refused sign-in", logger.String("error", e))
			http.Redirect(w, r, "/?error=signin", http.StatusFound)
			return
		}

		stateCookie, err := r.Cookie(auth.StateCookie)
		if err != nil || q.Get("state") == "" ||
			subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(q.Get("state"))) != 1 {
			http.Error(w, "invalid oauth state", http.StatusBadRequest)
			return
		}
		verifierCookie, err := r.Cookie(auth.VerifierCookie)
		if err != nil || q.Get("code") == "" {
			http.Error(w, "invalid oauth callback", http.StatusBadRequest)
			return
		}

		d.Sessions.ClearFlowCookie(w, auth.StateCookie)
		d.Sessions.ClearFlowCookie(w, auth.VerifierCookie)

		user, err := d.Provider.Exchange(r.Context(), q.Get("code"), verifierCookie.Value)
		if err != nil {
			d.Logger.Warn("oauth exchange failed",
				logger.String("provider", d.Provider.Name()),
				logger.Error(err))
			http.Error(w, "sign-in failed", http.StatusBadGateway)
			return
		}

		token, err := d.Sessions.Issue(*user)
		if err != nil {
			d.Logger.Error("failed to issue session", logger.Error(err))
			http.Error(w, "sign-in failed", http.StatusInternalServerError)
			return
		}
		d.Sessions.SetCookie(w, token)

		d.Logger.Info("user signed in",
			logger.String("user_id", user.ID),
			logger.String("provider", d.Provider.Name()))
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	}
}

// Logout clears the session cookie.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Sessions.ClearCookie(w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
