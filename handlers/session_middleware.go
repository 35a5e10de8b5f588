package handlers

import (
	"context"
	"net/http"

	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/sessionstore"
)

const sessionCookieName = "console_session"

type contextKey string

const sessionStateKey contextKey = "session_state"

// SessionMiddleware attaches the caller's per-session state to the request,
// issuing a fresh session cookie when none (or an expired one) is presented.
func SessionMiddleware(store *sessionstore.Store, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var state *sessionstore.State

		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			state, _ = store.Get(cookie.Value)
		}
		if state == nil {
			id := store.NewSession()
			state, _ = store.Get(id)
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionStateKey, state)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionState(r *http.Request) *sessionstore.State {
	state, _ := r.Context().Value(sessionStateKey).(*sessionstore.State)
	return state
}
