package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const sessionCookieName = "rowlly_session"

type ctxKey int

const (
	sessionKey ctxKey = iota
	newSessionKey
)

// withSession makes sure every client carries a session id; selections are
// stored under it.
func withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, issued := "", false
		if c, err := r.Cookie(sessionCookieName); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id, issued = uuid.New().String(), true
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   365 * 24 * 60 * 60,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), sessionKey, id)
		ctx = context.WithValue(ctx, newSessionKey, issued)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionKey).(string)
	return id
}

// newSession reports whether the session id was issued by this request, in
// which case nothing can be stored under it yet.
func newSession(r *http.Request) bool {
	issued, _ := r.Context().Value(newSessionKey).(bool)
	return issued
}
