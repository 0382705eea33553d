package middleware

import (
	"net/http"

	"github.com/ayush/smart-research-assistant/internal/session"
)

// Session loads the session named by the session cookie, or starts a new one
// when the cookie is missing or expired, and injects it into the request
// context. The session stays locked until the request completes.
func Session(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if cookie, err := r.Cookie(session.CookieName); err == nil {
				id = cookie.Value
			}

			unlock := func() {}
			if id != "" {
				unlock = sessions.Lock(id)
			}

			sess, created, err := sessions.LoadOrCreate(r.Context(), id)
			if err != nil {
				unlock()
				http.Error(w, `{"error":"session store unavailable"}`, http.StatusServiceUnavailable)
				return
			}
			if created {
				unlock()
				unlock = sessions.Lock(sess.ID)
				session.SetCookie(w, sess.ID, sessions.TTL())
			}
			defer unlock()

			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		})
	}
}
