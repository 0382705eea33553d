package session

import (
	"encoding/json"
	"net/http"
	"time"
)

// Handler serves /api/session.
type Handler struct {
	sessions *Manager
}

func NewHandler(sessions *Manager) *Handler {
	return &Handler{sessions: sessions}
}

// SetCookie binds the client to session id.
func SetCookie(w http.ResponseWriter, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl / time.Second),
	})
}

func clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// Show returns usage, sources, live feed and the last report.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	s, ok := FromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"no session"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.View())
}

// Reset discards the current session and starts a new one.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if s, ok := FromContext(r.Context()); ok {
		if err := h.sessions.Destroy(r.Context(), s); err != nil {
			http.Error(w, `{"error":"session teardown failed"}`, http.StatusInternalServerError)
			return
		}
	}

	fresh, err := h.sessions.Create(r.Context())
	if err != nil {
		http.Error(w, `{"error":"session creation failed"}`, http.StatusInternalServerError)
		return
	}
	SetCookie(w, fresh.ID, h.sessions.TTL())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(fresh.View())
}

// Destroy tears the session down and clears the cookie.
func (h *Handler) Destroy(w http.ResponseWriter, r *http.Request) {
	if s, ok := FromContext(r.Context()); ok {
		if err := h.sessions.Destroy(r.Context(), s); err != nil {
			http.Error(w, `{"error":"session teardown failed"}`, http.StatusInternalServerError)
			return
		}
	}
	clearCookie(w)

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message":"deleted"}`))
}
