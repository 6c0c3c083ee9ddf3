package web

import (
	"errors"
	"net/http"

	"github.com/vbonduro/imgprompt/internal/service"
	"github.com/vbonduro/imgprompt/internal/sessionstore"
)

const sessionCookie = "imgprompt_session"

// controllerFor returns the caller's session controller, creating a session
// and setting its cookie when the request carries none or an expired one.
func (s *Server) controllerFor(w http.ResponseWriter, r *http.Request) (*service.Controller, error) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		c, err := s.sessions.Get(r.Context(), cookie.Value)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, sessionstore.ErrNotFound) {
			return nil, err
		}
	}

	id, c, err := s.sessions.Create(r.Context())
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	return c, nil
}
