package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vbonduro/imgprompt/internal/domain"
	"github.com/vbonduro/imgprompt/internal/service"
)

// workspaceFiles are the templates that make up the interactive region.
var workspaceFiles = []string{"partials/workspace.html", "partials/prompt_display.html"}

// workspaceView is the template data for the page and its partials.
type workspaceView struct {
	domain.State
	Phase          string
	CanGenerate    bool
	Accept         string
	MaxUploadBytes int64
}

func (s *Server) view(c *service.Controller) workspaceView {
	st := c.Snapshot()
	return workspaceView{
		State:          st,
		Phase:          st.Phase().String(),
		CanGenerate:    st.CanGenerate(),
		Accept:         "image/png, image/jpeg, image/webp",
		MaxUploadBytes: s.maxUploadBytes,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	c, err := s.controllerFor(w, r)
	if err != nil {
		s.sessionError(w, err)
		return
	}

	files := append([]string{"base.html", "pages/index.html"}, workspaceFiles...)
	if err := s.renderPage(w, s.view(c), files...); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	c, err := s.controllerFor(w, r)
	if err != nil {
		s.sessionError(w, err)
		return
	}

	// The outbound call is not cancelled when the client goes away; the
	// result lands in the session state either way.
	outcome, err := c.Generate(context.WithoutCancel(r.Context()))
	status := http.StatusOK
	switch {
	case errors.Is(err, service.ErrBusy):
		http.Error(w, "a prompt is already being generated", http.StatusConflict)
		return
	case errors.Is(err, service.ErrNoImage):
		status = http.StatusBadRequest
	case err != nil:
		http.Error(w, "failed to generate prompt", http.StatusInternalServerError)
		s.logger.Error("generate failed", "error", err)
		return
	case outcome.Status == domain.OutcomeFailure:
		status = http.StatusBadGateway
	}

	s.respondWorkspace(w, r, status, c)
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	c, err := s.controllerFor(w, r)
	if err != nil {
		s.sessionError(w, err)
		return
	}

	if err := s.renderPartial(w, http.StatusOK, "prompt_display", s.view(c), "partials/prompt_display.html"); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}

// browserClipboard hands the copied text to the browser through an htmx
// HX-Trigger event; the page script writes it to navigator.clipboard.
type browserClipboard struct {
	w http.ResponseWriter
}

func (b browserClipboard) WriteText(_ context.Context, text string) error {
	payload, err := json.Marshal(map[string]any{"copyPrompt": map[string]string{"text": text}})
	if err != nil {
		return err
	}
	b.w.Header().Set("HX-Trigger", string(payload))
	return nil
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	c, err := s.controllerFor(w, r)
	if err != nil {
		s.sessionError(w, err)
		return
	}

	if _, err := c.Copy(r.Context(), browserClipboard{w: w}); err != nil {
		http.Error(w, "failed to copy prompt", http.StatusInternalServerError)
		s.logger.Error("copy failed", "error", err)
		return
	}

	if err := s.renderPartial(w, http.StatusOK, "prompt_display", s.view(c), "partials/prompt_display.html"); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	c, err := s.controllerFor(w, r)
	if err != nil {
		s.sessionError(w, err)
		return
	}

	if err := c.Reset(); err != nil {
		if errors.Is(err, service.ErrBusy) {
			http.Error(w, "a prompt is being generated", http.StatusConflict)
			return
		}
		http.Error(w, "failed to reset", http.StatusInternalServerError)
		s.logger.Error("reset failed", "error", err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// respondWorkspace renders the workspace partial for htmx requests and
// redirects plain form posts back to the page.
func (s *Server) respondWorkspace(w http.ResponseWriter, r *http.Request, status int, c *service.Controller) {
	if r.Header.Get("HX-Request") != "true" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := s.renderPartial(w, status, "workspace", s.view(c), workspaceFiles...); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}

func (s *Server) sessionError(w http.ResponseWriter, err error) {
	http.Error(w, "session unavailable", http.StatusInternalServerError)
	s.logger.Error("resolve session failed", "error", err)
}
