package handler

import (
	"bytes"
	"net/http"
	"slices"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/session"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/view"
)

// page renders a full page. The viewer, debug flag and pending flash
// messages are filled in here; flashes already in data are shown after
// the stored ones.
func (s *Server) page(w http.ResponseWriter, r *http.Request, status int, name string, data view.Data) {
	data.User = currentUser(r)
	data.Debug = s.debug
	data.Flashes = append(slices.Clip(s.sessions.Flashes(r)), data.Flashes...)

	// Flashes stay queued until a page carrying them has rendered.
	var buf bytes.Buffer
	if err := s.views.Page(&buf, name, data); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.sessions.ClearFlashes(w, r)
	writeHTML(w, status, &buf)
}

// fragment renders a partial for an htmx swap.
func (s *Server) fragment(w http.ResponseWriter, r *http.Request, status int, name string, data view.Data) {
	data.User = currentUser(r)

	var buf bytes.Buffer
	if err := s.views.Fragment(&buf, name, data); err != nil {
		s.serverError(w, r, err)
		return
	}
	writeHTML(w, status, &buf)
}

func writeHTML(w http.ResponseWriter, status int, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// flash queues a message for the next page. A failed write is logged, not
// fatal: the action it reports has already happened.
func (s *Server) flash(w http.ResponseWriter, r *http.Request, level, message string) {
	if err := s.sessions.AddFlash(w, r, level, message); err != nil {
		s.log.ErrorContext(r.Context(), "flash not saved", "error", err)
	}
}

// errorFlash is a message shown on the page being rendered right now.
func errorFlash(message string) []session.Flash {
	return []session.Flash{{Level: session.LevelError, Message: message}}
}
