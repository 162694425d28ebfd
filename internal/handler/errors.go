package handler

import (
	"errors"
	"net/http"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
)

// Messages for responses that have no page of their own.
const (
	msgNotFound   = "Not found."
	msgNotAllowed = "Not allowed."
	msgBadRequest = "Bad request."
	msgInternal   = "Internal server error."
)

// fail answers a request whose service call returned err and that has no
// better recovery of its own:
//
//	ErrUnauthenticated   → redirect to the login page
//	ErrNotFound          → 404
//	ErrForbidden         → 403 with the denial message
//	ErrInvalidTransition → 409 with the transition message
//	ErrValidation        → 400 (form handlers re-render instead)
//	anything else        → logged, 500
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		s.redirectToLogin(w, r)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, msgNotFound, http.StatusNotFound)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, domain.UserMessage(err, msgNotAllowed), http.StatusForbidden)
	case errors.Is(err, domain.ErrInvalidTransition):
		http.Error(w, domain.UserMessage(err, msgBadRequest), http.StatusConflict)
	case errors.Is(err, domain.ErrValidation):
		http.Error(w, msgBadRequest, http.StatusBadRequest)
	default:
		s.serverError(w, r, err)
	}
}

// serverError logs err and answers 500 without leaking details.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "request failed",
		"method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, msgInternal, http.StatusInternalServerError)
}

// isFormError reports whether err carries field messages to show on a
// re-rendered form rather than a terminal error response.
func isFormError(err error) bool {
	return domain.AsValidationErrors(err) != nil
}
