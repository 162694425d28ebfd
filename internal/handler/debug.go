package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/view"
)

const msgDisabled = "Disabled"

// debugUsers handles GET /debug/users/. Debug builds only.
func (s *Server) debugUsers(w http.ResponseWriter, r *http.Request) {
	if !s.debug {
		http.Error(w, msgDisabled, http.StatusForbidden)
		return
	}
	users, err := s.auth.ListUsers(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.page(w, r, http.StatusOK, view.PageDebugUsers, view.Data{Title: "Users", Users: users})
}

// debugResetPassword handles /debug/users/reset/{username}/. A POST sets a
// random temporary password and prints it; other methods only explain
// themselves. Debug builds only.
func (s *Server) debugResetPassword(w http.ResponseWriter, r *http.Request) {
	if !s.debug {
		http.Error(w, msgDisabled, http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if r.Method != http.MethodPost {
		fmt.Fprintln(w, "Use POST to reset password.")
		return
	}

	user, temp, err := s.auth.ResetPassword(r.Context(), chi.URLParam(r, "username"))
	if errors.Is(err, domain.ErrNotFound) {
		fmt.Fprintln(w, "User not found.")
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	fmt.Fprintf(w, "Password for %s reset to: %s\n", user.Username, temp)
}
