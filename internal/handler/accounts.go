package handler

import (
	"net/http"
	"net/url"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/service"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/session"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/view"
)

// Flash texts for account actions.
const (
	msgLoggedIn        = "Logged in successfully."
	msgLoggedOut       = "You have been logged out."
	msgRegistered      = "Account created and logged in."
	msgPasswordChanged = "Your password was changed."
	msgDevLoginOff     = "Dev login is disabled."
	msgDevLoggedIn     = "Logged in as " + service.DevUsername + " (development user)."
)

// loginForm handles GET /accounts/login/.
func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, view.PageLogin, view.Data{Title: "Log in", Next: r.URL.Query().Get("next")})
}

// login handles POST /accounts/login/. The username field accepts a
// username in any case or an e-mail address.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	login := r.PostForm.Get("username")
	next := r.PostForm.Get("next")
	if next == "" {
		next = r.URL.Query().Get("next")
	}

	user, err := s.auth.Authenticate(r.Context(), login, r.PostForm.Get("password"))
	if isFormError(err) {
		s.log.DebugContext(r.Context(), "login attempt failed", "login", login)
		form := view.NewForm(withoutSecrets(r.PostForm), err)
		if s.debug {
			if hint, herr := s.auth.LoginHint(r.Context(), login); herr == nil {
				form.Errors["__all__"] = append(form.Errors["__all__"], hint)
			}
		}
		s.page(w, r, http.StatusUnprocessableEntity, view.PageLogin, view.Data{Title: "Log in", Form: form, Next: next})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.sessions.Login(w, r, user.ID); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.flash(w, r, session.LevelSuccess, msgLoggedIn)
	s.redirect(w, r, safeNext(next))
}

// logout handles POST /accounts/logout/.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(w, r); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.flash(w, r, session.LevelInfo, msgLoggedOut)
	s.redirect(w, r, "/")
}

// registerForm handles GET /accounts/register/.
func (s *Server) registerForm(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, view.PageRegister, view.Data{Title: "Register"})
}

// register handles POST /accounts/register/ and signs the new user in.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	user, err := s.auth.Register(r.Context(), registration(r.PostForm))
	if isFormError(err) {
		s.page(w, r, http.StatusUnprocessableEntity, view.PageRegister, view.Data{
			Title: "Register",
			Form:  view.NewForm(withoutSecrets(r.PostForm), err),
		})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.sessions.Login(w, r, user.ID); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.flash(w, r, session.LevelSuccess, msgRegistered)
	s.redirect(w, r, "/")
}

// passwordChangeForm handles GET /accounts/password_change/.
func (s *Server) passwordChangeForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	s.page(w, r, http.StatusOK, view.PagePasswordChange, view.Data{Title: "Change password"})
}

// passwordChange handles POST /accounts/password_change/. The session stays
// signed in.
func (s *Server) passwordChange(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok || !parseForm(w, r) {
		return
	}
	err := s.auth.ChangePassword(r.Context(), user, passwordChange(r.PostForm))
	if isFormError(err) {
		s.page(w, r, http.StatusUnprocessableEntity, view.PagePasswordChange, view.Data{
			Title: "Change password",
			Form:  view.NewForm(url.Values{}, err),
		})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.flash(w, r, session.LevelSuccess, msgPasswordChanged)
	s.redirect(w, r, "/")
}

// devLogin handles GET /dev-login/. It is open when debugging or when the
// request comes from this machine, and signs in the development superuser.
func (s *Server) devLogin(w http.ResponseWriter, r *http.Request) {
	if !s.debug && !fromLoopback(r) {
		http.Error(w, msgDevLoginOff, http.StatusForbidden)
		return
	}
	user, err := s.auth.EnsureDevUser(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.sessions.Login(w, r, user.ID); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.log.WarnContext(r.Context(), "development login used", "user_id", user.ID)
	s.flash(w, r, session.LevelInfo, msgDevLoggedIn)
	s.redirect(w, r, "/")
}
