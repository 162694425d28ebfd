package handler

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/middleware"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/session"
)

type userKey struct{}

// loadUser resolves the session's user id into a domain.User. A session that
// points at a deleted account is treated as anonymous.
func (s *Server) loadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := session.FromContext(r.Context()).UserID()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.auth.GetUser(r.Context(), id)
		if errors.Is(err, domain.ErrNotFound) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		middleware.SetLogUserID(r.Context(), user.ID.String())
		ctx := context.WithValue(r.Context(), userKey{}, &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the signed-in user or nil.
func currentUser(r *http.Request) *domain.User {
	u, _ := r.Context().Value(userKey{}).(*domain.User)
	return u
}

// requireUser returns the signed-in user, or sends the visitor to the login
// page and returns false.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	if u := currentUser(r); u != nil {
		return u, true
	}
	s.redirectToLogin(w, r)
	return nil, false
}

// redirectToLogin sends the visitor to the login page with a next parameter
// pointing back at the page they wanted. Fragment requests go back to the
// page that issued them.
func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Path
	switch {
	case isHTMX(r):
		next = "/"
		if cur, err := url.Parse(r.Header.Get("HX-Current-URL")); err == nil && cur.Path != "" {
			next = cur.Path
		}
	case r.Method == http.MethodGet:
		next = r.URL.RequestURI()
	}
	s.redirect(w, r, "/accounts/login/?next="+url.QueryEscape(next))
}

// redirect answers with 303 See Other, or an HX-Redirect header for htmx
// requests, which would otherwise swap the target page into a fragment slot.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, to string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// safeNext accepts only same-site absolute paths as a post-login target.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// fromLoopback reports whether the request came straight from this machine.
// A request that carried proxy headers does not count, since RealIP may have
// rewritten RemoteAddr from them.
func fromLoopback(r *http.Request) bool {
	for _, h := range []string{"X-Forwarded-For", "X-Real-IP", "True-Client-IP"} {
		if r.Header.Get(h) != "" {
			return false
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
