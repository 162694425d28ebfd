package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CookieName is the name of the session cookie.
const CookieName = "sessionid"

type ctxKey struct{}

// Session is the state of the current request's visitor. It lives in the
// request context; changes are written through the Manager.
type Session struct {
	id   string
	data Data
}

// UserID returns the signed-in user's id, if any.
func (s *Session) UserID() (uuid.UUID, bool) {
	if s == nil || s.data.UserID == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s.data.UserID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Manager loads sessions for incoming requests and persists changes.
// Anonymous visitors get a stored session only once something needs to be
// remembered for them (a flash message).
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
	log    *slog.Logger
}

// NewManager builds a Manager. ttl is both the cookie lifetime and the
// store expiry; secure marks the cookie HTTPS-only.
func NewManager(store Store, ttl time.Duration, secure bool, log *slog.Logger) *Manager {
	return &Manager{store: store, ttl: ttl, secure: secure, log: log}
}

// Middleware attaches the visitor's Session to the request context. Unknown,
// expired or unreadable sessions are treated as a fresh anonymous visit.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := &Session{}
		if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
			data, err := m.store.Load(r.Context(), c.Value)
			switch {
			case err == nil:
				sess.id, sess.data = c.Value, data
			case errors.Is(err, ErrNoSession):
			default:
				m.log.ErrorContext(r.Context(), "session load failed", "error", err)
			}
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the request's Session, or nil outside Middleware.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(ctxKey{}).(*Session)
	return sess
}

// Login binds userID to a brand new session id, keeping pending flashes,
// and drops the previous id.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	sess := m.session(r)
	old := sess.id
	sess.id = uuid.NewString()
	sess.data.UserID = userID.String()

	if err := m.save(w, r, sess); err != nil {
		return err
	}
	if old != "" {
		if err := m.store.Delete(r.Context(), old); err != nil {
			m.log.WarnContext(r.Context(), "old session not deleted", "error", err)
		}
	}
	return nil
}

// Logout discards the session entirely and expires the cookie.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess := m.session(r)
	if sess.id != "" {
		if err := m.store.Delete(r.Context(), sess.id); err != nil {
			return err
		}
	}
	*sess = Session{}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// AddFlash queues a message for the next page the visitor sees.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, level, message string) error {
	sess := m.session(r)
	sess.data.Flashes = append(sess.data.Flashes, Flash{Level: level, Message: message})
	return m.save(w, r, sess)
}

// Flashes returns the pending messages without consuming them.
func (m *Manager) Flashes(r *http.Request) []Flash {
	return m.session(r).data.Flashes
}

// ClearFlashes drops the pending messages once they have been shown.
func (m *Manager) ClearFlashes(w http.ResponseWriter, r *http.Request) {
	sess := m.session(r)
	if len(sess.data.Flashes) == 0 {
		return
	}
	sess.data.Flashes = nil
	if err := m.save(w, r, sess); err != nil {
		m.log.ErrorContext(r.Context(), "session save failed", "error", err)
	}
}

// session returns the context Session, or a detached empty one so callers
// outside Middleware still work.
func (m *Manager) session(r *http.Request) *Session {
	if sess := FromContext(r.Context()); sess != nil {
		return sess
	}
	return &Session{}
}

// save writes sess, allocating an id on first use, and (re)issues the cookie.
func (m *Manager) save(w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess.id == "" {
		sess.id = uuid.NewString()
	}
	if err := m.store.Save(r.Context(), sess.id, sess.data, m.ttl); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.id,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
