package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/handler"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/session"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/view"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/testutil"
)

// harness wires a Server with mocks, real templates and a miniredis-backed
// session store, the way main.go wires it in production.
type harness struct {
	t      *testing.T
	posts  *mockPostServicer
	auth   *mockAuthServicer
	tags   *mockTagServicer
	export *mockExportServicer
	store  *session.RedisStore
	users  map[uuid.UUID]domain.User
	debug  bool
	// views replaces the real templates when set.
	views handler.Renderer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	_, client := testutil.NewRedis(t)

	h := &harness{
		t:      t,
		posts:  &mockPostServicer{},
		auth:   &mockAuthServicer{},
		tags:   &mockTagServicer{},
		export: &mockExportServicer{},
		store:  session.NewRedisStore(client),
		users:  map[uuid.UUID]domain.User{},
	}
	h.auth.getUser = func(_ context.Context, id uuid.UUID) (domain.User, error) {
		u, ok := h.users[id]
		if !ok {
			return domain.User{}, domain.ErrNotFound
		}
		return u, nil
	}
	return h
}

func (h *harness) handler() http.Handler {
	h.t.Helper()
	var views handler.Renderer = h.views
	if views == nil {
		tmpl, err := view.New()
		require.NoError(h.t, err)
		views = tmpl
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := handler.NewServer(handler.Deps{
		Posts:    h.posts,
		Auth:     h.auth,
		Tags:     h.tags,
		Export:   h.export,
		Sessions: session.NewManager(h.store, time.Hour, false, log),
		Views:    views,
		Log:      log,
		Debug:    h.debug,
	})
	return srv.Routes(nil)
}

// do serves req and returns the recorded response.
func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.handler().ServeHTTP(rec, req)
	return rec
}

// loginAs stores a session for u and returns its cookie.
func (h *harness) loginAs(u domain.User) *http.Cookie {
	h.t.Helper()
	h.users[u.ID] = u
	id := uuid.NewString()
	require.NoError(h.t, h.store.Save(context.Background(), id, session.Data{UserID: u.ID.String()}, time.Hour))
	return &http.Cookie{Name: session.CookieName, Value: id}
}

// flashes returns the messages waiting in the session the response points at.
func (h *harness) flashes(rec *httptest.ResponseRecorder, fallback *http.Cookie) []session.Flash {
	h.t.Helper()
	id := ""
	if fallback != nil {
		id = fallback.Value
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			id = c.Value
		}
	}
	require.NotEmpty(h.t, id, "response has no session")
	data, err := h.store.Load(context.Background(), id)
	require.NoError(h.t, err)
	return data.Flashes
}

func get(target string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func postForm(target string, values url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func htmx(req *http.Request) *http.Request {
	req.Header.Set("HX-Request", "true")
	return req
}

func newUser(caps ...domain.Capability) domain.User {
	return domain.User{ID: uuid.New(), Username: "alice", Capabilities: caps}
}

func postFixture(author domain.User) domain.Post {
	return domain.Post{
		ID:         uuid.New(),
		Title:      "A post worth reading",
		Slug:       "a-post-worth-reading",
		Body:       "Some body text.",
		Status:     domain.StatusDraft,
		AuthorID:   author.ID,
		AuthorName: author.Username,
		CreatedAt:  time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}
}

func fieldError(field string, code domain.ValidationCode, msg string) error {
	return domain.ValidationErrors{{Field: field, Code: code, Message: msg}}
}

// sessionFrom loads the session the response's cookie points at.
func (h *harness) sessionFrom(rec *httptest.ResponseRecorder) session.Data {
	h.t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			data, err := h.store.Load(context.Background(), c.Value)
			require.NoError(h.t, err)
			return data
		}
	}
	h.t.Fatal("response set no session cookie")
	return session.Data{}
}
