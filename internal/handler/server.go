// Package handler implements the HTTP handlers of the blog.
// All handlers are methods on Server. Methods are split into feature files
// (posts.go, accounts.go, debug.go, etc.) but share the same Server struct so
// they can reach its dependencies.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/service"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/session"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/view"
)

// PostServicer defines the post operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type PostServicer interface {
	Create(ctx context.Context, actor *domain.User, in domain.PostInput) (domain.Post, error)
	Update(ctx context.Context, actor *domain.User, slug string, in domain.PostInput) (domain.Post, error)
	UpdateByID(ctx context.Context, actor *domain.User, id uuid.UUID, in domain.PostInput) (domain.Post, error)
	GetBySlug(ctx context.Context, slug string) (service.PostDetail, error)
	GetForEdit(ctx context.Context, actor *domain.User, slug string) (domain.Post, error)
	GetForEditByID(ctx context.Context, actor *domain.User, id uuid.UUID) (domain.Post, error)
	List(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Post], error)
	Search(ctx context.Context, term string) ([]domain.Post, error)
	ReviewQueue(ctx context.Context, actor *domain.User) ([]domain.Post, error)
	Review(ctx context.Context, actor *domain.User, postID uuid.UUID, action string) (domain.Post, error)
	GetForDelete(ctx context.Context, actor *domain.User, slug string) (domain.Post, error)
	Delete(ctx context.Context, actor *domain.User, slug string) error
	AddComment(ctx context.Context, actor *domain.User, slug string, in domain.CommentInput) (domain.Comment, error)
}

// AuthServicer defines the account operations the handlers depend on.
type AuthServicer interface {
	Register(ctx context.Context, in domain.Registration) (domain.User, error)
	Authenticate(ctx context.Context, login, password string) (domain.User, error)
	LoginHint(ctx context.Context, login string) (string, error)
	ChangePassword(ctx context.Context, user *domain.User, in domain.PasswordChange) error
	GetUser(ctx context.Context, id uuid.UUID) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ResetPassword(ctx context.Context, username string) (domain.User, string, error)
	EnsureDevUser(ctx context.Context) (domain.User, error)
}

// TagServicer backs the tag suggestions shown under the post form.
type TagServicer interface {
	List(ctx context.Context, prefix string) ([]domain.Tag, error)
}

// ExportServicer produces the staff data export.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Renderer executes the page and fragment templates. *view.Renderer
// satisfies it.
type Renderer interface {
	Page(w io.Writer, name string, data view.Data) error
	Fragment(w io.Writer, name string, data view.Data) error
}

// Deps are the collaborators of a Server.
type Deps struct {
	Posts    PostServicer
	Auth     AuthServicer
	Tags     TagServicer
	Export   ExportServicer
	Sessions *session.Manager
	Views    Renderer
	Log      *slog.Logger
	// Debug enables the development-only endpoints.
	Debug bool
}

// Server serves every page and fragment of the blog.
type Server struct {
	posts    PostServicer
	auth     AuthServicer
	tags     TagServicer
	export   ExportServicer
	sessions *session.Manager
	views    Renderer
	log      *slog.Logger
	debug    bool
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	return &Server{
		posts:    d.Posts,
		auth:     d.Auth,
		tags:     d.Tags,
		export:   d.Export,
		sessions: d.Sessions,
		views:    d.Views,
		log:      d.Log,
		debug:    d.Debug,
	}
}

// Routes returns the routed application. Sessions and the current user are
// resolved for every request. limitAuth wraps the login and registration
// endpoints; pass nil to leave them unthrottled.
func (s *Server) Routes(limitAuth func(http.Handler) http.Handler) http.Handler {
	if limitAuth == nil {
		limitAuth = func(next http.Handler) http.Handler { return next }
	}

	r := chi.NewRouter()
	r.Use(s.sessions.Middleware)
	r.Use(s.loadUser)

	r.Get("/healthz", s.health)
	r.Get("/", s.listPosts)

	// Static post routes come before the {slug} routes.
	r.Get("/posts/new/", s.newPost)
	r.Post("/posts/new/", s.createPost)
	r.Get("/posts/review/", s.reviewQueue)
	r.Post("/posts/review/", s.reviewAction)

	r.Route("/posts/{slug}", func(r chi.Router) {
		r.Get("/", s.postDetail)
		r.Post("/", s.addComment)
		r.Get("/edit/", s.editPost)
		r.Post("/edit/", s.updatePost)
		r.Get("/delete/", s.confirmDelete)
		r.Post("/delete/", s.deletePost)
	})

	r.Get("/hx/search/", s.search)
	r.Get("/hx/tags/", s.tagOptions)
	r.Get("/hx/posts/{id}/inline/", s.inlineForm)
	r.Post("/hx/posts/{id}/inline/", s.inlineUpdate)

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/login/", s.loginForm)
		r.With(limitAuth).Post("/login/", s.login)
		r.Get("/register/", s.registerForm)
		r.With(limitAuth).Post("/register/", s.register)
		r.Post("/logout/", s.logout)
		r.Get("/password_change/", s.passwordChangeForm)
		r.Post("/password_change/", s.passwordChange)
	})

	r.Get("/dev-login/", s.devLogin)
	r.Get("/debug/users/", s.debugUsers)
	r.HandleFunc("/debug/users/reset/{username}/", s.debugResetPassword)

	r.Get("/export/", s.exportPosts)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found.", http.StatusNotFound)
	})
	return r
}
