package handler_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/handler"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/service"
)

// Test doubles for the handler's service interfaces.
// Set only the method fields your test needs; an unset one panics when called.

type mockPostServicer struct {
	create         func(ctx context.Context, actor *domain.User, in domain.PostInput) (domain.Post, error)
	update         func(ctx context.Context, actor *domain.User, slug string, in domain.PostInput) (domain.Post, error)
	updateByID     func(ctx context.Context, actor *domain.User, id uuid.UUID, in domain.PostInput) (domain.Post, error)
	getBySlug      func(ctx context.Context, slug string) (service.PostDetail, error)
	getForEdit     func(ctx context.Context, actor *domain.User, slug string) (domain.Post, error)
	getForEditByID func(ctx context.Context, actor *domain.User, id uuid.UUID) (domain.Post, error)
	list           func(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Post], error)
	search         func(ctx context.Context, term string) ([]domain.Post, error)
	reviewQueue    func(ctx context.Context, actor *domain.User) ([]domain.Post, error)
	review         func(ctx context.Context, actor *domain.User, postID uuid.UUID, action string) (domain.Post, error)
	getForDelete   func(ctx context.Context, actor *domain.User, slug string) (domain.Post, error)
	delete         func(ctx context.Context, actor *domain.User, slug string) error
	addComment     func(ctx context.Context, actor *domain.User, slug string, in domain.CommentInput) (domain.Comment, error)
}

func (m *mockPostServicer) Create(ctx context.Context, actor *domain.User, in domain.PostInput) (domain.Post, error) {
	return m.create(ctx, actor, in)
}
func (m *mockPostServicer) Update(ctx context.Context, actor *domain.User, slug string, in domain.PostInput) (domain.Post, error) {
	return m.update(ctx, actor, slug, in)
}
func (m *mockPostServicer) UpdateByID(ctx context.Context, actor *domain.User, id uuid.UUID, in domain.PostInput) (domain.Post, error) {
	return m.updateByID(ctx, actor, id, in)
}
func (m *mockPostServicer) GetBySlug(ctx context.Context, slug string) (service.PostDetail, error) {
	return m.getBySlug(ctx, slug)
}
func (m *mockPostServicer) GetForEdit(ctx context.Context, actor *domain.User, slug string) (domain.Post, error) {
	return m.getForEdit(ctx, actor, slug)
}
func (m *mockPostServicer) GetForEditByID(ctx context.Context, actor *domain.User, id uuid.UUID) (domain.Post, error) {
	return m.getForEditByID(ctx, actor, id)
}
func (m *mockPostServicer) List(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Post], error) {
	return m.list(ctx, p)
}
func (m *mockPostServicer) Search(ctx context.Context, term string) ([]domain.Post, error) {
	return m.search(ctx, term)
}
func (m *mockPostServicer) ReviewQueue(ctx context.Context, actor *domain.User) ([]domain.Post, error) {
	return m.reviewQueue(ctx, actor)
}
func (m *mockPostServicer) Review(ctx context.Context, actor *domain.User, postID uuid.UUID, action string) (domain.Post, error) {
	return m.review(ctx, actor, postID, action)
}
func (m *mockPostServicer) GetForDelete(ctx context.Context, actor *domain.User, slug string) (domain.Post, error) {
	return m.getForDelete(ctx, actor, slug)
}
func (m *mockPostServicer) Delete(ctx context.Context, actor *domain.User, slug string) error {
	return m.delete(ctx, actor, slug)
}
func (m *mockPostServicer) AddComment(ctx context.Context, actor *domain.User, slug string, in domain.CommentInput) (domain.Comment, error) {
	return m.addComment(ctx, actor, slug, in)
}

type mockAuthServicer struct {
	register       func(ctx context.Context, in domain.Registration) (domain.User, error)
	authenticate   func(ctx context.Context, login, password string) (domain.User, error)
	loginHint      func(ctx context.Context, login string) (string, error)
	changePassword func(ctx context.Context, user *domain.User, in domain.PasswordChange) error
	getUser        func(ctx context.Context, id uuid.UUID) (domain.User, error)
	listUsers      func(ctx context.Context) ([]domain.User, error)
	resetPassword  func(ctx context.Context, username string) (domain.User, string, error)
	ensureDevUser  func(ctx context.Context) (domain.User, error)
}

func (m *mockAuthServicer) Register(ctx context.Context, in domain.Registration) (domain.User, error) {
	return m.register(ctx, in)
}
func (m *mockAuthServicer) Authenticate(ctx context.Context, login, password string) (domain.User, error) {
	return m.authenticate(ctx, login, password)
}
func (m *mockAuthServicer) LoginHint(ctx context.Context, login string) (string, error) {
	return m.loginHint(ctx, login)
}
func (m *mockAuthServicer) ChangePassword(ctx context.Context, user *domain.User, in domain.PasswordChange) error {
	return m.changePassword(ctx, user, in)
}
func (m *mockAuthServicer) GetUser(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getUser(ctx, id)
}
func (m *mockAuthServicer) ListUsers(ctx context.Context) ([]domain.User, error) {
	return m.listUsers(ctx)
}
func (m *mockAuthServicer) ResetPassword(ctx context.Context, username string) (domain.User, string, error) {
	return m.resetPassword(ctx, username)
}
func (m *mockAuthServicer) EnsureDevUser(ctx context.Context) (domain.User, error) {
	return m.ensureDevUser(ctx)
}

type mockTagServicer struct {
	list func(ctx context.Context, prefix string) ([]domain.Tag, error)
}

func (m *mockTagServicer) List(ctx context.Context, prefix string) ([]domain.Tag, error) {
	return m.list(ctx, prefix)
}

type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

// compile-time checks: the mocks and the real services satisfy the interfaces.
var (
	_ handler.PostServicer   = (*mockPostServicer)(nil)
	_ handler.AuthServicer   = (*mockAuthServicer)(nil)
	_ handler.TagServicer    = (*mockTagServicer)(nil)
	_ handler.ExportServicer = (*mockExportServicer)(nil)

	_ handler.PostServicer   = (*service.PostService)(nil)
	_ handler.AuthServicer   = (*service.AuthService)(nil)
	_ handler.TagServicer    = (*service.TagService)(nil)
	_ handler.ExportServicer = (*service.ExportService)(nil)
)
