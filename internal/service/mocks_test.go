package service_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/repo"
)

// Hand-written test doubles. Each method is a function field; set only the
// ones a test needs. Calling an unset one panics, which flags an unexpected
// repo call.

type mockPostRepo struct {
	create       func(ctx context.Context, post domain.Post) (domain.Post, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Post, error)
	getBySlug    func(ctx context.Context, slug string) (domain.Post, error)
	slugExists   func(ctx context.Context, slug string) (bool, error)
	listPaged    func(ctx context.Context, p domain.PaginationParams) ([]domain.Post, int64, error)
	listByStatus func(ctx context.Context, status domain.Status) ([]domain.Post, error)
	search       func(ctx context.Context, term string, limit int) ([]domain.Post, error)
	update       func(ctx context.Context, post domain.Post) (domain.Post, error)
	updateStatus func(ctx context.Context, id uuid.UUID, from, to domain.Status) (domain.Post, error)
	delete       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockPostRepo) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	return m.create(ctx, post)
}
func (m *mockPostRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Post, error) {
	return m.getByID(ctx, id)
}
func (m *mockPostRepo) GetBySlug(ctx context.Context, slug string) (domain.Post, error) {
	return m.getBySlug(ctx, slug)
}
func (m *mockPostRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	return m.slugExists(ctx, slug)
}
func (m *mockPostRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Post, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockPostRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Post, error) {
	return m.listByStatus(ctx, status)
}
func (m *mockPostRepo) Search(ctx context.Context, term string, limit int) ([]domain.Post, error) {
	return m.search(ctx, term, limit)
}
func (m *mockPostRepo) Update(ctx context.Context, post domain.Post) (domain.Post, error) {
	return m.update(ctx, post)
}
func (m *mockPostRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) (domain.Post, error) {
	return m.updateStatus(ctx, id, from, to)
}
func (m *mockPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

type mockTagRepo struct {
	upsert      func(ctx context.Context, name string) (domain.Tag, error)
	list        func(ctx context.Context, prefix string) ([]domain.Tag, error)
	setForPost  func(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error
	listByPost  func(ctx context.Context, postID uuid.UUID) ([]domain.Tag, error)
	listByPosts func(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error)
}

func (m *mockTagRepo) Upsert(ctx context.Context, name string) (domain.Tag, error) {
	return m.upsert(ctx, name)
}
func (m *mockTagRepo) List(ctx context.Context, prefix string) ([]domain.Tag, error) {
	return m.list(ctx, prefix)
}
func (m *mockTagRepo) SetForPost(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error {
	return m.setForPost(ctx, postID, tagIDs)
}
func (m *mockTagRepo) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Tag, error) {
	return m.listByPost(ctx, postID)
}
func (m *mockTagRepo) ListByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error) {
	return m.listByPosts(ctx, postIDs)
}

type mockCommentRepo struct {
	create       func(ctx context.Context, c domain.Comment) (domain.Comment, error)
	listByPost   func(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error)
	countByPosts func(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

func (m *mockCommentRepo) Create(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	return m.create(ctx, c)
}
func (m *mockCommentRepo) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	return m.listByPost(ctx, postID)
}
func (m *mockCommentRepo) CountByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	return m.countByPosts(ctx, postIDs)
}

type mockUserRepo struct {
	create           func(ctx context.Context, u domain.User) (domain.User, error)
	getByID          func(ctx context.Context, id uuid.UUID) (domain.User, error)
	getByUsername    func(ctx context.Context, username string) (domain.User, error)
	getByEmail       func(ctx context.Context, email string) (domain.User, error)
	list             func(ctx context.Context) ([]domain.User, error)
	setPassword      func(ctx context.Context, id uuid.UUID, hash string) error
	grantCapability  func(ctx context.Context, id uuid.UUID, c domain.Capability) error
	revokeCapability func(ctx context.Context, id uuid.UUID, c domain.Capability) error
}

func (m *mockUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return m.create(ctx, u)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return m.getByUsername(ctx, username)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.getByEmail(ctx, email)
}
func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	return m.list(ctx)
}
func (m *mockUserRepo) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return m.setPassword(ctx, id, hash)
}
func (m *mockUserRepo) GrantCapability(ctx context.Context, id uuid.UUID, c domain.Capability) error {
	return m.grantCapability(ctx, id, c)
}
func (m *mockUserRepo) RevokeCapability(ctx context.Context, id uuid.UUID, c domain.Capability) error {
	return m.revokeCapability(ctx, id, c)
}

// mockTransactor runs fn directly against the same repos; committed is set
// when fn succeeds.
type mockTransactor struct {
	repos     repo.Repos
	calls     int
	committed bool
}

func (m *mockTransactor) WithinTx(_ context.Context, fn func(repo.Repos) error) error {
	m.calls++
	if err := fn(m.repos); err != nil {
		return err
	}
	m.committed = true
	return nil
}

// compile-time checks
var (
	_ repo.PostRepo    = (*mockPostRepo)(nil)
	_ repo.TagRepo     = (*mockTagRepo)(nil)
	_ repo.CommentRepo = (*mockCommentRepo)(nil)
	_ repo.UserRepo    = (*mockUserRepo)(nil)
	_ repo.Transactor  = (*mockTransactor)(nil)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
