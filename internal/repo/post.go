// Package repo contains all database access logic for the blog.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostRepo defines the persistence operations for Posts.
// Tags are not loaded here; see TagRepo.ListByPost and TagRepo.ListByPosts.
type PostRepo interface {
	// Create inserts a new post and returns the persisted record (with
	// DB-generated id, created_at and updated_at populated).
	// Returns domain.ErrConflict if the slug is already taken.
	Create(ctx context.Context, post domain.Post) (domain.Post, error)

	// GetByID retrieves a single post by its UUID primary key.
	// Returns domain.ErrNotFound if no post with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Post, error)

	// GetBySlug retrieves a single post by its unique slug.
	// Returns domain.ErrNotFound if no post has that slug.
	GetBySlug(ctx context.Context, slug string) (domain.Post, error)

	// SlugExists reports whether any post already uses slug.
	SlugExists(ctx context.Context, slug string) (bool, error)

	// ListPaged returns one page of posts, newest first, and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Post, int64, error)

	// ListByStatus returns every post in status, newest first.
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Post, error)

	// Search returns up to limit posts, newest first, whose title, body or any
	// tag name contains term case-insensitively. An empty term matches all.
	Search(ctx context.Context, term string, limit int) ([]domain.Post, error)

	// Update overwrites title, body and status and refreshes updated_at.
	// The slug is never changed. Returns domain.ErrNotFound if missing.
	Update(ctx context.Context, post domain.Post) (domain.Post, error)

	// UpdateStatus moves a post from one status to another and refreshes
	// updated_at. Returns domain.ErrConflict if the post is no longer in from
	// and domain.ErrNotFound if it does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) (domain.Post, error)

	// Delete removes a post; comments and tag links cascade.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgPostRepo is the Postgres implementation of PostRepo.
type pgPostRepo struct {
	db db
}

// NewPostRepo constructs a PostRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostRepo(db db) PostRepo {
	return &pgPostRepo{db: db}
}

// postColumns is the select list understood by scanPost. Every query that
// uses it aliases posts as p and users as u.
const postColumns = `p.id, p.title, p.slug, p.body, p.status, p.author_id, u.username, p.created_at, p.updated_at`

// Create inserts a post row. The CTE lets RETURNING carry the author's
// username so the caller gets a fully populated value in one round trip.
func (r *pgPostRepo) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	const q = `
		WITH p AS (
			INSERT INTO posts (author_id, title, slug, body, status)
			VALUES (@author_id, @title, @slug, @body, @status)
			RETURNING *
		)
		SELECT ` + postColumns + `
		FROM p JOIN users u ON u.id = p.author_id`

	args := pgx.NamedArgs{
		"author_id": post.AuthorID,
		"title":     post.Title,
		"slug":      post.Slug,
		"body":      post.Body,
		"status":    string(post.Status),
	}

	result, err := scanPost(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Post{}, fmt.Errorf("repo.PostRepo.Create: %w", mapConstraint(err))
	}
	return result, nil
}

// GetByID retrieves a post by primary key.
func (r *pgPostRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Post, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM posts p JOIN users u ON u.id = p.author_id
		WHERE p.id = @id`

	result, err := scanPost(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Post{}, fmt.Errorf("repo.PostRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetBySlug retrieves a post by slug.
func (r *pgPostRepo) GetBySlug(ctx context.Context, slug string) (domain.Post, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM posts p JOIN users u ON u.id = p.author_id
		WHERE p.slug = @slug`

	result, err := scanPost(r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": slug}))
	if err != nil {
		return domain.Post{}, fmt.Errorf("repo.PostRepo.GetBySlug: %w", err)
	}
	return result, nil
}

// SlugExists reports whether slug is in use.
func (r *pgPostRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = @slug)`

	var exists bool
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": slug}).Scan(&exists); err != nil {
		return false, fmt.Errorf("repo.PostRepo.SlugExists: %w", err)
	}
	return exists, nil
}

// ListPaged returns one page of posts ordered by created_at descending.
func (r *pgPostRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Post, int64, error) {
	const countQ = `SELECT count(*) FROM posts`
	const q = `
		SELECT ` + postColumns + `
		FROM posts p JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC, p.id
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.PostRepo.ListPaged: count: %w", err)
	}

	posts, err := r.query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.PostRepo.ListPaged: %w", err)
	}
	return posts, total, nil
}

// ListByStatus returns every post in the given status, newest first.
func (r *pgPostRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Post, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM posts p JOIN users u ON u.id = p.author_id
		WHERE p.status = @status
		ORDER BY p.created_at DESC, p.id`

	posts, err := r.query(ctx, q, pgx.NamedArgs{"status": string(status)})
	if err != nil {
		return nil, fmt.Errorf("repo.PostRepo.ListByStatus: %w", err)
	}
	return posts, nil
}

// Search matches term against title, body and tag names with ILIKE.
// EXISTS keeps a post that matches through several tags from repeating.
func (r *pgPostRepo) Search(ctx context.Context, term string, limit int) ([]domain.Post, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM posts p JOIN users u ON u.id = p.author_id
		WHERE p.title ILIKE @pattern
		   OR p.body ILIKE @pattern
		   OR EXISTS (
				SELECT 1
				FROM post_tags pt
				JOIN tags t ON t.id = pt.tag_id
				WHERE pt.post_id = p.id
				  AND t.name ILIKE @pattern
		   )
		ORDER BY p.created_at DESC, p.id
		LIMIT @limit`

	args := pgx.NamedArgs{"pattern": "%" + escapeLike(term) + "%", "limit": limit}
	posts, err := r.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.PostRepo.Search: %w", err)
	}
	return posts, nil
}

// Update overwrites the mutable fields of a post and returns the updated record.
func (r *pgPostRepo) Update(ctx context.Context, post domain.Post) (domain.Post, error) {
	const q = `
		WITH p AS (
			UPDATE posts
			SET title      = @title,
			    body       = @body,
			    status     = @status,
			    updated_at = now()
			WHERE id = @id
			RETURNING *
		)
		SELECT ` + postColumns + `
		FROM p JOIN users u ON u.id = p.author_id`

	args := pgx.NamedArgs{
		"id":     post.ID,
		"title":  post.Title,
		"body":   post.Body,
		"status": string(post.Status),
	}

	result, err := scanPost(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Post{}, fmt.Errorf("repo.PostRepo.Update: %w", err)
	}
	return result, nil
}

// UpdateStatus moves a post from one status to another and refreshes
// updated_at in the same write. Only a post still in from is changed.
func (r *pgPostRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) (domain.Post, error) {
	const q = `
		WITH p AS (
			UPDATE posts
			SET status = @to, updated_at = now()
			WHERE id = @id AND status = @from
			RETURNING *
		)
		SELECT ` + postColumns + `
		FROM p JOIN users u ON u.id = p.author_id`
	const existsQ = `SELECT EXISTS (SELECT 1 FROM posts WHERE id = @id)`

	args := pgx.NamedArgs{"id": id, "from": string(from), "to": string(to)}
	result, err := scanPost(r.db.QueryRow(ctx, q, args))
	if errors.Is(err, domain.ErrNotFound) {
		var exists bool
		if err := r.db.QueryRow(ctx, existsQ, pgx.NamedArgs{"id": id}).Scan(&exists); err != nil {
			return domain.Post{}, fmt.Errorf("repo.PostRepo.UpdateStatus: exists: %w", err)
		}
		if exists {
			err = domain.ErrConflict
		}
	}
	if err != nil {
		return domain.Post{}, fmt.Errorf("repo.PostRepo.UpdateStatus: %w", err)
	}
	return result, nil
}

// Delete removes a post by primary key.
func (r *pgPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM posts WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.PostRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PostRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// query runs a multi-row post query and always returns a non-nil slice.
func (r *pgPostRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Post, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return posts, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanPost maps a row selected with postColumns into a domain.Post.
func scanPost(s scanner) (domain.Post, error) {
	var (
		p        domain.Post
		id       pgtype.UUID
		authorID pgtype.UUID
		status   string
	)

	err := s.Scan(&id, &p.Title, &p.Slug, &p.Body, &status, &authorID, &p.AuthorName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, domain.ErrNotFound
		}
		return domain.Post{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.AuthorID = uuid.UUID(authorID.Bytes)
	p.Status = domain.Status(status)
	return p, nil
}

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// mapConstraint turns a unique violation into domain.ErrConflict and leaves
// every other error untouched.
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	}
	return err
}

// likeEscaper escapes the LIKE metacharacters so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
