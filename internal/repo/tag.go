package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
)

// TagRepo defines the persistence operations for Tags and the post_tags join table.
type TagRepo interface {
	// Upsert inserts a tag by name, or returns the existing tag if the name
	// already exists.
	Upsert(ctx context.Context, name string) (domain.Tag, error)

	// List returns all tags whose name starts with prefix (case-insensitive),
	// ordered by name. If prefix is empty, all tags are returned.
	List(ctx context.Context, prefix string) ([]domain.Tag, error)

	// SetForPost replaces the tag links of a post with tagIDs, remembering
	// their order. An empty tagIDs clears every link.
	SetForPost(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error

	// ListByPost returns the tags linked to a post in the order they were set.
	ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Tag, error)

	// ListByPosts returns the tags of several posts at once, keyed by post ID.
	// Posts without tags are absent from the map.
	ListByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error)
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

// Upsert inserts a tag or returns the existing row on name conflict.
// DO UPDATE SET is required so RETURNING yields the row on conflict;
// DO NOTHING would return no rows.
func (r *pgTagRepo) Upsert(ctx context.Context, name string) (domain.Tag, error) {
	const q = `
		INSERT INTO tags (name)
		VALUES (@name)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at`

	result, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Upsert: %w", err)
	}
	return result, nil
}

// List returns all tags whose name starts with prefix, ordered by name.
// Pass prefix="" to return all tags.
func (r *pgTagRepo) List(ctx context.Context, prefix string) ([]domain.Tag, error) {
	const q = `
		SELECT id, name, created_at
		FROM tags
		WHERE name ILIKE @prefix || '%'
		ORDER BY name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"prefix": escapeLike(prefix)})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TagRepo.List: scan: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: rows: %w", err)
	}
	return tags, nil
}

// SetForPost deletes the current links and inserts the new ones.
// Run it inside the same transaction as the post write.
func (r *pgTagRepo) SetForPost(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error {
	const del = `DELETE FROM post_tags WHERE post_id = @post_id`
	const ins = `
		INSERT INTO post_tags (post_id, tag_id, position)
		VALUES (@post_id, @tag_id, @position)
		ON CONFLICT (post_id, tag_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, del, pgx.NamedArgs{"post_id": postID}); err != nil {
		return fmt.Errorf("repo.TagRepo.SetForPost: clear: %w", err)
	}
	for i, tagID := range tagIDs {
		args := pgx.NamedArgs{"post_id": postID, "tag_id": tagID, "position": i}
		if _, err := r.db.Exec(ctx, ins, args); err != nil {
			return fmt.Errorf("repo.TagRepo.SetForPost: link: %w", err)
		}
	}
	return nil
}

// ListByPost returns all tags linked to a post in link order.
func (r *pgTagRepo) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Tag, error) {
	const q = `
		SELECT t.id, t.name, t.created_at
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = @post_id
		ORDER BY pt.position, t.name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"post_id": postID})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByPost: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TagRepo.ListByPost: scan: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByPost: rows: %w", err)
	}
	return tags, nil
}

// ListByPosts loads the tags for a batch of posts with a single query so
// list pages avoid one query per row.
func (r *pgTagRepo) ListByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error) {
	out := make(map[uuid.UUID][]domain.Tag, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	const q = `
		SELECT pt.post_id, t.id, t.name, t.created_at
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ANY(@post_ids::uuid[])
		ORDER BY pt.post_id, pt.position, t.name`

	ids := make([]string, len(postIDs))
	for i, id := range postIDs {
		ids[i] = id.String()
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"post_ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByPosts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID pgtype.UUID
			tagID  pgtype.UUID
			t      domain.Tag
		)
		if err := rows.Scan(&postID, &tagID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("repo.TagRepo.ListByPosts: scan: %w", err)
		}
		t.ID = uuid.UUID(tagID.Bytes)
		key := uuid.UUID(postID.Bytes)
		out[key] = append(out[key], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByPosts: rows: %w", err)
	}
	return out, nil
}

// scanTag maps a single database row into a domain.Tag.
func scanTag(s scanner) (domain.Tag, error) {
	var (
		t  domain.Tag
		id pgtype.UUID
	)
	err := s.Scan(&id, &t.Name, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tag{}, domain.ErrNotFound
		}
		return domain.Tag{}, err
	}
	t.ID = uuid.UUID(id.Bytes)
	return t, nil
}
