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

// CommentRepo defines the persistence operations for Comments.
// Comments are owned by a post and disappear with it (ON DELETE CASCADE).
type CommentRepo interface {
	// Create inserts a new comment and returns the persisted record.
	Create(ctx context.Context, comment domain.Comment) (domain.Comment, error)

	// ListByPost returns the approved comments of a post, oldest first.
	ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error)

	// CountByPosts returns the number of comments per post, keyed by post ID.
	CountByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

// pgCommentRepo is the Postgres implementation of CommentRepo.
type pgCommentRepo struct {
	db db
}

// NewCommentRepo constructs a CommentRepo backed by the provided db connection.
func NewCommentRepo(db db) CommentRepo {
	return &pgCommentRepo{db: db}
}

const commentColumns = `c.id, c.post_id, c.user_id, u.username, c.body, c.created_at, c.is_approved`

// Create inserts a comment row; is_approved takes the column default.
func (r *pgCommentRepo) Create(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	const q = `
		WITH c AS (
			INSERT INTO comments (post_id, user_id, body)
			VALUES (@post_id, @user_id, @body)
			RETURNING *
		)
		SELECT ` + commentColumns + `
		FROM c JOIN users u ON u.id = c.user_id`

	args := pgx.NamedArgs{
		"post_id": comment.PostID,
		"user_id": comment.UserID,
		"body":    comment.Body,
	}

	result, err := scanComment(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Comment{}, fmt.Errorf("repo.CommentRepo.Create: %w", err)
	}
	return result, nil
}

// ListByPost returns approved comments ordered by created_at ascending.
func (r *pgCommentRepo) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	const q = `
		SELECT ` + commentColumns + `
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id = @post_id AND c.is_approved
		ORDER BY c.created_at, c.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"post_id": postID})
	if err != nil {
		return nil, fmt.Errorf("repo.CommentRepo.ListByPost: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CommentRepo.ListByPost: scan: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CommentRepo.ListByPost: rows: %w", err)
	}
	return comments, nil
}

// CountByPosts counts comments for a batch of posts in one query.
func (r *pgCommentRepo) CountByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	const q = `
		SELECT post_id, count(*)
		FROM comments
		WHERE post_id = ANY(@post_ids::uuid[])
		GROUP BY post_id`

	ids := make([]string, len(postIDs))
	for i, id := range postIDs {
		ids[i] = id.String()
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"post_ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.CommentRepo.CountByPosts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID pgtype.UUID
			n      int
		)
		if err := rows.Scan(&postID, &n); err != nil {
			return nil, fmt.Errorf("repo.CommentRepo.CountByPosts: scan: %w", err)
		}
		out[uuid.UUID(postID.Bytes)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CommentRepo.CountByPosts: rows: %w", err)
	}
	return out, nil
}

// scanComment maps a row selected with commentColumns into a domain.Comment.
func scanComment(s scanner) (domain.Comment, error) {
	var (
		c      domain.Comment
		id     pgtype.UUID
		postID pgtype.UUID
		userID pgtype.UUID
	)
	err := s.Scan(&id, &postID, &userID, &c.Username, &c.Body, &c.CreatedAt, &c.IsApproved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Comment{}, domain.ErrNotFound
		}
		return domain.Comment{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	c.PostID = uuid.UUID(postID.Bytes)
	c.UserID = uuid.UUID(userID.Bytes)
	return c, nil
}
