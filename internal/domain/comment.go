package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reader's reply on a post. Comments belong to exactly one post
// and are removed with it. Within a post they are ordered oldest first.
type Comment struct {
	ID         uuid.UUID
	PostID     uuid.UUID
	UserID     uuid.UUID
	Username   string
	Body       string
	CreatedAt  time.Time
	IsApproved bool
}

// CommentInput is the form payload for a new comment.
type CommentInput struct {
	Body string `form:"body" validate:"required,max=1000"`
}
