// Package domain contains the core data types and workflow rules of the blog.
// It has no dependencies on storage or transport and is imported by every
// other internal package (repo, service, handler).
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Storage limits for post fields.
const (
	MinTitleLen   = 8
	MaxTitleLen   = 200
	MaxSlugLen    = 220
	MaxCommentLen = 1000
)

// Status is the position of a post in the draft → review → published lifecycle.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusReview    Status = "review"
	StatusPublished Status = "published"
)

// Statuses lists every status in workflow order, for form select boxes.
var Statuses = []Status{StatusDraft, StatusReview, StatusPublished}

// ParseStatus converts form input into a Status. An empty string means draft.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case "":
		return StatusDraft, nil
	case StatusDraft, StatusReview, StatusPublished:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

// Label is the human-readable name of the status.
func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusReview:
		return "In Review"
	case StatusPublished:
		return "Published"
	}
	return string(s)
}

// Post is a blog entry. Values are immutable snapshots of a stored row;
// changes go through the service layer and come back as a new Post.
type Post struct {
	ID         uuid.UUID
	Title      string
	Slug       string
	Body       string
	Status     Status
	AuthorID   uuid.UUID
	AuthorName string
	Tags       []Tag
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// URL is the canonical detail page path of the post.
func (p Post) URL() string {
	return "/posts/" + p.Slug + "/"
}

// TagsCSV renders the post's tags as editable comma-separated text.
func (p Post) TagsCSV() string {
	return JoinTagNames(p.Tags)
}

// PostInput is the set of user-editable post fields submitted by a form.
// TagsCSV is the raw comma-separated tag text; Tags holds the parsed names
// once the input has been validated.
type PostInput struct {
	Title   string   `form:"title" validate:"max=200"`
	Body    string   `form:"body" validate:"required"`
	Status  string   `form:"status" validate:"omitempty,oneof=draft review published"`
	TagsCSV string   `form:"tags_csv"`
	Tags    []string `form:"-" validate:"-"`
}
