package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxTagNameLen is the storage limit for a tag name.
const MaxTagNameLen = 50

// Tag is a label shared by any number of posts.
// Tags are global and identified by their exact Name; they are created
// lazily the first time a post references them and never deleted by the app.
type Tag struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// TagNames returns the names of tags in their current order.
func TagNames(tags []Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

// JoinTagNames renders tags as the comma-separated text a post form accepts.
func JoinTagNames(tags []Tag) string {
	return strings.Join(TagNames(tags), ", ")
}
