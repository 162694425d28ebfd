package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExportRow is a single row in the full-data export.
// It is a flat, denormalized view: one row per post with the author's
// username and every tag name inlined.
//
// Tags is ordered alphabetically. Callers that need a joined string
// (e.g. CSV) should join with "|".
type ExportRow struct {
	PostID    uuid.UUID
	Title     string
	Slug      string
	Status    Status
	Author    string
	Comments  int
	CreatedAt time.Time
	UpdatedAt time.Time
	Tags      []string
}
