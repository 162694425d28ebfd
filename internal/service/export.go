package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/repo"
)

// exportPageSize is the batch size used to walk every post.
const exportPageSize = 100

// ExportCSVHeader is the first row of every CSV export.
var ExportCSVHeader = []string{
	"post_id", "title", "slug", "status", "author", "comments", "created_at", "updated_at", "tags",
}

// ExportService assembles a flat export of every post with its author, tags
// and comment count.
type ExportService struct {
	posts    repo.PostRepo
	tags     repo.TagRepo
	comments repo.CommentRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(posts repo.PostRepo, tags repo.TagRepo, comments repo.CommentRepo) *ExportService {
	return &ExportService{posts: posts, tags: tags, comments: comments}
}

// Export returns one ExportRow per post, newest first.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	rows := []domain.ExportRow{}
	for page := 1; ; page++ {
		posts, total, err := s.posts.ListPaged(ctx, domain.PaginationParams{Page: page, Limit: exportPageSize})
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: %w", err)
		}
		if len(posts) == 0 {
			break
		}

		ids := make([]uuid.UUID, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		tags, err := s.tags.ListByPosts(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: %w", err)
		}
		counts, err := s.comments.CountByPosts(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: %w", err)
		}

		for _, p := range posts {
			names := domain.TagNames(tags[p.ID])
			slices.Sort(names)
			rows = append(rows, domain.ExportRow{
				PostID:    p.ID,
				Title:     p.Title,
				Slug:      p.Slug,
				Status:    p.Status,
				Author:    p.AuthorName,
				Comments:  counts[p.ID],
				CreatedAt: p.CreatedAt,
				UpdatedAt: p.UpdatedAt,
				Tags:      names,
			})
		}
		if int64(page*exportPageSize) >= total {
			break
		}
	}
	return rows, nil
}

// WriteExportCSV encodes rows as CSV with a header line. Tags within a row
// are joined with "|" so each post stays on one line.
func WriteExportCSV(w io.Writer, rows []domain.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportCSVHeader); err != nil {
		return fmt.Errorf("service.WriteExportCSV: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.PostID.String(),
			r.Title,
			r.Slug,
			string(r.Status),
			r.Author,
			strconv.Itoa(r.Comments),
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.UpdatedAt.UTC().Format(time.RFC3339),
			strings.Join(r.Tags, "|"),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("service.WriteExportCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("service.WriteExportCSV: %w", err)
	}
	return nil
}
