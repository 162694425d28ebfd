package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/service"
)

// exportRow is the JSON shape of one exported post.
type exportRow struct {
	PostID    openapi_types.UUID `json:"post_id"`
	Title     string             `json:"title"`
	Slug      string             `json:"slug"`
	Status    domain.Status      `json:"status"`
	Author    string             `json:"author"`
	Comments  int                `json:"comments"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	Tags      []string           `json:"tags"`
}

// exportPosts handles GET /export/. Staff only.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) exportPosts(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !user.IsStaff && !user.IsSuperuser {
		http.Error(w, msgNotAllowed, http.StatusForbidden)
		return
	}

	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		http.Error(w, msgBadRequest, http.StatusBadRequest)
		return
	}
	wantCSV := format != nil && *format == "csv"
	if format != nil && !wantCSV && *format != "json" {
		http.Error(w, "format must be csv or json", http.StatusBadRequest)
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if wantCSV {
		s.writeCSV(w, r, rows)
		return
	}
	writeJSON(w, http.StatusOK, toExportJSON(rows))
}

// writeCSV buffers the whole file so a failure can still become a 500.
func (s *Server) writeCSV(w http.ResponseWriter, r *http.Request, rows []domain.ExportRow) {
	var buf bytes.Buffer
	if err := service.WriteExportCSV(&buf, rows); err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="posts.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// toExportJSON maps domain rows to their JSON shape. Tags are never null.
func toExportJSON(rows []domain.ExportRow) []exportRow {
	out := make([]exportRow, 0, len(rows))
	for _, r := range rows {
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, exportRow{
			PostID:    r.PostID,
			Title:     r.Title,
			Slug:      r.Slug,
			Status:    r.Status,
			Author:    r.Author,
			Comments:  r.Comments,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			Tags:      tags,
		})
	}
	return out
}
