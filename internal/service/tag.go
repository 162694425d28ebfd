package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/repo"
)

// TagService is the tag registry: it maps names to Tag rows, creating them
// the first time a post mentions them. Tag identity is the exact name.
type TagService struct {
	tags repo.TagRepo
}

// NewTagService constructs a TagService backed by the provided TagRepo.
func NewTagService(tags repo.TagRepo) *TagService {
	return &TagService{tags: tags}
}

// UpsertByName trims name and returns the matching tag, creating it if needed.
func (s *TagService) UpsertByName(ctx context.Context, name string) (domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Tag{}, domain.ValidationErrors{{Field: "tags_csv", Code: domain.CodeRequired, Message: "Tag name is required."}}
	}
	if utf8.RuneCountInString(name) > domain.MaxTagNameLen {
		return domain.Tag{}, domain.ValidationErrors{{
			Field:   "tags_csv",
			Code:    domain.CodeTooLong,
			Message: fmt.Sprintf("Tag %q is too long (at most %d characters).", name, domain.MaxTagNameLen),
		}}
	}

	tag, err := s.tags.Upsert(ctx, name)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.UpsertByName: %w", err)
	}
	return tag, nil
}

// Resolve maps already parsed names to tags in the same order.
func (s *TagService) Resolve(ctx context.Context, names []string) ([]domain.Tag, error) {
	tags := make([]domain.Tag, 0, len(names))
	for _, name := range names {
		tag, err := s.UpsertByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("service.TagService.Resolve: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// List returns tags whose name starts with prefix, for form suggestions.
func (s *TagService) List(ctx context.Context, prefix string) ([]domain.Tag, error) {
	tags, err := s.tags.List(ctx, strings.TrimSpace(prefix))
	if err != nil {
		return nil, fmt.Errorf("service.TagService.List: %w", err)
	}
	return tags, nil
}
