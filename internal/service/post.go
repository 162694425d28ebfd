// Package service contains the business logic of the blog.
// Services validate inputs, apply the workflow rules and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/repo"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/slug"
)

// SearchLimit caps the number of posts returned by Search.
const SearchLimit = 20

// maxSlugAttempts bounds the suffix search for a free slug.
const maxSlugAttempts = 1000

// PostDetail is a post together with its visible comments.
type PostDetail struct {
	Post     domain.Post
	Comments []domain.Comment
}

// PostService implements post creation, editing, review and comments.
type PostService struct {
	repos    repo.Repos
	tx       repo.Transactor
	validate *Validator
	log      *slog.Logger
}

// NewPostService constructs a PostService. Reads go through repos; writes
// that touch more than one table run inside tx.
func NewPostService(repos repo.Repos, tx repo.Transactor, v *Validator, log *slog.Logger) *PostService {
	return &PostService{repos: repos, tx: tx, validate: v, log: log}
}

// Create validates in, checks that actor may start the post in the requested
// status and stores it with its tags. The slug is derived from the title and
// made unique with a numeric suffix.
func (s *PostService) Create(ctx context.Context, actor *domain.User, in domain.PostInput) (domain.Post, error) {
	if actor == nil {
		return domain.Post{}, domain.ErrUnauthenticated
	}

	clean, err := s.validate.Post(in)
	if err != nil {
		s.logInvalid(ctx, "post create failed", uuid.Nil, err)
		return domain.Post{}, fmt.Errorf("service.PostService.Create: %w", err)
	}
	status, err := domain.ParseStatus(clean.Status)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Create: %w", err)
	}
	if err := domain.AuthorizeCreate(actor, status); err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Create: %w", err)
	}

	var created domain.Post
	err = s.tx.WithinTx(ctx, func(r repo.Repos) error {
		slugValue, err := freeSlug(ctx, r.Posts, clean.Title)
		if err != nil {
			return err
		}
		created, err = r.Posts.Create(ctx, domain.Post{
			Title:    clean.Title,
			Slug:     slugValue,
			Body:     clean.Body,
			Status:   status,
			AuthorID: actor.ID,
		})
		if err != nil {
			return err
		}
		created.Tags, err = setTags(ctx, r, created.ID, clean.Tags)
		return err
	})
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Create: %w", err)
	}

	s.log.InfoContext(ctx, "post created", "post_id", created.ID, "slug", created.Slug, "status", created.Status)
	return created, nil
}

// Update applies an edit submitted from the post's edit page.
func (s *PostService) Update(ctx context.Context, actor *domain.User, postSlug string, in domain.PostInput) (domain.Post, error) {
	post, err := s.repos.Posts.GetBySlug(ctx, postSlug)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Update: %w", err)
	}
	updated, err := s.update(ctx, actor, post, in)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Update: %w", err)
	}
	return updated, nil
}

// UpdateByID applies an edit submitted from the inline edit fragment.
func (s *PostService) UpdateByID(ctx context.Context, actor *domain.User, id uuid.UUID, in domain.PostInput) (domain.Post, error) {
	post, err := s.repos.Posts.GetByID(ctx, id)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.UpdateByID: %w", err)
	}
	updated, err := s.update(ctx, actor, post, in)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.UpdateByID: %w", err)
	}
	return updated, nil
}

// update checks the edit right before looking at the submission so that
// non-editors learn nothing from validation messages.
func (s *PostService) update(ctx context.Context, actor *domain.User, post domain.Post, in domain.PostInput) (domain.Post, error) {
	if actor == nil {
		return domain.Post{}, domain.ErrUnauthenticated
	}
	if !domain.CanEdit(actor, post) {
		return domain.Post{}, domain.Forbidden("Not allowed.")
	}

	clean, err := s.validate.Post(in)
	if err != nil {
		s.logInvalid(ctx, "post update failed", post.ID, err)
		return domain.Post{}, err
	}
	status, err := domain.ParseStatus(clean.Status)
	if err != nil {
		return domain.Post{}, err
	}
	if err := domain.AuthorizeEdit(actor, post, status); err != nil {
		return domain.Post{}, err
	}

	var updated domain.Post
	err = s.tx.WithinTx(ctx, func(r repo.Repos) error {
		var err error
		updated, err = r.Posts.Update(ctx, domain.Post{
			ID:       post.ID,
			Title:    clean.Title,
			Body:     clean.Body,
			Status:   status,
			AuthorID: post.AuthorID,
		})
		if err != nil {
			return err
		}
		updated.Tags, err = setTags(ctx, r, post.ID, clean.Tags)
		return err
	})
	if err != nil {
		return domain.Post{}, err
	}

	if updated.Status != post.Status {
		s.log.InfoContext(ctx, "post status changed",
			"post_id", post.ID, "from", post.Status, "to", updated.Status, "user_id", actor.ID)
	}
	return updated, nil
}

// GetBySlug returns a post with its tags and approved comments.
func (s *PostService) GetBySlug(ctx context.Context, postSlug string) (PostDetail, error) {
	post, err := s.repos.Posts.GetBySlug(ctx, postSlug)
	if err != nil {
		return PostDetail{}, fmt.Errorf("service.PostService.GetBySlug: %w", err)
	}
	if post.Tags, err = s.repos.Tags.ListByPost(ctx, post.ID); err != nil {
		return PostDetail{}, fmt.Errorf("service.PostService.GetBySlug: %w", err)
	}
	comments, err := s.repos.Comments.ListByPost(ctx, post.ID)
	if err != nil {
		return PostDetail{}, fmt.Errorf("service.PostService.GetBySlug: %w", err)
	}
	return PostDetail{Post: post, Comments: comments}, nil
}

// GetForEdit returns a post with its tags after checking actor may edit it.
func (s *PostService) GetForEdit(ctx context.Context, actor *domain.User, postSlug string) (domain.Post, error) {
	post, err := s.repos.Posts.GetBySlug(ctx, postSlug)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.GetForEdit: %w", err)
	}
	post, err = s.editable(ctx, actor, post)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.GetForEdit: %w", err)
	}
	return post, nil
}

// GetForEditByID is GetForEdit addressed by primary key.
func (s *PostService) GetForEditByID(ctx context.Context, actor *domain.User, id uuid.UUID) (domain.Post, error) {
	post, err := s.repos.Posts.GetByID(ctx, id)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.GetForEditByID: %w", err)
	}
	post, err = s.editable(ctx, actor, post)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.GetForEditByID: %w", err)
	}
	return post, nil
}

func (s *PostService) editable(ctx context.Context, actor *domain.User, post domain.Post) (domain.Post, error) {
	if actor == nil {
		return domain.Post{}, domain.ErrUnauthenticated
	}
	if !domain.CanEdit(actor, post) {
		return domain.Post{}, domain.Forbidden("Not allowed.")
	}
	tags, err := s.repos.Tags.ListByPost(ctx, post.ID)
	if err != nil {
		return domain.Post{}, err
	}
	post.Tags = tags
	return post, nil
}

// List returns one page of posts, newest first, with their tags.
// A page past the end is reported as domain.ErrNotFound; page 1 always exists.
func (s *PostService) List(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Post], error) {
	if p.OutOfRange() {
		return domain.Page[domain.Post]{}, fmt.Errorf("service.PostService.List: page %d: %w", p.Page, domain.ErrNotFound)
	}
	posts, total, err := s.repos.Posts.ListPaged(ctx, p)
	if err != nil {
		return domain.Page[domain.Post]{}, fmt.Errorf("service.PostService.List: %w", err)
	}
	page := domain.Page[domain.Post]{Page: p.Page, Limit: p.Limit, Total: total}
	if p.Page > page.NumPages() {
		return domain.Page[domain.Post]{}, fmt.Errorf("service.PostService.List: page %d: %w", p.Page, domain.ErrNotFound)
	}
	if page.Items, err = s.withTags(ctx, posts); err != nil {
		return domain.Page[domain.Post]{}, fmt.Errorf("service.PostService.List: %w", err)
	}
	return page, nil
}

// Search returns up to SearchLimit posts whose title, body or a tag name
// contains term. A blank term returns the newest posts.
func (s *PostService) Search(ctx context.Context, term string) ([]domain.Post, error) {
	posts, err := s.repos.Posts.Search(ctx, strings.TrimSpace(term), SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("service.PostService.Search: %w", err)
	}
	if posts, err = s.withTags(ctx, posts); err != nil {
		return nil, fmt.Errorf("service.PostService.Search: %w", err)
	}
	return posts, nil
}

// ReviewQueue lists posts awaiting review. Only reviewers may see it.
func (s *PostService) ReviewQueue(ctx context.Context, actor *domain.User) ([]domain.Post, error) {
	if err := domain.Authorize(actor, domain.ActionViewQueue); err != nil {
		return nil, fmt.Errorf("service.PostService.ReviewQueue: %w", err)
	}
	posts, err := s.repos.Posts.ListByStatus(ctx, domain.StatusReview)
	if err != nil {
		return nil, fmt.Errorf("service.PostService.ReviewQueue: %w", err)
	}
	if posts, err = s.withTags(ctx, posts); err != nil {
		return nil, fmt.Errorf("service.PostService.ReviewQueue: %w", err)
	}
	return posts, nil
}

// Review applies a review queue action (publish or send_back) to the post
// with the given id and returns the post after the change.
func (s *PostService) Review(ctx context.Context, actor *domain.User, postID uuid.UUID, action string) (domain.Post, error) {
	if err := domain.Authorize(actor, domain.ActionViewQueue); err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Review: %w", err)
	}
	a, err := domain.ParseReviewAction(action)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Review: %w", err)
	}
	post, err := s.repos.Posts.GetByID(ctx, postID)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Review: %w", err)
	}
	to, err := domain.PlanReview(actor, post, a)
	if err != nil {
		return post, fmt.Errorf("service.PostService.Review: %w", err)
	}

	updated, err := s.repos.Posts.UpdateStatus(ctx, post.ID, post.Status, to)
	if errors.Is(err, domain.ErrConflict) {
		err = &domain.TransitionError{Message: fmt.Sprintf("'%s' was already handled by another reviewer.", post.Title)}
	}
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.Review: %w", err)
	}
	s.log.InfoContext(ctx, "post reviewed",
		"post_id", post.ID, "action", a, "from", post.Status, "to", updated.Status, "user_id", actor.ID)
	return updated, nil
}

// GetForDelete returns the post a delete confirmation page is about.
func (s *PostService) GetForDelete(ctx context.Context, actor *domain.User, postSlug string) (domain.Post, error) {
	if err := domain.Authorize(actor, domain.ActionDelete); err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.GetForDelete: %w", err)
	}
	post, err := s.repos.Posts.GetBySlug(ctx, postSlug)
	if err != nil {
		return domain.Post{}, fmt.Errorf("service.PostService.GetForDelete: %w", err)
	}
	return post, nil
}

// Delete removes a post together with its comments and tag links.
// The capability is checked before the post is looked up.
func (s *PostService) Delete(ctx context.Context, actor *domain.User, postSlug string) error {
	post, err := s.GetForDelete(ctx, actor, postSlug)
	if err != nil {
		return fmt.Errorf("service.PostService.Delete: %w", err)
	}
	if err := s.repos.Posts.Delete(ctx, post.ID); err != nil {
		return fmt.Errorf("service.PostService.Delete: %w", err)
	}
	s.log.InfoContext(ctx, "post deleted", "post_id", post.ID, "slug", post.Slug, "user_id", actor.ID)
	return nil
}

// AddComment validates and stores a comment by actor on the post at postSlug.
func (s *PostService) AddComment(ctx context.Context, actor *domain.User, postSlug string, in domain.CommentInput) (domain.Comment, error) {
	if err := domain.AuthorizeComment(actor); err != nil {
		return domain.Comment{}, fmt.Errorf("service.PostService.AddComment: %w", err)
	}
	post, err := s.repos.Posts.GetBySlug(ctx, postSlug)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("service.PostService.AddComment: %w", err)
	}
	clean, err := s.validate.Comment(in)
	if err != nil {
		s.logInvalid(ctx, "comment rejected", post.ID, err)
		return domain.Comment{}, fmt.Errorf("service.PostService.AddComment: %w", err)
	}

	comment, err := s.repos.Comments.Create(ctx, domain.Comment{PostID: post.ID, UserID: actor.ID, Body: clean.Body})
	if err != nil {
		return domain.Comment{}, fmt.Errorf("service.PostService.AddComment: %w", err)
	}
	return comment, nil
}

// withTags attaches tags to each post with a single batched lookup.
func (s *PostService) withTags(ctx context.Context, posts []domain.Post) ([]domain.Post, error) {
	if len(posts) == 0 {
		return posts, nil
	}
	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	byPost, err := s.repos.Tags.ListByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Tags = byPost[posts[i].ID]
	}
	return posts, nil
}

func (s *PostService) logInvalid(ctx context.Context, msg string, postID uuid.UUID, err error) {
	attrs := []any{"errors", domain.AsValidationErrors(err).ByField()}
	if postID != uuid.Nil {
		attrs = append(attrs, "post_id", postID)
	}
	s.log.DebugContext(ctx, msg, attrs...)
}

// freeSlug derives a slug from title and appends -2, -3, ... until it is
// unused. The check runs inside the creating transaction; a concurrent
// insert that wins the race surfaces as domain.ErrConflict from the repo.
func freeSlug(ctx context.Context, posts repo.PostRepo, title string) (string, error) {
	base := slug.From(title, domain.MaxSlugLen)
	if base == "" {
		base = slug.Fallback
	}
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := slug.WithSuffix(base, n, domain.MaxSlugLen)
		taken, err := posts.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free slug for %q: %w", base, domain.ErrConflict)
}

// setTags resolves names through the tag registry and links them to postID.
func setTags(ctx context.Context, r repo.Repos, postID uuid.UUID, names []string) ([]domain.Tag, error) {
	tags, err := NewTagService(r.Tags).Resolve(ctx, names)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	if err := r.Tags.SetForPost(ctx, postID, ids); err != nil {
		return nil, err
	}
	return tags, nil
}
