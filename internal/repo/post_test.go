package repo_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
)

func TestPostRepo_Create(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	author := userFixture(t, r)

	got, err := r.Posts.Create(ctx, domain.Post{
		Title:    "Hello there world",
		Slug:     "hello-there-world-" + uuid.NewString(),
		Body:     "first body",
		Status:   domain.StatusDraft,
		AuthorID: author.ID,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID, "ID should be DB-generated UUID")
	assert.Equal(t, "Hello there world", got.Title)
	assert.Equal(t, domain.StatusDraft, got.Status)
	assert.Equal(t, author.ID, got.AuthorID)
	assert.Equal(t, author.Username, got.AuthorName)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")
	assert.False(t, got.UpdatedAt.IsZero(), "UpdatedAt should be set by DB")
}

func TestPostRepo_Create_DuplicateSlug(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	author := userFixture(t, r)
	first := postFixture(t, r, author, "Original title")

	_, err := r.Posts.Create(ctx, domain.Post{
		Title: "Another title", Slug: first.Slug, Body: "b",
		Status: domain.StatusDraft, AuthorID: author.ID,
	})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPostRepo_GetBySlug(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	created := postFixture(t, r, userFixture(t, r), "Findable post")

	got, err := r.Posts.GetBySlug(ctx, created.Slug)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestPostRepo_GetBySlug_NotFound(t *testing.T) {
	r := newTestRepos(t)

	_, err := r.Posts.GetBySlug(context.Background(), "no-such-slug-"+uuid.NewString())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostRepo_GetByID_NotFound(t *testing.T) {
	r := newTestRepos(t)

	_, err := r.Posts.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostRepo_SlugExists(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	created := postFixture(t, r, userFixture(t, r), "Slug owner")

	exists, err := r.Posts.SlugExists(ctx, created.Slug)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = r.Posts.SlugExists(ctx, created.Slug+"-x")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPostRepo_Update_KeepsSlug(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	created := postFixture(t, r, userFixture(t, r), "Before the edit")

	created.Title = "After the edit"
	created.Body = "new body"
	created.Status = domain.StatusReview
	got, err := r.Posts.Update(ctx, created)

	require.NoError(t, err)
	assert.Equal(t, "After the edit", got.Title)
	assert.Equal(t, "new body", got.Body)
	assert.Equal(t, domain.StatusReview, got.Status)
	assert.Equal(t, created.Slug, got.Slug, "slug must not change on edit")
	assert.False(t, got.UpdatedAt.Before(created.UpdatedAt))
}

func TestPostRepo_Update_NotFound(t *testing.T) {
	r := newTestRepos(t)
	author := userFixture(t, r)

	_, err := r.Posts.Update(context.Background(), domain.Post{
		ID: uuid.New(), Title: "Ghost post here", Body: "b", Status: domain.StatusDraft, AuthorID: author.ID,
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostRepo_UpdateStatus(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	created := postFixture(t, r, userFixture(t, r), "Moving along")

	got, err := r.Posts.UpdateStatus(ctx, created.ID, domain.StatusDraft, domain.StatusPublished)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, got.Status)
	assert.Equal(t, created.Title, got.Title)
}

func TestPostRepo_UpdateStatus_StaleFromIsConflict(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	created := postFixture(t, r, userFixture(t, r), "Reviewed twice")
	_, err := r.Posts.UpdateStatus(ctx, created.ID, domain.StatusDraft, domain.StatusReview)
	require.NoError(t, err)
	_, err = r.Posts.UpdateStatus(ctx, created.ID, domain.StatusReview, domain.StatusPublished)
	require.NoError(t, err)

	// A second reviewer still believes the post is queued.
	_, err = r.Posts.UpdateStatus(ctx, created.ID, domain.StatusReview, domain.StatusDraft)

	assert.ErrorIs(t, err, domain.ErrConflict)
	got, err := r.Posts.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, got.Status, "losing write must not apply")
}

func TestPostRepo_UpdateStatus_NotFound(t *testing.T) {
	r := newTestRepos(t)

	_, err := r.Posts.UpdateStatus(context.Background(), uuid.New(), domain.StatusReview, domain.StatusPublished)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostRepo_ListByStatus(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	author := userFixture(t, r)
	queued := postFixture(t, r, author, "Waiting for review")
	_ = postFixture(t, r, author, "Still a draft")
	_, err := r.Posts.UpdateStatus(ctx, queued.ID, domain.StatusDraft, domain.StatusReview)
	require.NoError(t, err)

	got, err := r.Posts.ListByStatus(ctx, domain.StatusReview)

	require.NoError(t, err)
	ids := make([]uuid.UUID, len(got))
	for i, p := range got {
		assert.Equal(t, domain.StatusReview, p.Status)
		ids[i] = p.ID
	}
	assert.Contains(t, ids, queued.ID)
}

func TestPostRepo_ListPaged(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	author := userFixture(t, r)
	for i := 0; i < 3; i++ {
		postFixture(t, r, author, "Paged post number")
	}

	got, total, err := r.Posts.ListPaged(ctx, domain.PaginationParams{Page: 1, Limit: 2})

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.GreaterOrEqual(t, total, int64(3))
}

func TestPostRepo_Search_MatchesTitleBodyAndTag(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	author := userFixture(t, r)
	marker := uuid.NewString()[:8]

	byTitle := postFixture(t, r, author, "Title "+marker)
	byBody, err := r.Posts.Create(ctx, domain.Post{
		Title:    "Plain heading",
		Slug:     "post-" + uuid.NewString(),
		Body:     "The marker " + marker + " hides in the middle of the body.",
		Status:   domain.StatusDraft,
		AuthorID: author.ID,
	})
	require.NoError(t, err)
	byTag := postFixture(t, r, author, "Unrelated heading")
	tag, err := r.Tags.Upsert(ctx, "tag"+marker)
	require.NoError(t, err)
	require.NoError(t, r.Tags.SetForPost(ctx, byTag.ID, []uuid.UUID{tag.ID}))
	_ = postFixture(t, r, author, "Nothing to see")

	got, err := r.Posts.Search(ctx, strings.ToUpper(marker), 20)

	require.NoError(t, err)
	ids := make([]uuid.UUID, len(got))
	for i, p := range got {
		ids[i] = p.ID
	}
	assert.ElementsMatch(t, []uuid.UUID{byTitle.ID, byBody.ID, byTag.ID}, ids)
}

func TestPostRepo_Search_NoMatch(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	postFixture(t, r, userFixture(t, r), "Plain ordinary title")

	got, err := r.Posts.Search(ctx, "absent-"+uuid.NewString(), 20)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPostRepo_Search_EscapesWildcards(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	postFixture(t, r, userFixture(t, r), "Plain ordinary title")

	got, err := r.Posts.Search(ctx, "%_%"+uuid.NewString(), 20)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPostRepo_Delete(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	author := userFixture(t, r)
	created := postFixture(t, r, author, "Short lived post")
	_, err := r.Comments.Create(ctx, domain.Comment{PostID: created.ID, UserID: author.ID, Body: "bye"})
	require.NoError(t, err)

	require.NoError(t, r.Posts.Delete(ctx, created.ID))

	_, err = r.Posts.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	comments, err := r.Comments.ListByPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, comments, "comments cascade with the post")
}

func TestPostRepo_Delete_NotFound(t *testing.T) {
	r := newTestRepos(t)

	err := r.Posts.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
