package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/repo"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/testutil"
)

// newTestRepos returns every repository bound to one rolled-back transaction.
func newTestRepos(t *testing.T) repo.Repos {
	t.Helper()
	return repo.NewRepos(testutil.NewTx(t))
}

// userFixture inserts a user with a random username and returns it.
func userFixture(t *testing.T, r repo.Repos, caps ...domain.Capability) domain.User {
	t.Helper()
	u, err := r.Users.Create(context.Background(), domain.User{
		Username:     "user-" + uuid.NewString()[:8],
		Email:        "someone@example.com",
		PasswordHash: "x",
		Capabilities: caps,
	})
	require.NoError(t, err)
	return u
}

// postFixture inserts a draft post by author with a unique slug.
func postFixture(t *testing.T, r repo.Repos, author domain.User, title string) domain.Post {
	t.Helper()
	p, err := r.Posts.Create(context.Background(), domain.Post{
		Title:    title,
		Slug:     "post-" + uuid.NewString(),
		Body:     "Body of " + title,
		Status:   domain.StatusDraft,
		AuthorID: author.ID,
	})
	require.NoError(t, err)
	return p
}
