package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/repo"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/testutil"
)

func TestTransactor_RollsBackOnError(t *testing.T) {
	tx := testutil.NewTx(t)
	r := repo.NewRepos(tx)
	ctx := context.Background()
	author := userFixture(t, r)
	boom := errors.New("boom")

	var slug string
	err := repo.NewTransactor(tx).WithinTx(ctx, func(inner repo.Repos) error {
		p := postFixture(t, inner, author, "Never committed")
		slug = p.Slug
		return boom
	})

	assert.ErrorIs(t, err, boom)
	_, err = r.Posts.GetBySlug(ctx, slug)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransactor_Commits(t *testing.T) {
	tx := testutil.NewTx(t)
	r := repo.NewRepos(tx)
	ctx := context.Background()
	author := userFixture(t, r)

	var slug string
	err := repo.NewTransactor(tx).WithinTx(ctx, func(inner repo.Repos) error {
		slug = postFixture(t, inner, author, "Committed to savepoint").Slug
		return nil
	})

	require.NoError(t, err)
	_, err = r.Posts.GetBySlug(ctx, slug)
	assert.NoError(t, err)
}
