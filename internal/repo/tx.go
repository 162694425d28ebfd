package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Repos bundles every repository bound to the same connection or transaction.
type Repos struct {
	Posts    PostRepo
	Tags     TagRepo
	Comments CommentRepo
	Users    UserRepo
}

// NewRepos binds all repositories to db.
func NewRepos(db db) Repos {
	return Repos{
		Posts:    NewPostRepo(db),
		Tags:     NewTagRepo(db),
		Comments: NewCommentRepo(db),
		Users:    NewUserRepo(db),
	}
}

// Transactor runs fn against repositories that share one database
// transaction. The transaction commits if fn returns nil and rolls back
// otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Repos) error) error
}

// beginner is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx (the latter
// opens a savepoint, which lets tests nest inside a rolled-back transaction).
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgTransactor struct {
	db beginner
}

// NewTransactor returns a Transactor that opens transactions on db.
func NewTransactor(db beginner) Transactor {
	return &pgTransactor{db: db}
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(Repos) error) error {
	err := pgx.BeginFunc(ctx, t.db, func(tx pgx.Tx) error {
		return fn(NewRepos(tx))
	})
	if err != nil {
		return fmt.Errorf("repo.WithinTx: %w", err)
	}
	return nil
}
