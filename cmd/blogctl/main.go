// Command blogctl performs administrative tasks against the blog database:
// applying migrations, creating accounts, granting capabilities and
// exporting posts.
//
//	blogctl migrate
//	blogctl createuser -username NAME [-email ADDR] [-password PW] [-superuser]
//	blogctl grant USERNAME CAPABILITY
//	blogctl revoke USERNAME CAPABILITY
//	blogctl users
//	blogctl export > posts.csv
//
// DATABASE_URL selects the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/repo"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/service"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/migrations"
)

// cliConfig is the subset of the server configuration blogctl needs.
type cliConfig struct {
	DatabaseURL string     `env:"DATABASE_URL,required,notEmpty"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"warn"`
}

func main() {
	var cfg cliConfig
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "blogctl:", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "blogctl: open database:", err)
		os.Exit(1)
	}
	defer pool.Close()

	repos := repo.NewRepos(pool)
	a := &app{
		auth:   service.NewAuthService(repos.Users, service.NewValidator(nil), logger),
		export: service.NewExportService(repos.Posts, repos.Tags, repos.Comments),
		migrate: func(ctx context.Context) ([]int64, error) {
			db := stdlib.OpenDBFromPool(pool)
			defer db.Close()
			return migrations.Up(ctx, db)
		},
		in:  os.Stdin,
		out: os.Stdout,
	}

	err = a.run(ctx, os.Args[1:])
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "blogctl:", err)
		os.Exit(1)
	}
}
