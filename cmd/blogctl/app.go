package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/service"
)

const usage = `usage: blogctl <command> [arguments]

commands:
  migrate                              apply pending database migrations
  createuser -username NAME [-email ADDR] [-password PW] [-superuser]
  grant USERNAME CAPABILITY            give a user a capability
  revoke USERNAME CAPABILITY           take a capability away
  users                                list accounts
  export                               write every post as CSV to stdout

capabilities: can_publish, can_review, change_post, delete_post`

var errUsage = errors.New("usage")

type accountAdmin interface {
	CreateUser(ctx context.Context, username, email, password string, superuser bool) (domain.User, error)
	Grant(ctx context.Context, username string, c domain.Capability) error
	Revoke(ctx context.Context, username string, c domain.Capability) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type exporter interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

type app struct {
	auth    accountAdmin
	export  exporter
	migrate func(ctx context.Context) ([]int64, error)
	in      io.Reader
	out     io.Writer
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "migrate":
		return a.runMigrate(ctx)
	case "createuser":
		return a.createUser(ctx, rest)
	case "grant", "revoke":
		return a.changeCapability(ctx, cmd, rest)
	case "users":
		return a.listUsers(ctx)
	case "export":
		return a.exportCSV(ctx)
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

func (a *app) runMigrate(ctx context.Context) error {
	applied, err := a.migrate(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(a.out, "no pending migrations")
		return nil
	}
	for _, v := range applied {
		fmt.Fprintf(a.out, "applied %05d\n", v)
	}
	return nil
}

func (a *app) createUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("createuser", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	username := fs.String("username", "", "login name (stored lower-cased)")
	email := fs.String("email", "", "optional e-mail address")
	password := fs.String("password", "", "password; read from stdin when empty")
	superuser := fs.Bool("superuser", false, "grant every capability and staff access")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("createuser: %v: %w", err, errUsage)
	}
	if *username == "" {
		return fmt.Errorf("createuser: -username is required: %w", errUsage)
	}

	pw := *password
	if pw == "" {
		line, err := bufio.NewReader(a.in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("createuser: read password: %w", err)
		}
		pw = strings.TrimRight(line, "\r\n")
	}

	user, err := a.auth.CreateUser(ctx, *username, *email, pw, *superuser)
	if err != nil {
		return describe(err)
	}
	kind := "user"
	if user.IsSuperuser {
		kind = "superuser"
	}
	fmt.Fprintf(a.out, "created %s %s (%s)\n", kind, user.Username, user.ID)
	return nil
}

func (a *app) changeCapability(ctx context.Context, cmd string, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%s needs USERNAME and CAPABILITY: %w", cmd, errUsage)
	}
	c, err := domain.ParseCapability(args[1])
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}

	if cmd == "grant" {
		err = a.auth.Grant(ctx, args[0], c)
	} else {
		err = a.auth.Revoke(ctx, args[0], c)
	}
	switch {
	case errors.Is(err, domain.ErrNotFound) && cmd == "revoke":
		return fmt.Errorf("%s does not exist or does not hold %s", args[0], c)
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("no user named %s", args[0])
	case err != nil:
		return err
	}
	fmt.Fprintf(a.out, "%sd %s for %s\n", cmd, c, args[0])
	return nil
}

func (a *app) listUsers(ctx context.Context) error {
	users, err := a.auth.ListUsers(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tEMAIL\tSTAFF\tSUPERUSER\tCAPABILITIES")
	for _, u := range users {
		caps := make([]string, len(u.Capabilities))
		for i, c := range u.Capabilities {
			caps[i] = string(c)
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%s\n", u.Username, u.Email, u.IsStaff, u.IsSuperuser, strings.Join(caps, ","))
	}
	return tw.Flush()
}

func (a *app) exportCSV(ctx context.Context) error {
	rows, err := a.export.Export(ctx)
	if err != nil {
		return err
	}
	return service.WriteExportCSV(a.out, rows)
}

// describe turns validation failures into one readable line per field.
func describe(err error) error {
	ve := domain.AsValidationErrors(err)
	if ve == nil {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		if fe.Field == "" {
			msgs = append(msgs, fe.Message)
			continue
		}
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return errors.New(strings.Join(msgs, "; "))
}
