package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
)

// UserRepo defines the persistence operations for user accounts and their
// capability grants.
type UserRepo interface {
	// Create inserts a user with the given capabilities.
	// Returns domain.ErrConflict if the username is already taken
	// (case-insensitively).
	Create(ctx context.Context, user domain.User) (domain.User, error)

	// GetByID returns domain.ErrNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)

	// GetByUsername matches case-insensitively.
	GetByUsername(ctx context.Context, username string) (domain.User, error)

	// GetByEmail matches case-insensitively and returns the oldest account
	// when several share an address. An empty email never matches.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// List returns every user ordered by username.
	List(ctx context.Context) ([]domain.User, error)

	// SetPassword replaces the stored bcrypt hash.
	SetPassword(ctx context.Context, id uuid.UUID, hash string) error

	// GrantCapability is idempotent.
	GrantCapability(ctx context.Context, id uuid.UUID, c domain.Capability) error

	// RevokeCapability returns domain.ErrNotFound if the user did not hold c.
	RevokeCapability(ctx context.Context, id uuid.UUID, c domain.Capability) error
}

type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

const userSelect = `
	SELECT u.id, u.username, u.email, u.password_hash, u.is_superuser, u.is_staff, u.created_at,
	       COALESCE(array_agg(c.capability ORDER BY c.capability) FILTER (WHERE c.capability IS NOT NULL), '{}')
	FROM users u
	LEFT JOIN user_capabilities c ON c.user_id = u.id`

const userGroupBy = ` GROUP BY u.id`

func (r *pgUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (username, email, password_hash, is_superuser, is_staff)
		VALUES (@username, @email, @password_hash, @is_superuser, @is_staff)
		RETURNING id`

	args := pgx.NamedArgs{
		"username":      user.Username,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"is_superuser":  user.IsSuperuser,
		"is_staff":      user.IsStaff,
	}

	var id pgtype.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", mapConstraint(err))
	}
	userID := uuid.UUID(id.Bytes)

	for _, c := range user.Capabilities {
		if err := r.GrantCapability(ctx, userID, c); err != nil {
			return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", err)
		}
	}

	created, err := r.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: reload: %w", err)
	}
	return created, nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	q := userSelect + ` WHERE u.id = @id` + userGroupBy
	u, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", err)
	}
	return u, nil
}

func (r *pgUserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	q := userSelect + ` WHERE lower(u.username) = lower(@username)` + userGroupBy
	u, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"username": username}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByUsername: %w", err)
	}
	return u, nil
}

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	if email == "" {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", domain.ErrNotFound)
	}
	q := userSelect + ` WHERE lower(u.email) = lower(@email)` + userGroupBy + ` ORDER BY u.created_at LIMIT 1`
	u, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"email": email}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", err)
	}
	return u, nil
}

func (r *pgUserRepo) List(ctx context.Context) ([]domain.User, error) {
	q := userSelect + userGroupBy + ` ORDER BY lower(u.username)`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.List: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.UserRepo.List: scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.UserRepo.List: rows: %w", err)
	}
	return users, nil
}

func (r *pgUserRepo) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	const q = `UPDATE users SET password_hash = @hash WHERE id = @id`
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "hash": hash})
	if err != nil {
		return fmt.Errorf("repo.UserRepo.SetPassword: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.UserRepo.SetPassword: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgUserRepo) GrantCapability(ctx context.Context, id uuid.UUID, c domain.Capability) error {
	const q = `
		INSERT INTO user_capabilities (user_id, capability)
		VALUES (@id, @capability)
		ON CONFLICT DO NOTHING`
	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "capability": string(c)}); err != nil {
		return fmt.Errorf("repo.UserRepo.GrantCapability: %w", err)
	}
	return nil
}

func (r *pgUserRepo) RevokeCapability(ctx context.Context, id uuid.UUID, c domain.Capability) error {
	const q = `DELETE FROM user_capabilities WHERE user_id = @id AND capability = @capability`
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "capability": string(c)})
	if err != nil {
		return fmt.Errorf("repo.UserRepo.RevokeCapability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.UserRepo.RevokeCapability: %w", domain.ErrNotFound)
	}
	return nil
}

func scanUser(s scanner) (domain.User, error) {
	var (
		u    domain.User
		id   pgtype.UUID
		caps []string
	)
	err := s.Scan(&id, &u.Username, &u.Email, &u.PasswordHash, &u.IsSuperuser, &u.IsStaff, &u.CreatedAt, &caps)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	u.ID = uuid.UUID(id.Bytes)
	u.Capabilities = make([]domain.Capability, len(caps))
	for i, c := range caps {
		u.Capabilities[i] = domain.Capability(c)
	}
	return u, nil
}
