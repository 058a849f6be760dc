package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/eats-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles user row persistence. Every method takes the
// bun.IDB to run against so callers can compose them in one transaction.
type Repository struct {
	now func() time.Time
}

func NewRepository() *Repository {
	return &Repository{now: time.Now}
}

// Create inserts a new unverified user
func (r *Repository) Create(ctx context.Context, db bun.IDB, email, passwordHash string, role Role) (*User, error) {
	now := r.now().UTC()
	dbUser := &database.User{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         string(role),
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := db.NewInsert().Model(dbUser).Exec(ctx); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, db bun.IDB, email string) (*User, error) {
	dbUser := new(database.User)
	err := db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, db bun.IDB, id int64) (*User, error) {
	dbUser := new(database.User)
	err := db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// UpdateEmail changes the email and clears the verified flag
func (r *Repository) UpdateEmail(ctx context.Context, db bun.IDB, id int64, email string) error {
	result, err := db.NewUpdate().
		Model((*database.User)(nil)).
		Set("email = ?", email).
		Set("verified = ?", false).
		Set("updated_at = ?", r.now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update email: %w", err)
	}

	return requireOneRow(result)
}

// UpdatePassword updates a user's password hash
func (r *Repository) UpdatePassword(ctx context.Context, db bun.IDB, id int64, passwordHash string) error {
	result, err := db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = ?", r.now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return requireOneRow(result)
}

// MarkVerified sets the verified flag
func (r *Repository) MarkVerified(ctx context.Context, db bun.IDB, id int64) error {
	result, err := db.NewUpdate().
		Model((*database.User)(nil)).
		Set("verified = ?", true).
		Set("updated_at = ?", r.now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark email as verified: %w", err)
	}

	return requireOneRow(result)
}

func requireOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Email:        dbu.Email,
		PasswordHash: dbu.PasswordHash,
		Role:         Role(dbu.Role),
		Verified:     dbu.Verified,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
