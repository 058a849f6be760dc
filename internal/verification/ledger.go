package verification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/eats-api/internal/database"
)

var ErrNotFound = errors.New("verification not found")

// Ledger owns creation and consumption of email verification codes.
// Methods taking a bun.IDB run inside the caller's transaction so code
// changes commit together with the user row they belong to.
type Ledger struct {
	db  *bun.DB
	now func() time.Time
}

func NewLedger(db *bun.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// DB exposes the handle used to open transactions spanning the ledger
func (l *Ledger) DB() *bun.DB {
	return l.db
}

// Issue replaces any outstanding code for userID with a fresh one
func (l *Ledger) Issue(ctx context.Context, db bun.IDB, userID int64) (string, error) {
	if _, err := db.NewDelete().
		Model((*database.Verification)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to delete previous verification: %w", err)
	}

	v := &database.Verification{
		Code:      uuid.NewString(),
		UserID:    userID,
		CreatedAt: l.now().UTC(),
	}
	if _, err := db.NewInsert().Model(v).Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store verification: %w", err)
	}

	return v.Code, nil
}

// Consume deletes the code and returns the user it was issued for.
// The delete is guarded by its affected-row count, so when two
// transactions race on the same code only one of them gets the user id.
func (l *Ledger) Consume(ctx context.Context, db bun.IDB, code string) (int64, error) {
	if code == "" {
		return 0, ErrNotFound
	}

	v := new(database.Verification)
	err := db.NewSelect().
		Model(v).
		Where("code = ?", code).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to get verification: %w", err)
	}

	if err := remove(ctx, db, v.ID); err != nil {
		return 0, err
	}
	return v.UserID, nil
}

// remove deletes the verification row id. ErrNotFound means another
// consumer deleted it first.
func remove(ctx context.Context, db bun.IDB, id int64) error {
	result, err := db.NewDelete().
		Model((*database.Verification)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete verification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Lookup returns the live code for userID
func (l *Ledger) Lookup(ctx context.Context, userID int64) (string, error) {
	var code string
	err := l.db.NewSelect().
		Model((*database.Verification)(nil)).
		Column("code").
		Where("user_id = ?", userID).
		Scan(ctx, &code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get verification by user: %w", err)
	}
	return code, nil
}
