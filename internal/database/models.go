package database

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the persisted account row
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Email        string    `bun:"email,unique,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Role         string    `bun:"role,notnull"`
	Verified     bool      `bun:"verified,notnull,default:false"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

// Verification is a live single-use email verification code.
// user_id is unique: a user has at most one outstanding code.
type Verification struct {
	bun.BaseModel `bun:"table:verifications,alias:v"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Code      string    `bun:"code,unique,notnull"`
	UserID    int64     `bun:"user_id,unique,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}
