package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder row.
type User struct {
	UserID       uuid.UUID `db:"user_id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
