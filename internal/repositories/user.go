package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/knassar/mc-wallet-ledger/internal/logger"
	"github.com/knassar/mc-wallet-ledger/internal/models"
)

// ErrUserExists is returned by Save when the username or email is taken.
var ErrUserExists = errors.New("username or email already exists")

type UserReaderRepository struct {
	db *sqlx.DB
}

func NewUserReaderRepository(db *sqlx.DB) *UserReaderRepository {
	return &UserReaderRepository{db: db}
}

// GetByUsernameOrEmail looks a user up by username and/or email; nil
// arguments are not matched against. Returns (nil, nil) when no user matches.
func (r *UserReaderRepository) GetByUsernameOrEmail(ctx context.Context, username, email *string) (*models.User, error) {
	const query = `
		SELECT user_id, username, email, password_hash, is_admin, created_at, updated_at
		FROM users
		WHERE ($1::VARCHAR IS NULL OR username = $1)
		  AND ($2::VARCHAR IS NULL OR email = $2)
		LIMIT 1
	`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, username, email)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username, email},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type UserWriterRepository struct {
	db *sqlx.DB
}

func NewUserWriterRepository(db *sqlx.DB) *UserWriterRepository {
	return &UserWriterRepository{db: db}
}

// Save inserts a new user row.
func (r *UserWriterRepository) Save(ctx context.Context, username, passwordHash, email string) error {
	const query = `
		INSERT INTO users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`
	args := []any{username, email, passwordHash}

	_, err := r.db.ExecContext(ctx, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username, email},
		"error", err,
	)

	if isUniqueViolation(err) {
		return ErrUserExists
	}
	return err
}
