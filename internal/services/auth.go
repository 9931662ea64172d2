package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/knassar/mc-wallet-ledger/internal/logger"
	"github.com/knassar/mc-wallet-ledger/internal/models"
)

var (
	ErrUserAlreadyExists  = errors.New("username or email already exists")
	ErrUserDoesNotExist   = errors.New("username does not exist")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsernameOrEmail(ctx context.Context, username, email *string) (*models.User, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, username, passwordHash, email string) error
}

// TokenGenerator defines an interface for generating JWT tokens.
type TokenGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID, isAdmin bool) (string, error)
}

// AuthService handles registration and login.
type AuthService struct {
	reader UserReader
	writer UserWriter
	tokens TokenGenerator
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, tokens TokenGenerator) *AuthService {
	return &AuthService{
		reader: reader,
		writer: writer,
		tokens: tokens,
	}
}

// Register creates a user account with a bcrypt password hash.
func (svc *AuthService) Register(ctx context.Context, username, password, email string) error {
	user, err := svc.reader.GetByUsernameOrEmail(ctx, &username, &email)
	if err != nil {
		logger.Log.Errorw("user lookup failed during registration", "err", err)
		return err
	}
	if user != nil {
		logger.Log.Infow("registration rejected, user exists", "username", username, "email", email)
		return ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("password hashing failed", "err", err)
		return err
	}

	if err := svc.writer.Save(ctx, username, string(hashedPassword), email); err != nil {
		logger.Log.Errorw("user insert failed", "err", err)
		return err
	}

	return nil
}

// Login verifies credentials and issues a signed token carrying the
// user id and admin flag.
func (svc *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := svc.reader.GetByUsernameOrEmail(ctx, &username, nil)
	if err != nil {
		logger.Log.Errorw("user lookup failed during login", "err", err)
		return "", err
	}
	if user == nil {
		logger.Log.Infow("login for unknown user", "username", username)
		return "", ErrUserDoesNotExist
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Infow("login with bad password", "username", username)
		return "", ErrInvalidCredentials
	}

	token, err := svc.tokens.Generate(ctx, user.UserID, user.IsAdmin)
	if err != nil {
		logger.Log.Errorw("token issue failed", "err", err)
		return "", err
	}

	return token, nil
}
