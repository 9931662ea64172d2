package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/knassar/mc-wallet-ledger/internal/logger"
	"github.com/knassar/mc-wallet-ledger/internal/services"
)

// LoginAuthorizer defines the interface that the auth service must implement.
type LoginAuthorizer interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// LoginRequest represents the JSON body for user login
// swagger:model LoginRequest
type LoginRequest struct {
	// Username
	// required: true
	// example: john_doe
	Username string `json:"username"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password"`
}

// LoginResponse represents a successful login response
// swagger:model LoginResponse
type LoginResponse struct {
	// JWT token
	// example: JWT_TOKEN
	Token string `json:"token"`
}

// NewLoginHandler returns an HTTP handler for user login.
// @Summary Login
// @Description Authenticate a user and return a JWT token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body handlers.LoginRequest true "Login Request"
// @Success 200 {object} handlers.LoginResponse "Token issued"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 401 {object} handlers.ErrorResponse "Invalid username or password"
// @Router /login [post]
func NewLoginHandler(svc LoginAuthorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode login request", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}

		token, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrUserDoesNotExist) || errors.Is(err, services.ErrInvalidCredentials) {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid username or password"})
				return
			}
			logger.Log.Errorw("failed to login user", "username", req.Username, "error", err)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{Token: token})
	}
}
