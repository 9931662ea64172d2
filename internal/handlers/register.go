package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/knassar/mc-wallet-ledger/internal/logger"
	"github.com/knassar/mc-wallet-ledger/internal/services"
)

// Registerer defines the interface that the auth service must implement.
type Registerer interface {
	Register(ctx context.Context, username, password, email string) error
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Username
	// required: true
	// example: john_doe
	Username string `json:"username"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password"`

	// Email
	// required: true
	// example: john@example.com
	Email string `json:"email"`
}

// RegisterResponse represents a successful registration response
// swagger:model RegisterResponse
type RegisterResponse struct {
	// Success message
	// example: User registered successfully
	Message string `json:"message"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register user
// @Description Create a new user account.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body handlers.RegisterRequest true "Register Request"
// @Success 201 {object} handlers.RegisterResponse "User registered successfully"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 409 {object} handlers.ErrorResponse "Username or email already exists"
// @Router /register [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode register request", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}

		if req.Username == "" || req.Password == "" || req.Email == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "username, password and email are required"})
			return
		}

		if err := svc.Register(r.Context(), req.Username, req.Password, req.Email); err != nil {
			if errors.Is(err, services.ErrUserAlreadyExists) {
				writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
				return
			}
			logger.Log.Errorw("failed to register user", "username", req.Username, "error", err)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
			return
		}

		writeJSON(w, http.StatusCreated, RegisterResponse{Message: "User registered successfully"})
	}
}
