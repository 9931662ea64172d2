package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/knassar/mc-wallet-ledger/internal/jwt"
	"github.com/knassar/mc-wallet-ledger/internal/models"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// TransactionsTokener defines only the methods needed by this handler.
type TransactionsTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// HistoryGetter defines the interface that the ledger service must implement.
type HistoryGetter interface {
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error)
}

// TransactionsResponse represents a page of the user's transaction history
// swagger:model TransactionsResponse
type TransactionsResponse struct {
	// Transactions, newest first
	Transactions []models.Transaction `json:"transactions"`
}

// NewTransactionsHandler returns an HTTP handler listing the authenticated
// user's transaction history, newest first.
// @Summary List transactions
// @Description Returns the authenticated user's ledger entries, newest first.
// @Tags wallet
// @Produce json
// @Param limit query int false "Page size" default(50) maximum(200)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} handlers.TransactionsResponse "Transactions"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /transactions [get]
// @Security BearerAuth
func NewTransactionsHandler(svc HistoryGetter, tokenGetter TransactionsTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := claimsFromRequest(ctx, w, r, tokenGetter)
		if !ok {
			return
		}

		limit := queryInt(r, "limit", defaultHistoryLimit)
		if limit <= 0 || limit > maxHistoryLimit {
			limit = defaultHistoryLimit
		}
		offset := queryInt(r, "offset", 0)
		if offset < 0 {
			offset = 0
		}

		txns, err := svc.History(ctx, claims.UserID, limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TransactionsResponse{Transactions: txns})
	}
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
