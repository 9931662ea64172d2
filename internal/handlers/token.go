package handlers

import (
	"context"
	"net/http"

	"github.com/knassar/mc-wallet-ledger/internal/jwt"
	"github.com/knassar/mc-wallet-ledger/internal/logger"
)

// tokener is the minimal token surface shared by the authenticated handlers.
type tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// claimsFromRequest extracts and validates the caller's claims, writing a
// 401 on failure.
func claimsFromRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, tokenGetter tokener) (*jwt.Claims, bool) {
	tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
	if err != nil {
		logger.Log.Errorw("failed to get token from request", "error", err)
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return nil, false
	}

	claims, err := tokenGetter.GetClaims(ctx, tokenStr)
	if err != nil {
		logger.Log.Errorw("failed to get claims from token", "error", err)
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return nil, false
	}
	return claims, true
}
