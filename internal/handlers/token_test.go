package handlers

import (
	"context"
	"net/http"

	"github.com/knassar/mc-wallet-ledger/internal/jwt"
)

// stubTokener satisfies every handler tokener with fixed claims.
type stubTokener struct {
	claims *jwt.Claims
	err    error
}

func (s *stubTokener) GetTokenFromRequest(_ context.Context, _ *http.Request) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token", nil
}

func (s *stubTokener) GetClaims(_ context.Context, _ string) (*jwt.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}
