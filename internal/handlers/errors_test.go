package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knassar/mc-wallet-ledger/internal/apperrors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		opaqueBody   bool
	}{
		{name: "validation", err: apperrors.Validation("bad amount"), expectedCode: http.StatusBadRequest},
		{name: "not found", err: apperrors.NotFound("no wallet"), expectedCode: http.StatusNotFound},
		{name: "rate unavailable", err: apperrors.RateUnavailable("no rate for USD/XXX"), expectedCode: http.StatusNotFound},
		{name: "insufficient funds", err: apperrors.InsufficientFunds("balance too low"), expectedCode: http.StatusConflict},
		{name: "contention", err: apperrors.Contention("lock wait timed out", nil), expectedCode: http.StatusServiceUnavailable, opaqueBody: true},
		{name: "persistence hides the cause", err: apperrors.Persistence("insert", errors.New("pq: secret detail")), expectedCode: http.StatusInternalServerError, opaqueBody: true},
		{name: "untagged error", err: errors.New("plain"), expectedCode: http.StatusInternalServerError, opaqueBody: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			if tt.opaqueBody {
				assert.NotContains(t, body.Error, "secret detail")
			}
		})
	}
}
