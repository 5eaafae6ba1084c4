package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAPIKeyAuthOpenWhenNoKeys(t *testing.T) {
	auth := APIKeyAuth(nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", nil)
	rec := httptest.NewRecorder()
	auth(okHandler)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	keys := map[string]struct{}{"secret-key": {}}
	auth := APIKeyAuth(keys, zap.NewNop())

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid key", "Bearer secret-key", http.StatusOK},
		{"lowercase scheme", "bearer secret-key", http.StatusOK},
		{"wrong key", "Bearer wrong", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"no scheme", "secret-key", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/match", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			auth(okHandler)(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
