package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// APIKeyAuth returns middleware that checks the Authorization header against
// the configured bearer key set. With an empty key set the API runs open;
// that is a development convenience and is logged once at startup.
func APIKeyAuth(keys map[string]struct{}, logger *zap.Logger) func(http.HandlerFunc) http.HandlerFunc {
	if len(keys) == 0 {
		logger.Warn("No API keys configured, API endpoints run without authentication")
		return func(next http.HandlerFunc) http.HandlerFunc {
			return next
		}
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "missing_token", "Authorization header with bearer token required")
				return
			}
			if _, ok := keys[token]; !ok {
				logger.Warn("Rejected request with invalid API key",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr))
				unauthorized(w, "invalid_token", "Invalid API key")
				return
			}
			next(w, r)
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
