package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"lakehouse/internal/domain"
)

// Authenticate requires a valid bearer token and stores the caller as a
// domain.ContextPrincipal. Validators are tried in order; the first success
// wins.
func Authenticate(logger *slog.Logger, validators ...JWTValidator) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
				return
			}

			for _, v := range validators {
				claims, err := v.Validate(r.Context(), token)
				if err != nil {
					logger.Debug("token rejected", "error", err, "request_id", RequestIDFromContext(r.Context()))
					continue
				}
				if claims.Subject == "" {
					continue
				}
				ctx := domain.WithPrincipal(r.Context(), domain.ContextPrincipal{
					Subject:  claims.Subject,
					Nickname: claims.Nickname,
					TenantID: claims.TenantID,
				})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
		})
	}
}

// writeError writes the API error envelope.
func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": code})
}
