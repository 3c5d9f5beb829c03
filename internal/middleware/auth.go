package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Madirex/Funkos-Rest-Synchronous/internal/auth"
)

// mutatingMethods are the HTTP methods guarded by basic auth. Reads
// and probes stay open.
var mutatingMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// BasicAuth returns a middleware that requires valid Basic credentials
// on mutating requests.
func BasicAuth(authenticator *auth.BasicAuthenticator, logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !mutatingMethods[r.Method] {
				next.ServeHTTP(w, r)
				return
			}

			subject, err := authenticator.Authenticate(r)
			if err != nil {
				logger.Warn("authentication failed",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				w.Header().Set("WWW-Authenticate", `Basic realm="funkos"`)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}

			logger.Debug("request authenticated", zap.String("subject", subject))
			next.ServeHTTP(w, r)
		})
	}
}
