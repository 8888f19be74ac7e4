package middleware

import (
	"crypto/hmac"
	"net/http"
	"strings"

	"groundbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

// AdminAuth wraps individual routes that mutate or expose booking records.
// With an empty token the guard is disabled and routes stay open; deployments
// without an authenticating proxy must set ADMIN_TOKEN.
func AdminAuth(token string, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			if token == "" {
				next(w, r, ps)
				return
			}

			presented := extractBearerToken(r)
			if presented == "" {
				logAndRejectUnauthorized(w, log, r, "Missing Authorization header")
				return
			}

			if !hmac.Equal([]byte(presented), []byte(token)) {
				logAndRejectUnauthorized(w, log, r, "Invalid admin token")
				return
			}

			next(w, r, ps)
		}
	}
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	if found {
		return token
	}

	return header
}

func logAndRejectUnauthorized(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Admin route authorization failed",
		"request_id", requestIDFromContext(r.Context()),
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
}
