package session

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Middleware parses the Storefront-Session header into the request context.
// A missing header means an anonymous shopper; a malformed one is rejected.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isExemptPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			st, err := Parse(r.Header.Get(Header))
			if err != nil {
				logger.Warn("invalid session header",
					slog.String("header", r.Header.Get(Header)),
					slog.String("error", err.Error()))
				writeSessionError(w, "Invalid "+Header+" header: "+err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithState(r.Context(), st)))
		})
	}
}

// isExemptPath returns true for infrastructure endpoints.
func isExemptPath(path string) bool {
	switch path {
	case "/health", "/healthz", "/metrics":
		return true
	default:
		return false
	}
}

func writeSessionError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	resp := struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}{}
	resp.Error.Code = "INVALID_SESSION"
	resp.Error.Message = message

	json.NewEncoder(w).Encode(resp)
}
