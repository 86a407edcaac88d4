package router

import (
	"net/http"
	"strings"

	"searchq/internal/auth"
	"searchq/internal/config"
	"searchq/internal/handler"
	"searchq/internal/logger"

	"github.com/google/uuid"
)

// InitRoutes registers the API routes on the default mux.
func InitRoutes(cfg *config.Config) error {
	var validator *auth.TokenValidator
	if cfg.Auth.Enabled {
		v, err := auth.NewTokenValidator(cfg.Auth)
		if err != nil {
			return err
		}
		validator = v
	}

	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		h = withAuth(validator, h)
		h = withLogging(h)
		return withCORS(cfg.CORS.AllowOrigin, cfg.CORS.AllowCredentials, h)
	}

	http.HandleFunc("/api/search", wrap(handler.SearchHandler))
	http.HandleFunc("/api/count", wrap(handler.CountHandler))
	http.HandleFunc("/api/fields", wrap(handler.FieldsHandler))
	return nil
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)

		fields := map[string]any{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
		}
		switch {
		case sw.status >= 500:
			logger.Error("response", fields)
		case sw.status >= 400:
			logger.Warn("response", fields)
		default:
			logger.Info("response", fields)
		}
	}
}

func withAuth(validator *auth.TokenValidator, next http.HandlerFunc) http.HandlerFunc {
	if validator == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			http.Error(w, "Missing bearer token", http.StatusUnauthorized)
			return
		}
		claims, err := validator.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		next(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	}
}
