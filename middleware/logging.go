package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// Alerter reçoit les erreurs serveur à signaler (Slack)
type Alerter interface {
	SendCriticalError(method, path, statusCode, errorMessage, userAgent string)
}

// responseWriter capture le code de statut
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logging journalise chaque requête; 4xx en Warn, 5xx en Error avec alerte.
// alerter peut être nil.
func Logging(alerter Alerter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"duration", time.Since(start),
			}

			switch {
			case rw.statusCode >= http.StatusInternalServerError:
				slog.Error("❌ Requête en erreur", attrs...)
				if alerter != nil {
					alerter.SendCriticalError(r.Method, r.URL.Path, strconv.Itoa(rw.statusCode), http.StatusText(rw.statusCode), r.UserAgent())
				}
			case rw.statusCode >= http.StatusBadRequest:
				slog.Warn("⚠️ Requête refusée", attrs...)
			default:
				slog.Debug("Requête", attrs...)
			}
		})
	}
}
