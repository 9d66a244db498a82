package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogger logs one entry per request with its status and duration. 4xx responses
// are logged at warn level and 5xx at error level.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				fields := []zap.Field{
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status_code", status),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("client_ip", r.RemoteAddr),
				}
				switch {
				case status >= 500:
					log.Error("HTTP request completed", fields...)
				case status >= 400:
					log.Warn("HTTP request completed", fields...)
				default:
					log.Info("HTTP request completed", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
