package middleware

import (
	"net/http"
	"slices"
	"time"

	"readnfc/internal/platform/logger"
	pnet "readnfc/internal/platform/net"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// AccessLogOptions tunes AccessLogZerolog
type AccessLogOptions struct {
	// Slow logs requests taking at least this long at warn; 0 never does
	Slow time.Duration
	// SkipSlow are paths expected to block, such as the UID poll
	SkipSlow []string
	// Log defaults to the root logger
	Log *logger.Logger
}

// AccessLogZerolog writes one line per request once the handler returns.
// The request id is put on the logger context first, so logger.C inside handlers carries it too.
func AccessLogZerolog(opt AccessLogOptions) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := logger.WithRequest(r.Context(), pnet.RequestID(r.Context()))
			r = r.WithContext(ctx)
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			base := opt.Log
			if base == nil {
				base = logger.Get()
			}
			log := logger.Enrich(ctx, *base)
			elapsed := time.Since(start)

			evt := log.Info()
			if opt.Slow > 0 && elapsed >= opt.Slow && !slices.Contains(opt.SkipSlow, r.URL.Path) {
				evt = log.Warn().Bool("slow", true)
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", elapsed).
				Str("remote", r.RemoteAddr).
				Msg("request done")
		})
	}
}
