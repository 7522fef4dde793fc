package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"readnfc/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack; zero values pick the defaults
type StackOptions struct {
	// CORSOrigins restricts cross-origin callers, empty allows any origin
	CORSOrigins []string
	// Timeout bounds one request; keep it above the longest UID poll
	Timeout time.Duration
	// Slow marks requests at or above it as warn in the access log
	Slow time.Duration
	// SkipSlow lists paths never marked slow
	SkipSlow []string
}

// CommonStack is the middleware every API scope runs, outermost first
func CommonStack(opts StackOptions) []func(http.Handler) http.Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}
	return []middleware.Middleware{
		middleware.RequestID,
		middleware.RealIP,
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: opts.Slow, SkipSlow: opts.SkipSlow}),
		// inside the access log so a recovered panic is logged as 500
		middleware.RecoverJSON,
		middleware.NoCache,
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: opts.CORSOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes,
		middleware.Timeout(opts.Timeout),
	}
}
