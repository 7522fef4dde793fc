// Package middleware is the HTTP middleware the API stack is assembled from
// chi's stock middleware is re-exported so callers never import chi directly
package middleware

import (
	"net/http"
	"time"

	pstrings "readnfc/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// Middleware wraps a handler
type Middleware = func(http.Handler) http.Handler

var (
	// RequestID reuses an inbound X-Request-ID or mints one; pnet.RequestID reads it back
	RequestID Middleware = chimw.RequestID
	// RealIP trusts X-Forwarded-For and X-Real-IP for RemoteAddr
	RealIP Middleware = chimw.RealIP
	// NoCache forbids caching; a card UID is only ever true for the moment it is read
	NoCache Middleware = chimw.NoCache
	// StripSlashes drops a trailing slash before routing
	StripSlashes Middleware = chimw.StripSlashes
)

// Timeout cancels the request context after d and answers 504 if nothing was written
func Timeout(d time.Duration) Middleware { return chimw.Timeout(d) }

// Compress negotiates gzip or deflate at level
func Compress(level int) Middleware { return chimw.NewCompressor(level).Handler }

// Heartbeat answers GET path with 200 before routing
func Heartbeat(path string) Middleware { return chimw.Heartbeat(path) }

// CORSOptions is the part of go-chi/cors the API exposes; empty lists take defaults
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	// MaxAge caches preflight answers, in seconds
	MaxAge int
}

// CORS lets browser kiosks on other origins call the API; any origin by default
func CORS(o CORSOptions) Middleware {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: pstrings.IfEmpty(o.AllowedOrigins, []string{"*"}),
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		AllowedHeaders: pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Content-Type", "X-Request-ID"}),
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         o.MaxAge,
	})
}
