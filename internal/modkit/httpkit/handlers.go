// Package httpkit is what handler packages import to register routes;
// it keeps them off the platform http package and chi
package httpkit

import (
	"net/http"

	phttp "readnfc/internal/platform/net/http"
	"readnfc/internal/platform/net/http/bind"
)

type (
	// Router is the platform router seam
	Router = phttp.Router
	// Handler is a plain handler func
	Handler = phttp.Handler
	// Response lets a handler pick a status other than 200
	Response = phttp.Response
	// Envelope is the body every enveloped route answers with
	Envelope = phttp.Envelope
)

// Call wraps a bodyless handler in the envelope; returning a Response picks the status
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.Handle(func(r *http.Request) Response { return phttp.Result(fn(r)) })
}

// JSON is Call for handlers that take a JSON body bound and validated into T
func JSON[T any](fn func(*http.Request, T) (any, error), opts ...bind.Options) Handler {
	return phttp.JSONHandler(fn, opts...)
}

// Raw writes v without the envelope, for routes whose shape is fixed by existing clients
func Raw(w http.ResponseWriter, status int, v any) { phttp.JSON(w, status, v) }

// Get registers fn under GET path through Call
func Get(r Router, path string, fn func(*http.Request) (any, error)) {
	r.Get(path, Call(fn))
}

// Post registers fn under POST path through Call
func Post(r Router, path string, fn func(*http.Request) (any, error)) {
	r.Post(path, Call(fn))
}

// PostJSON registers fn under POST path through JSON
func PostJSON[T any](r Router, path string, fn func(*http.Request, T) (any, error), opts ...bind.Options) {
	r.Post(path, JSON(fn, opts...))
}
