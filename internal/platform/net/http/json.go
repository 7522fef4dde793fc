package http

import (
	"net/http"

	"readnfc/internal/platform/net/http/bind"
)

// Result turns a handler's (out, err) into a Response
// a non-nil err wins, a Response out is used as is, anything else is a 200 with out as data
func Result(out any, err error) Response {
	if err != nil {
		return Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return OK(out)
}

// JSONHandler decodes and validates the body into T before calling fn; fn never sees a bad body
func JSONHandler[T any](fn func(*http.Request, T) (any, error), opts ...bind.Options) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r, opts...)
		if err != nil {
			return Error(err)
		}
		return Result(fn(r, in))
	})
}
