package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	perr "readnfc/internal/platform/errors"
	"readnfc/internal/platform/logger"
	phttp "readnfc/internal/platform/net/http"
)

// RecoverJSON answers a panicking handler with a 500 error envelope and logs the stack
// http.ErrAbortHandler is re-raised so net/http can abort the connection
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(v)
			}
			logger.C(r.Context()).Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			phttp.RespondError(w, r, perr.PanicErrf("internal error"))
		}()
		next.ServeHTTP(w, r)
	})
}
