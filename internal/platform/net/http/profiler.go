package http

import (
	stdhttp "net/http"
	"strings"

	mw "github.com/go-chi/chi/v5/middleware"
)

// MountProfiler exposes chi's pprof routes under prefix, e.g. /debug/pprof/
// it is a no-op unless enabled; all methods are routed since pprof symbol lookups use POST
func MountProfiler(r Router, prefix string, enabled bool) {
	if !enabled {
		return
	}
	prefix = "/" + strings.Trim(prefix, "/")
	pprof := stdhttp.StripPrefix(prefix, mw.Profiler())
	r.Handle(prefix, pprof)
	r.Handle(prefix+"/*", pprof)
}
