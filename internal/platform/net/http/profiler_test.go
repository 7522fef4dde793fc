package http_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"readnfc/internal/platform/config"
	phttp "readnfc/internal/platform/net/http"
)

func serve(r phttp.Router, method, path string) int {
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec.Code
}

func TestMountProfiler(t *testing.T) {
	r := phttp.NewServer(config.New()).Router()
	phttp.MountProfiler(r, "debug/", true)

	for _, c := range []struct{ method, path string }{
		{http.MethodGet, "/debug/pprof/"},
		{http.MethodGet, "/debug/pprof/cmdline"},
		{http.MethodPost, "/debug/pprof/symbol"},
	} {
		if code := serve(r, c.method, c.path); code != http.StatusOK {
			t.Fatalf("%s %s = %d", c.method, c.path, code)
		}
	}
	bare := []int{http.StatusMovedPermanently, http.StatusPermanentRedirect, http.StatusNotFound}
	if code := serve(r, http.MethodGet, "/debug"); !slices.Contains(bare, code) {
		t.Fatalf("GET /debug = %d", code)
	}
}

func TestMountProfiler_Disabled(t *testing.T) {
	r := phttp.NewServer(config.New()).Router()
	phttp.MountProfiler(r, "/debug", false)
	if code := serve(r, http.MethodGet, "/debug/pprof/"); code != http.StatusNotFound {
		t.Fatalf("disabled profiler answered %d", code)
	}
}
