package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"readnfc/internal/platform/config"
	phttp "readnfc/internal/platform/net/http"
)

func TestNewServer_DefaultsAndMux(t *testing.T) {
	t.Setenv("API_PORT", "")
	srv := phttp.NewServer(config.New())
	if got := srv.Addr(); got != ":4000" {
		t.Fatalf("default Addr = %q", got)
	}

	r := srv.Router()
	if r.Mux() == nil {
		t.Fatalf("nil mux")
	}
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "pong") })

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Fatalf("GET /ping = %d %q", rec.Code, rec.Body.String())
	}
}
