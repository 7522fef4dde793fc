package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func applyStack(h http.Handler, stack []func(http.Handler) http.Handler) http.Handler {
	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}
	return h
}

func TestCommonStack_Health(t *testing.T) {
	root := applyStack(http.NotFoundHandler(), CommonStack(StackOptions{}))

	rec := httptest.NewRecorder()
	root.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/health = %d", rec.Code)
	}
}

func TestCommonStack_ReachesHandler(t *testing.T) {
	var deadline bool
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, deadline = r.Context().Deadline()
		w.WriteHeader(http.StatusNoContent)
	})
	root := applyStack(final, CommonStack(StackOptions{Timeout: time.Minute, Slow: time.Second, SkipSlow: []string{"/nfc/uid"}}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nfc/uid/", nil)
	root.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if !deadline {
		t.Fatalf("timeout middleware did not set a deadline")
	}
	want := "no-cache, no-store, no-transform, must-revalidate, private, max-age=0"
	if got := rec.Header().Get("Cache-Control"); got != want {
		t.Fatalf("Cache-Control = %q", got)
	}
}

func TestCommonStack_RecoversPanics(t *testing.T) {
	root := applyStack(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("reader exploded")
	}), CommonStack(StackOptions{}))

	rec := httptest.NewRecorder()
	root.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestCommonStack_CORSOrigins(t *testing.T) {
	root := applyStack(http.NotFoundHandler(), CommonStack(StackOptions{CORSOrigins: []string{"http://kiosk.local"}}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/nfc/uid", nil)
	req.Header.Set("Origin", "http://kiosk.local")
	req.Header.Set("Access-Control-Request-Method", "GET")
	root.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://kiosk.local" {
		t.Fatalf("Allow-Origin = %q", got)
	}
}
