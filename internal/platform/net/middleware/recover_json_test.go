package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pnet "readnfc/internal/platform/net"
	"readnfc/internal/platform/net/middleware"
)

func TestRecoverJSON(t *testing.T) {
	h := middleware.RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("reader exploded")
	}))

	req := httptest.NewRequest(http.MethodGet, "/nfc/uid", nil)
	req = req.WithContext(pnet.WithRequest(req.Context(), "rid-9"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if got := rr.Header().Get("X-Request-ID"); got != "rid-9" {
		t.Fatalf("X-Request-ID = %q", got)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("body %q: %v", rr.Body.String(), err)
	}
	if body["request_id"] != "rid-9" || body["code"] != "panic" || body["error"] != "internal error" {
		t.Fatalf("body = %v", body)
	}
	if strings.Contains(rr.Body.String(), "reader exploded") {
		t.Fatalf("panic value leaked: %s", rr.Body.String())
	}
}

func TestRecoverJSON_AbortHandler(t *testing.T) {
	h := middleware.RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	defer func() {
		if r := recover(); r != http.ErrAbortHandler {
			t.Fatalf("recovered %v, want http.ErrAbortHandler", r)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestRecoverJSON_PassThrough(t *testing.T) {
	h := middleware.RecoverJSON(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rr.Code)
	}
}
