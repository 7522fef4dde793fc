package net_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	pnet "readnfc/internal/platform/net"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func TestWithRequest(t *testing.T) {
	base := context.Background()
	if got := pnet.RequestID(pnet.WithRequest(base, "req-123")); got != "req-123" {
		t.Fatalf("RequestID = %q", got)
	}
	if got := pnet.RequestID(base); got != "" {
		t.Fatalf("RequestID(background) = %q", got)
	}
	if pnet.WithRequest(base, "") != base {
		t.Fatalf("empty id must return ctx unchanged")
	}
}

func TestRequestID_FromChiMiddleware(t *testing.T) {
	var got string
	h := chimw.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = pnet.RequestID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/nfc/uid", nil)
	req.Header.Set("X-Request-Id", "kiosk-7")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "kiosk-7" {
		t.Fatalf("request id = %q, want kiosk-7", got)
	}
}
