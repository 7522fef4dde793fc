package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	perr "readnfc/internal/platform/errors"
	pnet "readnfc/internal/platform/net"
	phttp "readnfc/internal/platform/net/http"
)

func reqWithReqID(method, path, rid string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	return req.WithContext(pnet.WithRequest(req.Context(), rid))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) phttp.Envelope {
	t.Helper()
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	phttp.JSON(rec, http.StatusNotFound, map[string]string{"message": "No card inserted."})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}
	if got := rec.Body.String(); got != `{"message":"No card inserted."}`+"\n" {
		t.Fatalf("body = %q", got)
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	phttp.RespondError(rec, reqWithReqID("GET", "/nfc/uid", "rid-3"), perr.NotFoundf("No card inserted."))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decode(t, rec)
	if env.Code != perr.ErrorCodeNotFound || env.Error != "No card inserted." || env.RequestID != "rid-3" {
		t.Fatalf("envelope = %+v", env)
	}
	if got := rec.Header().Get(phttp.HeaderRequestID); got != "rid-3" {
		t.Fatalf("%s = %q", phttp.HeaderRequestID, got)
	}
}

func TestHandle_OK(t *testing.T) {
	h := phttp.Handle(func(*http.Request) phttp.Response {
		return phttp.OK(map[string]string{"card_uid": "048F2A11"})
	})
	rec := httptest.NewRecorder()
	h(rec, reqWithReqID("GET", "/nfc/uid", "rid-4"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decode(t, rec)
	if env.StatusCode != http.StatusOK || env.Status != "OK" || env.RequestID != "rid-4" {
		t.Fatalf("envelope = %+v", env)
	}
	if !reflect.DeepEqual(env.Data, map[string]any{"card_uid": "048F2A11"}) {
		t.Fatalf("data = %#v", env.Data)
	}
}

func TestHandle_NoContentAndHeaders(t *testing.T) {
	h := phttp.Handle(func(*http.Request) phttp.Response {
		resp := phttp.NoContent()
		resp.Header = http.Header{"X-Reader": {"ACS"}}
		return resp
	})
	rec := httptest.NewRecorder()
	h(rec, reqWithReqID("POST", "/x", "rid-5"))

	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Reader") != "ACS" {
		t.Fatalf("handler header dropped")
	}
}

func TestHandle_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{perr.New(perr.ErrorCodeCard, "card returned status 6A82"), http.StatusUnprocessableEntity},
		{perr.New(perr.ErrorCodeTimeout, "no card presented"), http.StatusGatewayTimeout},
		{perr.WithField(perr.New(perr.ErrorCodeValidation, "bad"), "reader"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		h := phttp.Handle(func(*http.Request) phttp.Response { return phttp.Error(c.err) })
		rec := httptest.NewRecorder()
		h(rec, reqWithReqID("GET", "/err", "rid-7"))

		if rec.Code != c.status {
			t.Fatalf("%v: status = %d, want %d", c.err, rec.Code, c.status)
		}
		env := decode(t, rec)
		if env.StatusCode != c.status || env.Code != perr.CodeOf(c.err) || env.Data != nil {
			t.Fatalf("%v: envelope = %+v", c.err, env)
		}
	}

	rec := httptest.NewRecorder()
	phttp.Handle(func(*http.Request) phttp.Response {
		return phttp.Error(perr.WithField(perr.New(perr.ErrorCodeValidation, "bad"), "reader"))
	})(rec, reqWithReqID("GET", "/err", ""))
	if env := decode(t, rec); env.Field != "reader" {
		t.Fatalf("field = %q", env.Field)
	}
	if rec.Header().Get(phttp.HeaderRequestID) != "" {
		t.Fatalf("no request id, no header")
	}
}
