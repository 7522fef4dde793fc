package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	perr "readnfc/internal/platform/errors"
	"readnfc/internal/platform/net/http/bind"
)

type readDTO struct {
	Reader    string `json:"reader" validate:"max=16"`
	TimeoutMs int    `json:"timeout_ms" validate:"omitempty,min=1,max=30000"`
}

func post(h Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/nfc/read", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeEnv(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope %q: %v", rr.Body.String(), err)
	}
	return env
}

func TestJSONHandler_Success(t *testing.T) {
	t.Parallel()

	h := JSONHandler(func(_ *http.Request, in readDTO) (any, error) {
		return map[string]any{"reader": in.Reader, "ms": in.TimeoutMs}, nil
	})
	rr := post(h, `{"reader":"ACS","timeout_ms":1500}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	want := map[string]any{"reader": "ACS", "ms": float64(1500)}
	if env := decodeEnv(t, rr); !reflect.DeepEqual(env.Data, want) {
		t.Fatalf("data = %#v", env.Data)
	}
}

func TestJSONHandler_ResponsePassthrough(t *testing.T) {
	t.Parallel()

	h := JSONHandler(func(_ *http.Request, _ readDTO) (any, error) { return NoContent(), nil })
	rr := post(h, `{}`)
	if rr.Code != http.StatusNoContent || rr.Body.Len() != 0 {
		t.Fatalf("status = %d, body %q", rr.Code, rr.Body.String())
	}
}

func TestJSONHandler_Errors(t *testing.T) {
	t.Parallel()

	called := false
	h := JSONHandler(func(_ *http.Request, in readDTO) (any, error) {
		called = true
		if in.Reader == "boom" {
			return nil, errors.New("boom")
		}
		return nil, perr.New(perr.ErrorCodeDevice, "reader unplugged")
	})

	cases := []struct {
		name   string
		body   string
		status int
		code   perr.ErrorCode
		field  string
	}{
		{"bad json", `{`, http.StatusBadRequest, perr.ErrorCodeJSON, ""},
		{"unknown field", `{"reader":"x","pin":1}`, http.StatusBadRequest, perr.ErrorCodeJSON, ""},
		{"empty body", ``, http.StatusBadRequest, perr.ErrorCodeJSON, ""},
		{"validation", `{"timeout_ms":60000}`, http.StatusBadRequest, perr.ErrorCodeValidation, "timeout_ms"},
		{"handler error", `{"reader":"boom"}`, http.StatusInternalServerError, perr.ErrorCodeUnknown, ""},
		{"device error", `{"reader":"ACS"}`, http.StatusBadGateway, perr.ErrorCodeDevice, ""},
	}
	for _, tc := range cases {
		called = false
		rr := post(h, tc.body)
		if rr.Code != tc.status {
			t.Fatalf("%s: status = %d, want %d", tc.name, rr.Code, tc.status)
		}
		env := decodeEnv(t, rr)
		if env.Code != tc.code || env.Field != tc.field || env.Error == "" {
			t.Fatalf("%s: envelope = %+v", tc.name, env)
		}
		if called != (tc.status >= 500) {
			t.Fatalf("%s: handler called = %v", tc.name, called)
		}
	}
}

func TestJSONHandler_AllowEmpty(t *testing.T) {
	t.Parallel()

	var got readDTO
	h := JSONHandler(func(_ *http.Request, in readDTO) (any, error) {
		got = in
		return nil, nil
	}, bind.Options{AllowEmpty: true})
	if rr := post(h, ``); rr.Code != http.StatusOK {
		t.Fatalf("empty body status = %d", rr.Code)
	}
	if got != (readDTO{}) {
		t.Fatalf("empty body should bind the zero value, got %+v", got)
	}
}

func TestResult(t *testing.T) {
	if got := Result("04A1", nil); !reflect.DeepEqual(got, OK("04A1")) {
		t.Fatalf("Result(out) = %+v", got)
	}
	if got := Result(NoContent(), nil); !reflect.DeepEqual(got, NoContent()) {
		t.Fatalf("Result(Response) = %+v", got)
	}
	boom := errors.New("boom")
	if got := Result("ignored", boom); !reflect.DeepEqual(got, Error(boom)) {
		t.Fatalf("Result(err) = %+v", got)
	}
}
