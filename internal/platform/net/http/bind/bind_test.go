package bind

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	perr "readnfc/internal/platform/errors"
)

type readInput struct {
	Reader    string `json:"reader" validate:"omitempty,max=16,reader_name"`
	TimeoutMs int    `json:"timeout_ms" validate:"omitempty,min=1,max=30000"`
}

func req(method, body string) *http.Request {
	return httptest.NewRequest(method, "/nfc/read", strings.NewReader(body))
}

func TestParseJSON_Success(t *testing.T) {
	got, err := ParseJSON[readInput](req(http.MethodPost, `{"reader":"ACR122","timeout_ms":500}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if got != (readInput{Reader: "ACR122", TimeoutMs: 500}) {
		t.Fatalf("got %+v", got)
	}
}

func TestParseJSON_EmptyBody(t *testing.T) {
	if _, err := ParseJSON[readInput](req(http.MethodPost, "")); perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("empty POST err = %v", err)
	}

	// safe methods and AllowEmpty bind the zero value
	for _, r := range []struct {
		req  *http.Request
		opts Options
	}{
		{req(http.MethodGet, ""), Options{}},
		{req(http.MethodPost, ""), Options{AllowEmpty: true}},
	} {
		got, err := ParseJSON[readInput](r.req, r.opts)
		if err != nil || got != (readInput{}) {
			t.Fatalf("%s empty = %+v, %v", r.req.Method, got, err)
		}
	}
}

func TestParseJSON_DecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		opts Options
	}{
		{"malformed", `{"reader":`, Options{}},
		{"unknown field", `{"reader":"x","pin":"1234"}`, Options{}},
		{"trailing data", `{"reader":"x"} {"reader":"y"}`, Options{}},
		{"over limit", `{"reader":"ACR122 ACR122 ACR122"}`, Options{MaxBytes: 8}},
		{"wrong type", `{"timeout_ms":"soon"}`, Options{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJSON[readInput](req(http.MethodPost, tc.body), tc.opts)
			if perr.CodeOf(err) != perr.ErrorCodeJSON {
				t.Fatalf("err = %v, want a json error", err)
			}
		})
	}
}

func TestParseJSON_AllowUnknown(t *testing.T) {
	got, err := ParseJSON[readInput](req(http.MethodPost, `{"reader":"x","pin":"1234"}`), Options{AllowUnknown: true})
	if err != nil || got.Reader != "x" {
		t.Fatalf("got %+v, %v", got, err)
	}
}

func TestParseJSON_ValidationCarriesField(t *testing.T) {
	_, err := ParseJSON[readInput](req(http.MethodPost, `{"timeout_ms":60000}`))
	if perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("err = %v, want validation", err)
	}
	if got := err.Error(); got != "timeout_ms must be at most 30000" {
		t.Fatalf("message = %q", got)
	}
	if e, ok := perr.As(err); !ok || e.Field() != "timeout_ms" {
		t.Fatalf("field missing on %v", err)
	}
}

func TestMessages(t *testing.T) {
	type s struct {
		Count  int    `json:"count" validate:"min=2,max=5"`
		Reader string `json:"reader" validate:"reader_name"`
		Plain  string `validate:"required"`
		Hidden string `json:"-" validate:"required"`
	}
	ok := s{Count: 3, Reader: "Identiv uTrust 3700 F Größe", Plain: "x", Hidden: "x"}
	if err := Get().v.Struct(ok); err != nil {
		t.Fatalf("valid struct rejected: %v", err)
	}

	cases := []struct {
		mutate func(*s)
		field  string
		msg    string
	}{
		{func(v *s) { v.Count = 6 }, "count", "count must be at most 5"},
		{func(v *s) { v.Count = 1 }, "count", "count must be at least 2"},
		{func(v *s) { v.Reader = "ACS\x00ACR" }, "reader", "reader must contain printable characters only"},
		{func(v *s) { v.Plain = "" }, "Plain", "Plain is a required field"},
		{func(v *s) { v.Hidden = "" }, "Hidden", "Hidden is a required field"},
	}
	for _, tc := range cases {
		v := ok
		tc.mutate(&v)
		field, msg := FieldAndMessage(Get().v.Struct(v))
		if field != tc.field || msg != tc.msg {
			t.Fatalf("got %q / %q, want %q / %q", field, msg, tc.field, tc.msg)
		}
	}
}

func TestFieldAndMessage_Passthrough(t *testing.T) {
	if field, msg := FieldAndMessage(errors.New("boom")); field != "" || msg != "boom" {
		t.Fatalf("plain error = %q / %q", field, msg)
	}
	if field, msg := FieldAndMessage(nil); field != "" || msg != "" {
		t.Fatalf("nil error = %q / %q", field, msg)
	}
}

func TestStruct(t *testing.T) {
	type opts struct {
		Reader  string        `json:"reader" validate:"max=8,reader_name"`
		Timeout time.Duration `json:"timeout" validate:"min=1ms,max=1m"`
	}

	if err := Struct(opts{Reader: "acs", Timeout: time.Second}); err != nil {
		t.Fatalf("valid opts rejected: %v", err)
	}

	err := Struct(opts{Reader: "acs"})
	if perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("zero timeout err = %v", err)
	}
	if e, ok := perr.As(err); !ok || e.Field() != "timeout" {
		t.Fatalf("field missing on %v", err)
	}

	if c := perr.CodeOf(Struct(opts{Reader: "a very long reader", Timeout: time.Second})); c != perr.ErrorCodeValidation {
		t.Fatalf("long reader code = %v", c)
	}
	if c := perr.CodeOf(Struct(5)); c != perr.ErrorCodeJSON {
		t.Fatalf("non-struct code = %v", c)
	}
}
