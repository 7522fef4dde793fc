package http

import (
	stdctx "context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "readnfc/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(stdctx.Context) error

func (f pingFunc) Ping(ctx stdctx.Context) error { return f(ctx) }

func get(t *testing.T, d Deps, path string, out any) int {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	Register(r, d)

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	env := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, out))
	return rec.Code
}

func TestHealthAndService(t *testing.T) {
	d := Deps{ServiceName: "readnfc-api", StartedAt: time.Now().Add(-time.Minute)}

	var hr HealthResponse
	get(t, d, "/health", &hr)
	assert.True(t, hr.OK)
	assert.Equal(t, "readnfc-api", hr.Service)

	var sr ServiceResponse
	get(t, d, "/service", &sr)
	assert.Equal(t, "readnfc-api", sr.Name)
	assert.GreaterOrEqual(t, sr.Uptime, int64(59))
}

func TestVersion(t *testing.T) {
	var v map[string]string
	get(t, Deps{}, "/version", &v)
	assert.Equal(t, "readnfc-api", v["service"])
}

func TestReady(t *testing.T) {
	ok := pingFunc(func(stdctx.Context) error { return nil })
	bad := pingFunc(func(stdctx.Context) error { return errors.New("card monitor is idle") })

	tests := []struct {
		name   string
		checks []Check
		want   string
		code   int
	}{
		{"all ok", []Check{{"cardmonitor", ok}, {"mqtt", ok}}, StatusOK, http.StatusOK},
		{"skipped", []Check{{"cardmonitor", ok}, {"mqtt", nil}}, StatusDegraded, http.StatusOK},
		{"fail wins", []Check{{"mqtt", nil}, {"cardmonitor", bad}}, StatusFail, http.StatusServiceUnavailable},
		{"none", nil, StatusOK, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var rr ReadyResponse
			assert.Equal(t, tc.code, get(t, Deps{Checks: tc.checks}, "/ready", &rr))
			assert.Equal(t, tc.want, rr.Status)
			require.Len(t, rr.Checks, len(tc.checks))
			for i, c := range tc.checks {
				assert.Equal(t, c.Name, rr.Checks[i].Name)
			}
		})
	}

	var rr ReadyResponse
	get(t, Deps{Checks: []Check{{"cardmonitor", bad}}}, "/ready", &rr)
	assert.Equal(t, StatusFail, rr.Checks[0].Status)
	assert.Equal(t, "card monitor is idle", rr.Checks[0].Error)
}

func TestReady_UsesTimeout(t *testing.T) {
	var deadline time.Time
	slow := pingFunc(func(ctx stdctx.Context) error {
		deadline, _ = ctx.Deadline()
		return nil
	})
	var rr ReadyResponse
	get(t, Deps{Checks: []Check{{"mqtt", slow}}, ReadyTimeout: time.Second}, "/ready", &rr)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
}
