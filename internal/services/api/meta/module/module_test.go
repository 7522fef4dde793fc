package module

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"readnfc/internal/modkit"
	"readnfc/internal/platform/config"
	phttp "readnfc/internal/platform/net/http"
	metahttp "readnfc/internal/services/api/meta/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idle struct{}

func (idle) Ping(context.Context) error { return nil }

func TestModule_MountsUnderPrefixWithChecks(t *testing.T) {
	m := New(
		modkit.Deps{Log: zerolog.Nop(), Cfg: config.New()},
		modkit.WithPorts(Ports{Checks: []metahttp.Check{{Name: "cardmonitor", Pinger: idle{}}}}),
	)
	assert.Equal(t, "meta", m.Name())
	assert.Equal(t, "/meta", m.(*Module).Prefix())

	r := phttp.AdaptChi(chi.NewRouter())
	m.MountRoutes(r)

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meta/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data metahttp.ReadyResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "ok", env.Data.Status)
	require.Len(t, env.Data.Checks, 1)
	assert.Equal(t, "cardmonitor", env.Data.Checks[0].Name)
}

func TestModule_NoPorts(t *testing.T) {
	m := New(modkit.Deps{Cfg: config.New()})
	assert.Equal(t, Ports{}, m.Ports())
}
