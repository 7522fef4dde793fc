// Package http serves the meta routes: liveness, readiness, build and uptime
package http

import (
	stdctx "context"
	"net/http"
	"sync"
	"time"

	"readnfc/internal/core/version"
	"readnfc/internal/modkit/httpkit"
	ptime "readnfc/internal/platform/time"
)

// Pinger is anything readiness can ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Check is one named readiness check; a nil Pinger is reported as skipped
type Check struct {
	Name   string
	Pinger Pinger
}

// Deps configure the meta routes
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Checks      []Check
	// ReadyTimeout bounds all checks of one /ready call; default 2s
	ReadyTimeout time.Duration
}

// check and overall readiness states
const (
	StatusOK       = "ok"
	StatusFail     = "fail"
	StatusSkipped  = "skipped"
	StatusDegraded = "degraded"
)

// Register mounts /health, /ready, /version and /service on r
func Register(r httpkit.Router, d Deps) {
	if d.ReadyTimeout <= 0 {
		d.ReadyTimeout = 2 * time.Second
	}
	h := &handlers{deps: d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", func(*http.Request) (any, error) { return version.Info(), nil })
	httpkit.Get(r, "/service", h.service)
}

// HealthResponse answers /health; reaching the handler is the check
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// ReadyCheck is the outcome of one check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ReadyResponse answers /ready; any failed check makes it a 503
type ReadyResponse struct {
	Status string       `json:"status"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

// ServiceResponse answers /service
type ServiceResponse struct {
	Name    string `json:"name"`
	Started string `json:"started"`
	// Uptime is in whole seconds
	Uptime int64 `json:"uptime"`
}

type handlers struct{ deps Deps }

func (h *handlers) health(*http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: ptime.Stamp(h.deps.StartedAt),
		Now:     ptime.Stamp(time.Now()),
	}, nil
}

func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), h.deps.ReadyTimeout)
	defer cancel()

	checks := pingAll(ctx, h.deps.Checks)
	res := ReadyResponse{Status: overall(checks), Checks: checks, Now: ptime.Stamp(time.Now())}
	if res.Status == StatusFail {
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: res}, nil
	}
	return res, nil
}

func (h *handlers) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: ptime.Stamp(h.deps.StartedAt),
		Uptime:  int64(time.Since(h.deps.StartedAt) / time.Second),
	}, nil
}

// pingAll pings every check concurrently; results keep the order of checks
func pingAll(ctx stdctx.Context, checks []Check) []ReadyCheck {
	out := make([]ReadyCheck, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		out[i] = ReadyCheck{Name: c.Name, Status: StatusSkipped}
		if c.Pinger == nil {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Pinger.Ping(ctx); err != nil {
				out[i].Status, out[i].Error = StatusFail, err.Error()
				return
			}
			out[i].Status = StatusOK
		}()
	}
	wg.Wait()
	return out
}

// overall is fail if any check failed, degraded if any was skipped, else ok
func overall(checks []ReadyCheck) string {
	s := StatusOK
	for _, c := range checks {
		switch c.Status {
		case StatusFail:
			return StatusFail
		case StatusSkipped:
			s = StatusDegraded
		}
	}
	return s
}
