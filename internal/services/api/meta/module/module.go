// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	modkit "readnfc/internal/modkit"
	"readnfc/internal/modkit/httpkit"
	"readnfc/internal/modkit/swaggerkit"
	str "readnfc/internal/platform/strings"

	"readnfc/internal/core/version"
	metahttp "readnfc/internal/services/api/meta/http"
)

// Ports are the readiness checks injected with modkit.WithPorts
type Ports struct {
	Checks []metahttp.Check
}

// Module implements the modkit.Module interface
type Module struct {
	built modkit.Built
	ports Ports
	deps  metahttp.Deps
}

// New constructs a meta module; readiness checks arrive through modkit.WithPorts(Ports{...})
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build("meta", "/meta", opts...)
	ports, _ := b.Ports.(Ports)
	return &Module{
		built: b,
		ports: ports,
		deps: metahttp.Deps{
			ServiceName:  version.Info().Service,
			StartedAt:    time.Now(),
			Checks:       ports.Checks,
			ReadyTimeout: deps.Cfg.Prefix("META_").MayDuration("READY_TIMEOUT", 2*time.Second),
		},
	}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

// Docs lists the module routes for the API document
func (m *Module) Docs() []swaggerkit.Operation {
	p := m.Prefix()
	return []swaggerkit.Operation{
		{Method: "GET", Path: p + "/health", Summary: "Health check", Tag: "Meta"},
		{Method: "GET", Path: p + "/ready", Summary: "Readiness with dependency checks", Tag: "Meta"},
		{Method: "GET", Path: p + "/version", Summary: "Build and version info", Tag: "Meta"},
		{Method: "GET", Path: p + "/service", Summary: "Service info and uptime", Tag: "Meta"},
	}
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.built.Name, "meta") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.built.Prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() modkit.PortSet { return m.ports }
