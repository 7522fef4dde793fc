// Package api provides the HTTP API for the application
package api

import (
	"readnfc/internal/platform/config"
	"readnfc/internal/platform/logger"
	phttp "readnfc/internal/platform/net/http"

	"readnfc/internal/modkit"
	"readnfc/internal/modkit/httpkit"
	"readnfc/internal/modkit/module"
	"readnfc/internal/modkit/swaggerkit"

	metahttp "readnfc/internal/services/api/meta/http"
	metamod "readnfc/internal/services/api/meta/module"
	cardmod "readnfc/internal/services/cardreader/module"
	"readnfc/internal/services/cardreader/domain"
)

// base is where versioned modules are mounted
const base = "/api/v1"

// Options are the API options
type Options struct {
	Config config.Conf
	Logger *logger.Logger
	Card   *cardmod.Module
	// Checks are readiness checks beyond the card monitor, such as the MQTT publisher
	Checks         []metahttp.Check
	Stack          httpkit.StackOptions
	EnableSwagger  bool
	EnableProfiler bool
}

type documented interface {
	Docs() []swaggerkit.Operation
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{Log: *opt.Logger, Cfg: opt.Config}

	status := module.MustPortsOf[domain.StatusPort](opt.Card)
	checks := append([]metahttp.Check{{Name: "cardmonitor", Pinger: status}}, opt.Checks...)

	mods := []module.Module{
		metamod.New(deps, modkit.WithPorts(metamod.Ports{Checks: checks})),
		opt.Card,
	}

	var ops []swaggerkit.Operation
	httpkit.MountAPIV1(r, httpkit.CommonStack(opt.Stack), func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
			if d, ok := m.(documented); ok {
				ops = append(ops, d.Docs()...)
			}
			opt.Logger.Debug().Str("module", m.Name()).Msg("module mounted")
		}
	})

	// the legacy route keeps its unversioned path
	r.Group(func(g httpkit.Router) {
		g.Use(httpkit.CommonStack(opt.Stack)...)
		opt.Card.MountCompat(g)
	})

	swaggerkit.Mount(r, opt.EnableSwagger, base, ops...)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
}
