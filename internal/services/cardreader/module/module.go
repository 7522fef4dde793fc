// Package module wires the card reader service and exposes its ports and routes
package module

import (
	"readnfc/internal/core/uid"
	"readnfc/internal/modkit"
	"readnfc/internal/modkit/httpkit"
	"readnfc/internal/modkit/swaggerkit"
	"readnfc/internal/platform/logger"
	str "readnfc/internal/platform/strings"
	cardhttp "readnfc/internal/services/cardreader/http"
	"readnfc/internal/services/cardreader/service"
)

// Module defines the card reader module
type Module struct {
	deps  modkit.Deps
	built modkit.Built
	opts  Options

	svc   *service.Svc
	ports Ports
}

// New constructs the card reader module
// options come from CARDREADER_* env with non-zero overrides applied on top; invalid options panic
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build("cardreader", "/nfc", opts...)

	o := FromConfig(deps.Cfg).merge(overrides)
	mode, err := uid.ParseMode(o.UIDMode)
	if err == nil {
		err = o.Validate()
	}
	if err != nil {
		logger.Get().Panic().Err(err).Msg("invalid card reader options")
	}

	svc := service.New(deps, service.Config{
		Reader:      o.Reader,
		PollTimeout: o.PollTimeout,
		RetryDelay:  o.RetryDelay,
		StopTimeout: o.StopTimeout,
		UIDMode:     mode,
		Sink:        o.Sink,
	})

	return &Module{
		deps:  deps,
		built: b,
		opts:  o,
		svc:   svc,
		ports: Ports{
			Query:     svc,
			Lifecycle: svc,
			Poller:    svc,
			Discovery: svc,
			Status:    svc,
		},
	}
}

func (m *Module) handlerDeps() cardhttp.Deps {
	return cardhttp.Deps{
		Query:       m.ports.Query,
		Poller:      m.ports.Poller,
		Discovery:   m.ports.Discovery,
		Status:      m.ports.Status,
		PollTimeout: m.opts.PollTimeout,
	}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) { cardhttp.Register(rr, m.handlerDeps()) })
}

// MountCompat mounts the legacy UID route (GET /api/NFCReader/getCardUID) on a root router
func (m *Module) MountCompat(r httpkit.Router) {
	r.Route("/api/NFCReader", func(rr httpkit.Router) {
		cardhttp.RegisterCompat(rr, m.ports.Query)
	})
}

// Docs lists the module routes for the API document
func (m *Module) Docs() []swaggerkit.Operation {
	p := m.Prefix()
	return []swaggerkit.Operation{
		{Method: "GET", Path: p + "/uid", Summary: "Current card UID", Tag: "NFC"},
		{Method: "GET", Path: p + "/readers", Summary: "List attached readers", Tag: "NFC"},
		{Method: "GET", Path: p + "/status", Summary: "Card monitor status", Tag: "NFC"},
		{Method: "POST", Path: p + "/read", Summary: "Wait for a card and read its UID", Tag: "NFC", Body: "ReadRequest"},
		{
			Method: "GET", Path: "/api/NFCReader/getCardUID", Summary: "Current card UID, legacy unenveloped body",
			Tag: "NFC", Response: "CardUID", Server: "/",
		},
	}
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.built.Name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.built.Prefix) }

// Ports returns the module ports
func (m *Module) Ports() modkit.PortSet { return m.ports }

// Options returns the effective options after env and overrides
func (m *Module) Options() Options { return m.opts }
