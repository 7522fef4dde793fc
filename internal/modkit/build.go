package modkit

import (
	"net/http"

	"readnfc/internal/modkit/httpkit"
	str "readnfc/internal/platform/strings"
)

// Built is the resolved wiring for one module
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  PortSet

	subrouter func(httpkit.Router) httpkit.Router
	register  []func(httpkit.Router)
}

// Build resolves opts over the module's own name and prefix
func Build(name, prefix string, opts ...Option) Built {
	c := buildCfg{name: name, prefix: prefix}
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:      c.name,
		Prefix:    c.prefix,
		Mw:        append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:     c.ports,
		subrouter: c.subrouter,
		register:  append([]func(httpkit.Router)(nil), c.register...),
	}
}

// Mount opens the module's prefix on r, applies middleware and the subrouter,
// then registers routes followed by any WithRegister extras
func (b Built) Mount(r httpkit.Router, routes func(httpkit.Router)) {
	httpkit.MountUnder(r, str.MustPrefix(b.Prefix), b.Mw, func(rr httpkit.Router) {
		if b.subrouter != nil {
			rr = b.subrouter(rr)
		}
		if routes != nil {
			routes(rr)
		}
		for _, fn := range b.register {
			fn(rr)
		}
	})
}
