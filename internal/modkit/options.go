package modkit

import (
	"net/http"

	phttp "readnfc/internal/platform/net/http"
)

// Option adjusts how a module is named, mounted and wired
type Option func(*buildCfg)

type buildCfg struct {
	name      string
	prefix    string
	mw        []func(http.Handler) http.Handler
	ports     PortSet
	subrouter func(phttp.Router) phttp.Router
	register  []func(phttp.Router)
}

// WithName overrides the module name used in logs and port lookups
func WithName(name string) Option {
	return func(c *buildCfg) { c.name = name }
}

// WithPrefix overrides the path the module mounts under
func WithPrefix(prefix string) Option {
	return func(c *buildCfg) { c.prefix = prefix }
}

// WithMiddlewares appends middleware applied to every module route, outermost first
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(c *buildCfg) { c.mw = append(c.mw, mw...) }
}

// WithPorts hands a module the ports it consumes from elsewhere
// the concrete type belongs to the receiving module, e.g. meta's readiness checks
func WithPorts[T any](p T) Option {
	return func(c *buildCfg) { c.ports = p }
}

// WithSubrouter wraps the module router before any route is registered
func WithSubrouter(fn func(phttp.Router) phttp.Router) Option {
	return func(c *buildCfg) { c.subrouter = fn }
}

// WithRegister adds extra routes after the module's own; repeated calls accumulate
func WithRegister(fn func(phttp.Router)) Option {
	return func(c *buildCfg) { c.register = append(c.register, fn) }
}
