package modkit

import (
	"testing"

	phttp "readnfc/internal/platform/net/http"
)

type stub struct {
	name    string
	mounted int
	ports   any
}

func (s *stub) MountRoutes(phttp.Router) { s.mounted++ }
func (s *stub) Ports() any               { return s.ports }
func (s *stub) Name() string             { return s.name }

var _ Module = (*stub)(nil)

func TestBuilder(t *testing.T) {
	t.Parallel()

	var b Builder = func(d Deps, opts ...Option) Module {
		cfg := Build("meta", "/meta", opts...)
		return &stub{name: cfg.Name, ports: cfg.Ports}
	}

	m := b(Deps{}, WithPorts("ready"))
	if m.Name() != "meta" || m.Ports() != "ready" {
		t.Fatalf("name/ports = %q/%v", m.Name(), m.Ports())
	}

	m.MountRoutes(nil)
	if n := m.(*stub).mounted; n != 1 {
		t.Fatalf("mounted %d times", n)
	}
}
