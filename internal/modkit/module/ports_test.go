package module

import (
	"context"
	"testing"

	phttp "readnfc/internal/platform/net/http"
)

type pinger interface {
	Ping(context.Context) error
}

type starter interface {
	Start(context.Context) error
}

type monitorStub struct{ err error }

func (s monitorStub) Ping(context.Context) error { return s.err }

type lifecycleStub struct{}

func (lifecycleStub) Start(context.Context) error { return nil }

type fakeModule struct {
	name  string
	ports PortSet
}

func (m fakeModule) Name() string             { return m.name }
func (m fakeModule) Ports() PortSet           { return m.ports }
func (m fakeModule) MountRoutes(phttp.Router) {}

type bundle struct {
	Status    pinger
	Lifecycle starter
	Timeout   int
	hidden    pinger
}

func TestPortsOf(t *testing.T) {
	stub := monitorStub{}

	tests := []struct {
		name  string
		ports PortSet
		found bool
	}{
		{"nil ports", nil, false},
		{"direct value", stub, true},
		{"struct bundle", bundle{Status: stub}, true},
		{"pointer bundle", &bundle{Status: stub}, true},
		{"nil field skipped", bundle{Timeout: 3}, false},
		{"unexported field ignored", bundle{hidden: stub}, false},
		{"non struct", 42, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PortsOf[pinger](fakeModule{name: "cardreader", ports: tc.ports})
			if ok != tc.found {
				t.Fatalf("found = %v, want %v", ok, tc.found)
			}
			if tc.found {
				if err := got.Ping(context.Background()); err != nil {
					t.Fatalf("Ping: %v", err)
				}
			} else if got != nil {
				t.Fatalf("got %v, want nil", got)
			}
		})
	}
}

func TestPortsOf_PicksMatchingField(t *testing.T) {
	m := fakeModule{name: "cardreader", ports: bundle{Lifecycle: lifecycleStub{}}}

	if _, ok := PortsOf[pinger](m); ok {
		t.Fatalf("pinger found in a bundle without one")
	}

	s, ok := PortsOf[starter](m)
	if !ok {
		t.Fatalf("starter not found")
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func TestMustPortsOf(t *testing.T) {
	m := fakeModule{name: "cardreader", ports: bundle{Status: monitorStub{}}}
	_ = MustPortsOf[pinger](m)

	defer func() {
		want := "module meta: requested port not found: module.starter"
		if r := recover(); r != want {
			t.Fatalf("panic = %v, want %q", r, want)
		}
	}()
	_ = MustPortsOf[starter](fakeModule{name: "meta"})
}
