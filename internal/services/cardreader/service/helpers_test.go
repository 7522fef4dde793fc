package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"readnfc/internal/adapters/pcsc/pcsctest"
	"readnfc/internal/modkit"
	"readnfc/internal/services/cardreader/domain"

	"github.com/rs/zerolog"
)

const (
	readerA = "ACS ACR122U PICC Interface 00 00"
	readerB = "Identiv uTrust 3700 F CL Reader 01 00"
)

var (
	uidA = []byte{0x04, 0x8F, 0x2A, 0x11}
	uidB = []byte{0x04, 0xA2, 0x3B, 0x1C, 0x5D, 0x80, 0x01}
)

func newSvc(t *testing.T, fake *pcsctest.Fake, cfg Config) *Svc {
	t.Helper()
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 10 * time.Millisecond
	}
	s := New(modkit.Deps{Log: zerolog.Nop(), PCSC: fake.Establish}, cfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s
}

// recorder is an EventSink that keeps what it saw
type recorder struct {
	mu     sync.Mutex
	events []domain.PresenceEvent
}

func (r *recorder) Publish(_ context.Context, ev domain.PresenceEvent) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *recorder) kinds() []domain.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func (r *recorder) all() []domain.PresenceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.PresenceEvent(nil), r.events...)
}

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)
