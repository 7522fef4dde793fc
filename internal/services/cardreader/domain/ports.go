// Package domain defines the public ports and types for the card reader service
package domain

import (
	"context"
	"time"

	"readnfc/internal/core/uid"
)

// QueryPort answers the current card UID without touching hardware
// ok is false when no card is held; it never fails
type QueryPort interface {
	CurrentUID(ctx context.Context) (uid string, ok bool)
}

// LifecyclePort starts and stops the background card monitor
type LifecyclePort interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// PollerPort waits for a card and reads its UID on the caller's goroutine
type PollerPort interface {
	ReadUIDBlocking(ctx context.Context, reader Reader, timeout time.Duration) (uid.UID, error)
}

// DiscoveryPort lists and picks readers
type DiscoveryPort interface {
	ListReaders(ctx context.Context) ([]Reader, error)
	SelectReader(ctx context.Context) (Reader, error)
	// ResolveReader matches query against attached readers; empty query selects the first
	ResolveReader(ctx context.Context, query string) (Reader, error)
}

// StatusPort reports monitor state
type StatusPort interface {
	Status() Status
	// Ping fails unless the monitor is watching
	Ping(ctx context.Context) error
}

// EventSink receives every presence event after the monitor has handled it
type EventSink interface {
	Publish(ctx context.Context, ev PresenceEvent) error
}

// SinkFunc adapts a function to EventSink
type SinkFunc func(ctx context.Context, ev PresenceEvent) error

// Publish calls f
func (f SinkFunc) Publish(ctx context.Context, ev PresenceEvent) error { return f(ctx, ev) }

// Sinks fans out to each sink in order, returning the first error after trying all
type Sinks []EventSink

// Publish implements EventSink
func (s Sinks) Publish(ctx context.Context, ev PresenceEvent) error {
	var first error
	for _, sink := range s {
		if sink == nil {
			continue
		}
		if err := sink.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
