// Package service implements card reader discovery, the background card monitor and
// the blocking read path
package service

import (
	"context"
	"time"

	"readnfc/internal/adapters/pcsc"
	"readnfc/internal/core/uid"
	"readnfc/internal/modkit"
	"readnfc/internal/platform/logger"
	"readnfc/internal/services/cardreader/domain"
)

// Service defines the card reader service contract
type Service interface {
	domain.QueryPort
	domain.LifecyclePort
	domain.PollerPort
	domain.DiscoveryPort
	domain.StatusPort
}

// Config carries runtime knobs
type Config struct {
	Reader      string
	PollTimeout time.Duration
	RetryDelay  time.Duration
	StopTimeout time.Duration
	UIDMode     uid.Mode
	Sink        domain.EventSink
}

// Svc implements Service by composing Discovery, Store, Monitor and the poll path
type Svc struct {
	*Discovery
	*Store
	*Monitor

	establish pcsc.Establisher
	x         Transceiver
	cfg       Config
	log       logger.Logger
}

var _ Service = (*Svc)(nil)

// New constructs the card reader service
func New(deps modkit.Deps, cfg Config) *Svc {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 3 * time.Second
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 5 * time.Second
	}
	if cfg.UIDMode == "" {
		cfg.UIDMode = uid.ModeStripPadding
	}

	log := deps.Log.With().Str("component", "cardreader").Logger()
	establish := deps.Establisher()
	x := NewTransceiver(cfg.UIDMode, log)
	store := NewStore()

	return &Svc{
		Discovery: NewDiscovery(establish),
		Store:     store,
		Monitor: NewMonitor(establish, x, store, cfg.Sink, log, MonitorConfig{
			Reader:     cfg.Reader,
			RetryDelay: cfg.RetryDelay,
		}),
		establish: establish,
		x:         x,
		cfg:       cfg,
		log:       log,
	}
}

// Stop stops the monitor, bounded by the configured stop timeout when ctx has no deadline
func (s *Svc) Stop(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.StopTimeout)
		defer cancel()
	}
	return s.Monitor.Stop(ctx)
}
