package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"readnfc/internal/adapters/pcsc"
	"readnfc/internal/platform/logger"
	perr "readnfc/internal/platform/errors"
	ptime "readnfc/internal/platform/time"
	"readnfc/internal/services/cardreader/domain"
)

const (
	// events the watcher may queue while the consumer is busy with an exchange
	eventBuffer = 8
	// handled events waiting for the sink; beyond this they are dropped, the Store never waits on delivery
	outboxBuffer = 32
	// Stop re-issues Cancel at this interval until the watcher is out of its wait
	cancelRetry = 50 * time.Millisecond
)

// MonitorConfig tunes the card monitor
type MonitorConfig struct {
	// Reader is matched with MatchReader at Start; empty picks the first reader
	Reader string
	// RetryDelay is the pause after a failed state wait before waiting again
	RetryDelay time.Duration
}

// Monitor watches one reader and keeps the Store in step with card presence
// a watcher goroutine turns state changes into events, a single consumer handles them in order
type Monitor struct {
	establish pcsc.Establisher
	discovery *Discovery
	x         Transceiver
	store     *Store
	sink      domain.EventSink
	log       logger.Logger
	cfg       MonitorConfig

	mu      sync.Mutex
	state   domain.MonitorState
	reader  domain.Reader
	lastErr string
	cancel  context.CancelFunc
	pc      pcsc.Context
	done    chan struct{}
}

// NewMonitor builds an Idle monitor; sink may be nil
func NewMonitor(establish pcsc.Establisher, x Transceiver, store *Store, sink domain.EventSink, log logger.Logger, cfg MonitorConfig) *Monitor {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	return &Monitor{
		establish: establish,
		discovery: NewDiscovery(establish),
		x:         x,
		store:     store,
		sink:      sink,
		log:       log,
		cfg:       cfg,
	}
}

// Start resolves the reader and begins watching it
// a missing reader fails Start with ErrNoReaderFound and leaves the monitor Idle
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != domain.StateIdle {
		return perr.Conflictf("card monitor is %s", m.state)
	}

	reader, err := m.discovery.ResolveReader(ctx, m.cfg.Reader)
	if err != nil {
		return err
	}
	pc, err := m.establish()
	if err != nil {
		return perr.WrapAs(domain.ErrMonitor, err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	events := make(chan domain.PresenceEvent, eventBuffer)
	done := make(chan struct{})

	var outbox chan domain.PresenceEvent
	if m.sink != nil {
		outbox = make(chan domain.PresenceEvent, outboxBuffer)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.watch(runCtx, pc, reader, events)
	}()
	go func() {
		defer wg.Done()
		m.consume(runCtx, events, outbox)
	}()
	if outbox != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// queued events still go out after Stop cancels; the sink bounds each publish
			m.deliver(context.WithoutCancel(runCtx), outbox)
		}()
	}
	go func() {
		wg.Wait()
		if err := pc.Release(); err != nil {
			m.log.Debug().Err(err).Msg("release monitor context")
		}
		close(done)
	}()

	m.state = domain.StateWatching
	m.reader = reader
	m.cancel = cancel
	m.pc = pc
	m.done = done
	m.log.Info().Str("reader", string(reader)).Msg("card monitor watching")
	return nil
}

// Stop cancels the watch and returns once the watcher and consumer have exited and queued
// events reached the sink; no Store writes happen after Stop returns nil; calling it again is a no-op
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	prev := m.state
	m.state = domain.StateStopped
	cancel, pc, done := m.cancel, m.pc, m.done
	m.mu.Unlock()

	if done == nil {
		return nil
	}
	if prev == domain.StateWatching {
		cancel()
	}
	if err := m.waitStopped(ctx, pc, done); err != nil {
		return err
	}
	if prev == domain.StateWatching {
		m.log.Info().Str("reader", string(m.Reader())).Msg("card monitor stopped")
	}
	return nil
}

// waitStopped keeps cancelling the blocking wait until done closes
// a Cancel issued before the watcher enters its wait is lost, hence the retries
func (m *Monitor) waitStopped(ctx context.Context, pc pcsc.Context, done <-chan struct{}) error {
	_ = pc.Cancel()
	t := time.NewTicker(cancelRetry)
	defer t.Stop()
	for {
		select {
		case <-done:
			return nil
		case <-t.C:
			_ = pc.Cancel()
		case <-ctx.Done():
			return perr.Wrap(ctx.Err(), perr.ErrorCodeTimeout, "card monitor did not stop in time")
		}
	}
}

// State returns the lifecycle state
func (m *Monitor) State() domain.MonitorState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reader returns the watched reader, empty before Start
func (m *Monitor) Reader() domain.Reader {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reader
}

// Status implements domain.StatusPort
func (m *Monitor) Status() domain.Status {
	m.mu.Lock()
	st := domain.Status{State: m.state.String(), Reader: m.reader, LastError: m.lastErr}
	m.mu.Unlock()

	snap := m.store.Snapshot()
	st.CardUID = snap.UID
	st.Since = ptime.Ptr(snap.Since)
	return st
}

// Ping implements domain.StatusPort
func (m *Monitor) Ping(_ context.Context) error {
	if s := m.State(); s != domain.StateWatching {
		return perr.Unavailablef("card monitor is %s", s)
	}
	return nil
}

func (m *Monitor) watch(ctx context.Context, pc pcsc.Context, reader domain.Reader, events chan<- domain.PresenceEvent) {
	defer close(events)

	states := []pcsc.ReaderState{{Reader: string(reader), Current: pcsc.StateUnaware}}
	present, unavailable := false, false
	// last event counter seen; counted is false until a wait reported one
	var count uint16
	counted := false
	for ctx.Err() == nil {
		err := pc.GetStatusChange(states, pcsc.Infinite)
		if ctx.Err() != nil {
			return
		}
		switch {
		case err == nil:
		case errors.Is(err, pcsc.ErrTimeout), errors.Is(err, pcsc.ErrCancelled):
			continue
		default:
			ev := domain.NewEvent(domain.MonitorError, reader)
			ev.Err = perr.WrapAs(domain.ErrMonitor, err)
			if !emit(ctx, events, ev) {
				return
			}
			// resync from scratch once the subsystem answers again
			states[0].Current = pcsc.StateUnaware
			counted = false
			if !sleepCtx(ctx, m.cfg.RetryDelay) {
				return
			}
			continue
		}

		st := states[0].Event
		states[0].Current = st &^ pcsc.StateChanged

		gone := st.Has(pcsc.StateUnavailable)
		if gone && !unavailable {
			ev := domain.NewEvent(domain.MonitorError, reader)
			ev.Err = perr.WrapAs(domain.ErrMonitor, pcsc.ErrReaderUnavailable)
			if !emit(ctx, events, ev) {
				return
			}
		}
		unavailable = gone

		now := st.Has(pcsc.StatePresent) && !gone
		// a card swapped between two waits keeps the present bit and only moves the counter
		swapped := now && present && counted && st.EventCount() != count
		count, counted = st.EventCount(), !gone

		switch {
		case swapped:
			if !emit(ctx, events, domain.NewEvent(domain.CardRemoved, reader)) {
				return
			}
			if !emit(ctx, events, domain.NewEvent(domain.CardInserted, reader)) {
				return
			}
		case now && !present:
			if !emit(ctx, events, domain.NewEvent(domain.CardInserted, reader)) {
				return
			}
		case !now && present:
			if !emit(ctx, events, domain.NewEvent(domain.CardRemoved, reader)) {
				return
			}
		}
		present = now
	}
}

// consume handles events in order and queues them on out; out is closed on return, nil means no sink
func (m *Monitor) consume(ctx context.Context, events <-chan domain.PresenceEvent, out chan<- domain.PresenceEvent) {
	if out != nil {
		defer close(out)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev, ok := m.handle(ctx, ev); ok {
				m.enqueue(out, ev)
			}
		}
	}
}

// handle applies one event to the Store and returns it as the sink should see it
// a failed read leaves the Store untouched; ok is false for events nobody should see
func (m *Monitor) handle(ctx context.Context, ev domain.PresenceEvent) (_ domain.PresenceEvent, ok bool) {
	log := m.log.With().Str("reader", string(ev.Reader)).Str("event_id", ev.ID.String()).Logger()

	switch ev.Kind {
	case domain.CardInserted:
		id, err := m.x.ReadUIDFresh(m.establish, ev.Reader)
		if err != nil {
			ev.Err = err
			m.setLastErr(err)
			lvl := log.Error()
			if perr.Retryable(err) {
				// typically a card pulled mid-read
				lvl = log.Warn()
			}
			lvl.Err(err).Msg("card inserted but uid read failed")
			break
		}
		if ctx.Err() != nil {
			return ev, false
		}
		ev.UID = id.String()
		m.store.Set(ev.UID)
		log.Info().Str("uid", ev.UID).Msg("card inserted")
	case domain.CardRemoved:
		m.store.Clear()
		log.Info().Msg("card removed")
	case domain.MonitorError:
		m.setLastErr(ev.Err)
		log.Error().Err(ev.Err).Msg("card monitor error")
	default:
		log.Warn().Str("kind", ev.Kind.String()).Msg("ignoring event")
		return ev, false
	}
	return ev, true
}

func (m *Monitor) enqueue(out chan<- domain.PresenceEvent, ev domain.PresenceEvent) {
	if out == nil {
		return
	}
	select {
	case out <- ev:
	default:
		m.log.Warn().Str("event", ev.Kind.String()).Str("reader", string(ev.Reader)).Msg("event sink backlog full, dropping presence event")
	}
}

// deliver hands events to the sink in order until the consumer closes out
func (m *Monitor) deliver(ctx context.Context, out <-chan domain.PresenceEvent) {
	for ev := range out {
		if err := m.sink.Publish(ctx, ev); err != nil {
			m.log.Warn().Err(err).Str("event", ev.Kind.String()).Msg("publish presence event")
		}
	}
}

func (m *Monitor) setLastErr(err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	m.lastErr = err.Error()
	m.mu.Unlock()
}

func emit(ctx context.Context, events chan<- domain.PresenceEvent, ev domain.PresenceEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
