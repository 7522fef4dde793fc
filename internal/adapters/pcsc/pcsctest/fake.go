// Package pcsctest provides an in-memory smart card subsystem for tests
package pcsctest

import (
	"sync"
	"time"

	"readnfc/internal/adapters/pcsc"
	"readnfc/internal/core/apdu"
	"readnfc/internal/core/uid"
)

// Fake is a scripted subsystem; every Establish returns a context sharing its readers
type Fake struct {
	mu sync.Mutex

	readers []string
	cards   map[string][]byte
	counts  map[string]uint16
	changed chan struct{}

	// Protocol is what connected cards report as active (default T1)
	Protocol apdu.Protocol
	// Respond overrides the card answer; nil answers with the inserted UID padded to 256 bytes + 90 00
	Respond func(reader string, cmd []byte) ([]byte, error)
	// EstablishErr and ConnectErr fail the respective calls when set
	EstablishErr error
	ConnectErr   error
	// BeforeTransmit runs inside Transmit without the lock held, tests use it to hold an exchange open
	BeforeTransmit func(reader string)

	establishes int
	releases    int
	connects    int
	disconnects int
	transmits   [][]byte
	waits       int
}

// New returns a Fake with the given readers and no cards
func New(readers ...string) *Fake {
	return &Fake{
		readers:  append([]string(nil), readers...),
		cards:    map[string][]byte{},
		counts:   map[string]uint16{},
		changed:  make(chan struct{}),
		Protocol: apdu.ProtocolT1,
	}
}

// Insert places a card with the given UID bytes in reader
func (f *Fake) Insert(reader string, id []byte) {
	f.mu.Lock()
	f.cards[reader] = append([]byte(nil), id...)
	f.counts[reader]++
	f.notifyLocked()
	f.mu.Unlock()
}

// Swap replaces the card in reader in one step, as a swap between two status waits looks:
// the presence bit stays set and only the event counter moves
func (f *Fake) Swap(reader string, id []byte) {
	f.mu.Lock()
	f.cards[reader] = append([]byte(nil), id...)
	f.counts[reader] += 2
	f.notifyLocked()
	f.mu.Unlock()
}

// Remove takes the card out of reader
func (f *Fake) Remove(reader string) {
	f.mu.Lock()
	delete(f.cards, reader)
	f.counts[reader]++
	f.notifyLocked()
	f.mu.Unlock()
}

// SetReaders replaces the attached readers, dropping cards of removed ones
func (f *Fake) SetReaders(readers ...string) {
	f.mu.Lock()
	f.readers = append([]string(nil), readers...)
	for r := range f.cards {
		if !f.hasReaderLocked(r) {
			delete(f.cards, r)
		}
	}
	f.notifyLocked()
	f.mu.Unlock()
}

// Establish implements pcsc.Establisher
func (f *Fake) Establish() (pcsc.Context, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.EstablishErr != nil {
		return nil, f.EstablishErr
	}
	f.establishes++
	return &fakeContext{f: f, cancel: make(chan struct{}, 1)}, nil
}

// Counters

func (f *Fake) Establishes() int { f.mu.Lock(); defer f.mu.Unlock(); return f.establishes }
func (f *Fake) Releases() int    { f.mu.Lock(); defer f.mu.Unlock(); return f.releases }
func (f *Fake) Connects() int    { f.mu.Lock(); defer f.mu.Unlock(); return f.connects }
func (f *Fake) Disconnects() int { f.mu.Lock(); defer f.mu.Unlock(); return f.disconnects }
func (f *Fake) Waits() int       { f.mu.Lock(); defer f.mu.Unlock(); return f.waits }

// Transmits returns copies of every command sent so far
func (f *Fake) Transmits() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.transmits))
	for i, c := range f.transmits {
		out[i] = append([]byte(nil), c...)
	}
	return out
}

func (f *Fake) notifyLocked() {
	close(f.changed)
	f.changed = make(chan struct{})
}

func (f *Fake) hasReaderLocked(r string) bool {
	for _, n := range f.readers {
		if n == r {
			return true
		}
	}
	return false
}

func (f *Fake) stateLocked(r string) pcsc.State {
	if !f.hasReaderLocked(r) {
		return pcsc.StateUnknown | pcsc.StateUnavailable
	}
	count := pcsc.State(f.counts[r]) << 16
	if _, ok := f.cards[r]; ok {
		return pcsc.StatePresent | count
	}
	return pcsc.StateEmpty | count
}

type fakeContext struct {
	f        *Fake
	cancel   chan struct{}
	mu       sync.Mutex
	released bool
}

func (c *fakeContext) ListReaders() ([]string, error) {
	if c.isReleased() {
		return nil, pcsc.ErrNoService
	}
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	if len(c.f.readers) == 0 {
		return nil, pcsc.ErrNoReaders
	}
	return append([]string(nil), c.f.readers...), nil
}

func (c *fakeContext) Connect(reader string, _ apdu.Protocol) (pcsc.Card, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	c.f.connects++
	if c.f.ConnectErr != nil {
		return nil, c.f.ConnectErr
	}
	if !c.f.hasReaderLocked(reader) {
		return nil, pcsc.ErrUnknownReader
	}
	if _, ok := c.f.cards[reader]; !ok {
		return nil, pcsc.ErrNoCard
	}
	return &fakeCard{f: c.f, reader: reader}, nil
}

// GetStatusChange compares the presence bits and the event counter; Changed is set on the reported state
func (c *fakeContext) GetStatusChange(states []pcsc.ReaderState, timeout time.Duration) error {
	if c.isReleased() {
		return pcsc.ErrNoService
	}
	var expire <-chan time.Time
	if timeout >= 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expire = t.C
	}
	const mask = pcsc.StatePresent | pcsc.StateEmpty | pcsc.StateUnavailable

	c.f.mu.Lock()
	c.f.waits++
	c.f.mu.Unlock()
	for {
		c.f.mu.Lock()
		diff := false
		for i := range states {
			now := c.f.stateLocked(states[i].Reader)
			cur := states[i].Current
			if cur == pcsc.StateUnaware || cur&mask != now&mask || cur.EventCount() != now.EventCount() {
				diff = true
				states[i].Event = now | pcsc.StateChanged
			} else {
				states[i].Event = now
			}
		}
		changed := c.f.changed
		c.f.mu.Unlock()
		if diff {
			return nil
		}

		select {
		case <-changed:
		case <-c.cancel:
			return pcsc.ErrCancelled
		case <-expire:
			return pcsc.ErrTimeout
		}
	}
}

// Cancel releases one pending or the next GetStatusChange
func (c *fakeContext) Cancel() error {
	select {
	case c.cancel <- struct{}{}:
	default:
	}
	return nil
}

func (c *fakeContext) Release() error {
	c.mu.Lock()
	already := c.released
	c.released = true
	c.mu.Unlock()
	if !already {
		c.f.mu.Lock()
		c.f.releases++
		c.f.mu.Unlock()
	}
	return nil
}

func (c *fakeContext) isReleased() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

type fakeCard struct {
	f      *Fake
	reader string
}

func (c *fakeCard) ActiveProtocol() apdu.Protocol {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	return c.f.Protocol
}

func (c *fakeCard) Transmit(cmd []byte) ([]byte, error) {
	if hook := c.f.BeforeTransmit; hook != nil {
		hook(c.reader)
	}
	c.f.mu.Lock()
	c.f.transmits = append(c.f.transmits, append([]byte(nil), cmd...))
	respond := c.f.Respond
	id, ok := c.f.cards[c.reader]
	c.f.mu.Unlock()

	if respond != nil {
		return respond(c.reader, cmd)
	}
	if !ok {
		return nil, pcsc.ErrNoCard
	}
	return uid.Pad(uid.New(id), apdu.ResponseCapacity), nil
}

func (c *fakeCard) Disconnect() error {
	c.f.mu.Lock()
	c.f.disconnects++
	c.f.mu.Unlock()
	return nil
}
