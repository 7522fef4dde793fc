// Package pcsc is the seam between the card reader service and the platform smart card
// subsystem (pcsc-lite / WinSCard)
//
// The service only sees Context and Card; Establish backs them with github.com/ebfe/scard
// and tests back them with pcsctest.Fake.
package pcsc

import (
	"time"

	"readnfc/internal/core/apdu"
	perr "readnfc/internal/platform/errors"
)

// Infinite makes GetStatusChange block until a change or Cancel
const Infinite time.Duration = -1

// State mirrors the SCARD_STATE_* reader state flags
// the upper 16 bits carry the subsystem event counter and must be passed back untouched
type State uint32

const (
	StateUnaware     State = 0x0000
	StateIgnore      State = 0x0001
	StateChanged     State = 0x0002
	StateUnknown     State = 0x0004
	StateUnavailable State = 0x0008
	StateEmpty       State = 0x0010
	StatePresent     State = 0x0020
	StateExclusive   State = 0x0080
	StateInUse       State = 0x0100
	StateMute        State = 0x0200
)

// Has reports whether all bits of f are set
func (s State) Has(f State) bool { return s&f == f }

// EventCount is the insertion/removal counter kept in the upper 16 bits
func (s State) EventCount() uint16 { return uint16(s >> 16) }

// ReaderState is one entry of a GetStatusChange call
// Current is what the caller believes, Event is filled in with what the subsystem reports
type ReaderState struct {
	Reader  string
	Current State
	Event   State
}

// Context is an established smart card context
// a context is used from one goroutine at a time, except Cancel which may be called from any
type Context interface {
	ListReaders() ([]string, error)
	// Connect opens a shared-mode connection preferring the given protocols
	Connect(reader string, protocols apdu.Protocol) (Card, error)
	// GetStatusChange blocks until any state differs from its Current value, the timeout
	// expires (ErrTimeout) or Cancel is called (ErrCancelled)
	GetStatusChange(states []ReaderState, timeout time.Duration) error
	Cancel() error
	Release() error
}

// Card is a connection to the card in a reader
type Card interface {
	ActiveProtocol() apdu.Protocol
	Transmit(cmd []byte) ([]byte, error)
	// Disconnect leaves the card powered as it is
	Disconnect() error
}

// Establisher opens a new Context
type Establisher func() (Context, error)

// Subsystem outcomes callers branch on; the original scard error stays wrapped
var (
	ErrTimeout           = perr.New(perr.ErrorCodeTimeout, "pcsc: timeout")
	ErrCancelled         = perr.New(perr.ErrorCodeUnavailable, "pcsc: cancelled")
	ErrNoReaders         = perr.New(perr.ErrorCodeUnavailable, "pcsc: no readers available")
	ErrUnknownReader     = perr.New(perr.ErrorCodeNotFound, "pcsc: unknown reader")
	ErrNoService         = perr.New(perr.ErrorCodeUnavailable, "pcsc: smart card service not running")
	ErrReaderUnavailable = perr.New(perr.ErrorCodeDevice, "pcsc: reader unavailable")
	ErrNoCard            = perr.New(perr.ErrorCodeDevice, "pcsc: no card in reader")
)
