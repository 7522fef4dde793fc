package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reader is a reader name exactly as the smart card subsystem reports it
type Reader string

// EventKind classifies a presence event
type EventKind uint8

const (
	// CardInserted fires when a card becomes present in the watched reader
	CardInserted EventKind = iota + 1
	// CardRemoved fires when the watched reader becomes empty
	CardRemoved
	// MonitorError carries a subsystem failure seen while watching
	MonitorError
)

func (k EventKind) String() string {
	switch k {
	case CardInserted:
		return "inserted"
	case CardRemoved:
		return "removed"
	case MonitorError:
		return "error"
	default:
		return "unknown"
	}
}

// PresenceEvent is one notification from the monitor to its consumer
// UID is filled in after a successful read of an inserted card
type PresenceEvent struct {
	ID     uuid.UUID
	Kind   EventKind
	Reader Reader
	UID    string
	Err    error
	At     time.Time
}

// NewEvent stamps an event with a fresh id and the current time
func NewEvent(kind EventKind, reader Reader) PresenceEvent {
	return PresenceEvent{ID: uuid.New(), Kind: kind, Reader: reader, At: time.Now().UTC()}
}

// MonitorState is the lifecycle of the card monitor: Idle -> Watching -> Stopped
type MonitorState uint8

const (
	StateIdle MonitorState = iota
	StateWatching
	StateStopped
)

func (s MonitorState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWatching:
		return "watching"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Snapshot is the UID slot as of one instant; empty UID means no card
type Snapshot struct {
	UID   string
	Since time.Time
}

// Present reports whether a card UID is held
func (s Snapshot) Present() bool { return s.UID != "" }

// Status is the monitor view served by the status endpoint
type Status struct {
	State     string     `json:"state"`
	Reader    Reader     `json:"reader,omitempty"`
	CardUID   string     `json:"card_uid,omitempty"`
	Since     *time.Time `json:"since,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}
