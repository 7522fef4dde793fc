// Package uid turns a raw get-UID response into the card identifier
//
// The response is the UID, right padded with zero bytes up to the receive capacity,
// followed by the status word. Extraction drops the status word and, in the default
// mode, strips the trailing run of zero bytes.
//
// Known defect kept for compatibility: padding and a UID whose last byte is 0x00 look
// the same, so ModeStripPadding truncates such UIDs (04 8F 2A 00 reads as 048F2A).
// ModeExact trusts the response length instead and is correct when the transport
// reports exact lengths, which the PC/SC binding does.
package uid

import (
	"encoding/hex"
	"fmt"
	"strings"

	"readnfc/internal/core/apdu"
	perr "readnfc/internal/platform/errors"
)

// Mode selects how the data region is trimmed
type Mode string

const (
	// ModeStripPadding strips trailing zero bytes (compatible, default)
	ModeStripPadding Mode = "strip"
	// ModeExact keeps the data region exactly as received
	ModeExact Mode = "exact"
)

// ParseMode maps a config value to a Mode, empty means ModeStripPadding
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStripPadding:
		return ModeStripPadding, nil
	case ModeExact:
		return ModeExact, nil
	default:
		return "", perr.InvalidArgf("unknown uid mode %q (expected strip or exact)", s)
	}
}

// ErrEmptyUID means no identifier bytes were left after trimming
var ErrEmptyUID = perr.New(perr.ErrorCodeCard, "empty UID")

// UID is a card identifier without padding
type UID struct {
	b []byte
}

// New copies b into a UID
func New(b []byte) UID {
	return UID{b: append([]byte(nil), b...)}
}

// Bytes returns a copy of the identifier bytes
func (u UID) Bytes() []byte { return append([]byte(nil), u.b...) }

// Len returns the identifier length in bytes
func (u UID) Len() int { return len(u.b) }

// IsZero reports whether the UID has no bytes
func (u UID) IsZero() bool { return len(u.b) == 0 }

// String renders uppercase hex without separators (04 8F 2A 11 -> "048F2A11")
func (u UID) String() string { return strings.ToUpper(hex.EncodeToString(u.b)) }

// Extract recovers the UID from a full response (data + status word)
// the status word is assumed already validated by apdu.CheckStatus
func Extract(resp []byte, mode Mode) (UID, error) {
	if len(resp) < apdu.StatusLen {
		return UID{}, perr.WrapAs(ErrEmptyUID, fmt.Errorf("response has %d bytes", len(resp)))
	}
	data := resp[:len(resp)-apdu.StatusLen]
	if mode != ModeExact {
		data = StripPadding(data)
	}
	if len(data) == 0 {
		return UID{}, ErrEmptyUID
	}
	return New(data), nil
}

// StripPadding returns the prefix of data before its trailing run of zero bytes
func StripPadding(data []byte) []byte {
	n := len(data)
	for n > 0 && data[n-1] == 0x00 {
		n--
	}
	return data[:n]
}

// Pad lays u out the way a reader fills the receive buffer: identifier, zero
// padding up to capacity-2, then 90 00
func Pad(u UID, capacity int) []byte {
	size := max(capacity, u.Len()+apdu.StatusLen)
	out := make([]byte, size)
	copy(out, u.b)
	out[size-2] = apdu.SW1OK
	out[size-1] = apdu.SW2OK
	return out
}
