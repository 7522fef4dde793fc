// Package apdu builds the command unit sent to the card and checks what comes back
//
// Only one command is spoken: the PC/SC "get data" pseudo APDU that asks the reader
// for the UID of the card in its field (FF CA 00 00 00)
package apdu

import (
	"fmt"

	perr "readnfc/internal/platform/errors"

	kapdu "github.com/status-im/keycard-go/apdu"
)

const (
	// ResponseCapacity is the receive buffer size for every exchange
	ResponseCapacity = 256

	// StatusLen is the size of the SW1 SW2 trailer
	StatusLen = 2

	// SW1OK and SW2OK form the only accepted status word (90 00)
	SW1OK byte = 0x90
	SW2OK byte = 0x00
)

const (
	claPCSC   byte = 0xFF
	insGetUID byte = 0xCA
)

var (
	// ErrShortResponse means the reader answered with fewer bytes than a status word
	ErrShortResponse = perr.New(perr.ErrorCodeDevice, "response shorter than status word")

	// ErrBadStatusWord is matched by every *StatusError
	ErrBadStatusWord = perr.New(perr.ErrorCodeCard, "bad status word")

	getUID = mustSerialize(kapdu.NewCommand(claPCSC, insGetUID, 0x00, 0x00, nil), 0x00)
)

// GetUID returns a fresh copy of FF CA 00 00 00
func GetUID() []byte {
	out := make([]byte, len(getUID))
	copy(out, getUID)
	return out
}

func mustSerialize(cmd *kapdu.Command, le byte) []byte {
	cmd.SetLe(le)
	b, err := cmd.Serialize()
	if err != nil {
		panic(fmt.Sprintf("apdu: serialize %X: %v", b, err))
	}
	return b
}

// StatusError carries a status word other than 90 00
type StatusError struct {
	SW1 byte
	SW2 byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("card returned status %02X%02X", e.SW1, e.SW2)
}

// Unwrap exposes ErrBadStatusWord so errors.Is and the error code mapping work
func (e *StatusError) Unwrap() error { return ErrBadStatusWord }

// CheckStatus validates the trailer of a raw response
// no retry is attempted here or by callers, a bad status word ends the exchange
func CheckStatus(resp []byte) error {
	if len(resp) < StatusLen {
		return perr.WrapAs(ErrShortResponse, fmt.Errorf("got %d bytes", len(resp)))
	}
	r, err := kapdu.ParseResponse(resp)
	if err != nil {
		return perr.WrapAs(ErrShortResponse, err)
	}
	if r.Sw1 != SW1OK || r.Sw2 != SW2OK {
		return &StatusError{SW1: r.Sw1, SW2: r.Sw2}
	}
	return nil
}
