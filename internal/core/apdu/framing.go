package apdu

import (
	perr "readnfc/internal/platform/errors"
)

// Protocol is the transport protocol negotiated on connect
// values mirror the pcsc-lite SCARD_PROTOCOL_* bits, the pcsc adapter maps them explicitly
type Protocol uint32

const (
	ProtocolUndefined Protocol = 0x0000
	ProtocolT0        Protocol = 0x0001
	ProtocolT1        Protocol = 0x0002
	ProtocolRaw       Protocol = 0x0004
)

// ProtocolAny is the connect preference: T0 or T1, whichever the card negotiates
const ProtocolAny = ProtocolT0 | ProtocolT1

func (p Protocol) String() string {
	switch p {
	case ProtocolT0:
		return "T0"
	case ProtocolT1:
		return "T1"
	case ProtocolRaw:
		return "RAW"
	case ProtocolAny:
		return "T0|T1"
	case ProtocolUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// Framing names the protocol control information used to frame a transmit
type Framing string

const (
	FramingT0  Framing = "T0"
	FramingT1  Framing = "T1"
	FramingRaw Framing = "RAW"
)

// ErrNoProtocol means the connection came up without a usable protocol
var ErrNoProtocol = perr.New(perr.ErrorCodeDevice, "no transport protocol negotiated")

// SelectFraming maps the negotiated protocol to its framing descriptor
func SelectFraming(p Protocol) (Framing, error) {
	switch p {
	case ProtocolT0:
		return FramingT0, nil
	case ProtocolT1:
		return FramingT1, nil
	case ProtocolRaw:
		return FramingRaw, nil
	default:
		return "", perr.WithOp(ErrNoProtocol, "active protocol "+p.String())
	}
}
