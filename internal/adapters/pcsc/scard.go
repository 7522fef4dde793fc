package pcsc

import (
	"errors"
	"time"

	"readnfc/internal/core/apdu"
	perr "readnfc/internal/platform/errors"

	"github.com/ebfe/scard"
)

// Establish opens a system scope context on the platform subsystem
func Establish() (Context, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, mapErr(err)
	}
	return &scardContext{ctx: ctx}, nil
}

var _ Establisher = Establish

type scardContext struct {
	ctx *scard.Context
}

func (c *scardContext) ListReaders() ([]string, error) {
	names, err := c.ctx.ListReaders()
	if err != nil {
		return nil, mapErr(err)
	}
	return names, nil
}

func (c *scardContext) Connect(reader string, protocols apdu.Protocol) (Card, error) {
	card, err := c.ctx.Connect(reader, scard.ShareShared, toScardProtocol(protocols))
	if err != nil {
		return nil, mapErr(err)
	}
	return &scardCard{card: card}, nil
}

func (c *scardContext) GetStatusChange(states []ReaderState, timeout time.Duration) error {
	rs := make([]scard.ReaderState, len(states))
	for i, s := range states {
		rs[i] = scard.ReaderState{Reader: s.Reader, CurrentState: scard.StateFlag(s.Current)}
	}
	if err := c.ctx.GetStatusChange(rs, timeout); err != nil {
		return mapErr(err)
	}
	for i := range rs {
		states[i].Event = State(rs[i].EventState)
	}
	return nil
}

func (c *scardContext) Cancel() error  { return mapErr(c.ctx.Cancel()) }
func (c *scardContext) Release() error { return mapErr(c.ctx.Release()) }

type scardCard struct {
	card *scard.Card
}

func (c *scardCard) ActiveProtocol() apdu.Protocol {
	st, err := c.card.Status()
	if err != nil {
		return apdu.ProtocolUndefined
	}
	return fromScardProtocol(st.ActiveProtocol)
}

func (c *scardCard) Transmit(cmd []byte) ([]byte, error) {
	rsp, err := c.card.Transmit(cmd)
	if err != nil {
		return nil, mapErr(err)
	}
	return rsp, nil
}

func (c *scardCard) Disconnect() error { return mapErr(c.card.Disconnect(scard.LeaveCard)) }

func toScardProtocol(p apdu.Protocol) scard.Protocol {
	var out scard.Protocol
	if p&apdu.ProtocolT0 != 0 {
		out |= scard.ProtocolT0
	}
	if p&apdu.ProtocolT1 != 0 {
		out |= scard.ProtocolT1
	}
	if p&apdu.ProtocolRaw != 0 {
		out |= scard.ProtocolRaw
	}
	return out
}

func fromScardProtocol(p scard.Protocol) apdu.Protocol {
	switch p {
	case scard.ProtocolT0:
		return apdu.ProtocolT0
	case scard.ProtocolT1:
		return apdu.ProtocolT1
	case scard.ProtocolRaw:
		return apdu.ProtocolRaw
	default:
		return apdu.ProtocolUndefined
	}
}

// mapErr folds scard return codes into the package sentinels, keeping the original as cause
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var code scard.Error
	if !errors.As(err, &code) {
		return err
	}
	switch code {
	case scard.ErrTimeout:
		return perr.WrapAs(ErrTimeout, err)
	case scard.ErrCancelled:
		return perr.WrapAs(ErrCancelled, err)
	case scard.ErrNoReadersAvailable:
		return perr.WrapAs(ErrNoReaders, err)
	case scard.ErrUnknownReader:
		return perr.WrapAs(ErrUnknownReader, err)
	case scard.ErrNoService, scard.ErrServiceStopped:
		return perr.WrapAs(ErrNoService, err)
	case scard.ErrReaderUnavailable:
		return perr.WrapAs(ErrReaderUnavailable, err)
	case scard.ErrNoSmartcard, scard.ErrRemovedCard:
		return perr.WrapAs(ErrNoCard, err)
	default:
		return perr.Wrap(err, perr.ErrorCodeDevice, "pcsc")
	}
}
