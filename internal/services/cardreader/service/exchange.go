package service

import (
	"errors"
	"fmt"

	"readnfc/internal/adapters/pcsc"
	"readnfc/internal/core/apdu"
	"readnfc/internal/core/uid"
	"readnfc/internal/platform/logger"
	perr "readnfc/internal/platform/errors"
	"readnfc/internal/services/cardreader/domain"
)

// Transceiver performs the connect, transmit, check and disconnect sequence
// it holds no connection between calls
type Transceiver struct {
	mode uid.Mode
	log  logger.Logger
}

// NewTransceiver builds a Transceiver extracting UIDs with mode
func NewTransceiver(mode uid.Mode, log logger.Logger) Transceiver {
	return Transceiver{mode: mode, log: log}
}

// Exchange sends cmd to the card in reader and returns the full response including the status word
// the card is disconnected on every path
func (x Transceiver) Exchange(pc pcsc.Context, reader domain.Reader, cmd []byte) ([]byte, error) {
	card, err := pc.Connect(string(reader), apdu.ProtocolAny)
	if err != nil {
		return nil, perr.WrapAs(domain.ErrConnectFailed, err)
	}
	defer func() {
		if derr := card.Disconnect(); derr != nil {
			x.log.Debug().Err(derr).Str("reader", string(reader)).Msg("disconnect failed")
		}
	}()

	framing, err := apdu.SelectFraming(card.ActiveProtocol())
	if err != nil {
		return nil, perr.WrapAs(domain.ErrConnectFailed, err)
	}

	resp, err := card.Transmit(cmd)
	if err != nil {
		return nil, perr.WrapAs(domain.ErrTransmitFailed, err)
	}
	if len(resp) > apdu.ResponseCapacity {
		return nil, perr.WrapAs(domain.ErrTransmitFailed,
			fmt.Errorf("response of %d bytes exceeds %d byte buffer", len(resp), apdu.ResponseCapacity))
	}
	if err := apdu.CheckStatus(resp); err != nil {
		if errors.Is(err, apdu.ErrShortResponse) {
			return nil, perr.WrapAs(domain.ErrTransmitFailed, err)
		}
		return nil, err
	}

	x.log.Trace().
		Str("reader", string(reader)).
		Str("framing", string(framing)).
		Int("resp_len", len(resp)).
		Msg("apdu exchanged")
	return resp, nil
}

// ReadUID sends GET UID and extracts the identifier; both read paths go through here
func (x Transceiver) ReadUID(pc pcsc.Context, reader domain.Reader) (uid.UID, error) {
	resp, err := x.Exchange(pc, reader, apdu.GetUID())
	if err != nil {
		return uid.UID{}, err
	}
	return uid.Extract(resp, x.mode)
}

// ReadUIDFresh opens its own context for one read and releases it afterwards
// the monitor uses this so reads never share the context the watcher blocks on
func (x Transceiver) ReadUIDFresh(establish pcsc.Establisher, reader domain.Reader) (uid.UID, error) {
	pc, err := establish()
	if err != nil {
		return uid.UID{}, perr.WrapAs(domain.ErrConnectFailed, err)
	}
	defer func() { _ = pc.Release() }()
	return x.ReadUID(pc, reader)
}
