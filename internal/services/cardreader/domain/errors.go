package domain

import (
	"readnfc/internal/core/apdu"
	"readnfc/internal/core/uid"
	perr "readnfc/internal/platform/errors"
)

// Failure taxonomy of the card reader service; match with errors.Is
var (
	ErrNoReaderFound  = perr.New(perr.ErrorCodeUnavailable, "no card reader found")
	ErrConnectFailed  = perr.New(perr.ErrorCodeDevice, "connect to card failed")
	ErrTransmitFailed = perr.New(perr.ErrorCodeDevice, "transmit to card failed")
	ErrBadStatusWord  = apdu.ErrBadStatusWord
	ErrEmptyUID       = uid.ErrEmptyUID
	ErrTimeout        = perr.New(perr.ErrorCodeTimeout, "no card presented before timeout")
	ErrMonitor        = perr.New(perr.ErrorCodeDevice, "card monitor error")
)
