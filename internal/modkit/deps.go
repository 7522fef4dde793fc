// Package modkit provides module wiring and core deps
package modkit

import (
	"readnfc/internal/adapters/pcsc"
	"readnfc/internal/platform/config"
	"readnfc/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	// PCSC opens smart card contexts; nil means the platform subsystem
	PCSC pcsc.Establisher
}

// Establisher returns the configured PC/SC opener, defaulting to the platform subsystem
func (d Deps) Establisher() pcsc.Establisher {
	if d.PCSC != nil {
		return d.PCSC
	}
	return pcsc.Establish
}
