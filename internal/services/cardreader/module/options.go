package module

import (
	"time"

	"readnfc/internal/platform/config"
	"readnfc/internal/platform/net/http/bind"
	"readnfc/internal/services/cardreader/domain"
)

// Options controls card reader behavior. Values may also be read from env
type Options struct {
	// Reader picks the watched reader by name; empty watches the first one found
	Reader      string        `json:"reader" validate:"max=256,reader_name"`
	PollTimeout time.Duration `json:"poll_timeout" validate:"min=1ms,max=10m"`
	RetryDelay  time.Duration `json:"retry_delay" validate:"min=1ms,max=1m"`
	StopTimeout time.Duration `json:"stop_timeout" validate:"min=1ms,max=1m"`
	UIDMode     string        `json:"uid_mode" validate:"oneof=strip exact"`

	// Sink receives presence events (MQTT publisher, CLI printer); optional
	Sink domain.EventSink `json:"-" validate:"-"`
}

// FromConfig reads options using CARDREADER_ prefix
func FromConfig(cfg config.Conf) Options {
	cr := cfg.Prefix("CARDREADER_")
	return Options{
		Reader:      cr.MayString("READER", ""),
		PollTimeout: cr.MayDuration("POLL_TIMEOUT", 3*time.Second),
		RetryDelay:  cr.MayDuration("RETRY_DELAY", time.Second),
		StopTimeout: cr.MayDuration("STOP_TIMEOUT", 5*time.Second),
		UIDMode:     cr.MayEnum("UID_MODE", "strip", "strip", "exact"),
	}
}

// Validate checks option ranges
func (o Options) Validate() error { return bind.Struct(o) }

// merge applies non-zero overrides on top of o
func (o Options) merge(over Options) Options {
	if over.Reader != "" {
		o.Reader = over.Reader
	}
	if over.PollTimeout != 0 {
		o.PollTimeout = over.PollTimeout
	}
	if over.RetryDelay != 0 {
		o.RetryDelay = over.RetryDelay
	}
	if over.StopTimeout != 0 {
		o.StopTimeout = over.StopTimeout
	}
	if over.UIDMode != "" {
		o.UIDMode = over.UIDMode
	}
	if over.Sink != nil {
		o.Sink = over.Sink
	}
	return o
}
