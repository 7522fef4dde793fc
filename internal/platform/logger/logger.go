// Package logger owns the process root zerolog logger and the context fields
// (request id, reader) that request-scoped log lines pick up
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"readnfc/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the logger type passed around in Deps
type Logger = zerolog.Logger

// Options shapes the root logger
type Options struct {
	// Level is a zerolog level name; unknown or empty means debug
	Level string
	// Format "console" writes human readable lines, anything else JSON
	Format    string
	Service   string
	Component string
	// Writer defaults to stdout
	Writer     io.Writer
	WithCaller bool
	// SampleEvery > 1 keeps one event in N
	SampleEvery  int
	StaticFields map[string]string
}

// FromEnv reads LOG_* through raw config, which does not log
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:       rc.Get("LEVEL", "debug"),
		Format:      strings.ToLower(rc.Get("FORMAT", "console")),
		Service:     rc.Get("SERVICE", ""),
		Component:   rc.Get("COMPONENT", ""),
		WithCaller:  rc.GetBool("CALLER", false),
		SampleEvery: rc.GetInt("SAMPLE_EVERY", 0),
	}
}

var (
	once sync.Once
	root atomic.Pointer[Logger]
)

// Init builds the root logger from opt; only the first call has an effect
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := opt.build()
		root.Store(&l)
	})
}

// Get returns the root logger, initialising it from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// Named is a child of the root logger tagged with component
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

func (o Options) build() Logger {
	c := zerolog.New(o.writer()).Level(parseLevel(o.Level)).With().Timestamp()
	if bi, ok := debug.ReadBuildInfo(); ok {
		c = c.Str("go_version", bi.GoVersion)
	}
	fields := map[string]string{"service": o.Service, "component": o.Component}
	for k, v := range o.StaticFields {
		fields[k] = v
	}
	for k, v := range fields {
		if v != "" {
			c = c.Str(k, v)
		}
	}
	if o.WithCaller {
		c = c.Caller()
	}

	l := c.Logger()
	if o.SampleEvery > 1 {
		l = l.Sample(&zerolog.BasicSampler{N: uint32(o.SampleEvery)})
	}
	return l
}

func (o Options) writer() io.Writer {
	var w io.Writer = os.Stdout
	if o.Writer != nil {
		w = o.Writer
	}
	if o.Format == "console" {
		return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return w
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.DebugLevel
	}
	return lvl
}

type ctxKey uint8

const (
	keyRequestID ctxKey = iota
	keyReader
)

// WithRequest stores the request id for C and Enrich; an empty id leaves ctx as is
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, keyRequestID, reqID)
}

// WithReader stores the reader an operation targets; an empty name leaves ctx as is
func WithReader(ctx context.Context, reader string) context.Context {
	if reader == "" {
		return ctx
	}
	return context.WithValue(ctx, keyReader, reader)
}

// C is Enrich applied to the root logger
func C(ctx context.Context) *Logger {
	l := Enrich(ctx, *Get())
	return &l
}

// Enrich returns l with the request_id and reader fields found in ctx
func Enrich(ctx context.Context, l Logger) Logger {
	c := l.With()
	if s, _ := ctx.Value(keyRequestID).(string); s != "" {
		c = c.Str("request_id", s)
	}
	if s, _ := ctx.Value(keyReader).(string); s != "" {
		c = c.Str("reader", s)
	}
	return c.Logger()
}
