// Package config reads settings from environment variables, optionally seeded from a YAML file.
// Malformed optional values fall back to their default with a warning; a missing or malformed
// required value panics, which only happens while wiring at startup.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"readnfc/internal/platform/config/raw"
	"readnfc/internal/platform/logger"
)

// Conf is a view over the environment under a key prefix, e.g. New().Prefix("CARDREADER_")
type Conf struct{ prefix string }

// New returns the unprefixed view
func New() Conf { return Conf{} }

// Prefix narrows the view; prefixes concatenate
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

// lookup returns the trimmed value and whether it is non-empty
func (c Conf) lookup(k string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(c.key(k)))
	return v, v != ""
}

// Load applies a YAML file to the environment without overriding variables already set; "" is a no-op
// nothing is logged before the file is in place, so LOG_* keys in it take effect
func Load(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	keys, err := raw.LoadFile(path)
	if err != nil {
		return err
	}
	logger.Get().Debug().Str("path", path).Strs("keys", keys).Msg("config file loaded")
	return nil
}

// MustString returns the value of key or panics when it is unset or blank
func (c Conf) MustString(key string) string {
	v, ok := c.lookup(key)
	if !ok {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required env")
	}
	return v
}

// MustPort returns a listen address like ":4000"; the value must be a port in 1..65535
func (c Conf) MustPort(key string) string {
	s := c.MustString(key)
	if p, err := strconv.Atoi(s); err != nil || p < 1 || p > 65535 {
		logger.Get().Panic().Str("key", c.key(key)).Str("value", s).Msg("invalid TCP port; expected 1..65535")
	}
	return ":" + s
}

// MayString returns the value of key, or def when unset or blank
func (c Conf) MayString(key, def string) string {
	if v, ok := c.lookup(key); ok {
		return v
	}
	return def
}

// MayInt parses key as an int
func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

// MayBool parses key with strconv.ParseBool
func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration parses key with time.ParseDuration, e.g. "1500ms"
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayCSV splits key on commas, dropping blank items; def when nothing remains
func (c Conf) MayCSV(key string, def []string) []string {
	v, ok := c.lookup(key)
	if !ok {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the entry of allowed matching the value, ignoring case; def when unset
// a value outside allowed panics
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	i := slices.IndexFunc(allowed, func(a string) bool { return strings.EqualFold(a, v) })
	if i < 0 {
		logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	}
	return allowed[i]
}

// may parses key with parse, warning and returning def when the value does not parse
func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s, ok := c.lookup(key)
	if !ok {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Err(err).Str("key", c.key(key)).Str("value", s).
			Str("default", fmt.Sprint(def)).Msg("invalid value; using default")
		return def
	}
	return v
}
