// Package strings holds the string and slice helpers shared by wiring and adapters
package strings

import std "strings"

// IfEmpty returns def when in has no elements
func IfEmpty[T any](in, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// MustString panics with "<name> is required" when s is blank
func MustString(s, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix turns " nfc/ " into "/nfc"; a prefix that is only slashes or blanks panics
func MustPrefix(s string) string {
	s = std.Trim(s, " /")
	if s == "" {
		panic("root path is required")
	}
	return "/" + s
}

// ReplaceAny maps every rune of s that is in chars, or is a control character, to repl
// MQTT topic segments use it to neutralise wildcard and separator runes in reader names
func ReplaceAny(s, chars string, repl rune) string {
	return std.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || std.ContainsRune(chars, r) {
			return repl
		}
		return r
	}, s)
}
