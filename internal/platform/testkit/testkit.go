// Package testkit provides testing helpers shared by platform packages
package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// MustPanic fails the test unless fn panics; config getters and logger.Panic rely on this
func MustPanic(t testing.TB, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}

// MustContain fails unless out contains needle; the full output is saved to a temp file for inspection
func MustContain(t testing.TB, out, needle string) {
	t.Helper()
	if strings.Contains(out, needle) {
		return
	}
	path := filepath.Join(t.TempDir(), "output.txt")
	_ = os.WriteFile(path, []byte(out), 0o600)
	t.Fatalf("expected output to contain %q\n\nfull output written to %s", needle, path)
}
