package service

import (
	"context"
	"errors"
	"strings"

	"readnfc/internal/adapters/pcsc"
	perr "readnfc/internal/platform/errors"
	"readnfc/internal/services/cardreader/domain"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Discovery enumerates readers through a short-lived context per call
type Discovery struct {
	establish pcsc.Establisher
}

// NewDiscovery builds a Discovery over establish
func NewDiscovery(establish pcsc.Establisher) *Discovery {
	return &Discovery{establish: establish}
}

// ListReaders returns the attached readers in subsystem order
func (d *Discovery) ListReaders(ctx context.Context) ([]domain.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pc, err := d.establish()
	if err != nil {
		return nil, perr.WrapAs(domain.ErrNoReaderFound, err)
	}
	defer func() { _ = pc.Release() }()
	return listReaders(pc)
}

// SelectReader returns the first attached reader
func (d *Discovery) SelectReader(ctx context.Context) (domain.Reader, error) {
	return d.ResolveReader(ctx, "")
}

// ResolveReader picks the reader matching query
// an exact name wins, then a case-folded match, then a case-folded substring
func (d *Discovery) ResolveReader(ctx context.Context, query string) (domain.Reader, error) {
	readers, err := d.ListReaders(ctx)
	if err != nil {
		return "", err
	}
	r, ok := MatchReader(readers, query)
	if !ok {
		return "", perr.WithOp(domain.ErrNoReaderFound, "match "+query)
	}
	return r, nil
}

func listReaders(pc pcsc.Context) ([]domain.Reader, error) {
	names, err := pc.ListReaders()
	if err != nil {
		if errors.Is(err, pcsc.ErrNoReaders) {
			return nil, domain.ErrNoReaderFound
		}
		return nil, perr.WrapAs(domain.ErrNoReaderFound, err)
	}
	if len(names) == 0 {
		return nil, domain.ErrNoReaderFound
	}
	out := make([]domain.Reader, len(names))
	for i, n := range names {
		out[i] = domain.Reader(n)
	}
	return out, nil
}

// MatchReader resolves query against readers; empty query returns the first reader
func MatchReader(readers []domain.Reader, query string) (domain.Reader, bool) {
	if len(readers) == 0 {
		return "", false
	}
	if strings.TrimSpace(query) == "" {
		return readers[0], true
	}
	for _, r := range readers {
		if string(r) == query {
			return r, true
		}
	}
	q := foldName(query)
	for _, r := range readers {
		if foldName(string(r)) == q {
			return r, true
		}
	}
	for _, r := range readers {
		if strings.Contains(foldName(string(r)), q) {
			return r, true
		}
	}
	return "", false
}

// foldName normalizes a reader name for comparison; drivers disagree on case and composition
func foldName(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}
