package service

import (
	"context"
	"errors"
	"time"

	"readnfc/internal/adapters/pcsc"
	"readnfc/internal/core/uid"
	perr "readnfc/internal/platform/errors"
	"readnfc/internal/platform/logger"
	"readnfc/internal/services/cardreader/domain"
)

// ReadUIDBlocking waits up to timeout for a card in reader and reads its UID
// an empty reader picks the first attached one; timeout <= 0 uses the configured default
// no APDU is sent unless a card showed up in time
func (s *Svc) ReadUIDBlocking(ctx context.Context, reader domain.Reader, timeout time.Duration) (uid.UID, error) {
	if timeout <= 0 {
		timeout = s.cfg.PollTimeout
	}
	pc, err := s.establish()
	if err != nil {
		return uid.UID{}, perr.WrapAs(domain.ErrNoReaderFound, err)
	}
	defer func() { _ = pc.Release() }()

	readers, err := listReaders(pc)
	if err != nil {
		return uid.UID{}, err
	}
	target, ok := MatchReader(readers, string(reader))
	if !ok {
		return uid.UID{}, perr.WithOp(domain.ErrNoReaderFound, "match "+string(reader))
	}

	ctx = logger.WithReader(ctx, string(target))
	log := logger.Enrich(ctx, s.log)

	stop := context.AfterFunc(ctx, func() { _ = pc.Cancel() })
	defer stop()

	if err := waitForCard(ctx, pc, target, timeout); err != nil {
		log.Debug().Err(err).Dur("timeout", timeout).Msg("no card read")
		return uid.UID{}, err
	}
	id, err := s.x.ReadUID(pc, target)
	if err != nil {
		return uid.UID{}, err
	}
	log.Debug().Str("uid", id.String()).Msg("card read")
	return id, nil
}

// waitForCard blocks until reader reports a present card, the deadline passes or ctx ends
func waitForCard(ctx context.Context, pc pcsc.Context, reader domain.Reader, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	states := []pcsc.ReaderState{{Reader: string(reader), Current: pcsc.StateEmpty}}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return domain.ErrTimeout
		}

		err := pc.GetStatusChange(states, remaining)
		switch {
		case err == nil:
		case errors.Is(err, pcsc.ErrTimeout):
			return perr.WrapAs(domain.ErrTimeout, err)
		case errors.Is(err, pcsc.ErrCancelled):
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			continue
		case errors.Is(err, pcsc.ErrUnknownReader):
			return perr.WrapAs(domain.ErrNoReaderFound, err)
		default:
			return perr.WrapAs(domain.ErrMonitor, err)
		}

		st := states[0].Event
		if st.Has(pcsc.StatePresent) && !st.Has(pcsc.StateUnavailable) {
			return nil
		}
		states[0].Current = st &^ pcsc.StateChanged
	}
}
