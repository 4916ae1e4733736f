package signal

import (
	"context"
	"fmt"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// DefaultLimit is the number of signals CheckSignals callers usually want.
const DefaultLimit = 10

// Scanner lists incoming signals.
type Scanner struct {
	codec domain.MarkerCodec
	log   log.Logger
}

// NewScanner constructs a Scanner. A nil logger discards.
func NewScanner(codec domain.MarkerCodec, logger log.Logger) *Scanner {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Scanner{codec: codec, log: log.With(logger, "service", "signal")}
}

// CheckSignals returns the signals addressed to addr, excluding those addr
// sent itself, in the index's order. limit 0 returns all of them; otherwise
// at most the first limit.
func (s *Scanner) CheckSignals(
	ctx context.Context,
	index domain.SignalIndex,
	addr domain.Address,
	limit int,
) ([]domain.MarkerRecord, error) {
	const op = "signal.CheckSignals"

	switch {
	case index == nil:
		return nil, domain.Missing(op, "ledger")
	case addr.Bare() == "":
		return nil, domain.Missing(op, "address")
	case limit < 0:
		return nil, &domain.OpError{Op: op, Field: "limit", Kind: domain.ErrInvalidInput,
			Err: fmt.Errorf("must not be negative, got %d", limit)}
	}

	all, err := s.codec.ListSignalsForAddress(ctx, index, addr, domain.MarkerKind)
	if err != nil {
		return nil, domain.Fail(op, domain.ErrLedgerUnavailable, err)
	}

	incoming := make([]domain.MarkerRecord, 0, len(all))
	for _, r := range all {
		if r.Sender.Equal(addr) {
			continue
		}
		incoming = append(incoming, r)
	}
	if limit > 0 && len(incoming) > limit {
		incoming = incoming[:limit]
	}

	level.Debug(s.log).Log("op", op, "addr", addr, "found", len(all), "returned", len(incoming))
	return incoming, nil
}

// Compile-time assertion that Scanner implements domain.SignalScanner.
var _ domain.SignalScanner = (*Scanner)(nil)
