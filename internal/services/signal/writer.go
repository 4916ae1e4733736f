package signal

import (
	"context"
	"errors"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// Writer broadcasts signal transactions.
type Writer struct {
	codec  domain.MarkerCodec
	settle time.Duration
	log    log.Logger
}

// NewWriter constructs a Writer. settle is how long to wait for the ledger
// indexer to catch up before the UTXO refresh; zero skips the wait.
func NewWriter(codec domain.MarkerCodec, settle time.Duration, logger log.Logger) *Writer {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Writer{
		codec:  codec,
		settle: settle,
		log:    log.With(logger, "service", "signal"),
	}
}

// WriteSignal points recipient at eventID with a signal transaction paid
// from ledger and returns its txid.
//
// Steps:
//  1. Validate the arguments before any I/O.
//  2. Wait out the settle delay, then refresh the UTXO set; building reads
//     that fresh view.
//  3. Encode the signal transaction. An empty result is an encoding failure.
//  4. Broadcast it.
func (w *Writer) WriteSignal(
	ctx context.Context,
	ledger domain.Ledger,
	recipient domain.Address,
	eventID string,
	subject string,
) (string, error) {
	const op = "signal.WriteSignal"

	switch {
	case ledger == nil:
		return "", domain.Missing(op, "ledger")
	case recipient.Bare() == "":
		return "", domain.Missing(op, "recipient")
	case eventID == "":
		return "", domain.Missing(op, "eventId")
	}

	if w.settle > 0 {
		t := time.NewTimer(w.settle)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", domain.Fail(op, domain.ErrTimeout, ctx.Err())
		case <-t.C:
		}
	}
	if err := ledger.RefreshUnspentOutputs(ctx); err != nil {
		return "", domain.Fail(op, domain.ErrBroadcastFailed, err)
	}

	txHex, err := w.codec.EncodeSignalTransaction(ctx, ledger, eventID, []domain.Address{recipient}, subject)
	if err != nil {
		return "", domain.Fail(op, domain.ErrEncodingFailed, err)
	}
	if txHex == "" {
		return "", domain.Fail(op, domain.ErrEncodingFailed, errors.New("codec returned no transaction"))
	}

	txid, err := ledger.Broadcast(ctx, txHex)
	if err != nil {
		return "", domain.Fail(op, domain.ErrBroadcastFailed, err)
	}
	if txid == "" {
		return "", domain.Fail(op, domain.ErrBroadcastFailed, errors.New("ledger returned no txid"))
	}

	level.Info(w.log).Log("op", op, "txid", txid, "event_id", eventID, "addr", recipient)
	return txid, nil
}

// Compile-time assertion that Writer implements domain.SignalWriter.
var _ domain.SignalWriter = (*Writer)(nil)
