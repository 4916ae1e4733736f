package read

import (
	"context"
	"errors"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// Reader resolves signal transactions.
type Reader struct {
	codec   domain.MarkerCodec
	fetcher domain.EventFetcher
	log     log.Logger
}

// NewReader constructs a Reader. A nil logger discards.
func NewReader(codec domain.MarkerCodec, fetcher domain.EventFetcher, logger log.Logger) *Reader {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Reader{
		codec:   codec,
		fetcher: fetcher,
		log:     log.With(logger, "service", "read"),
	}
}

// ExtractEventID scans outputs in order and returns the event id of the last
// one carrying a message signal.
func (r *Reader) ExtractEventID(outputs []domain.Output) (string, error) {
	var eventID string
	for _, out := range outputs {
		payload, ok := r.codec.DecodeMarker(out.ScriptPubKey.Asm, domain.MarkerProtocolID)
		if !ok {
			continue
		}
		if data, ok := r.codec.FilterByKind(payload, domain.MarkerKind); ok && data.Hash != "" {
			eventID = data.Hash
		}
	}
	if eventID == "" {
		return "", domain.Fail("read.ExtractEventID", domain.ErrSignalNotFound, nil)
	}
	return eventID, nil
}

// ResolveFromTransaction fetches txid, extracts its event id and returns the
// event content with the address of the transaction's first input.
func (r *Reader) ResolveFromTransaction(
	ctx context.Context,
	source domain.TransactionSource,
	txid string,
	relayURL string,
) (domain.ReceivedMessage, error) {
	const op = "read.ResolveFromTransaction"

	switch {
	case txid == "":
		return domain.ReceivedMessage{}, domain.Missing(op, "txid")
	case source == nil:
		return domain.ReceivedMessage{}, domain.Missing(op, "ledger")
	}

	txs, err := source.GetTransactions(ctx, []string{txid})
	if err != nil {
		return domain.ReceivedMessage{}, domain.Fail(op, domain.ErrLedgerUnavailable, err)
	}
	if len(txs) == 0 {
		return domain.ReceivedMessage{}, domain.Fail(op, domain.ErrSignalNotFound, errors.New("transaction not found"))
	}
	tx := txs[0]

	var sender domain.Address
	if len(tx.Vin) > 0 {
		sender = tx.Vin[0].Address
	}
	eventID, err := r.ExtractEventID(tx.Vout)
	if err != nil {
		return domain.ReceivedMessage{}, err
	}

	msg, err := r.fetcher.Fetch(ctx, eventID, relayURL)
	if err != nil {
		return domain.ReceivedMessage{}, err
	}

	level.Debug(r.log).Log("op", op, "txid", txid, "event_id", eventID, "addr", sender)
	return domain.ReceivedMessage{
		Message: msg,
		Sender:  sender,
		EventID: eventID,
		TxID:    txid,
	}, nil
}

// Compile-time assertion that Reader implements domain.MarkerReader.
var _ domain.MarkerReader = (*Reader)(nil)
