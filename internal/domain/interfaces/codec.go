package interfaces

import (
	"context"

	domaintypes "github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain/types"
)

// MarkerCodec reads and writes message-signal markers on the ledger.
type MarkerCodec interface {
	// DecodeMarker returns the payload of an OP_RETURN output tagged with
	// protocolID. ok is false for any other script.
	DecodeMarker(asm, protocolID string) (payload string, ok bool)
	// FilterByKind extracts the hash and subject from a payload of the given kind.
	FilterByKind(payload, kind string) (domaintypes.MarkerData, bool)
	// EncodeSignalTransaction builds a signed transaction from ledger embedding
	// eventID and subject and paying each recipient. An empty result means no
	// transaction could be built.
	EncodeSignalTransaction(
		ctx context.Context,
		ledger Ledger,
		eventID string,
		recipients []domaintypes.Address,
		subject string,
	) (string, error)
	// ListSignalsForAddress returns every marker of kind addressed to addr, in
	// the index's history order.
	ListSignalsForAddress(
		ctx context.Context,
		index SignalIndex,
		addr domaintypes.Address,
		kind string,
	) ([]domaintypes.MarkerRecord, error)
}
