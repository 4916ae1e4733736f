package interfaces

import (
	"context"

	domaintypes "github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain/types"
)

// EventPublisher signs and publishes a relay event.
type EventPublisher interface {
	Publish(ctx context.Context, req domaintypes.PublishRequest) (eventID string, err error)
}

// EventFetcher retrieves one event's content from a relay.
type EventFetcher interface {
	Fetch(ctx context.Context, eventID, relayURL string) (string, error)
}

// SignalWriter writes a marker transaction for a recipient.
type SignalWriter interface {
	WriteSignal(
		ctx context.Context,
		ledger Ledger,
		recipient domaintypes.Address,
		eventID string,
		subject string,
	) (txid string, err error)
}

// SignalScanner lists incoming signals for an address.
type SignalScanner interface {
	CheckSignals(
		ctx context.Context,
		index SignalIndex,
		addr domaintypes.Address,
		limit int,
	) ([]domaintypes.MarkerRecord, error)
}

// MarkerReader resolves a signal transaction to its message.
type MarkerReader interface {
	ExtractEventID(outputs []domaintypes.Output) (string, error)
	ResolveFromTransaction(
		ctx context.Context,
		source TransactionSource,
		txid string,
		relayURL string,
	) (domaintypes.ReceivedMessage, error)
}

// MessageService composes the protocol into user-facing operations.
type MessageService interface {
	Send(ctx context.Context, req domaintypes.SendRequest) (domaintypes.SendReceipt, error)
	FetchByTxid(ctx context.Context, txid string) (domaintypes.ReceivedMessage, error)
	ScanForSignals(ctx context.Context, addr domaintypes.Address, limit int) ([]domaintypes.MarkerRecord, error)
}
