package interfaces

import (
	"context"

	domaintypes "github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain/types"
)

// TransactionSource looks up verbose transactions by id, in request order.
type TransactionSource interface {
	GetTransactions(ctx context.Context, txids []string) ([]domaintypes.Transaction, error)
}

// SignalIndex can enumerate the transactions touching an address.
type SignalIndex interface {
	TransactionSource

	// History returns the address history, most recent first.
	History(ctx context.Context, addr domaintypes.Address) ([]domaintypes.HistoryEntry, error)
}

// Ledger is the caller-owned handle to a funded wallet on the ledger.
type Ledger interface {
	TransactionSource

	// RefreshUnspentOutputs re-reads the wallet's UTXO set from the indexer.
	RefreshUnspentOutputs(ctx context.Context) error
	// BuildTransaction funds, signs and serialises a transaction paying
	// outputs (in order) from the current UTXO set.
	BuildTransaction(ctx context.Context, outputs []domaintypes.TxOutput) (string, error)
	// Broadcast submits a hex-encoded transaction and returns its txid.
	Broadcast(ctx context.Context, txHex string) (string, error)
}

// LedgerIndex is the read side of the ledger REST endpoint.
type LedgerIndex interface {
	SignalIndex

	UTXOs(ctx context.Context, addr domaintypes.Address) ([]domaintypes.UTXO, error)
	Broadcast(ctx context.Context, txHex string) (string, error)
}
