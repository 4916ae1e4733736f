package interfaces

import domaintypes "github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain/types"

// InboxStore persists the signals seen for an address and which were read.
type InboxStore interface {
	// MergeSignals records new signals for addr, keeping existing read marks.
	MergeSignals(addr domaintypes.Address, records []domaintypes.MarkerRecord) (added int, err error)
	// MarkRead flags every entry for txid as read, whichever address it was
	// recorded under, and returns how many it changed.
	MarkRead(txid string) (n int, err error)
	// ListInbox returns the stored entries for addr, newest first.
	ListInbox(addr domaintypes.Address) ([]domaintypes.InboxEntry, error)
}
