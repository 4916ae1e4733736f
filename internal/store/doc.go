// Package store provides file-based persistence for bch-nostr's local state.
//
// State is serialised as JSON under the user's configured home directory
// and replaced atomically on every write. All methods are safe for
// concurrent use within one process.
//
// The package includes:
//   - The inbox (InboxFileStore): signals seen per address and which of
//     them have been read.
package store
