// Package post publishes signed Nostr events.
//
// It builds a NIP-01 event from the caller's content, signs it with the
// secret derived from the ledger key, and publishes it over a connection
// that is always closed before Publish returns.
package post
