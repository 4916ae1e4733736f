// Package relay provides a go-nostr implementation of the domain.RelayDialer
// interface used by bch-nostr.
//
// A relay is a NIP-01 websocket endpoint that stores signed events and serves
// them to subscribers. This package offers a concrete client for:
//   - Connecting to one relay endpoint.
//   - Publishing a signed event and waiting for the relay's OK.
//   - Opening a REQ subscription and receiving events and EOSE.
//   - Closing subscriptions and connections exactly once.
//
// Every connection belongs to the call that dialed it; nothing here pools or
// shares connections. Transport failures are wrapped with the relay URL to aid
// diagnostics.
package relay
