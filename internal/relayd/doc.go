// Package relayd runs the in-memory Nostr relay used by bch-nostr during
// development and tests. It stores published events and serves them to
// subscribers until the process exits.
//
// Websocket protocol (NIP-01)
//
//	["EVENT", <event>]
//	    Verify id and signature, store the event, reply ["OK", id, ok, reason]
//	    and forward it to every live subscription it matches.
//
//	["REQ", <subscription id>, <filter>...]
//	    Send every stored event matching any filter, then ["EOSE", id]. The
//	    subscription stays live until CLOSE or disconnect.
//
//	["CLOSE", <subscription id>]
//	    Drop the subscription.
//
// HTTP
//
//	GET / with Accept: application/nostr+json
//	    NIP-11 relay information document.
//
//	GET /metrics
//	    Prometheus counters for events, subscriptions and connections.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Events are served in the order they were first stored.
//   - Cross-origin requests are allowed so browser clients can connect.
//
// The relay never sees secrets; it only stores signed public events.
package relayd
