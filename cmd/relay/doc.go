// Package main runs the in-memory Nostr relay used by bch-nostr during
// development and tests. See package internal/relayd for the protocol.
//
// Usage
//
//	relay [--addr :7447] [--verbose]
//
// The relay listens until interrupted. All state is held in memory and lost
// on exit. GET /metrics serves Prometheus counters.
package main
