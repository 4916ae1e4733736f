// Package message composes the signal/post/read protocol into the
// operations the CLI exposes.
//
// Send publishes the body to the relay and then signals the recipient on
// the ledger. FetchByTxid resolves a signal to its message. ScanForSignals
// lists incoming signals and records them in the local inbox, which
// FetchUnread drains with a small pool of concurrent relay fetches.
package message
