// Package commands defines the bch-nostr CLI and wires dependencies for subcommands.
//
// Commands
//
//   - keys     Print the relay identity and ledger address of the WIF
//   - post     Publish a text note to the relay
//   - signal   Write a MSG NOSTR marker pointing a recipient at an event
//   - send     Post and signal in one step
//   - check    List incoming signals for an address and record them
//   - read     Resolve a signal transaction to its message
//   - fetch    Fetch an event's content from the relay
//   - inbox    Show recorded signals, optionally fetching the unread ones
//
// # Implementation
//
// The root command loads the configuration (defaults, config.toml in the
// home directory, BCH_NOSTR_WIF, then flags) and builds the dependency graph
// before any subcommand runs. Subcommands share it through a package-level
// wire and write results to the command's output stream.
package commands
