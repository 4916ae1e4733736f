// Package app wires application dependencies for the CLI.
//
// It loads Config from defaults, the TOML file in the home directory and
// the environment, then builds the ledger client, relay transport, marker
// codec, inbox store and protocol services, exposing them via the Wire
// struct for commands to use.
package app
