// Package signal writes and scans message signals on the ledger.
//
// Writer refreshes the funding wallet's UTXO view, has the marker codec
// build a transaction that points a recipient at a relay event, and
// broadcasts it. Scanner lists the signals addressed to an address,
// dropping the ones it sent itself.
package signal
