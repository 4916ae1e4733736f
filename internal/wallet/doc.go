// Package wallet is a minimal single-address Bitcoin Cash wallet. It keeps
// a snapshot of the address's unspent outputs, funds and signs P2PKH
// transactions from it, and forwards reads and broadcasts to a
// domain.LedgerIndex.
//
// Inputs are signed with SIGHASH_ALL|FORKID over the BIP143 digest, which
// is what the Bitcoin Cash network requires after the 2017 fork.
package wallet
