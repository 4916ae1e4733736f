// Package crypto exposes the key handling used by bch-nostr.
//
// Contents
//
//   - WIF decoding and Nostr identity derivation (DeriveKeyPair)
//   - Ledger public key serialisation and HASH160 for addresses
//     (LedgerPublicKey, Hash160)
//   - NIP-01 event signing with a raw secret (Signer)
//   - Best-effort memory wiping for secrets (Wipe)
//
// # Notes
//
// A WIF key and a Nostr identity share the same secp256k1 scalar: the relay
// identity is the BIP340 x-only encoding of the ledger public key. Derivation
// is a pure function of the WIF and nothing is cached.
package crypto
