package types

// KeyPair is the secret extracted from a WIF key together with the Nostr
// identity derived from it. It is computed per call and never persisted.
type KeyPair struct {
	// Secret is the 32-byte secp256k1 scalar (bytes [1,33) of the WIF payload).
	Secret []byte
	// PublicIdentity is the hex x-only (BIP340) public key used on relays.
	PublicIdentity string
	// Compressed reports whether the WIF flagged a compressed ledger pubkey.
	Compressed bool
}
