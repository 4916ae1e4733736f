package crypto

import (
	"encoding/hex"
	"fmt"
	"runtime"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

const (
	// SecretBytes is the size of a secp256k1 secret scalar.
	SecretBytes = 32

	// compressMagic follows the secret in WIFs for compressed public keys.
	compressMagic = 0x01
)

// DeriveKeyPair decodes a WIF private key and derives the relay identity.
//
// The decoded WIF payload is version(1) || secret(32) || [0x01] || checksum(4);
// the secret is bytes [1,33) of that payload.
func DeriveKeyPair(wif string) (domain.KeyPair, error) {
	const op = "crypto.DeriveKeyPair"

	wif = strings.TrimSpace(wif)
	if wif == "" {
		return domain.KeyPair{}, domain.Missing(op, "wif")
	}

	// CheckDecode strips the version byte and verifies the checksum.
	body, _, err := base58.CheckDecode(wif)
	if err != nil {
		return domain.KeyPair{}, domain.Fail(op, domain.ErrInvalidInput, fmt.Errorf("decode wif: %w", err))
	}
	defer Wipe(body)
	if len(body) < SecretBytes {
		return domain.KeyPair{}, domain.Fail(op, domain.ErrInvalidInput,
			fmt.Errorf("wif payload has %d bytes, want at least %d", len(body), SecretBytes))
	}

	secret := make([]byte, SecretBytes)
	copy(secret, body[:SecretBytes])

	priv, _ := btcec.PrivKeyFromBytes(secret)
	return domain.KeyPair{
		Secret:         secret,
		PublicIdentity: hex.EncodeToString(schnorr.SerializePubKey(priv.PubKey())),
		Compressed:     len(body) == SecretBytes+1 && body[SecretBytes] == compressMagic,
	}, nil
}

// PrivateKey returns the secp256k1 key for kp.
func PrivateKey(kp domain.KeyPair) (*btcec.PrivateKey, error) {
	if len(kp.Secret) != SecretBytes {
		return nil, fmt.Errorf("secret has %d bytes, want %d", len(kp.Secret), SecretBytes)
	}
	priv, _ := btcec.PrivKeyFromBytes(kp.Secret)
	return priv, nil
}

// LedgerPublicKey serialises the ledger public key of kp, compressed or not
// as the WIF requested.
func LedgerPublicKey(kp domain.KeyPair) ([]byte, error) {
	priv, err := PrivateKey(kp)
	if err != nil {
		return nil, err
	}
	if kp.Compressed {
		return priv.PubKey().SerializeCompressed(), nil
	}
	return priv.PubKey().SerializeUncompressed(), nil
}

// Wipe clears a secret once the caller is done with it. The Go runtime may
// still hold copies, so this narrows exposure rather than ruling it out.
func Wipe(secret []byte) {
	clear(secret)
	runtime.KeepAlive(secret)
}
