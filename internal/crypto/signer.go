package crypto

import (
	"encoding/hex"
	"fmt"

	"github.com/nbd-wtf/go-nostr"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// Signer signs NIP-01 events with go-nostr. The zero value is ready to use.
type Signer struct{}

// Sign sets event.PubKey, event.ID and event.Sig from secret.
func (Signer) Sign(event *nostr.Event, secret []byte) error {
	if len(secret) != SecretBytes {
		return fmt.Errorf("secret has %d bytes, want %d", len(secret), SecretBytes)
	}
	sk := hex.EncodeToString(secret)
	return event.Sign(sk)
}

// Compile-time assertion that Signer implements domain.EventSigner.
var _ domain.EventSigner = Signer{}
