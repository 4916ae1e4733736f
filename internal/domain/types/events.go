package types

import "github.com/nbd-wtf/go-nostr"

// RelayEvent is a NIP-01 event. Its ID is owned by the signer and must not be
// mutated after signing.
type RelayEvent = nostr.Event

// RelayFilter selects events on a relay subscription.
type RelayFilter = nostr.Filter

// DefaultEventKind is the kind used for posts when the caller does not set
// one (a NIP-01 text note).
const DefaultEventKind = 1

// ReceivedMessage is what a pull by transaction id returns.
type ReceivedMessage struct {
	Message string  `json:"message"`
	Sender  Address `json:"sender"`
	EventID string  `json:"event_id"`
	TxID    string  `json:"txid"`
}

// SendReceipt identifies both halves of a sent message.
type SendReceipt struct {
	EventID string `json:"event_id"`
	TxID    string `json:"txid"`
}

// PublishRequest is the input of an event publish. Kind defaults to
// DefaultEventKind when zero.
type PublishRequest struct {
	Secret         []byte
	PublicIdentity string
	RelayURL       string
	Content        string
	Kind           int
	Tags           nostr.Tags
}

// SendRequest is the input of a full send: post the body, then signal.
type SendRequest struct {
	WIF       string
	Recipient Address
	Subject   string
	Body      string
	Kind      int
	Tags      nostr.Tags
}
