package interfaces

import (
	"context"

	"github.com/nbd-wtf/go-nostr"
)

// RelayDialer opens connections to a single relay endpoint.
type RelayDialer interface {
	Dial(ctx context.Context, url string) (RelayConn, error)
}

// RelayConn is one relay connection, owned by the call that dialed it.
type RelayConn interface {
	Publish(ctx context.Context, event nostr.Event) error
	Subscribe(ctx context.Context, filters nostr.Filters) (RelaySubscription, error)
	// Close releases the connection. It is safe to call more than once.
	Close() error
}

// RelaySubscription delivers events for one REQ.
type RelaySubscription interface {
	Events() <-chan *nostr.Event
	// EndOfStoredEvents is signalled once the relay has sent all stored matches.
	EndOfStoredEvents() <-chan struct{}
	Close()
}

// EventSigner computes the id and signature of an event with a raw secret.
type EventSigner interface {
	Sign(event *nostr.Event, secret []byte) error
}
