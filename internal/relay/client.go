package relay

import (
	"context"
	"sync"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/nbd-wtf/go-nostr"
	"github.com/pkg/errors"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// Dialer opens go-nostr relay connections.
type Dialer struct {
	log log.Logger
}

// NewDialer returns a Dialer logging to logger (nil discards).
func NewDialer(logger log.Logger) *Dialer {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Dialer{log: logger}
}

// Dial connects to the relay at url.
func (d *Dialer) Dial(ctx context.Context, url string) (domain.RelayConn, error) {
	r, err := nostr.RelayConnect(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "relay: connect %s", url)
	}
	logger := log.With(d.log, "relay", url)
	level.Debug(logger).Log("event", "connected")
	return &conn{relay: r, url: url, log: logger}, nil
}

type conn struct {
	relay *nostr.Relay
	url   string
	log   log.Logger

	once     sync.Once
	closeErr error
}

func (c *conn) Publish(ctx context.Context, event nostr.Event) error {
	if err := c.relay.Publish(ctx, event); err != nil {
		return errors.Wrapf(err, "relay: publish %s to %s", event.ID, c.url)
	}
	level.Debug(c.log).Log("event", "published", "event_id", event.ID)
	return nil
}

func (c *conn) Subscribe(ctx context.Context, filters nostr.Filters) (domain.RelaySubscription, error) {
	sub, err := c.relay.Subscribe(ctx, filters)
	if err != nil {
		return nil, errors.Wrapf(err, "relay: subscribe on %s", c.url)
	}
	return &subscription{sub: sub}, nil
}

func (c *conn) Close() error {
	c.once.Do(func() {
		if err := c.relay.Close(); err != nil {
			c.closeErr = errors.Wrapf(err, "relay: close %s", c.url)
		}
		level.Debug(c.log).Log("event", "closed")
	})
	return c.closeErr
}

type subscription struct {
	sub  *nostr.Subscription
	once sync.Once
}

func (s *subscription) Events() <-chan *nostr.Event { return s.sub.Events }

func (s *subscription) EndOfStoredEvents() <-chan struct{} { return s.sub.EndOfStoredEvents }

func (s *subscription) Close() { s.once.Do(s.sub.Unsub) }

// Compile-time assertion that Dialer implements domain.RelayDialer.
var _ domain.RelayDialer = (*Dialer)(nil)
