package read

import (
	"context"
	"errors"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/nbd-wtf/go-nostr"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// DefaultTimeout bounds a fetch when the caller's context has no deadline.
const DefaultTimeout = 15 * time.Second

// Fetcher pulls single events from a relay.
type Fetcher struct {
	dialer  domain.RelayDialer
	timeout time.Duration
	log     log.Logger
}

// NewFetcher constructs a Fetcher. timeout <= 0 uses DefaultTimeout.
func NewFetcher(dialer domain.RelayDialer, timeout time.Duration, logger log.Logger) *Fetcher {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		dialer:  dialer,
		timeout: timeout,
		log:     log.With(logger, "service", "read"),
	}
}

// Fetch returns the content of event eventID held by the relay at relayURL.
//
// Steps:
//  1. Validate the arguments before any I/O.
//  2. Dial and subscribe with an ids filter; both are torn down on return.
//  3. Wait for the first verified match, end of stored events, or the
//     deadline. A match already queued when end of stored events arrives
//     still wins.
func (f *Fetcher) Fetch(ctx context.Context, eventID, relayURL string) (string, error) {
	const op = "read.Fetch"

	switch {
	case eventID == "":
		return "", domain.Missing(op, "eventId")
	case relayURL == "":
		return "", domain.Missing(op, "relayURL")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	conn, err := f.dialer.Dial(ctx, relayURL)
	if err != nil {
		return "", f.fail(ctx, op, domain.ErrRelayUnavailable, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			level.Debug(f.log).Log("op", op, "relay", relayURL, "err", err)
		}
	}()

	sub, err := conn.Subscribe(ctx, nostr.Filters{{IDs: []string{eventID}}})
	if err != nil {
		return "", f.fail(ctx, op, domain.ErrRelayUnavailable, err)
	}
	defer sub.Close()

	events := sub.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return "", domain.Fail(op, domain.ErrEventNotFound, errors.New("subscription closed"))
			}
			if f.matches(ev, eventID) {
				return ev.Content, nil
			}
		case <-sub.EndOfStoredEvents():
			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return "", domain.Fail(op, domain.ErrEventNotFound, nil)
					}
					if f.matches(ev, eventID) {
						return ev.Content, nil
					}
				default:
					level.Debug(f.log).Log("op", op, "event_id", eventID, "relay", relayURL, "result", "not found")
					return "", domain.Fail(op, domain.ErrEventNotFound, nil)
				}
			}
		case <-ctx.Done():
			return "", f.fail(ctx, op, domain.ErrTimeout, ctx.Err())
		}
	}
}

// matches reports whether ev is the requested event and is authentic.
func (f *Fetcher) matches(ev *nostr.Event, eventID string) bool {
	if ev == nil || ev.ID != eventID {
		return false
	}
	if ev.GetID() != eventID {
		level.Warn(f.log).Log("event_id", eventID, "err", "id does not match content")
		return false
	}
	if ok, err := ev.CheckSignature(); err != nil || !ok {
		level.Warn(f.log).Log("event_id", eventID, "err", "bad signature")
		return false
	}
	return true
}

// fail reports a deadline as ErrTimeout and anything else as kind.
func (f *Fetcher) fail(ctx context.Context, op string, kind, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		kind = domain.ErrTimeout
	}
	return domain.Fail(op, kind, err)
}

// Compile-time assertion that Fetcher implements domain.EventFetcher.
var _ domain.EventFetcher = (*Fetcher)(nil)
