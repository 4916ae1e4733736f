package post

import (
	"context"
	"fmt"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/hashicorp/go-multierror"
	"github.com/nbd-wtf/go-nostr"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// Service signs events and publishes them to one relay per call.
type Service struct {
	dialer domain.RelayDialer
	signer domain.EventSigner
	log    log.Logger
}

// New constructs a post Service. A nil logger discards.
func New(dialer domain.RelayDialer, signer domain.EventSigner, logger log.Logger) *Service {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Service{
		dialer: dialer,
		signer: signer,
		log:    log.With(logger, "service", "post"),
	}
}

// Publish signs req.Content and publishes it to req.RelayURL, returning the
// event id assigned by the signer.
//
// Steps:
//  1. Validate the request before any I/O.
//  2. Build the unsigned event, stamped with the current time.
//  3. Sign it; the signer's id is authoritative.
//  4. Dial the relay, publish, and close the connection on every path.
func (s *Service) Publish(ctx context.Context, req domain.PublishRequest) (eventID string, err error) {
	const op = "post.Publish"

	switch {
	case len(req.Secret) == 0:
		return "", domain.Missing(op, "secret")
	case req.PublicIdentity == "":
		return "", domain.Missing(op, "publicIdentity")
	case req.RelayURL == "":
		return "", domain.Missing(op, "relayURL")
	case req.Content == "":
		return "", domain.Missing(op, "content")
	}

	kind := req.Kind
	if kind == 0 {
		kind = domain.DefaultEventKind
	}
	tags := req.Tags
	if tags == nil {
		tags = nostr.Tags{}
	}
	ev := nostr.Event{
		Kind:      kind,
		CreatedAt: nostr.Now(),
		Tags:      tags,
		Content:   req.Content,
	}

	if err := s.signer.Sign(&ev, req.Secret); err != nil {
		return "", &domain.OpError{Op: op, Field: "secret", Kind: domain.ErrInvalidInput, Err: err}
	}
	if ev.PubKey != req.PublicIdentity {
		return "", &domain.OpError{Op: op, Field: "publicIdentity", Kind: domain.ErrInvalidInput,
			Err: fmt.Errorf("does not match the signing secret")}
	}

	conn, err := s.dialer.Dial(ctx, req.RelayURL)
	if err != nil {
		return "", domain.Fail(op, domain.ErrPublishFailed, err)
	}
	defer func() {
		cerr := conn.Close()
		if cerr == nil {
			return
		}
		if err != nil {
			err = multierror.Append(err, cerr)
			return
		}
		// The event is already on the relay.
		level.Warn(s.log).Log("op", op, "relay", req.RelayURL, "err", cerr)
	}()

	if err := conn.Publish(ctx, ev); err != nil {
		return "", domain.Fail(op, domain.ErrPublishFailed, err)
	}

	level.Info(s.log).Log("op", op, "event_id", ev.ID, "relay", req.RelayURL, "kind", kind)
	return ev.ID, nil
}

// Compile-time assertion that Service implements domain.EventPublisher.
var _ domain.EventPublisher = (*Service)(nil)
