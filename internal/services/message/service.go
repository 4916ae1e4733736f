package message

import (
	"context"
	"fmt"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/crypto"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// fetchConcurrency bounds the relay fetches FetchUnread runs at once.
const fetchConcurrency = 4

// LedgerFactory opens a funded ledger handle for the given key.
type LedgerFactory func(kp domain.KeyPair) (domain.Ledger, error)

// Deps are the collaborators of a Service. Inbox may be nil.
type Deps struct {
	Publisher domain.EventPublisher
	Writer    domain.SignalWriter
	Scanner   domain.SignalScanner
	Reader    domain.MarkerReader
	Fetcher   domain.EventFetcher
	Index     domain.SignalIndex
	Ledgers   LedgerFactory
	Inbox     domain.InboxStore
}

// Service sends and receives messages.
//
// High-level flow:
//   - Send: derive keys from the WIF, publish the body to the relay, then
//     write a signal to the recipient from a ledger opened for that key.
//   - FetchByTxid: resolve a signal transaction to its message and mark it
//     read in the inbox.
//   - ScanForSignals: list incoming signals and merge them into the inbox.
type Service struct {
	deps     Deps
	relayURL string
	log      log.Logger
}

// New constructs a message Service talking to relayURL.
func New(deps Deps, relayURL string, logger log.Logger) *Service {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Service{
		deps:     deps,
		relayURL: relayURL,
		log:      log.With(logger, "service", "message"),
	}
}

// Send posts req.Body and signals req.Recipient. If the post succeeds but
// the signal fails, the receipt still carries the event id.
//
// Steps:
//  1. Validate the request and derive the key pair.
//  2. Publish the body as a relay event.
//  3. Open a ledger for the key and write the signal.
func (s *Service) Send(ctx context.Context, req domain.SendRequest) (domain.SendReceipt, error) {
	const op = "message.Send"

	if req.Recipient.Bare() == "" {
		return domain.SendReceipt{}, domain.Missing(op, "recipient")
	}
	if req.Body == "" {
		return domain.SendReceipt{}, domain.Missing(op, "body")
	}
	kp, err := crypto.DeriveKeyPair(req.WIF)
	if err != nil {
		return domain.SendReceipt{}, err
	}
	defer crypto.Wipe(kp.Secret)

	eventID, err := s.deps.Publisher.Publish(ctx, domain.PublishRequest{
		Secret:         kp.Secret,
		PublicIdentity: kp.PublicIdentity,
		RelayURL:       s.relayURL,
		Content:        req.Body,
		Kind:           req.Kind,
		Tags:           req.Tags,
	})
	if err != nil {
		return domain.SendReceipt{}, err
	}
	receipt := domain.SendReceipt{EventID: eventID}

	if s.deps.Ledgers == nil {
		return receipt, domain.Missing(op, "ledger")
	}
	ledger, err := s.deps.Ledgers(kp)
	if err != nil {
		return receipt, fmt.Errorf("%s: open ledger: %w", op, err)
	}
	txid, err := s.deps.Writer.WriteSignal(ctx, ledger, req.Recipient, eventID, req.Subject)
	if err != nil {
		return receipt, err
	}
	receipt.TxID = txid

	level.Info(s.log).Log("op", op, "event_id", eventID, "txid", txid, "addr", req.Recipient)
	return receipt, nil
}

// FetchByTxid resolves the signal in txid to its message.
func (s *Service) FetchByTxid(ctx context.Context, txid string) (domain.ReceivedMessage, error) {
	msg, err := s.deps.Reader.ResolveFromTransaction(ctx, s.deps.Index, txid, s.relayURL)
	if err != nil {
		return domain.ReceivedMessage{}, err
	}
	s.markRead(txid)
	return msg, nil
}

// ScanForSignals lists incoming signals for addr and records them in the
// inbox. limit follows SignalScanner semantics.
func (s *Service) ScanForSignals(ctx context.Context, addr domain.Address, limit int) ([]domain.MarkerRecord, error) {
	const op = "message.ScanForSignals"

	records, err := s.deps.Scanner.CheckSignals(ctx, s.deps.Index, addr, limit)
	if err != nil {
		return nil, err
	}
	if s.deps.Inbox != nil {
		added, err := s.deps.Inbox.MergeSignals(addr, records)
		if err != nil {
			return records, fmt.Errorf("%s: update inbox: %w", op, err)
		}
		level.Debug(s.log).Log("op", op, "addr", addr, "signals", len(records), "new", added)
	}
	return records, nil
}

// Inbox returns addr's recorded signals, newest first, optionally only the
// unread ones.
func (s *Service) Inbox(addr domain.Address, unreadOnly bool) ([]domain.InboxEntry, error) {
	if s.deps.Inbox == nil {
		return nil, domain.Missing("message.Inbox", "inbox")
	}
	entries, err := s.deps.Inbox.ListInbox(addr)
	if err != nil {
		return nil, err
	}
	if !unreadOnly {
		return entries, nil
	}
	unread := entries[:0]
	for _, e := range entries {
		if !e.Read {
			unread = append(unread, e)
		}
	}
	return unread, nil
}

// FetchUnread fetches every unread inbox message for addr, in inbox order,
// and marks each one read. The first failure cancels the rest.
func (s *Service) FetchUnread(ctx context.Context, addr domain.Address) ([]domain.ReceivedMessage, error) {
	entries, err := s.Inbox(addr, true)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ReceivedMessage, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			msg, err := s.deps.Fetcher.Fetch(gctx, e.EventID, s.relayURL)
			if err != nil {
				return fmt.Errorf("message.FetchUnread: %s: %w", e.TxID, err)
			}
			out[i] = domain.ReceivedMessage{Message: msg, Sender: e.Sender, EventID: e.EventID, TxID: e.TxID}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, m := range out {
		s.markRead(m.TxID)
	}
	return out, nil
}

func (s *Service) markRead(txid string) {
	if s.deps.Inbox == nil {
		return
	}
	if _, err := s.deps.Inbox.MarkRead(txid); err != nil {
		level.Warn(s.log).Log("op", "message.markRead", "txid", txid, "err", err)
	}
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)
