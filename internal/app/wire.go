package app

import (
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/cashaddr"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/crypto"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/ledger"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/memo"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/relay"
	messagesvc "github.com/Permissionless-Software-Foundation/bch-nostr/internal/services/message"
	postsvc "github.com/Permissionless-Software-Foundation/bch-nostr/internal/services/post"
	readsvc "github.com/Permissionless-Software-Foundation/bch-nostr/internal/services/read"
	signalsvc "github.com/Permissionless-Software-Foundation/bch-nostr/internal/services/signal"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/store"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/wallet"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Config Config

	Ledger    *ledger.Client
	Codec     domain.MarkerCodec
	Dialer    domain.RelayDialer
	Inbox     domain.InboxStore
	Publisher domain.EventPublisher
	Writer    domain.SignalWriter
	Scanner   domain.SignalScanner
	Reader    domain.MarkerReader
	Fetcher   domain.EventFetcher
	Messages  *messagesvc.Service

	log log.Logger
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, logger log.Logger) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	// Ensure an HTTP client is available for outbound calls
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	// Ledger and relay transports
	lc := ledger.New(cfg.LedgerURL, ledger.Options{
		Token:             cfg.LedgerToken,
		RequestsPerSecond: cfg.RequestsPerSecond,
		HTTP:              httpClient,
	}, logger)
	codec := memo.New(logger)
	dialer := relay.NewDialer(logger)

	// File-based stores
	inbox := store.NewInboxFileStore(cfg.Home)

	// Protocol services
	publisher := postsvc.New(dialer, crypto.Signer{}, logger)
	writer := signalsvc.NewWriter(codec, cfg.SettleDelay, logger)
	scanner := signalsvc.NewScanner(codec, logger)
	fetcher := readsvc.NewFetcher(dialer, cfg.FetchTimeout, logger)
	reader := readsvc.NewReader(codec, fetcher, logger)

	w := &Wire{
		Config:    cfg,
		Ledger:    lc,
		Codec:     codec,
		Dialer:    dialer,
		Inbox:     inbox,
		Publisher: publisher,
		Writer:    writer,
		Scanner:   scanner,
		Reader:    reader,
		Fetcher:   fetcher,
		log:       logger,
	}
	w.Messages = messagesvc.New(messagesvc.Deps{
		Publisher: publisher,
		Writer:    writer,
		Scanner:   scanner,
		Reader:    reader,
		Fetcher:   fetcher,
		Index:     lc,
		Ledgers:   w.OpenWallet,
		Inbox:     inbox,
	}, cfg.RelayURL, logger)
	return w, nil
}

// OpenWallet returns a wallet for kp funded through the ledger client.
func (w *Wire) OpenWallet(kp domain.KeyPair) (domain.Ledger, error) {
	return wallet.New(kp, w.Ledger, w.Config.FeeRate, w.log)
}

// KeyPair derives the configured key. It fails with domain.ErrInvalidInput
// when no WIF is configured.
func (w *Wire) KeyPair() (domain.KeyPair, error) {
	kp, err := crypto.DeriveKeyPair(w.Config.WIF)
	if err != nil {
		return domain.KeyPair{}, errors.Wrap(err, "no usable WIF (set --wif, "+EnvWIF+" or wif in "+ConfigFile+")")
	}
	return kp, nil
}

// LedgerAddress is the P2PKH cashaddr that funds signals sent with kp.
func LedgerAddress(kp domain.KeyPair) (domain.Address, error) {
	pub, err := crypto.LedgerPublicKey(kp)
	if err != nil {
		return "", err
	}
	return cashaddr.EncodeP2PKH(crypto.Hash160(pub))
}
