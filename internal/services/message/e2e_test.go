package message_test

import (
	"bytes"
	"context"
	"encoding/hex"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/cashaddr"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/crypto"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/memo"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/relay"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/relayd"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/services/message"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/services/post"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/services/read"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/services/signal"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/store"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/wallet"
)

// memChain is an in-memory ledger index. Broadcast transactions are decoded
// and indexed under every address they pay; inputs are attributed to the
// single funded address.
type memChain struct {
	mu      sync.Mutex
	funded  domain.Address
	utxos   []domain.UTXO
	txs     map[string]domain.Transaction
	history map[string][]domain.HistoryEntry
}

func newMemChain(funded domain.Address, value int64) *memChain {
	return &memChain{
		funded:  funded,
		utxos:   []domain.UTXO{{TxID: strings.Repeat("77", 32), Vout: 0, Value: value, Height: 100}},
		txs:     make(map[string]domain.Transaction),
		history: make(map[string][]domain.HistoryEntry),
	}
}

func (c *memChain) GetTransactions(_ context.Context, txids []string) ([]domain.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Transaction, 0, len(txids))
	for _, id := range txids {
		if tx, ok := c.txs[id]; ok {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (c *memChain) History(_ context.Context, addr domain.Address) ([]domain.HistoryEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.HistoryEntry(nil), c.history[addr.Bare()]...), nil
}

func (c *memChain) UTXOs(context.Context, domain.Address) ([]domain.UTXO, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.UTXO(nil), c.utxos...), nil
}

func (c *memChain) Broadcast(_ context.Context, txHex string) (string, error) {
	raw, err := hex.DecodeString(txHex)
	if err != nil {
		return "", err
	}
	var msg wire.MsgTx
	if err := msg.Deserialize(bytes.NewReader(raw)); err != nil {
		return "", err
	}
	txid := msg.TxHash().String()

	tx := domain.Transaction{TxID: txid, Time: time.Now().Unix()}
	for _, in := range msg.TxIn {
		tx.Vin = append(tx.Vin, domain.Input{
			TxID:    in.PreviousOutPoint.Hash.String(),
			Vout:    in.PreviousOutPoint.Index,
			Address: c.funded,
		})
	}
	touched := map[string]bool{c.funded.Bare(): true}
	for i, out := range msg.TxOut {
		asm, err := txscript.DisasmString(out.PkScript)
		if err != nil {
			return "", err
		}
		spk := domain.ScriptPubKey{Asm: asm, Hex: hex.EncodeToString(out.PkScript)}
		if a, ok := cashaddr.FromScript(out.PkScript); ok {
			spk.Addresses = []domain.Address{a}
			touched[a.Bare()] = true
		}
		tx.Vout = append(tx.Vout, domain.Output{Value: out.Value, N: uint32(i), ScriptPubKey: spk})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs[txid] = tx
	for addr := range touched {
		c.history[addr] = append([]domain.HistoryEntry{{TxID: txid}}, c.history[addr]...)
	}
	return txid, nil
}

func TestSendScanRead_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(relayd.New(nil).Handler())
	defer srv.Close()
	relayWS := "ws" + strings.TrimPrefix(srv.URL, "http")

	chain := newMemChain(me, 100000)
	codec := memo.New(nil)
	dialer := relay.NewDialer(nil)
	fetcher := read.NewFetcher(dialer, 5*time.Second, nil)
	inbox := store.NewInboxFileStore(t.TempDir())

	svc := message.New(message.Deps{
		Publisher: post.New(dialer, crypto.Signer{}, nil),
		Writer:    signal.NewWriter(codec, 0, nil),
		Scanner:   signal.NewScanner(codec, nil),
		Reader:    read.NewReader(codec, fetcher, nil),
		Fetcher:   fetcher,
		Index:     chain,
		Ledgers: func(kp domain.KeyPair) (domain.Ledger, error) {
			return wallet.New(kp, chain, 1, nil)
		},
		Inbox: inbox,
	}, relayWS, nil)
	ctx := context.Background()

	// Sender posts and signals.
	receipt, err := svc.Send(ctx, domain.SendRequest{
		WIF: testWIF, Recipient: peer, Subject: "lunch", Body: "noon at the usual place",
	})
	require.NoError(t, err)
	require.NotEmpty(t, receipt.EventID)
	require.NotEmpty(t, receipt.TxID)

	// Recipient sees one signal from the sender.
	signals, err := svc.ScanForSignals(ctx, peer, signal.DefaultLimit)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, receipt.EventID, signals[0].EventID)
	assert.Equal(t, receipt.TxID, signals[0].TxID)
	assert.Equal(t, "lunch", signals[0].Subject)
	assert.True(t, signals[0].Sender.Equal(me))

	// The sender's own history holds the same marker (it pays change back),
	// but self-sent signals are excluded.
	own, err := svc.ScanForSignals(ctx, me, 0)
	require.NoError(t, err)
	assert.Empty(t, own)

	// Recipient reads it by txid.
	got, err := svc.FetchByTxid(ctx, receipt.TxID)
	require.NoError(t, err)
	assert.Equal(t, "noon at the usual place", got.Message)
	assert.True(t, got.Sender.Equal(me))
	assert.Equal(t, receipt.EventID, got.EventID)

	entries, err := svc.Inbox(peer, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Read)
}
