package memo_test

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/memo"
)

const (
	signalAsm  = "OP_RETURN -21101 4d5347204e4f53545220326634633137666431346332373331343932336632383261626532383061643239333834343831353066663962313363303434616539353034356139373136632031313138323461"
	p2pkhAsm   = "OP_DUP OP_HASH160 a0f2535fb89a0be4bde43bb4fd5842a0d2e42200 OP_EQUALVERIFY OP_CHECKSIG"
	eventID    = "2f4c17fd14c27314923f282abe280ad2938448150ff9b13c044ae95045a9716c"
	sender     = domain.Address("bitcoincash:qr2zqrnqdulfmeqs2qe9c5p605lrwe90v5v735s2jl")
	recipient  = domain.Address("bitcoincash:qpm2qsznhks23z7629mms6s4cwef74vcwvy22gdx6a")
	signalHex  = "6a026dd24c524d5347204e4f53545220326634633137666431346332373331343932336632383261626532383061643239333834343831353066663962313363303434616539353034356139373136632031313138323461"
	payloadStr = "MSG NOSTR " + eventID + " 111824a"
)

func TestDecodeMarker(t *testing.T) {
	c := memo.New(nil)

	payload, ok := c.DecodeMarker(signalAsm, domain.MarkerProtocolID)
	require.True(t, ok)
	assert.Equal(t, payloadStr, payload)

	_, ok = c.DecodeMarker(p2pkhAsm, domain.MarkerProtocolID)
	assert.False(t, ok)

	_, ok = c.DecodeMarker("OP_RETURN -21102 4d5347", domain.MarkerProtocolID)
	assert.False(t, ok, "other protocol")

	_, ok = c.DecodeMarker("OP_RETURN -21101 zz", domain.MarkerProtocolID)
	assert.False(t, ok, "bad hex")

	_, ok = c.DecodeMarker("OP_RETURN -21101", domain.MarkerProtocolID)
	assert.False(t, ok, "no data")
}

func TestDecodeMarker_RawPushForm(t *testing.T) {
	script, err := hex.DecodeString(signalHex)
	require.NoError(t, err)
	asm, err := txscript.DisasmString(script)
	require.NoError(t, err)

	payload, ok := memo.New(nil).DecodeMarker(asm, domain.MarkerProtocolID)
	require.True(t, ok, "asm %q", asm)
	assert.Equal(t, payloadStr, payload)
}

func TestFilterByKind(t *testing.T) {
	c := memo.New(nil)

	data, ok := c.FilterByKind(payloadStr, domain.MarkerKind)
	require.True(t, ok)
	assert.Equal(t, eventID, data.Hash)
	assert.Equal(t, "111824a", data.Subject)

	data, ok = c.FilterByKind("MSG NOSTR abc two words", domain.MarkerKind)
	require.True(t, ok)
	assert.Equal(t, "abc", data.Hash)
	assert.Equal(t, "two words", data.Subject)

	data, ok = c.FilterByKind("MSG NOSTR abc", domain.MarkerKind)
	require.True(t, ok)
	assert.Empty(t, data.Subject)

	_, ok = c.FilterByKind("MSG IPFS abc subject", domain.MarkerKind)
	assert.False(t, ok)
	_, ok = c.FilterByKind("MSG NOSTR ", domain.MarkerKind)
	assert.False(t, ok)
}

func TestSignalScript_Bytes(t *testing.T) {
	script, err := memo.SignalScript(eventID, "111824a")
	require.NoError(t, err)
	assert.Equal(t, signalHex, hex.EncodeToString(script))
}

func TestSignalScript_TooLong(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	_, err := memo.SignalScript(eventID, string(long))
	assert.Error(t, err)
}

type fakeLedger struct {
	outputs []domain.TxOutput
	hex     string
	err     error
}

func (f *fakeLedger) GetTransactions(context.Context, []string) ([]domain.Transaction, error) {
	return nil, nil
}
func (f *fakeLedger) RefreshUnspentOutputs(context.Context) error { return nil }
func (f *fakeLedger) BuildTransaction(_ context.Context, outputs []domain.TxOutput) (string, error) {
	f.outputs = outputs
	return f.hex, f.err
}
func (f *fakeLedger) Broadcast(context.Context, string) (string, error) { return "", nil }

func TestEncodeSignalTransaction(t *testing.T) {
	l := &fakeLedger{hex: "0100"}
	txHex, err := memo.New(nil).EncodeSignalTransaction(context.Background(), l, eventID, []domain.Address{recipient}, "111824a")
	require.NoError(t, err)
	assert.Equal(t, "0100", txHex)

	require.Len(t, l.outputs, 2)
	assert.Equal(t, signalHex, hex.EncodeToString(l.outputs[0].Script))
	assert.Zero(t, l.outputs[0].Value)
	assert.Equal(t, "76a91476a04053bda0a88bda5177b86a15c3b29f55987388ac", hex.EncodeToString(l.outputs[1].Script))
	assert.Equal(t, memo.DustValue, l.outputs[1].Value)
}

func TestEncodeSignalTransaction_Failures(t *testing.T) {
	c := memo.New(nil)
	ctx := context.Background()

	txHex, err := c.EncodeSignalTransaction(ctx, nil, eventID, []domain.Address{recipient}, "")
	assert.Error(t, err)
	assert.Empty(t, txHex)

	_, err = c.EncodeSignalTransaction(ctx, &fakeLedger{}, eventID, []domain.Address{"not-an-address"}, "")
	assert.Error(t, err)

	boom := errors.New("insufficient funds")
	txHex, err = c.EncodeSignalTransaction(ctx, &fakeLedger{err: boom}, eventID, []domain.Address{recipient}, "")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, txHex)
}

type fakeIndex struct {
	history []domain.HistoryEntry
	txs     map[string]domain.Transaction
}

func (f *fakeIndex) History(context.Context, domain.Address) ([]domain.HistoryEntry, error) {
	return f.history, nil
}

func (f *fakeIndex) GetTransactions(_ context.Context, txids []string) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, 0, len(txids))
	for _, id := range txids {
		out = append(out, f.txs[id])
	}
	return out, nil
}

func signalTx(txid string, from, to domain.Address, time int64) domain.Transaction {
	return domain.Transaction{
		TxID: txid,
		Time: time,
		Vin:  []domain.Input{{Address: from}},
		Vout: []domain.Output{
			{N: 0, ScriptPubKey: domain.ScriptPubKey{Asm: signalAsm}},
			{N: 1, Value: memo.DustValue, ScriptPubKey: domain.ScriptPubKey{Asm: p2pkhAsm, Addresses: []domain.Address{to}}},
		},
	}
}

func TestListSignalsForAddress(t *testing.T) {
	plain := domain.Transaction{
		TxID: "plain",
		Vin:  []domain.Input{{Address: sender}},
		Vout: []domain.Output{{ScriptPubKey: domain.ScriptPubKey{Asm: p2pkhAsm, Addresses: []domain.Address{recipient}}}},
	}
	// Carries a signal but pays someone else (recipient only funded it).
	elsewhere := signalTx("elsewhere", recipient, sender, 30)

	idx := &fakeIndex{
		history: []domain.HistoryEntry{{TxID: "b"}, {TxID: "plain"}, {TxID: "elsewhere"}, {TxID: "a"}},
		txs: map[string]domain.Transaction{
			"a":         signalTx("a", sender, recipient, 10),
			"b":         signalTx("b", sender, "qpm2qsznhks23z7629mms6s4cwef74vcwvy22gdx6a", 20),
			"plain":     plain,
			"elsewhere": elsewhere,
		},
	}

	records, err := memo.New(nil).ListSignalsForAddress(context.Background(), idx, recipient, domain.MarkerKind)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "b", records[0].TxID, "history order is kept")
	assert.Equal(t, "a", records[1].TxID)
	assert.Equal(t, domain.MarkerRecord{
		EventID:   eventID,
		Subject:   "111824a",
		Sender:    sender,
		TxID:      "a",
		Timestamp: 10,
	}, records[1])
}

func TestListSignalsForAddress_ScriptHexFallback(t *testing.T) {
	tx := signalTx("a", sender, recipient, 10)
	tx.Vout[1].ScriptPubKey = domain.ScriptPubKey{Hex: "76a91476a04053bda0a88bda5177b86a15c3b29f55987388ac"}
	idx := &fakeIndex{
		history: []domain.HistoryEntry{{TxID: "a"}},
		txs:     map[string]domain.Transaction{"a": tx},
	}

	records, err := memo.New(nil).ListSignalsForAddress(context.Background(), idx, recipient, domain.MarkerKind)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestListSignalsForAddress_NoIndex(t *testing.T) {
	_, err := memo.New(nil).ListSignalsForAddress(context.Background(), nil, recipient, domain.MarkerKind)
	assert.Error(t, err)
}
