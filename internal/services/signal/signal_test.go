package signal_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/services/signal"
)

const (
	me    = domain.Address("bitcoincash:qr2zqrnqdulfmeqs2qe9c5p605lrwe90v5v735s2jl")
	peer  = domain.Address("bitcoincash:qpm2qsznhks23z7629mms6s4cwef74vcwvy22gdx6a")
	event = "2f4c17fd14c27314923f282abe280ad2938448150ff9b13c044ae95045a9716c"
)

// fakeLedger records the order of calls made on it.
type fakeLedger struct {
	calls        []string
	refreshErr   error
	broadcastErr error
	txid         string
}

func (l *fakeLedger) GetTransactions(context.Context, []string) ([]domain.Transaction, error) {
	return nil, nil
}

func (l *fakeLedger) RefreshUnspentOutputs(context.Context) error {
	l.calls = append(l.calls, "refresh")
	return l.refreshErr
}

func (l *fakeLedger) BuildTransaction(context.Context, []domain.TxOutput) (string, error) {
	return "", errors.New("not used")
}

func (l *fakeLedger) Broadcast(_ context.Context, txHex string) (string, error) {
	l.calls = append(l.calls, "broadcast:"+txHex)
	return l.txid, l.broadcastErr
}

type fakeCodec struct {
	ledger     *fakeLedger
	hex        string
	err        error
	recipients []domain.Address
	subject    string

	records []domain.MarkerRecord
	kind    string
}

func (c *fakeCodec) DecodeMarker(string, string) (string, bool) { return "", false }

func (c *fakeCodec) FilterByKind(string, string) (domain.MarkerData, bool) {
	return domain.MarkerData{}, false
}

func (c *fakeCodec) EncodeSignalTransaction(
	_ context.Context, _ domain.Ledger, eventID string, recipients []domain.Address, subject string,
) (string, error) {
	if c.ledger != nil {
		c.ledger.calls = append(c.ledger.calls, "encode:"+eventID)
	}
	c.recipients, c.subject = recipients, subject
	return c.hex, c.err
}

func (c *fakeCodec) ListSignalsForAddress(
	_ context.Context, _ domain.SignalIndex, _ domain.Address, kind string,
) ([]domain.MarkerRecord, error) {
	c.kind = kind
	return c.records, c.err
}

type fakeIndex struct{}

func (fakeIndex) GetTransactions(context.Context, []string) ([]domain.Transaction, error) {
	return nil, nil
}

func (fakeIndex) History(context.Context, domain.Address) ([]domain.HistoryEntry, error) {
	return nil, nil
}

func TestWriteSignal_Order(t *testing.T) {
	l := &fakeLedger{txid: "tx1"}
	c := &fakeCodec{ledger: l, hex: "0100"}
	w := signal.NewWriter(c, time.Millisecond, nil)

	txid, err := w.WriteSignal(context.Background(), l, peer, event, "hi")
	require.NoError(t, err)
	assert.Equal(t, "tx1", txid)
	assert.Equal(t, []string{"refresh", "encode:" + event, "broadcast:0100"}, l.calls)
	assert.Equal(t, []domain.Address{peer}, c.recipients)
	assert.Equal(t, "hi", c.subject)
}

func TestWriteSignal_MissingInputs(t *testing.T) {
	w := signal.NewWriter(&fakeCodec{}, 0, nil)
	ctx := context.Background()

	tests := []struct {
		field string
		call  func() error
	}{
		{"ledger", func() error { _, err := w.WriteSignal(ctx, nil, peer, event, ""); return err }},
		{"recipient", func() error { _, err := w.WriteSignal(ctx, &fakeLedger{}, "", event, ""); return err }},
		{"eventId", func() error { _, err := w.WriteSignal(ctx, &fakeLedger{}, peer, "", ""); return err }},
	}
	for _, tc := range tests {
		t.Run(tc.field, func(t *testing.T) {
			err := tc.call()
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestWriteSignal_EncodingFailed(t *testing.T) {
	for name, c := range map[string]*fakeCodec{
		"empty": {},
		"error": {err: errors.New("insufficient funds")},
	} {
		t.Run(name, func(t *testing.T) {
			l := &fakeLedger{txid: "tx1"}
			_, err := signal.NewWriter(c, 0, nil).WriteSignal(context.Background(), l, peer, event, "")
			assert.True(t, errors.Is(err, domain.ErrEncodingFailed))
			assert.Equal(t, []string{"refresh"}, l.calls, "nothing broadcast")
		})
	}
}

func TestWriteSignal_BroadcastFailed(t *testing.T) {
	boom := errors.New("txn-mempool-conflict")
	l := &fakeLedger{broadcastErr: boom}
	_, err := signal.NewWriter(&fakeCodec{hex: "0100"}, 0, nil).WriteSignal(context.Background(), l, peer, event, "")
	assert.True(t, errors.Is(err, domain.ErrBroadcastFailed))
	assert.True(t, errors.Is(err, boom))
}

func TestWriteSignal_SettleRespectsContext(t *testing.T) {
	l := &fakeLedger{}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := signal.NewWriter(&fakeCodec{hex: "0100"}, time.Hour, nil).WriteSignal(ctx, l, peer, event, "")
	assert.True(t, errors.Is(err, domain.ErrTimeout))
	assert.Empty(t, l.calls)
}

func records(senders ...domain.Address) []domain.MarkerRecord {
	out := make([]domain.MarkerRecord, len(senders))
	for i, s := range senders {
		out[i] = domain.MarkerRecord{EventID: event, Sender: s, TxID: fmt.Sprintf("tx%d", i)}
	}
	return out
}

func TestCheckSignals_ExcludesSelf(t *testing.T) {
	c := &fakeCodec{records: records(peer, me, "qr2zqrnqdulfmeqs2qe9c5p605lrwe90v5v735s2jl", peer)}
	got, err := signal.NewScanner(c, nil).CheckSignals(context.Background(), fakeIndex{}, me, 0)
	require.NoError(t, err)

	assert.Equal(t, domain.MarkerKind, c.kind)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.False(t, r.Sender.Equal(me))
	}
	assert.Equal(t, "tx0", got[0].TxID)
	assert.Equal(t, "tx3", got[1].TxID)
}

func TestCheckSignals_Limit(t *testing.T) {
	c := &fakeCodec{records: records(peer, peer, me, peer, peer)}
	s := signal.NewScanner(c, nil)
	ctx := context.Background()

	tests := []struct {
		limit int
		want  []string
	}{
		{0, []string{"tx0", "tx1", "tx3", "tx4"}},
		{2, []string{"tx0", "tx1"}},
		{4, []string{"tx0", "tx1", "tx3", "tx4"}},
		{10, []string{"tx0", "tx1", "tx3", "tx4"}},
	}
	for _, tc := range tests {
		got, err := s.CheckSignals(ctx, fakeIndex{}, me, tc.limit)
		require.NoError(t, err)
		ids := make([]string, len(got))
		for i, r := range got {
			ids[i] = r.TxID
		}
		assert.Equal(t, tc.want, ids, "limit %d", tc.limit)
	}
}

func TestCheckSignals_InvalidInput(t *testing.T) {
	s := signal.NewScanner(&fakeCodec{}, nil)
	ctx := context.Background()

	_, err := s.CheckSignals(ctx, nil, me, 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = s.CheckSignals(ctx, fakeIndex{}, "", 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = s.CheckSignals(ctx, fakeIndex{}, me, -1)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCheckSignals_CodecError(t *testing.T) {
	boom := errors.New("indexer down")
	_, err := signal.NewScanner(&fakeCodec{err: boom}, nil).CheckSignals(context.Background(), fakeIndex{}, me, 0)
	assert.True(t, errors.Is(err, domain.ErrLedgerUnavailable))
	assert.True(t, errors.Is(err, boom))
}
