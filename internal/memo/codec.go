package memo

import (
	"context"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/txscript"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/cashaddr"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

const (
	// DustValue is the smallest standard output, in satoshis.
	DustValue int64 = 546
	// MaxScriptSize is the largest standard OP_RETURN script, in bytes.
	MaxScriptSize = 223
)

// Codec reads and writes PS001 message signals.
type Codec struct {
	log log.Logger
}

// New returns a Codec logging to logger (nil discards).
func New(logger log.Logger) *Codec {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Codec{log: logger}
}

// DecodeMarker returns the text carried by an "OP_RETURN <id> <data>" asm
// string. The id may appear as a decimal script number or as its raw push
// bytes in hex, depending on which tool rendered the asm.
func (c *Codec) DecodeMarker(asm, protocolID string) (string, bool) {
	fields := strings.Fields(asm)
	if len(fields) < 3 || fields[0] != "OP_RETURN" {
		return "", false
	}
	if !matchesProtocol(fields[1], protocolID) {
		return "", false
	}
	data, err := hex.DecodeString(strings.Join(fields[2:], ""))
	if err != nil || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

// FilterByKind splits a "<kind> <hash> <subject>" payload. The subject may
// be empty or contain spaces.
func (c *Codec) FilterByKind(payload, kind string) (domain.MarkerData, bool) {
	rest, ok := strings.CutPrefix(payload, kind+" ")
	if !ok {
		return domain.MarkerData{}, false
	}
	hash, subject, _ := strings.Cut(strings.TrimLeft(rest, " "), " ")
	if hash == "" {
		return domain.MarkerData{}, false
	}
	return domain.MarkerData{Hash: hash, Subject: subject}, true
}

// SignalScript returns the OP_RETURN script announcing eventID.
func SignalScript(eventID, subject string) ([]byte, error) {
	id, err := strconv.ParseInt(domain.MarkerProtocolID, 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "memo: protocol id")
	}
	payload := domain.MarkerKind + " " + eventID + " " + subject
	script, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_RETURN).
		AddInt64(id).
		AddData([]byte(payload)).
		Script()
	if err != nil {
		return nil, errors.Wrap(err, "memo: build script")
	}
	if len(script) > MaxScriptSize {
		return nil, errors.Errorf("memo: signal script is %d bytes, max %d", len(script), MaxScriptSize)
	}
	return script, nil
}

// EncodeSignalTransaction builds a transaction from ledger with the signal
// output first and one dust output per recipient. It returns an empty
// string and the cause when no transaction could be built.
func (c *Codec) EncodeSignalTransaction(
	ctx context.Context,
	ledger domain.Ledger,
	eventID string,
	recipients []domain.Address,
	subject string,
) (string, error) {
	if ledger == nil {
		return "", errors.New("memo: no ledger")
	}
	script, err := SignalScript(eventID, subject)
	if err != nil {
		return "", err
	}

	outputs := []domain.TxOutput{{Script: script, Value: 0}}
	for _, r := range recipients {
		pk, err := cashaddr.PayToAddrScript(r)
		if err != nil {
			return "", errors.Wrapf(err, "memo: recipient %s", r)
		}
		outputs = append(outputs, domain.TxOutput{Script: pk, Value: DustValue})
	}

	txHex, err := ledger.BuildTransaction(ctx, outputs)
	if err != nil {
		return "", errors.Wrap(err, "memo: build transaction")
	}
	level.Debug(c.log).Log("op", "memo.encode", "event_id", eventID, "recipients", len(recipients), "bytes", len(txHex)/2)
	return txHex, nil
}

// ListSignalsForAddress returns the signals of kind paying addr, in the
// index's history order.
func (c *Codec) ListSignalsForAddress(
	ctx context.Context,
	index domain.SignalIndex,
	addr domain.Address,
	kind string,
) ([]domain.MarkerRecord, error) {
	if index == nil {
		return nil, errors.New("memo: no index")
	}
	history, err := index.History(ctx, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "memo: history of %s", addr)
	}
	if len(history) == 0 {
		return nil, nil
	}

	txids := make([]string, len(history))
	for i, h := range history {
		txids[i] = h.TxID
	}
	txs, err := index.GetTransactions(ctx, txids)
	if err != nil {
		return nil, errors.Wrap(err, "memo: fetch history transactions")
	}

	var records []domain.MarkerRecord
	for _, tx := range txs {
		data, ok := c.markerIn(tx.Vout, kind)
		if !ok || !pays(tx.Vout, addr) {
			continue
		}
		var sender domain.Address
		if len(tx.Vin) > 0 {
			sender = tx.Vin[0].Address
		}
		records = append(records, domain.MarkerRecord{
			EventID:   data.Hash,
			Subject:   data.Subject,
			Sender:    sender,
			TxID:      tx.TxID,
			Timestamp: tx.Time,
		})
	}
	level.Debug(c.log).Log("op", "memo.list", "addr", addr, "history", len(history), "signals", len(records))
	return records, nil
}

// markerIn returns the last output carrying a marker of kind.
func (c *Codec) markerIn(outputs []domain.Output, kind string) (domain.MarkerData, bool) {
	var (
		found domain.MarkerData
		ok    bool
	)
	for _, out := range outputs {
		payload, decoded := c.DecodeMarker(out.ScriptPubKey.Asm, domain.MarkerProtocolID)
		if !decoded {
			continue
		}
		if data, match := c.FilterByKind(payload, kind); match {
			found, ok = data, true
		}
	}
	return found, ok
}

func pays(outputs []domain.Output, addr domain.Address) bool {
	for _, out := range outputs {
		for _, a := range out.ScriptPubKey.Addresses {
			if a.Equal(addr) {
				return true
			}
		}
		if len(out.ScriptPubKey.Addresses) > 0 {
			continue
		}
		if a, ok := cashaddr.FromScriptPubKey(out.ScriptPubKey); ok && a.Equal(addr) {
			return true
		}
	}
	return false
}

// matchesProtocol accepts the id as a script number ("-21101") or as the
// hex of its minimal push ("6dd2").
func matchesProtocol(token, protocolID string) bool {
	if token == protocolID {
		return true
	}
	n, err := strconv.ParseInt(protocolID, 10, 64)
	if err != nil {
		return false
	}
	return strings.EqualFold(token, hex.EncodeToString(scriptNum(n)))
}

// scriptNum is the minimal little-endian sign-magnitude encoding of n.
func scriptNum(n int64) []byte {
	if n == 0 {
		return nil
	}
	neg := n < 0
	m := n
	if neg {
		m = -n
	}
	var out []byte
	for m > 0 {
		out = append(out, byte(m&0xff))
		m >>= 8
	}
	if out[len(out)-1]&0x80 != 0 {
		if neg {
			out = append(out, 0x80)
		} else {
			out = append(out, 0x00)
		}
	} else if neg {
		out[len(out)-1] |= 0x80
	}
	return out
}

// Compile-time assertion that Codec implements domain.MarkerCodec.
var _ domain.MarkerCodec = (*Codec)(nil)
