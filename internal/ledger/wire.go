package ledger

import (
	"math"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// rawTx is a verbose transaction as returned by getRawTransaction.
type rawTx struct {
	TxID      string     `json:"txid"`
	Vin       []rawInput `json:"vin"`
	Vout      []rawOut   `json:"vout"`
	Time      int64      `json:"time"`
	Blocktime int64      `json:"blocktime"`
}

type rawInput struct {
	TxID    string         `json:"txid"`
	Vout    uint32         `json:"vout"`
	Address domain.Address `json:"address"`
	// Value is in BCH, as the node reports it.
	Value float64 `json:"value"`
}

type rawOut struct {
	Value        float64             `json:"value"`
	N            uint32              `json:"n"`
	ScriptPubKey domain.ScriptPubKey `json:"scriptPubKey"`
}

type utxoResponse struct {
	Success bool          `json:"success"`
	UTXOs   []domain.UTXO `json:"utxos"`
	Error   string        `json:"error"`
}

type historyResponse struct {
	Success      bool                  `json:"success"`
	Transactions []domain.HistoryEntry `json:"transactions"`
	Error        string                `json:"error"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (tx rawTx) toDomain() domain.Transaction {
	out := domain.Transaction{
		TxID: tx.TxID,
		Time: tx.Time,
		Vin:  make([]domain.Input, len(tx.Vin)),
		Vout: make([]domain.Output, len(tx.Vout)),
	}
	if out.Time == 0 {
		out.Time = tx.Blocktime
	}
	for i, in := range tx.Vin {
		out.Vin[i] = domain.Input{TxID: in.TxID, Vout: in.Vout, Address: in.Address, Value: toSats(in.Value)}
	}
	for i, o := range tx.Vout {
		out.Vout[i] = domain.Output{Value: toSats(o.Value), N: o.N, ScriptPubKey: o.ScriptPubKey}
	}
	return out
}

func toSats(bch float64) int64 { return int64(math.Round(bch * 1e8)) }
