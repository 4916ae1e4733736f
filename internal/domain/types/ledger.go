package types

// ScriptPubKey is the locking script of an output as reported by the ledger.
type ScriptPubKey struct {
	Asm       string    `json:"asm"`
	Hex       string    `json:"hex,omitempty"`
	Type      string    `json:"type,omitempty"`
	Addresses []Address `json:"addresses,omitempty"`
}

// Input is a transaction input. Address is the address controlling the
// spent output.
type Input struct {
	TxID    string  `json:"txid,omitempty"`
	Vout    uint32  `json:"vout"`
	Address Address `json:"address,omitempty"`
	Value   int64   `json:"value,omitempty"`
}

// Output is a transaction output; Value is in satoshis.
type Output struct {
	Value        int64        `json:"value"`
	N            uint32       `json:"n"`
	ScriptPubKey ScriptPubKey `json:"scriptPubKey"`
}

// Transaction is the subset of a verbose ledger transaction the protocol reads.
type Transaction struct {
	TxID   string   `json:"txid"`
	Vin    []Input  `json:"vin"`
	Vout   []Output `json:"vout"`
	Time   int64    `json:"time,omitempty"`
	Height int64    `json:"height,omitempty"`
}

// UTXO is an unspent output owned by the wallet.
type UTXO struct {
	TxID   string `json:"tx_hash"`
	Vout   uint32 `json:"tx_pos"`
	Value  int64  `json:"value"`
	Height int64  `json:"height"`
}

// HistoryEntry is one transaction in an address history.
type HistoryEntry struct {
	TxID   string `json:"tx_hash"`
	Height int64  `json:"height"`
}

// TxOutput is an output to be created by a new transaction.
type TxOutput struct {
	Script []byte
	Value  int64
}
