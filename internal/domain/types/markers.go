package types

// MarkerData is what the codec extracts from one decoded marker payload.
type MarkerData struct {
	Hash    string `json:"hash"`
	Subject string `json:"subject"`
}

// MarkerRecord is an on-ledger signal pointing at a relay event. It is an
// immutable snapshot of ledger state at read time.
type MarkerRecord struct {
	EventID   string  `json:"hash"`
	Subject   string  `json:"subject"`
	Sender    Address `json:"sender"`
	TxID      string  `json:"txid"`
	Timestamp int64   `json:"time"`
}

// InboxEntry is a MarkerRecord tracked in the local inbox.
type InboxEntry struct {
	MarkerRecord
	Read   bool  `json:"read"`
	SeenAt int64 `json:"seen_at"`
}
