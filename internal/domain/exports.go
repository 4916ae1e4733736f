package domain

import (
	interfaces "github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain/interfaces"
	types "github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Address         = types.Address
	KeyPair         = types.KeyPair
	RelayEvent      = types.RelayEvent
	RelayFilter     = types.RelayFilter
	ReceivedMessage = types.ReceivedMessage
	SendReceipt     = types.SendReceipt
	PublishRequest  = types.PublishRequest
	SendRequest     = types.SendRequest
	ScriptPubKey    = types.ScriptPubKey
	Input           = types.Input
	Output          = types.Output
	Transaction     = types.Transaction
	UTXO            = types.UTXO
	HistoryEntry    = types.HistoryEntry
	TxOutput        = types.TxOutput
	MarkerData      = types.MarkerData
	MarkerRecord    = types.MarkerRecord
	InboxEntry      = types.InboxEntry
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	TransactionSource = interfaces.TransactionSource
	SignalIndex       = interfaces.SignalIndex
	Ledger            = interfaces.Ledger
	LedgerIndex       = interfaces.LedgerIndex
	MarkerCodec       = interfaces.MarkerCodec
	RelayDialer       = interfaces.RelayDialer
	RelayConn         = interfaces.RelayConn
	RelaySubscription = interfaces.RelaySubscription
	EventSigner       = interfaces.EventSigner
	InboxStore        = interfaces.InboxStore
	EventPublisher    = interfaces.EventPublisher
	EventFetcher      = interfaces.EventFetcher
	SignalWriter      = interfaces.SignalWriter
	SignalScanner     = interfaces.SignalScanner
	MarkerReader      = interfaces.MarkerReader
	MessageService    = interfaces.MessageService
)

// Marker protocol constants shared by the writer, the reader and the codec.
const (
	// MarkerProtocolID is the PS001 memo prefix, as rendered in script asm.
	MarkerProtocolID = "-21101"
	// MarkerKind labels signals that point at a Nostr event.
	MarkerKind = "MSG NOSTR"
	// DefaultEventKind is the relay event kind for posts.
	DefaultEventKind = types.DefaultEventKind
	// CashAddrPrefix is the mainnet address prefix.
	CashAddrPrefix = types.CashAddrPrefix
)
