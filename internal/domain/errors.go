package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrInvalidInput is returned when a required argument is missing or empty.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEncodingFailed is returned when the marker codec yields no transaction.
	ErrEncodingFailed = errors.New("encoding failed")
	// ErrBroadcastFailed is returned when the ledger rejects or loses a transaction.
	ErrBroadcastFailed = errors.New("broadcast failed")
	// ErrPublishFailed is returned when a relay connection or publish fails.
	ErrPublishFailed = errors.New("publish failed")
	// ErrSignalNotFound is returned when a transaction carries no message signal.
	ErrSignalNotFound = errors.New("signal not found")
	// ErrEventNotFound is returned when a relay finished its stored events
	// without the requested one.
	ErrEventNotFound = errors.New("event not found")
	// ErrRelayUnavailable is returned when a relay cannot be reached or
	// subscribed to for a read.
	ErrRelayUnavailable = errors.New("relay unavailable")
	// ErrLedgerUnavailable is returned when the ledger indexer cannot be
	// queried for transactions or address history.
	ErrLedgerUnavailable = errors.New("ledger unavailable")
	// ErrTimeout is returned when a relay wait exceeds its deadline.
	ErrTimeout = errors.New("timeout")
)

// OpError describes a failed operation. Field is set for ErrInvalidInput.
type OpError struct {
	Op    string
	Field string
	Kind  error
	Err   error
}

func (e *OpError) Error() string {
	msg := e.Op + ": "
	if e.Field != "" {
		msg += e.Field + ": "
	}
	msg += e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Missing reports a required field that was not supplied to op.
func Missing(op, field string) error {
	return &OpError{Op: op, Field: field, Kind: ErrInvalidInput, Err: fmt.Errorf("%s is required", field)}
}

// Fail wraps err as a failure of the given kind in op.
func Fail(op string, kind, err error) error {
	return &OpError{Op: op, Kind: kind, Err: err}
}
