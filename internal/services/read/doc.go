// Package read turns a signal transaction back into the message it points
// at.
//
// Reader finds the event id in a transaction's outputs and reports the
// first input's address as the sender. Fetcher subscribes to a relay for
// exactly that event id and waits for one of three outcomes:
//   - a matching, correctly signed event arrives (success);
//   - the relay ends its stored events without one (ErrEventNotFound);
//   - the deadline passes (ErrTimeout).
//
// The relay connection is closed before Fetch returns on every path.
package read
