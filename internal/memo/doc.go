// Package memo implements the PS001 message-signal marker codec.
//
// A signal is an OP_RETURN output tagged with the protocol number -21101
// whose data push is the text
//
//	MSG NOSTR <event id> <subject>
//
// followed by one dust output to each recipient. Readers find signals by
// walking an address history and decoding the OP_RETURN of each
// transaction that pays the address.
package memo
