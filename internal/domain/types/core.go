package types

import "strings"

// CashAddrPrefix is the mainnet human-readable prefix of a Bitcoin Cash address.
const CashAddrPrefix = "bitcoincash"

// Address is a Bitcoin Cash address, with or without its network prefix.
type Address string

// String returns the string form of the address.
func (a Address) String() string { return string(a) }

// Bare returns the address without a "prefix:" part, lower-cased.
func (a Address) Bare() string {
	s := strings.ToLower(strings.TrimSpace(string(a)))
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Equal reports whether a and b name the same address, ignoring the prefix.
func (a Address) Equal(b Address) bool {
	return a.Bare() != "" && a.Bare() == b.Bare()
}
