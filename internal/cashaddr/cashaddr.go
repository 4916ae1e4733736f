// Package cashaddr encodes and decodes Bitcoin Cash addresses in the
// CashAddr format ("bitcoincash:q...").
package cashaddr

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/pkg/errors"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// Address types carried in the version byte.
const (
	TypeP2PKH byte = 0
	TypeP2SH  byte = 1
)

const (
	charset      = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"
	checksumLen  = 8
	hash160Len   = 20
	sizeBits160  = 0
	versionShift = 3
)

var generators = [5]uint64{0x98f2bc8e61, 0x79b76d99e2, 0xf33e5fb3c4, 0xae2eabe2a8, 0x1e4f43e470}

// ErrInvalidAddress is returned for malformed or mis-checksummed addresses.
var ErrInvalidAddress = errors.New("cashaddr: invalid address")

// Encode renders a 20-byte hash of the given type under prefix.
func Encode(prefix string, typ byte, hash []byte) (domain.Address, error) {
	if len(hash) != hash160Len {
		return "", errors.Errorf("cashaddr: hash must be %d bytes, got %d", hash160Len, len(hash))
	}
	prefix = strings.ToLower(prefix)
	payload := append([]byte{typ<<versionShift | sizeBits160}, hash...)
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(err, "cashaddr: convert bits")
	}

	mod := polymod(append(append(expandPrefix(prefix), data...), make([]byte, checksumLen)...))
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteByte(':')
	for _, d := range data {
		sb.WriteByte(charset[d])
	}
	for i := 0; i < checksumLen; i++ {
		sb.WriteByte(charset[(mod>>(5*(checksumLen-1-i)))&31])
	}
	return domain.Address(sb.String()), nil
}

// EncodeP2PKH is Encode for a public-key-hash address on mainnet.
func EncodeP2PKH(hash []byte) (domain.Address, error) {
	return Encode(domain.CashAddrPrefix, TypeP2PKH, hash)
}

// Decode parses addr and returns its type and hash. A missing prefix is
// taken to be the mainnet one. Mixed-case addresses are rejected.
func Decode(addr domain.Address) (typ byte, hash []byte, err error) {
	s := strings.TrimSpace(string(addr))
	if s != strings.ToLower(s) && s != strings.ToUpper(s) {
		return 0, nil, errors.Wrap(ErrInvalidAddress, "mixed case")
	}
	s = strings.ToLower(s)

	prefix, body := domain.CashAddrPrefix, s
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		prefix, body = s[:i], s[i+1:]
	}
	if len(body) <= checksumLen {
		return 0, nil, errors.Wrap(ErrInvalidAddress, "too short")
	}

	data := make([]byte, len(body))
	for i := 0; i < len(body); i++ {
		idx := strings.IndexByte(charset, body[i])
		if idx < 0 {
			return 0, nil, errors.Wrapf(ErrInvalidAddress, "bad character %q", body[i])
		}
		data[i] = byte(idx)
	}
	if polymod(append(expandPrefix(prefix), data...)) != 0 {
		return 0, nil, errors.Wrap(ErrInvalidAddress, "checksum mismatch")
	}

	payload, err := bech32.ConvertBits(data[:len(data)-checksumLen], 5, 8, false)
	if err != nil {
		return 0, nil, errors.Wrap(ErrInvalidAddress, err.Error())
	}
	if len(payload) != 1+hash160Len || payload[0]&0x07 != sizeBits160 {
		return 0, nil, errors.Wrap(ErrInvalidAddress, fmt.Sprintf("unsupported payload length %d", len(payload)))
	}
	return payload[0] >> versionShift, payload[1:], nil
}

// expandPrefix returns the low five bits of each prefix character followed
// by the zero separator.
func expandPrefix(prefix string) []byte {
	out := make([]byte, len(prefix)+1)
	for i := 0; i < len(prefix); i++ {
		out[i] = prefix[i] & 0x1f
	}
	return out
}

func polymod(values []byte) uint64 {
	c := uint64(1)
	for _, d := range values {
		c0 := byte(c >> 35)
		c = ((c & 0x07ffffffff) << 5) ^ uint64(d)
		for i, g := range generators {
			if c0&(1<<uint(i)) != 0 {
				c ^= g
			}
		}
	}
	return c ^ 1
}
