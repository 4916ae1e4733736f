package cashaddr

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/pkg/errors"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// PayToAddrScript returns the locking script that pays addr.
func PayToAddrScript(addr domain.Address) ([]byte, error) {
	typ, hash, err := Decode(addr)
	if err != nil {
		return nil, err
	}

	var a btcutil.Address
	switch typ {
	case TypeP2PKH:
		a, err = btcutil.NewAddressPubKeyHash(hash, &chaincfg.MainNetParams)
	case TypeP2SH:
		a, err = btcutil.NewAddressScriptHashFromHash(hash, &chaincfg.MainNetParams)
	default:
		return nil, errors.Wrapf(ErrInvalidAddress, "unsupported type %d", typ)
	}
	if err != nil {
		return nil, errors.Wrap(err, "cashaddr: build address")
	}
	return txscript.PayToAddrScript(a)
}

// FromScript returns the address a standard P2PKH or P2SH script pays.
func FromScript(script []byte) (domain.Address, bool) {
	class, addrs, _, err := txscript.ExtractPkScriptAddrs(script, &chaincfg.MainNetParams)
	if err != nil || len(addrs) != 1 {
		return "", false
	}

	var typ byte
	switch class {
	case txscript.PubKeyHashTy:
		typ = TypeP2PKH
	case txscript.ScriptHashTy:
		typ = TypeP2SH
	default:
		return "", false
	}
	addr, err := Encode(domain.CashAddrPrefix, typ, addrs[0].ScriptAddress())
	if err != nil {
		return "", false
	}
	return addr, true
}

// FromScriptPubKey returns the first address the indexer listed for spk, or
// failing that the address decoded from its script hex.
func FromScriptPubKey(spk domain.ScriptPubKey) (domain.Address, bool) {
	if len(spk.Addresses) > 0 && spk.Addresses[0] != "" {
		return spk.Addresses[0], true
	}
	if spk.Hex == "" {
		return "", false
	}
	script, err := hex.DecodeString(spk.Hex)
	if err != nil {
		return "", false
	}
	return FromScript(script)
}
