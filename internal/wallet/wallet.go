package wallet

import (
	"bytes"
	"context"
	"encoding/hex"
	"sort"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/cashaddr"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/crypto"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// SigHashForkID marks a Bitcoin Cash replay-protected signature.
const SigHashForkID txscript.SigHashType = 0x40

// sigHashAllForkID is the hash type every input is signed with.
const sigHashAllForkID = txscript.SigHashAll | SigHashForkID

// DustLimit is the smallest change output worth creating, in satoshis.
const DustLimit int64 = 546

// Serialised size estimates, in bytes.
const (
	txOverhead  = 10
	p2pkhOutput = 34

	// An input without its public key: outpoint, script length, a maximal
	// DER signature push with the hash type byte, the pubkey push opcode
	// and the sequence number.
	p2pkhInputBase = 36 + 1 + 1 + 72 + 1 + 4
)

// inputSize estimates a signed P2PKH input spending with pubKey: 148 bytes
// compressed, 180 uncompressed.
func inputSize(pubKey []byte) int64 { return p2pkhInputBase + int64(len(pubKey)) }

// ErrInsufficientFunds is returned when the UTXO snapshot cannot pay for a
// transaction.
var ErrInsufficientFunds = errors.New("wallet: insufficient funds")

// Wallet owns one key and the UTXO snapshot of its address.
type Wallet struct {
	priv    *btcec.PrivateKey
	pubKey  []byte
	addr    domain.Address
	script  []byte
	index   domain.LedgerIndex
	feeRate int64
	log     log.Logger

	inputSize int64

	mu      sync.Mutex
	utxos   []domain.UTXO
	pending map[wire.OutPoint]struct{}
}

// New returns a wallet for kp backed by index. feeRate is in satoshis per
// byte; values below 1 use 1.
func New(kp domain.KeyPair, index domain.LedgerIndex, feeRate int64, logger log.Logger) (*Wallet, error) {
	if index == nil {
		return nil, errors.New("wallet: no ledger index")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if feeRate < 1 {
		feeRate = 1
	}
	priv, err := crypto.PrivateKey(kp)
	if err != nil {
		return nil, errors.Wrap(err, "wallet")
	}
	pub, err := crypto.LedgerPublicKey(kp)
	if err != nil {
		return nil, errors.Wrap(err, "wallet")
	}
	addr, err := cashaddr.EncodeP2PKH(crypto.Hash160(pub))
	if err != nil {
		return nil, errors.Wrap(err, "wallet")
	}
	script, err := cashaddr.PayToAddrScript(addr)
	if err != nil {
		return nil, errors.Wrap(err, "wallet")
	}
	return &Wallet{
		priv:    priv,
		pubKey:  pub,
		addr:    addr,
		script:  script,
		index:   index,
		feeRate: feeRate,
		log:     log.With(logger, "component", "wallet", "addr", addr),

		inputSize: inputSize(pub),
		pending:   make(map[wire.OutPoint]struct{}),
	}, nil
}

// Address is the wallet's cashaddr.
func (w *Wallet) Address() domain.Address { return w.addr }

// Balance sums the current UTXO snapshot, in satoshis.
func (w *Wallet) Balance() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	var total int64
	for _, u := range w.utxos {
		total += u.Value
	}
	return total
}

// GetTransactions forwards to the ledger index.
func (w *Wallet) GetTransactions(ctx context.Context, txids []string) ([]domain.Transaction, error) {
	return w.index.GetTransactions(ctx, txids)
}

// History forwards to the ledger index.
func (w *Wallet) History(ctx context.Context, addr domain.Address) ([]domain.HistoryEntry, error) {
	return w.index.History(ctx, addr)
}

// RefreshUnspentOutputs replaces the UTXO snapshot with the indexer's view.
func (w *Wallet) RefreshUnspentOutputs(ctx context.Context) error {
	utxos, err := w.index.UTXOs(ctx, w.addr)
	if err != nil {
		return errors.Wrap(err, "wallet: refresh utxos")
	}
	w.mu.Lock()
	w.utxos = utxos
	w.pending = make(map[wire.OutPoint]struct{})
	w.mu.Unlock()

	level.Debug(w.log).Log("event", "refreshed", "utxos", len(utxos), "balance", w.Balance())
	return nil
}

// BuildTransaction pays outputs, in order, from the largest UTXOs first and
// appends a change output when the change is above the dust limit.
func (w *Wallet) BuildTransaction(_ context.Context, outputs []domain.TxOutput) (string, error) {
	if len(outputs) == 0 {
		return "", errors.New("wallet: no outputs")
	}

	tx := wire.NewMsgTx(2)
	var target int64
	size := int64(txOverhead)
	for _, o := range outputs {
		out := wire.NewTxOut(o.Value, o.Script)
		tx.AddTxOut(out)
		target += o.Value
		size += int64(out.SerializeSize())
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	candidates := make([]domain.UTXO, 0, len(w.utxos))
	for _, u := range w.utxos {
		op, err := outPoint(u)
		if err != nil {
			return "", err
		}
		if _, spent := w.pending[op]; !spent {
			candidates = append(candidates, u)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Value > candidates[j].Value })

	// 1. Select inputs until they cover the outputs plus the fee of a
	//    transaction with change.
	var (
		selected []domain.UTXO
		total    int64
		fee      int64
	)
	for _, u := range candidates {
		selected = append(selected, u)
		total += u.Value
		size += w.inputSize
		fee = (size + p2pkhOutput) * w.feeRate
		if total >= target+fee {
			break
		}
	}
	if total < target+size*w.feeRate {
		return "", errors.Wrapf(ErrInsufficientFunds, "have %s sat, need %s sat",
			humanize.Comma(total), humanize.Comma(target+size*w.feeRate))
	}

	// 2. Add change if it is worth keeping; otherwise it goes to the fee.
	if change := total - target - fee; total >= target+fee && change >= DustLimit {
		tx.AddTxOut(wire.NewTxOut(change, w.script))
	}

	prevOuts := txscript.NewMultiPrevOutFetcher(make(map[wire.OutPoint]*wire.TxOut, len(selected)))
	for _, u := range selected {
		op, err := outPoint(u)
		if err != nil {
			return "", err
		}
		tx.AddTxIn(wire.NewTxIn(&op, nil, nil))
		prevOuts.AddPrevOut(op, wire.NewTxOut(u.Value, w.script))
	}

	// 3. Sign every input over the BIP143 digest with the fork id set.
	hashes := txscript.NewTxSigHashes(tx, prevOuts)
	for i, u := range selected {
		sig, err := txscript.RawTxInWitnessSignature(tx, hashes, i, u.Value, w.script, sigHashAllForkID, w.priv)
		if err != nil {
			return "", errors.Wrapf(err, "wallet: sign input %d", i)
		}
		sigScript, err := txscript.NewScriptBuilder().AddData(sig).AddData(w.pubKey).Script()
		if err != nil {
			return "", errors.Wrapf(err, "wallet: input %d script", i)
		}
		tx.TxIn[i].SignatureScript = sigScript
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", errors.Wrap(err, "wallet: serialise")
	}
	for _, in := range tx.TxIn {
		w.pending[in.PreviousOutPoint] = struct{}{}
	}
	level.Debug(w.log).Log("event", "built", "txid", tx.TxHash().String(),
		"inputs", len(tx.TxIn), "outputs", len(tx.TxOut), "bytes", buf.Len())
	return hex.EncodeToString(buf.Bytes()), nil
}

// Broadcast submits txHex through the ledger index.
func (w *Wallet) Broadcast(ctx context.Context, txHex string) (string, error) {
	txid, err := w.index.Broadcast(ctx, txHex)
	if err != nil {
		return "", errors.Wrap(err, "wallet: broadcast")
	}
	return txid, nil
}

func outPoint(u domain.UTXO) (wire.OutPoint, error) {
	h, err := chainhash.NewHashFromStr(u.TxID)
	if err != nil {
		return wire.OutPoint{}, errors.Wrapf(err, "wallet: utxo txid %q", u.TxID)
	}
	return *wire.NewOutPoint(h, u.Vout), nil
}

// Compile-time assertions that Wallet is a Ledger and a SignalIndex.
var (
	_ domain.Ledger      = (*Wallet)(nil)
	_ domain.SignalIndex = (*Wallet)(nil)
)
