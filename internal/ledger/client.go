package ledger

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/cashaddr"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// MaxBatch is the largest number of txids the endpoint accepts per request.
const MaxBatch = 20

// Options tune a Client. Zero values pick the defaults.
type Options struct {
	// Token is sent as "Authorization: Token <token>" when set.
	Token string
	// RequestsPerSecond caps the request rate (default 3).
	RequestsPerSecond float64
	HTTP              *http.Client
}

// Client talks to a bch-api style REST endpoint.
type Client struct {
	base    string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	log     log.Logger
}

// New returns a Client for base, e.g. "https://api.fullstack.cash/v5".
func New(base string, opts Options, logger log.Logger) *Client {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if opts.HTTP == nil {
		opts.HTTP = http.DefaultClient
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 3
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		token:   opts.Token,
		http:    opts.HTTP,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		log:     log.With(logger, "component", "ledger"),
	}
}

// GetTransactions returns the verbose transactions for txids, in request
// order. Input addresses missing from the node's answer are filled in from
// the spent outputs.
func (c *Client) GetTransactions(ctx context.Context, txids []string) ([]domain.Transaction, error) {
	raw, err := c.rawTransactions(ctx, txids)
	if err != nil {
		return nil, err
	}
	if err := c.resolveInputs(ctx, raw); err != nil {
		return nil, err
	}

	out := make([]domain.Transaction, len(raw))
	for i, tx := range raw {
		out[i] = tx.toDomain()
	}
	return out, nil
}

// UTXOs lists the unspent outputs of addr.
func (c *Client) UTXOs(ctx context.Context, addr domain.Address) ([]domain.UTXO, error) {
	var resp utxoResponse
	if err := c.getJSON(ctx, "/electrumx/utxos/"+url.PathEscape(addr.String()), &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.Errorf("ledger utxos %s: %s", addr, resp.Error)
	}
	return resp.UTXOs, nil
}

// History lists the transactions touching addr, unconfirmed first and then
// by height, newest first.
func (c *Client) History(ctx context.Context, addr domain.Address) ([]domain.HistoryEntry, error) {
	var resp historyResponse
	if err := c.getJSON(ctx, "/electrumx/transactions/"+url.PathEscape(addr.String()), &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.Errorf("ledger history %s: %s", addr, resp.Error)
	}
	h := resp.Transactions
	sort.SliceStable(h, func(i, j int) bool { return sortHeight(h[i].Height) > sortHeight(h[j].Height) })
	return h, nil
}

// Broadcast submits txHex and returns its txid.
func (c *Client) Broadcast(ctx context.Context, txHex string) (string, error) {
	var txids []string
	err := c.post(ctx, "/rawtransactions/sendRawTransaction", struct {
		Hexes []string `json:"hexes"`
	}{Hexes: []string{txHex}}, &txids)
	if err != nil {
		return "", err
	}
	if len(txids) != 1 || txids[0] == "" {
		return "", errors.Errorf("ledger broadcast: unexpected reply %v", txids)
	}
	level.Info(c.log).Log("event", "broadcast", "txid", txids[0])
	return txids[0], nil
}

func (c *Client) rawTransactions(ctx context.Context, txids []string) ([]rawTx, error) {
	out := make([]rawTx, 0, len(txids))
	for start := 0; start < len(txids); start += MaxBatch {
		end := start + MaxBatch
		if end > len(txids) {
			end = len(txids)
		}
		var batch []rawTx
		err := c.post(ctx, "/rawtransactions/getRawTransaction", struct {
			TxIDs   []string `json:"txids"`
			Verbose bool     `json:"verbose"`
		}{TxIDs: txids[start:end], Verbose: true}, &batch)
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, errors.Errorf("ledger getRawTransaction: asked for %d, got %d", end-start, len(batch))
		}
		out = append(out, batch...)
	}
	return out, nil
}

// resolveInputs fills vin addresses and values from the outputs they spend.
func (c *Client) resolveInputs(ctx context.Context, txs []rawTx) error {
	var prevIDs []string
	seen := make(map[string]bool)
	for _, tx := range txs {
		for _, in := range tx.Vin {
			if in.Address != "" || in.TxID == "" || seen[in.TxID] {
				continue
			}
			seen[in.TxID] = true
			prevIDs = append(prevIDs, in.TxID)
		}
	}
	if len(prevIDs) == 0 {
		return nil
	}

	prev, err := c.rawTransactions(ctx, prevIDs)
	if err != nil {
		return errors.Wrap(err, "ledger: resolve inputs")
	}
	byID := make(map[string]rawTx, len(prev))
	for _, p := range prev {
		byID[p.TxID] = p
	}

	for i := range txs {
		for j := range txs[i].Vin {
			in := &txs[i].Vin[j]
			if in.Address != "" || in.TxID == "" {
				continue
			}
			p, ok := byID[in.TxID]
			if !ok || int(in.Vout) >= len(p.Vout) {
				continue
			}
			spent := p.Vout[in.Vout]
			if a, ok := cashaddr.FromScriptPubKey(spent.ScriptPubKey); ok {
				in.Address = a
			}
			in.Value = spent.Value
		}
	}
	level.Debug(c.log).Log("event", "resolved inputs", "prevouts", len(prevIDs))
	return nil
}

// sortHeight ranks unconfirmed entries (height <= 0) above every block.
func sortHeight(h int64) int64 {
	if h <= 0 {
		return math.MaxInt64
	}
	return h
}

// Compile-time assertion that Client implements domain.LedgerIndex.
var _ domain.LedgerIndex = (*Client)(nil)
