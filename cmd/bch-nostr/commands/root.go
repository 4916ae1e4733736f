package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/app"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

var (
	home      string
	relayURL  string
	ledgerURL string
	wif       string
	timeout   time.Duration
	verbose   bool

	wire *app.Wire
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bch-nostr",
		Short:         "Signal Nostr messages through Bitcoin Cash transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				home = app.DefaultHome()
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			cfg, err := app.LoadConfig(home)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("relay") {
				cfg.RelayURL = relayURL
			}
			if flags.Changed("ledger") {
				cfg.LedgerURL = ledgerURL
			}
			if flags.Changed("wif") {
				cfg.WIF = wif
			}
			if flags.Changed("timeout") {
				cfg.FetchTimeout = timeout
			}

			wire, err = app.NewWire(cfg, app.NewLogger(cmd.ErrOrStderr(), verbose))
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&home, "home", "", "state dir (default ~/.bch-nostr)")
	pf.StringVar(&relayURL, "relay", app.DefaultRelayURL, "relay websocket URL")
	pf.StringVar(&ledgerURL, "ledger", app.DefaultLedgerURL, "bch-api compatible REST base URL")
	pf.StringVar(&wif, "wif", "", "private key in WIF (or set "+app.EnvWIF+")")
	pf.DurationVar(&timeout, "timeout", app.DefaultFetchTimeout, "relay wait per fetch")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		keysCmd(), postCmd(), signalCmd(), sendCmd(),
		checkCmd(), readCmd(), fetchCmd(), inboxCmd(),
	)
	return root
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("error:", err)
		return err
	}
	return nil
}

// keyPair derives the configured key; callers wipe the secret when done.
func keyPair() (domain.KeyPair, error) {
	kp, err := wire.KeyPair()
	if err != nil {
		return domain.KeyPair{}, errors.Wrap(err, "keys")
	}
	return kp, nil
}
