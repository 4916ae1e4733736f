package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/app"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/relayd"
)

func main() {
	var (
		addr    string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:           "relay",
		Short:         "Run an in-memory Nostr relay",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := app.NewLogger(os.Stderr, verbose)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return relayd.New(logger).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":7447", "listen address")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every connection and event")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Stderr.WriteString("relay: " + err.Error() + "\n")
		os.Exit(1)
	}
}
