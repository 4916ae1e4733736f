package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/crypto"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// signal <addr> <eventId>: write a marker transaction for an existing event.
func signalCmd() *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "signal <addr> <eventId>",
		Short: "Write a MSG NOSTR marker to <addr> and print the txid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := keyPair()
			if err != nil {
				return err
			}
			defer crypto.Wipe(kp.Secret)

			ledger, err := wire.OpenWallet(kp)
			if err != nil {
				return err
			}
			txid, err := wire.Writer.WriteSignal(cmd.Context(), ledger, domain.Address(args[0]), args[1], subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), txid)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "subject stored in the marker")
	return cmd
}
