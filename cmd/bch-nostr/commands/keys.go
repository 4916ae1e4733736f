package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/app"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/crypto"
)

func keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Print the relay public key and ledger address of the WIF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := keyPair()
			if err != nil {
				return err
			}
			defer crypto.Wipe(kp.Secret)

			addr, err := app.LedgerAddress(kp)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Public key: %s\n", kp.PublicIdentity)
			fmt.Fprintf(out, "Address:    %s\n", addr)
			return nil
		},
	}
}
