package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/crypto"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// post <message>: sign and publish a text note.
func postCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post <message>",
		Short: "Publish a message to the relay and print its event id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := keyPair()
			if err != nil {
				return err
			}
			defer crypto.Wipe(kp.Secret)

			id, err := wire.Publisher.Publish(cmd.Context(), domain.PublishRequest{
				Secret:         kp.Secret,
				PublicIdentity: kp.PublicIdentity,
				RelayURL:       wire.Config.RelayURL,
				Content:        args[0],
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}
