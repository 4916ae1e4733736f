package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// send <addr> <message>: publish the message, then signal it to <addr>.
func sendCmd() *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "send <addr> <message>",
		Short: "Publish a message and signal it to a BCH address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			receipt, err := wire.Messages.Send(cmd.Context(), domain.SendRequest{
				WIF:       wire.Config.WIF,
				Recipient: domain.Address(args[0]),
				Subject:   subject,
				Body:      args[1],
			})
			out := cmd.OutOrStdout()
			if receipt.EventID != "" {
				fmt.Fprintf(out, "Event: %s\n", receipt.EventID)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "TxID:  %s\n", receipt.TxID)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "subject stored in the marker")
	return cmd
}
