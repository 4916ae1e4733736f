package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// read <txid>: resolve a signal transaction and print the message it points at.
func readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <txid>",
		Short: "Read the message signalled by a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := wire.Messages.FetchByTxid(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "From:  %s\n", msg.Sender)
			fmt.Fprintf(out, "Event: %s\n\n", msg.EventID)
			fmt.Fprintln(out, msg.Message)
			return nil
		},
	}
}
