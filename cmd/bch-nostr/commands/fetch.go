package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <eventId>",
		Short: "Fetch an event's content from the relay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := wire.Fetcher.Fetch(cmd.Context(), args[0], wire.Config.RelayURL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), content)
			return nil
		},
	}
}
