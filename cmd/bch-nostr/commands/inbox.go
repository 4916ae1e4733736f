package commands

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// inbox <addr>: show signals recorded by check, or fetch the unread ones.
func inboxCmd() *cobra.Command {
	var unread, fetch bool
	cmd := &cobra.Command{
		Use:   "inbox <addr>",
		Short: "Show the local inbox for an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := domain.Address(args[0])
			out := cmd.OutOrStdout()

			if fetch {
				msgs, err := wire.Messages.FetchUnread(cmd.Context(), addr)
				if err != nil {
					return err
				}
				for _, m := range msgs {
					fmt.Fprintf(out, "[%s] %s\n", m.Sender, m.Message)
				}
				return nil
			}

			entries, err := wire.Messages.Inbox(addr, unread)
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"", "TxID", "From", "Subject", "When"})
			table.SetAutoWrapText(false)
			for _, e := range entries {
				mark := "*"
				if e.Read {
					mark = ""
				}
				table.Append([]string{mark, e.TxID, e.Sender.String(), e.Subject, when(e.Timestamp)})
			}
			table.Render()
			if n := countUnread(entries); n > 0 {
				fmt.Fprintf(out, "%d unread; use --fetch to read them\n", n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&unread, "unread", false, "only show unread signals")
	cmd.Flags().BoolVar(&fetch, "fetch", false, "fetch and print every unread message")
	return cmd
}

func countUnread(entries []domain.InboxEntry) int {
	n := 0
	for _, e := range entries {
		if !e.Read {
			n++
		}
	}
	return n
}
