package commands

import (
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
)

// check <addr>: list signals sent to <addr> and merge them into the inbox.
func checkCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "check <addr>",
		Short: "List incoming message signals for an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = wire.Config.DefaultLimit
			}
			records, err := wire.Messages.ScanForSignals(cmd.Context(), domain.Address(args[0]), limit)
			if err != nil {
				return err
			}
			renderRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "signals to show; 0 shows all")
	return cmd
}

func renderRecords(w io.Writer, records []domain.MarkerRecord) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"TxID", "From", "Subject", "When"})
	table.SetAutoWrapText(false)
	for _, r := range records {
		table.Append([]string{r.TxID, r.Sender.String(), r.Subject, when(r.Timestamp)})
	}
	table.Render()
}

// when renders a ledger timestamp; zero means not yet confirmed.
func when(ts int64) string {
	if ts == 0 {
		return "unconfirmed"
	}
	return humanize.Time(time.Unix(ts, 0))
}
