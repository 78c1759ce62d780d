package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/track/internal/period"
	"github.com/Tiliavir/track/internal/render"
	"github.com/Tiliavir/track/internal/report"
)

var (
	reportClient string
	reportPeriod string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show hours per task for a client and period",
	Long: `Aggregate the closed logs of a client over a period, broken down by task.

Periods: today, this week, last week, this month, last month,
this quarter, last quarter, this year, last year.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportClient, "client", "c", "", "Client name")
	reportCmd.Flags().StringVarP(&reportPeriod, "period", "p", "", "Period, e.g. 'this week', 'last month'")
}

func runReport(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	client := reportClient
	if client == "" {
		clients, err := store.Clients()
		if err != nil {
			return err
		}
		if len(clients) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), render.Message("No logs found.", render.ColorWarning))
			return nil
		}
		client, err = newPrompter().Select("Select client", clients)
		if err != nil {
			return err
		}
	}

	phrase := reportPeriod
	if phrase == "" {
		phrase, err = newPrompter().Select("Select period", period.Phrases)
		if err != nil {
			return err
		}
	}

	r, err := report.Build(store, client, phrase, now())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.ReportTable(r))
	return nil
}
