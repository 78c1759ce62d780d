package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/track/internal/msgraph"
	"github.com/Tiliavir/track/internal/timecalc"
)

var (
	outlookSyncFrom   string
	outlookSyncTo     string
	outlookSyncDate   string
	outlookSyncDryRun bool
	outlookSyncClient string
	outlookSyncTZ     string
)

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Outlook calendar integration",
}

var outlookSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import Outlook calendar events as closed logs",
	Args:  cobra.NoArgs,
	RunE:  runOutlookSync,
}

func init() {
	outlookSyncCmd.Flags().StringVar(&outlookSyncFrom, "from", "", "Start date (YYYY-MM-DD); required when --to is specified")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTo, "to", "", "End date (YYYY-MM-DD); defaults to today")
	outlookSyncCmd.Flags().StringVar(&outlookSyncDate, "date", "", "Sync a specific date (YYYY-MM-DD)")
	outlookSyncCmd.Flags().BoolVar(&outlookSyncDryRun, "dry-run", false, "Print planned imports without writing")
	outlookSyncCmd.Flags().StringVarP(&outlookSyncClient, "client", "c", "", "Client for imported events (default from config)")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTZ, "timezone", "", "IANA timezone for event times (default from config)")
	outlookCmd.AddCommand(outlookSyncCmd)
}

func parseDay(flag, value string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s value %q: %w", flag, value, err)
	}
	return d, nil
}

// syncWindow returns the days selected by the date flags, today by default.
func syncWindow(current time.Time) (time.Time, time.Time, error) {
	switch {
	case outlookSyncDate != "":
		d, err := parseDay("date", outlookSyncDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return timecalc.StartOfDay(d), timecalc.EndOfDay(d), nil

	case outlookSyncFrom != "" || outlookSyncTo != "":
		if outlookSyncFrom == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--from is required when --to is specified")
		}
		from, err := parseDay("from", outlookSyncFrom)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to := current
		if outlookSyncTo != "" {
			if to, err = parseDay("to", outlookSyncTo); err != nil {
				return time.Time{}, time.Time{}, err
			}
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, fmt.Errorf("--to must not be before --from")
		}
		return timecalc.StartOfDay(from), timecalc.EndOfDay(to), nil
	}
	return timecalc.StartOfDay(current), timecalc.EndOfDay(current), nil
}

func runOutlookSync(cmd *cobra.Command, args []string) error {
	from, to, err := syncWindow(now())
	if err != nil {
		return err
	}

	cfg := session.cfg.Outlook
	client := outlookSyncClient
	if client == "" {
		client = cfg.DefaultClient
	}
	timezone := outlookSyncTZ
	if timezone == "" {
		timezone = cfg.Timezone
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	dryTag := ""
	if outlookSyncDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Fprintf(out, "Syncing Outlook events (%s → %s) as %q%s...\n\n",
		from.Format("2006-01-02"), to.Format("2006-01-02"), client, dryTag)

	tokenPath, err := msgraph.DefaultTokenPath()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	auth := msgraph.NewAuth(cfg.TenantID, cfg.ClientID, tokenPath, out, session.logger)
	tok, err := auth.Token(ctx)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	graph := msgraph.NewClient(ctx, auth.TokenSource(ctx, tok))

	events, err := graph.CalendarView(ctx, from, to, timezone)
	if err != nil {
		return fmt.Errorf("failed to fetch calendar events: %w", err)
	}

	result, err := msgraph.SyncEvents(events, msgraph.SyncOptions{
		Store:  store,
		Client: client,
		DryRun: outlookSyncDryRun,
		Out:    out,
	}, timezone)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Summary:")
	fmt.Fprintf(out, "  %d imported\n", result.Imported)
	fmt.Fprintf(out, "  %d skipped\n", result.Skipped)
	if result.Errors > 0 {
		return fmt.Errorf("%d events could not be imported", result.Errors)
	}
	return nil
}
