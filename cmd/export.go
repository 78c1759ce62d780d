package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/track/internal/export"
	"github.com/Tiliavir/track/internal/period"
	"github.com/Tiliavir/track/internal/render"
	"github.com/Tiliavir/track/internal/report"
)

var (
	exportFormat string
	exportPeriod string
	exportClient string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the closed logs of a period",
	Long: `Export the closed logs whose start lies in the period as CSV or JSON
(to stdout unless --output is given) or into a SQLite database. Re-exporting
into the same database updates rows in place.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: "+strings.Join(export.Formats, ", "))
	exportCmd.Flags().StringVarP(&exportPeriod, "period", "p", "this week", "Period, e.g. 'this month'")
	exportCmd.Flags().StringVarP(&exportClient, "client", "c", "", "Only export this client")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (required for sqlite)")
}

func runExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(exportFormat)
	if !slices.Contains(export.Formats, format) {
		return fmt.Errorf("unknown format %q (use one of: %s)", exportFormat, strings.Join(export.Formats, ", "))
	}
	if format == "sqlite" && exportOutput == "" {
		return fmt.Errorf("--output is required for the sqlite format")
	}

	rng, err := period.Resolve(exportPeriod, now())
	if err != nil {
		return err
	}
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	entries, err := store.ListAll()
	if err != nil {
		return err
	}
	var lines []report.Line
	if exportClient != "" {
		lines = report.Collect(entries, exportClient, rng)
	} else {
		lines = report.CollectAll(entries, rng)
	}
	records := export.FromLines(lines)

	if format == "sqlite" {
		n, err := export.WriteSQLite(exportOutput, records, now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), render.Panel("track export",
			fmt.Sprintf("Exported %d records to %s", n, exportOutput), render.ColorSuccess))
		return nil
	}

	if exportOutput == "" {
		if err := writeRecords(cmd.OutOrStdout(), format, records); err != nil {
			return err
		}
	} else if err := writeOutputFile(exportOutput, format, records); err != nil {
		return err
	}
	session.logger.Info("export written", "format", format, "records", len(records))
	return nil
}

func writeRecords(w io.Writer, format string, records []export.Record) error {
	if format == "json" {
		return export.WriteJSON(w, records)
	}
	return export.WriteCSV(w, records)
}

// createOutput opens the --output file.
var createOutput = func(path string) (io.WriteCloser, error) { return os.Create(path) }

// writeOutputFile writes records to path. A failing close is returned.
func writeOutputFile(path, format string, records []export.Record) error {
	f, err := createOutput(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := writeRecords(f, format, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
