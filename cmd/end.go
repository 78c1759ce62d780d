package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/track/internal/render"
	"github.com/Tiliavir/track/internal/storage"
	"github.com/Tiliavir/track/internal/trackerr"
)

var endName string

var endCmd = &cobra.Command{
	Use:   "end",
	Short: "End an open tracking log",
	Long: `Close an open log by appending its end time. With several open logs
the one to close is chosen interactively or with --name.`,
	Args: cobra.NoArgs,
	RunE: runEnd,
}

func init() {
	endCmd.Flags().StringVar(&endName, "name", "", "File name of the open log to close")
}

func runEnd(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	open, err := store.ListOpen()
	if err != nil {
		return err
	}
	if len(open) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), render.Message("No open logs found.", render.ColorWarning))
		return nil
	}

	var chosen storage.Entry
	switch {
	case endName != "":
		e, ok := findOpen(open, endName)
		if !ok {
			return trackerr.ErrNotFound.WithMessagef("no open log named %s", endName)
		}
		chosen = e
	case len(open) == 1:
		chosen = open[0]
	default:
		names := make([]string, 0, len(open))
		for _, e := range open {
			names = append(names, e.Record.Name)
		}
		selected, err := newPrompter().Select("Select log to close", names)
		if err != nil {
			return err
		}
		chosen, _ = findOpen(open, selected)
	}

	closed, err := store.Close(chosen.Record)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Closed %s\n%s", closed.Record.Client, closed.Record.Name)
	start, okStart, errStart := closed.Fields.StartTime()
	end, okEnd, errEnd := closed.Fields.EndTime()
	if okStart && okEnd && errStart == nil && errEnd == nil {
		body += "\nElapsed: " + formatElapsed(int64(end.Sub(start).Seconds()))
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.Panel("track end", body, render.ColorSuccess))
	return nil
}

func findOpen(open []storage.Entry, name string) (storage.Entry, bool) {
	for _, e := range open {
		if e.Record.Name == name {
			return e, true
		}
	}
	return storage.Entry{}, false
}

func formatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
