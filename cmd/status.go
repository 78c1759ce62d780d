package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/track/internal/model"
	"github.com/Tiliavir/track/internal/render"
	"github.com/Tiliavir/track/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List open logs and their running durations",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	current := now()
	var total float64
	rows := make([]render.OpenRow, 0, len(open))
	for _, e := range open {
		task, ok := e.Fields[model.KeyTask]
		if !ok {
			task = "?"
		}
		row := render.OpenRow{
			Client:  e.Record.Client,
			Task:    task,
			Start:   "-",
			Elapsed: "-",
			File:    e.Record.Name,
		}
		if raw := e.Fields[model.KeyStartTime]; raw != "" {
			row.Start = raw
		}
		if start, ok, err := e.Fields.StartTime(); ok && err == nil {
			h := timecalc.Hours(start, current)
			row.Elapsed = render.HumanizeHours(h)
			total += h
		}
		rows = append(rows, row)
	}

	fmt.Fprintln(cmd.OutOrStdout(), render.OpenTable(rows, total))
	return nil
}
