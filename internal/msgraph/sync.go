package msgraph

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Tiliavir/track/internal/logname"
	"github.com/Tiliavir/track/internal/model"
	"github.com/Tiliavir/track/internal/storage"
	"github.com/Tiliavir/track/internal/timecalc"
)

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Imported int
	Skipped  int
	Errors   int
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	Store *storage.Store
	// Client is the track client the events are logged under.
	Client string
	DryRun bool
	// Out receives one progress line per event; nil discards them.
	Out io.Writer
}

// Interval is a calendar event mapped onto a closed log.
type Interval struct {
	Task        string
	Description string
	Start       time.Time
	End         time.Time
}

// parseGraphTime parses a Graph API dateTime string in the given timezone.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone suffix
// when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt, tz string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}

	loc := time.UTC
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, fmt.Errorf("unknown timezone %q: %w", tz, err)
		}
		loc = l
	}

	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// oneLine collapses whitespace so a value fits on a single body line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// buildDescription combines bodyPreview and location.
func buildDescription(event Event) string {
	var parts []string
	if p := oneLine(event.BodyPreview); p != "" {
		parts = append(parts, p)
	}
	if l := oneLine(event.Location.DisplayName); l != "" {
		parts = append(parts, l)
	}
	return strings.Join(parts, " | ")
}

// shouldSkip returns true if the event should not be imported.
func shouldSkip(event Event) bool {
	switch {
	case event.IsCancelled, event.IsAllDay:
		return true
	case event.Sensitivity == "private", event.ShowAs == "free":
		return true
	case event.Start.DateTime == "", event.End.DateTime == "":
		return true
	}
	return false
}

// MapEvent converts a Graph event into an interval in local time.
func MapEvent(event Event, timezone string) (Interval, error) {
	start, err := parseGraphTime(event.Start.DateTime, timezone)
	if err != nil {
		return Interval{}, fmt.Errorf("parsing start time: %w", err)
	}
	end, err := parseGraphTime(event.End.DateTime, timezone)
	if err != nil {
		return Interval{}, fmt.Errorf("parsing end time: %w", err)
	}
	task := oneLine(event.Subject)
	if task == "" {
		task = "(no subject)"
	}
	return Interval{
		Task:        task,
		Description: buildDescription(event),
		Start:       start.In(time.Local),
		End:         end.In(time.Local),
	}, nil
}

// SyncEvents writes every importable event as a closed log of opts.Client.
// Logs are never modified, so an event whose start time is already logged
// for the client is skipped rather than updated.
func SyncEvents(events []Event, opts SyncOptions, timezone string) (SyncResult, error) {
	var result SyncResult
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	client := logname.Sanitize(opts.Client)
	existing, err := opts.Store.ListAll()
	if err != nil {
		return result, err
	}
	seen := map[string]bool{}
	for _, e := range existing {
		if e.Record.Client == client {
			seen[e.Fields[model.KeyStartTime]] = true
		}
	}

	for _, event := range events {
		if shouldSkip(event) {
			continue
		}

		iv, err := MapEvent(event, timezone)
		if err != nil {
			fmt.Fprintf(out, "  ! Error mapping event %q: %v\n", event.Subject, err)
			result.Errors++
			continue
		}

		key := iv.Start.Format(model.TimeLayout)
		if seen[key] {
			fmt.Fprintf(out, "  – Skipped:  %s (already exists)\n", iv.Task)
			result.Skipped++
			continue
		}

		if !opts.DryRun {
			if _, err := opts.Store.Import(opts.Client, iv.Task, iv.Description, iv.Start, iv.End); err != nil {
				fmt.Fprintf(out, "  ! Error saving %q: %v\n", iv.Task, err)
				result.Errors++
				continue
			}
		}
		seen[key] = true
		dur := timecalc.FormatDuration(int64(iv.End.Sub(iv.Start).Seconds()))
		fmt.Fprintf(out, "  ✓ Imported: %s (%s)\n", iv.Task, dur)
		result.Imported++
	}

	return result, nil
}
