// Package export writes the closed logs of a period as CSV, JSON or a
// SQLite database.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Tiliavir/track/internal/report"
)

// Formats lists the accepted --format values.
var Formats = []string{"csv", "json", "sqlite"}

// Record is the exported shape of one closed log.
type Record struct {
	Date        string  `json:"date"`
	Sequence    int     `json:"sequence"`
	Client      string  `json:"client"`
	Task        string  `json:"task"`
	Description string  `json:"description"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	Hours       float64 `json:"hours"`
	File        string  `json:"file"`
}

// FromLines converts aggregated lines into export records.
func FromLines(lines []report.Line) []Record {
	out := make([]Record, 0, len(lines))
	for _, l := range lines {
		out = append(out, Record{
			Date:        l.Record.Date,
			Sequence:    l.Record.Sequence,
			Client:      l.Record.Client,
			Task:        l.Task,
			Description: l.Description,
			Start:       l.Start,
			End:         l.End,
			Hours:       l.Hours,
			File:        l.Record.Name,
		})
	}
	return out
}

const csvHeader = "date,sequence,client,task,description,start,end,hours"

// WriteCSV writes a header and one row per record.
func WriteCSV(w io.Writer, records []Record) error {
	if _, err := fmt.Fprintln(w, csvHeader); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	for _, r := range records {
		_, err := fmt.Fprintf(w, "%s,%d,%s,%s,%s,%s,%s,%.2f\n",
			csvEscape(r.Date),
			r.Sequence,
			csvEscape(r.Client),
			csvEscape(r.Task),
			csvEscape(r.Description),
			csvEscape(r.Start),
			csvEscape(r.End),
			r.Hours,
		)
		if err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	}
	return nil
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteJSON writes records as an indented JSON array. No records yield "[]".
func WriteJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
