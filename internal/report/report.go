// Package report aggregates closed logs into hours per task over a period.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/track/internal/logname"
	"github.com/Tiliavir/track/internal/model"
	"github.com/Tiliavir/track/internal/period"
	"github.com/Tiliavir/track/internal/storage"
	"github.com/Tiliavir/track/internal/timecalc"
)

// UnknownTask labels logs without a Task line.
const UnknownTask = "Unknown"

// Line is one closed log selected for a period.
type Line struct {
	Record      model.Record
	Task        string
	Description string
	Start       string
	End         string
	// At is the parsed start, or the filename date at midnight when the start
	// does not parse. It decides whether the log falls in the period.
	At    time.Time
	Hours float64
}

// Collect selects the closed logs of client whose start lies in rng. The
// client is compared after sanitizing, so "Acme/Corp" finds logs stored as
// "Acme-Corp". An empty client matches nothing. Logs without a Start time or
// End time are skipped.
func Collect(entries []storage.Entry, client string, rng period.Range) []Line {
	want := logname.Sanitize(client)
	if want == "" {
		return nil
	}
	return collect(entries, rng, func(rec model.Record) bool { return rec.Client == want })
}

// CollectAll is Collect across every client.
func CollectAll(entries []storage.Entry, rng period.Range) []Line {
	return collect(entries, rng, func(model.Record) bool { return true })
}

func collect(entries []storage.Entry, rng period.Range, match func(model.Record) bool) []Line {
	var lines []Line
	for _, e := range entries {
		if e.Record.Status != model.StatusClosed || !match(e.Record) {
			continue
		}
		start := e.Fields[model.KeyStartTime]
		end := e.Fields[model.KeyEndTime]
		if start == "" || end == "" {
			continue
		}
		at, ok := inclusionTime(e)
		if !ok || !rng.Contains(at) {
			continue
		}
		task := e.Fields.Task()
		if task == "" {
			task = UnknownTask
		}
		lines = append(lines, Line{
			Record:      e.Record,
			Task:        task,
			Description: e.Fields.Description(),
			Start:       start,
			End:         end,
			At:          at,
			Hours:       hours(e.Fields),
		})
	}
	return lines
}

func inclusionTime(e storage.Entry) (time.Time, bool) {
	if t, ok, err := e.Fields.StartTime(); ok && err == nil {
		return t, true
	}
	day, err := e.Record.Day()
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// hours is zero when either timestamp does not parse.
func hours(f model.Fields) float64 {
	start, _, err := f.StartTime()
	if err != nil {
		return 0
	}
	end, _, err := f.EndTime()
	if err != nil {
		return 0
	}
	return timecalc.Hours(start, end)
}

// Report is the per-task breakdown for one client and period.
type Report struct {
	Client string
	Phrase string
	Range  period.Range
	Tasks  map[string]float64
	Total  float64
}

// Row is one task line of a report.
type Row struct {
	Task  string
	Hours float64
}

// Aggregate sums the hours of client's closed logs in rng per task.
func Aggregate(entries []storage.Entry, client string, rng period.Range) Report {
	r := Report{Client: client, Range: rng, Tasks: map[string]float64{}}
	for _, l := range Collect(entries, client, rng) {
		r.Tasks[l.Task] += l.Hours
		r.Total += l.Hours
	}
	return r
}

// Build resolves phrase relative to now and aggregates the store's logs.
func Build(s *storage.Store, client, phrase string, now time.Time) (Report, error) {
	rng, err := period.Resolve(phrase, now)
	if err != nil {
		return Report{}, err
	}
	entries, err := s.ListAll()
	if err != nil {
		return Report{}, err
	}
	r := Aggregate(entries, client, rng)
	r.Phrase = phrase
	return r, nil
}

// Rows returns the tasks sorted case-insensitively.
func (r Report) Rows() []Row {
	rows := make([]Row, 0, len(r.Tasks))
	for task, h := range r.Tasks {
		rows = append(rows, Row{Task: task, Hours: h})
	}
	sort.Slice(rows, func(i, j int) bool {
		li, lj := strings.ToLower(rows[i].Task), strings.ToLower(rows[j].Task)
		if li != lj {
			return li < lj
		}
		return rows[i].Task < rows[j].Task
	})
	return rows
}
