// Package period resolves human period phrases such as "last month" into
// inclusive local date ranges.
package period

import (
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/track/internal/timecalc"
	"github.com/Tiliavir/track/internal/trackerr"
)

// Phrases is the accepted vocabulary, in display order.
var Phrases = []string{
	"today",
	"this week", "last week",
	"this month", "last month",
	"this quarter", "last quarter",
	"this year", "last year",
}

// Range is an inclusive [Start, End] interval.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// InvalidPeriodError reports an unrecognized phrase together with the
// vocabulary a user may choose from.
type InvalidPeriodError struct {
	Phrase  string
	Reason  string
	Allowed []string
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period %q: %s (use one of: %s)", e.Phrase, e.Reason, strings.Join(e.Allowed, ", "))
}

func (e *InvalidPeriodError) Is(target error) bool {
	return target == trackerr.ErrInvalidPeriod
}

type rangeFunc func(time.Time) (time.Time, time.Time)

var units = map[string]rangeFunc{
	"week":    timecalc.WeekRange,
	"month":   timecalc.MonthRange,
	"quarter": timecalc.QuarterRange,
	"year":    timecalc.YearRange,
}

// Resolve maps phrase to a range relative to now. Matching is
// case-insensitive and ignores surrounding and repeated whitespace.
func Resolve(phrase string, now time.Time) (Range, error) {
	words := strings.Fields(strings.ToLower(phrase))
	if len(words) == 1 && words[0] == "today" {
		return Range{Start: timecalc.StartOfDay(now), End: timecalc.EndOfDay(now)}, nil
	}
	if len(words) != 2 || (words[0] != "this" && words[0] != "last") {
		return Range{}, invalid(phrase, "use 'today', 'this <unit>' or 'last <unit>'")
	}
	fn, ok := units[words[1]]
	if !ok {
		return Range{}, invalid(phrase, "unknown unit, use week, month, quarter or year")
	}

	ref := now
	if words[0] == "last" {
		ref = previousReference(words[1], now, fn)
	}
	start, end := fn(ref)
	return Range{Start: start, End: end}, nil
}

// previousReference returns a day inside the period preceding the one that
// contains now.
func previousReference(unit string, now time.Time, fn rangeFunc) time.Time {
	if unit == "week" {
		return now.AddDate(0, 0, -7)
	}
	start, _ := fn(now)
	return start.AddDate(0, 0, -1)
}

func invalid(phrase, reason string) error {
	return &InvalidPeriodError{Phrase: phrase, Reason: reason, Allowed: Phrases}
}
