package model

import (
	"fmt"
	"time"
)

// TimeLayout is the local wall-clock layout used for Start time and End time.
const TimeLayout = "2006-01-02 15:04:05"

// DateLayout is the layout of the date field encoded in a log filename.
const DateLayout = "20060102"

// Body keys, in the order they are written.
const (
	KeyTask        = "Task"
	KeyDescription = "Description"
	KeyStartTime   = "Start time"
	KeyEndTime     = "End time"
)

// Status is the lifecycle state of a record. The only transition is open -> closed.
type Status int

const (
	StatusOpen Status = iota
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus maps a filename status token to a Status.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "open":
		return StatusOpen, true
	case "closed":
		return StatusClosed, true
	}
	return 0, false
}

// Record is the identity of a log, as encoded in its filename.
type Record struct {
	Date     string // YYYYMMDD
	Sequence int
	Client   string
	Status   Status
	// Name is the filename the record was decoded from; empty until read from disk.
	Name string
}

// Day parses Date as local midnight.
func (r Record) Day() (time.Time, error) {
	return time.ParseInLocation(DateLayout, r.Date, time.Local)
}

// Fields is the parsed Key: Value body of a log file.
type Fields map[string]string

func (f Fields) Task() string        { return f[KeyTask] }
func (f Fields) Description() string { return f[KeyDescription] }

// StartTime parses the Start time line. ok is false when the line is absent.
func (f Fields) StartTime() (t time.Time, ok bool, err error) {
	return f.timeField(KeyStartTime)
}

// EndTime parses the End time line. ok is false when the line is absent.
func (f Fields) EndTime() (t time.Time, ok bool, err error) {
	return f.timeField(KeyEndTime)
}

func (f Fields) timeField(key string) (time.Time, bool, error) {
	v, ok := f[key]
	if !ok || v == "" {
		return time.Time{}, false, nil
	}
	t, err := time.ParseInLocation(TimeLayout, v, time.Local)
	if err != nil {
		return time.Time{}, true, fmt.Errorf("parsing %s %q: %w", key, v, err)
	}
	return t, true, nil
}
