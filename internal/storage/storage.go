// Package storage is the directory-backed log store. Each record is one file
// whose name carries its identity (see logname) and whose body carries its
// descriptive metadata (see logbody).
//
// The store assumes a single writer. Sequence allocation scans the directory
// and then writes, so two processes starting a log on the same day can pick
// the same sequence number.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/track/internal/logbody"
	"github.com/Tiliavir/track/internal/logname"
	"github.com/Tiliavir/track/internal/model"
	"github.com/Tiliavir/track/internal/trackerr"
)

// Entry pairs a record identity with its parsed body.
type Entry struct {
	Record model.Record
	Fields model.Fields
}

// Store manages the log files inside one directory.
type Store struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for dates and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns a Store over dir. The directory must already exist.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:    dir,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the log directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the full path of a log file name.
func (s *Store) Path(name string) string { return filepath.Join(s.dir, name) }

// scan decodes every managed filename in the directory, sorted by name.
// Foreign files are skipped.
func (s *Store) scan(match func(name string) bool) ([]model.Record, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, trackerr.ErrIOFailure.Wrap(err, "reading log directory")
	}
	var recs []model.Record
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || (match != nil && !match(name)) {
			continue
		}
		rec, ok := logname.Decode(name)
		if !ok {
			s.logger.Debug("skipping foreign file", "name", name)
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Name < recs[j].Name })
	return recs, nil
}

func (s *Store) load(recs []model.Record) ([]Entry, error) {
	entries := make([]Entry, 0, len(recs))
	for _, rec := range recs {
		fields, err := logbody.ReadFile(s.Path(rec.Name))
		if err != nil {
			return nil, trackerr.ErrIOFailure.Wrap(err, "reading log body")
		}
		entries = append(entries, Entry{Record: rec, Fields: fields})
	}
	return entries, nil
}

// NextSequence returns one more than the highest sequence recorded for date,
// across all clients and statuses, or 1 when there is none.
func (s *Store) NextSequence(date string) (int, error) {
	recs, err := s.scan(func(name string) bool { return strings.HasPrefix(name, date+"-") })
	if err != nil {
		return 0, err
	}
	maxSeq := 0
	for _, rec := range recs {
		if rec.Date == date && rec.Sequence > maxSeq {
			maxSeq = rec.Sequence
		}
	}
	return maxSeq + 1, nil
}

// Create starts a new open log for client dated today.
func (s *Store) Create(client, task, description string) (Entry, error) {
	now := s.now()
	return s.write(client, model.StatusOpen, now, logbody.Format(task, description, now))
}

// Import writes an already finished interval as a closed log dated on the
// day of start.
func (s *Store) Import(client, task, description string, start, end time.Time) (Entry, error) {
	body := logbody.Format(task, description, start) + logbody.EndLine(end)
	return s.write(client, model.StatusClosed, start, body)
}

func (s *Store) write(client string, status model.Status, day time.Time, body string) (Entry, error) {
	safe := logname.Sanitize(client)
	if safe == "" {
		return Entry{}, trackerr.ErrFormat.WithMessagef("client name %q is empty after sanitizing", client)
	}
	date := day.Format(model.DateLayout)
	seq, err := s.NextSequence(date)
	if err != nil {
		return Entry{}, err
	}
	name := logname.Encode(date, seq, safe, status)
	rec, ok := logname.Decode(name)
	if !ok {
		return Entry{}, trackerr.ErrFormat.WithMessagef("client name %q does not produce a valid filename", client)
	}

	path := s.Path(name)
	// O_EXCL turns a lost sequence race into an error instead of an overwrite.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return Entry{}, trackerr.ErrIOFailure.Wrap(err, "creating "+name)
	}
	if _, err := f.WriteString(body); err != nil {
		f.Close()
		_ = os.Remove(path)
		return Entry{}, trackerr.ErrIOFailure.Wrap(err, "writing "+name)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return Entry{}, trackerr.ErrIOFailure.Wrap(err, "closing "+name)
	}

	s.logger.Info("log created", "name", name, "status", status.String())
	return Entry{Record: rec, Fields: logbody.Parse(body)}, nil
}

// ListOpen returns the open logs ordered by filename. The order is
// lexicographic, so "20240101-10-..." sorts before "20240101-2-...".
func (s *Store) ListOpen() ([]Entry, error) {
	recs, err := s.scan(func(name string) bool { return strings.HasSuffix(name, logname.OpenSuffix) })
	if err != nil {
		return nil, err
	}
	return s.load(recs)
}

// ListAll returns every managed log with its body, ordered by filename.
func (s *Store) ListAll() ([]Entry, error) {
	recs, err := s.scan(nil)
	if err != nil {
		return nil, err
	}
	return s.load(recs)
}

// Close appends the End time line to an open log and renames it to its
// closed filename. Closing a log that is not open on disk fails with
// trackerr.ErrNotFound.
func (s *Store) Close(rec model.Record) (Entry, error) {
	name := rec.Name
	if name == "" || rec.Status != model.StatusOpen {
		name = logname.Filename(rec, model.StatusOpen)
	}
	path := s.Path(name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, trackerr.ErrNotFound.WithMessagef("no open log %s", name)
		}
		return Entry{}, trackerr.ErrIOFailure.Wrap(err, "stat "+name)
	}
	current, ok := logname.Decode(name)
	if !ok || current.Status != model.StatusOpen {
		return Entry{}, trackerr.ErrFormat.WithMessagef("unexpected filename format: %s", name)
	}
	// Only the status token changes; the client part is kept byte for byte.
	closedName := strings.TrimSuffix(name, logname.OpenSuffix) + logname.ClosedSuffix
	if _, err := os.Stat(s.Path(closedName)); err == nil {
		return Entry{}, trackerr.ErrIOFailure.WithMessagef("%s already exists", closedName)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, trackerr.ErrNotFound.WithMessagef("no open log %s", name)
		}
		return Entry{}, trackerr.ErrIOFailure.Wrap(err, "opening "+name)
	}
	if _, err := f.WriteString(logbody.EndLine(s.now())); err != nil {
		f.Close()
		return Entry{}, trackerr.ErrIOFailure.Wrap(err, "appending end time to "+name)
	}
	if err := f.Close(); err != nil {
		return Entry{}, trackerr.ErrIOFailure.Wrap(err, "closing "+name)
	}

	if err := os.Rename(path, s.Path(closedName)); err != nil {
		return Entry{}, trackerr.ErrIOFailure.Wrap(err, fmt.Sprintf("renaming %s to %s", name, closedName))
	}

	closed, _ := logname.Decode(closedName)
	fields, err := logbody.ReadFile(s.Path(closedName))
	if err != nil {
		return Entry{}, trackerr.ErrIOFailure.Wrap(err, "reading "+closedName)
	}
	s.logger.Info("log closed", "name", closedName)
	return Entry{Record: closed, Fields: fields}, nil
}

// Clients returns the distinct clients of all managed logs, sorted
// case-insensitively.
func (s *Store) Clients() ([]string, error) {
	recs, err := s.scan(nil)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, rec := range recs {
		seen[rec.Client] = true
	}
	return sortedKeys(seen), nil
}

// Tasks returns the distinct non-empty tasks recorded for client, sorted
// case-insensitively. The client is compared after sanitizing.
func (s *Store) Tasks(client string) ([]string, error) {
	entries, err := s.ListAll()
	if err != nil {
		return nil, err
	}
	want := logname.Sanitize(client)
	seen := map[string]bool{}
	for _, e := range entries {
		if want == "" || e.Record.Client != want {
			continue
		}
		if task := e.Fields.Task(); task != "" {
			seen[task] = true
		}
	}
	return sortedKeys(seen), nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li != lj {
			return li < lj
		}
		return out[i] < out[j]
	})
	return out
}
