package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/track/internal/config"
	"github.com/Tiliavir/track/internal/prompt"
	"github.com/Tiliavir/track/internal/trackerr"
)

// scripted answers prompts from a fixed list and records the titles asked.
type scripted struct {
	answers []string
	asked   []string
}

func (s *scripted) next(title string) (string, error) {
	s.asked = append(s.asked, title)
	if len(s.answers) == 0 {
		return "", trackerr.ErrCancelled
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func (s *scripted) Select(title string, _ []string) (string, error) { return s.next(title) }
func (s *scripted) Text(title, _ string) (string, error)            { return s.next(title) }

type harness struct {
	t       *testing.T
	logDir  string
	cfgPath string
	clock   time.Time
	prompts *scripted
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		logDir:  t.TempDir(),
		cfgPath: filepath.Join(t.TempDir(), "config.yaml"),
		clock:   time.Date(2024, 1, 15, 9, 0, 0, 0, time.Local),
		prompts: &scripted{},
	}
	t.Setenv(config.EnvLogPath, h.logDir)

	oldNow, oldPrompter, oldConfigPath := now, newPrompter, configPath
	now = func() time.Time { return h.clock }
	newPrompter = func() prompt.Prompter { return h.prompts }
	configPath = func() (string, error) { return h.cfgPath, nil }
	t.Cleanup(func() {
		now, newPrompter, configPath = oldNow, oldPrompter, oldConfigPath
	})
	return h
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, stderr, err := h.run(args...)
	require.NoError(h.t, err, "stderr: %s", stderr)
	return out
}

func (h *harness) files() []string {
	h.t.Helper()
	entries, err := os.ReadDir(h.logDir)
	require.NoError(h.t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestStartWithFlags(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("start", "-c", "Acme", "-t", "Design", "-d", "")

	assert.Contains(t, out, "Started Acme")
	assert.Contains(t, out, "20240115-1---Acme---open.log")
	assert.Equal(t, []string{"20240115-1---Acme---open.log"}, h.files())
	assert.Empty(t, h.prompts.asked)
}

func TestStartPromptsForMissingValues(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start", "-c", "Acme", "-t", "Design", "-d", "x")

	h.prompts.answers = []string{newClientChoice, "  ", "Globex", "Ops", "kickoff"}
	h.mustRun("start")

	assert.Equal(t, []string{"Select client", "New client name", "New client name", "Task", "Description"}, h.prompts.asked)
	assert.Contains(t, h.files(), "20240115-2---Globex---open.log")

	data, err := os.ReadFile(filepath.Join(h.logDir, "20240115-2---Globex---open.log"))
	require.NoError(t, err)
	assert.Equal(t, "Task: Ops\nDescription: kickoff\nStart time: 2024-01-15 09:00:00\n", string(data))
}

func TestStartOffersKnownTasks(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start", "-c", "Acme", "-t", "Design", "-d", "")

	h.prompts.answers = []string{"Design"}
	h.mustRun("start", "-c", "Acme", "-d", "")
	assert.Equal(t, []string{"Select task for Acme"}, h.prompts.asked)
}

func TestStartEmptyClient(t *testing.T) {
	h := newHarness(t)
	h.prompts.answers = []string{"   "}
	_, _, err := h.run("start")
	assert.EqualError(t, err, "client name cannot be empty")
	assert.Empty(t, h.files())
}

func TestStartCancelled(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("start", "-t", "Design")
	assert.True(t, errors.Is(err, trackerr.ErrCancelled))
}

func TestEnd(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("end")
	assert.Contains(t, out, "No open logs found.")

	h.mustRun("start", "-c", "Acme", "-t", "Design", "-d", "")
	h.clock = h.clock.Add(90 * time.Minute)
	out = h.mustRun("end")
	assert.Contains(t, out, "Closed Acme")
	assert.Contains(t, out, "Elapsed: 1h 30m 0s")
	assert.Equal(t, []string{"20240115-1---Acme---closed.log"}, h.files())
	assert.Empty(t, h.prompts.asked)
}

func TestEndChoosesAmongSeveral(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start", "-c", "Acme", "-t", "Design", "-d", "")
	h.mustRun("start", "-c", "Globex", "-t", "Ops", "-d", "")

	h.prompts.answers = []string{"20240115-2---Globex---open.log"}
	h.mustRun("end")
	assert.Equal(t, []string{"Select log to close"}, h.prompts.asked)
	assert.ElementsMatch(t, []string{"20240115-1---Acme---open.log", "20240115-2---Globex---closed.log"}, h.files())

	h.mustRun("end", "--name", "20240115-1---Acme---open.log")
	assert.ElementsMatch(t, []string{"20240115-1---Acme---closed.log", "20240115-2---Globex---closed.log"}, h.files())
}

func TestEndUnknownName(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start", "-c", "Acme", "-t", "Design", "-d", "")
	_, _, err := h.run("end", "--name", "nope.log")
	assert.True(t, errors.Is(err, trackerr.ErrNotFound))
}

func TestStatus(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("status")
	assert.Contains(t, out, "No open logs found.")

	h.mustRun("start", "-c", "Acme", "-t", "Design", "-d", "")
	h.clock = h.clock.Add(65 * time.Minute)
	out = h.mustRun("status")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "2024-01-15 09:00:00")
	assert.Contains(t, out, "1h 05m")
	assert.Contains(t, out, "Total running: 1.08 hours")
}

func TestReport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start", "-c", "Acme", "-t", "Design", "-d", "")
	h.clock = h.clock.Add(150 * time.Minute)
	h.mustRun("end")

	out := h.mustRun("report", "-c", "Acme", "-p", "this month")
	assert.Contains(t, out, "Report: Acme — this month")
	assert.Contains(t, out, "Design")
	assert.Contains(t, out, "2.50")
	assert.Contains(t, out, "Total: 2.50 hours")

	h.prompts.answers = []string{"Acme", "last month"}
	out = h.mustRun("report")
	assert.Equal(t, []string{"Select client", "Select period"}, h.prompts.asked)
	assert.Contains(t, out, "No data")
}

func TestReportInvalidPeriod(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("report", "-c", "Acme", "-p", "next week")
	require.True(t, errors.Is(err, trackerr.ErrInvalidPeriod))
	assert.Contains(t, err.Error(), "this quarter")
}

func TestReportNoLogs(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("report")
	assert.Contains(t, out, "No logs found.")
}

func TestClientsAndTasks(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start", "-c", "Globex", "-t", "Ops", "-d", "")
	h.mustRun("start", "-c", "Acme", "-t", "review", "-d", "")
	h.mustRun("start", "-c", "Acme", "-t", "Design", "-d", "")

	out := h.mustRun("clients")
	assert.Less(t, strings.Index(out, "Acme"), strings.Index(out, "Globex"))

	out = h.mustRun("tasks", "-c", "Acme")
	assert.Less(t, strings.Index(out, "Design"), strings.Index(out, "review"))
	assert.NotContains(t, out, "Ops")
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start", "-c", "Acme", "-t", "Design", "-d", "")
	h.clock = h.clock.Add(time.Hour)
	h.mustRun("end")
	h.mustRun("start", "-c", "Globex", "-t", "Ops", "-d", "")

	out := h.mustRun("export", "-p", "today")
	assert.Equal(t,
		"date,sequence,client,task,description,start,end,hours\n"+
			"20240115,1,Acme,Design,,2024-01-15 09:00:00,2024-01-15 10:00:00,1.00\n",
		out)

	out = h.mustRun("export", "--format", "json", "-c", "Globex")
	assert.Equal(t, "[]\n", out)

	out = h.mustRun("export", "--format", "json")
	var recs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "Acme", recs[0]["client"])

	dbPath := filepath.Join(t.TempDir(), "track.db")
	_, stderr, err := h.run("export", "--format", "sqlite", "-o", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Exported 1 records")
	assert.FileExists(t, dbPath)
}

func TestExportBadArguments(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("export", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, _, err = h.run("export", "--format", "sqlite")
	assert.ErrorContains(t, err, "--output")

	_, _, err = h.run("export", "-p", "someday")
	assert.True(t, errors.Is(err, trackerr.ErrInvalidPeriod))
}

func TestConfigLogPath(t *testing.T) {
	h := newHarness(t)
	dir := filepath.Join(t.TempDir(), "logs")
	out := h.mustRun("config", "log-path", dir)
	assert.Contains(t, out, "Saved log path")

	cfg, err := config.LoadFrom(h.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.LogPath)

	out = h.mustRun("config")
	assert.Contains(t, out, h.logDir)
	assert.Contains(t, out, "default_client: Meetings")
}

func TestLogDirAskedWhenUnset(t *testing.T) {
	h := newHarness(t)
	t.Setenv(config.EnvLogPath, "")
	dir := filepath.Join(t.TempDir(), "asked")
	h.prompts.answers = []string{dir}

	h.mustRun("clients")
	assert.Equal(t, []string{"Log folder"}, h.prompts.asked)

	cfg, err := config.LoadFrom(h.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.LogPath)
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 1, printError(&buf, trackerr.ErrCancelled))
	assert.Contains(t, buf.String(), "Cancelled.")

	buf.Reset()
	assert.Equal(t, 2, printError(&buf, trackerr.ErrIOFailure.WithMessage("disk full")))
	assert.Contains(t, buf.String(), "disk full")

	buf.Reset()
	assert.Equal(t, 1, printError(&buf, errors.New("boom")))
	assert.Contains(t, buf.String(), "Error: boom")
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{30, "30s"},
		{59, "59s"},
		{60, "1m 0s"},
		{90, "1m 30s"},
		{3600, "1h 0m 0s"},
		{3661, "1h 1m 1s"},
		{7322, "2h 2m 2s"},
		{-5, "0s"},
	}
	for _, tt := range tests {
		got := formatElapsed(tt.seconds)
		if got != tt.want {
			t.Errorf("formatElapsed(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestSyncWindow(t *testing.T) {
	current := time.Date(2024, 1, 15, 9, 0, 0, 0, time.Local)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.Local) }

	tests := []struct {
		name           string
		date, from, to string
		wantFrom       time.Time
		wantTo         time.Time
		wantErr        bool
	}{
		{name: "default today", wantFrom: day(2024, 1, 15), wantTo: day(2024, 1, 16).Add(-time.Nanosecond)},
		{name: "date", date: "2024-01-10", wantFrom: day(2024, 1, 10), wantTo: day(2024, 1, 11).Add(-time.Nanosecond)},
		{name: "from only", from: "2024-01-01", wantFrom: day(2024, 1, 1), wantTo: day(2024, 1, 16).Add(-time.Nanosecond)},
		{name: "from and to", from: "2024-01-01", to: "2024-01-03", wantFrom: day(2024, 1, 1), wantTo: day(2024, 1, 4).Add(-time.Nanosecond)},
		{name: "to without from", to: "2024-01-03", wantErr: true},
		{name: "reversed", from: "2024-01-05", to: "2024-01-03", wantErr: true},
		{name: "bad date", date: "15.01.2024", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outlookSyncDate, outlookSyncFrom, outlookSyncTo = tt.date, tt.from, tt.to
			t.Cleanup(func() { outlookSyncDate, outlookSyncFrom, outlookSyncTo = "", "", "" })

			from, to, err := syncWindow(current)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantTo, to)
		})
	}
}

type failingClose struct{ bytes.Buffer }

func (f *failingClose) Close() error { return errors.New("disk quota exceeded") }

func TestExportToFile(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start", "-c", "Acme", "-t", "Design", "-d", "")
	h.clock = h.clock.Add(time.Hour)
	h.mustRun("end")

	path := filepath.Join(t.TempDir(), "out.csv")
	out := h.mustRun("export", "-p", "today", "-o", path)
	assert.Empty(t, out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "20240115,1,Acme,Design")

	old := createOutput
	t.Cleanup(func() { createOutput = old })
	sink := &failingClose{}
	createOutput = func(string) (io.WriteCloser, error) { return sink, nil }

	_, _, err = h.run("export", "-p", "today", "-o", "ignored.csv")
	assert.ErrorContains(t, err, "disk quota exceeded")
	assert.Contains(t, sink.String(), "Acme")
}
