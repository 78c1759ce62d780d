package export_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/track/internal/export"
	"github.com/Tiliavir/track/internal/model"
	"github.com/Tiliavir/track/internal/report"
)

func sampleLines() []report.Line {
	return []report.Line{
		{
			Record:      model.Record{Date: "20240115", Sequence: 1, Client: "Acme", Status: model.StatusClosed, Name: "20240115-1---Acme---closed.log"},
			Task:        "Design",
			Description: "mockups, round 2",
			Start:       "2024-01-15 09:00:00",
			End:         "2024-01-15 11:30:00",
			Hours:       2.5,
		},
		{
			Record: model.Record{Date: "20240116", Sequence: 3, Client: "Globex", Status: model.StatusClosed, Name: "20240116-3---Globex---closed.log"},
			Task:   "Ops",
			Start:  "2024-01-16 13:00:00",
			End:    "2024-01-16 13:20:00",
			Hours:  1.0 / 3,
		},
	}
}

func TestFromLines(t *testing.T) {
	recs := export.FromLines(sampleLines())
	require.Len(t, recs, 2)
	assert.Equal(t, export.Record{
		Date:        "20240115",
		Sequence:    1,
		Client:      "Acme",
		Task:        "Design",
		Description: "mockups, round 2",
		Start:       "2024-01-15 09:00:00",
		End:         "2024-01-15 11:30:00",
		Hours:       2.5,
		File:        "20240115-1---Acme---closed.log",
	}, recs[0])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, export.FromLines(sampleLines())))
	assert.Equal(t,
		"date,sequence,client,task,description,start,end,hours\n"+
			"20240115,1,Acme,Design,\"mockups, round 2\",2024-01-15 09:00:00,2024-01-15 11:30:00,2.50\n"+
			"20240116,3,Globex,Ops,,2024-01-16 13:00:00,2024-01-16 13:20:00,0.33\n",
		buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteJSON(&buf, export.FromLines(sampleLines())))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Acme", got[0]["client"])
	assert.Equal(t, 2.5, got[0]["hours"])

	buf.Reset()
	require.NoError(t, export.WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteSQLiteUpserts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "track.db")
	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	recs := export.FromLines(sampleLines())

	n, err := export.WriteSQLite(path, recs, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	recs[0].Task = "Design review"
	recs[0].Hours = 3
	n, err = export.WriteSQLite(path, recs[:1], now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	db, err := export.OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	var rows []export.Row
	require.NoError(t, db.Order("date, sequence").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "Design review", rows[0].Task)
	assert.Equal(t, 3.0, rows[0].Hours)
	assert.Equal(t, "2024-01-15 09:00:00", rows[0].Start)
	assert.Equal(t, "Ops", rows[1].Task)
}

func TestWriteSQLiteEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.db")
	n, err := export.WriteSQLite(path, nil, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.FileExists(t, path)
}
