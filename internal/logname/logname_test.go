package logname_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/track/internal/logname"
	"github.com/Tiliavir/track/internal/model"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme", "Acme"},
		{"Acme/Corp", "Acme-Corp"},
		{`a\b*c?d:e|f`, "a-b-c-d-e-f"},
		{"[x]<y>", "(x)(y)"},
		{`say "hi"`, "say 'hi'"},
		{"Acme Inc. ", "Acme Inc"},
		{"trailing...", "trailing"},
		{"Café", "Café"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, logname.Sanitize(tt.in), tt.in)
	}
}

func TestEncode(t *testing.T) {
	assert.Equal(t, "20240115-1---Acme---open.log", logname.Encode("20240115", 1, "Acme", model.StatusOpen))
	assert.Equal(t, "20240115-12---A-B---closed.log", logname.Encode("20240115", 12, "A/B", model.StatusClosed))
}

func TestRoundTrip(t *testing.T) {
	clients := []string{"Acme", "Acme/Corp", "Big Client Ltd.", "x:y", "Ünïcödé", "a---b"}
	for _, client := range clients {
		for _, status := range []model.Status{model.StatusOpen, model.StatusClosed} {
			name := logname.Encode("20240229", 7, client, status)
			rec, ok := logname.Decode(name)
			require.True(t, ok, name)
			assert.Equal(t, "20240229", rec.Date)
			assert.Equal(t, 7, rec.Sequence)
			assert.Equal(t, logname.Sanitize(client), rec.Client)
			assert.Equal(t, status, rec.Status)
			assert.Equal(t, name, rec.Name)
		}
	}
}

func TestDecodeRejectsForeignNames(t *testing.T) {
	names := []string{
		"notes.txt",
		"20240101-x---Bad---weird.log",
		"20240101-1---Bad---weird.log",
		"2024011-1---Acme---open.log",
		"20240101-1---Acme---open.txt",
		"20240101-1------open.log",
		"20240101---Acme---open.log",
		"20240101-1---Acme---open.log.bak",
		"20240101-99999999999999999999---Acme---open.log",
	}
	for _, name := range names {
		_, ok := logname.Decode(name)
		assert.False(t, ok, name)
	}
}

func TestFilename(t *testing.T) {
	rec := model.Record{Date: "20240115", Sequence: 3, Client: "Acme", Status: model.StatusOpen}
	assert.Equal(t, "20240115-3---Acme---closed.log", logname.Filename(rec, model.StatusClosed))
}
