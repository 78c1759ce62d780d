package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/track/internal/model"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   model.Status
		wantOK bool
	}{
		{"open", model.StatusOpen, true},
		{"closed", model.StatusClosed, true},
		{"Open", 0, false},
		{"weird", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := model.ParseStatus(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		if ok {
			assert.Equal(t, tt.want, got, tt.in)
			assert.Equal(t, tt.in, got.String())
		}
	}
}

func TestFieldsTimes(t *testing.T) {
	f := model.Fields{
		model.KeyStartTime: "2024-01-15 09:00:00",
		model.KeyEndTime:   "not a time",
	}

	start, ok, err := f.StartTime()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 15, 9, 0, 0, 0, time.Local), start)

	_, ok, err = f.EndTime()
	assert.True(t, ok)
	assert.Error(t, err)

	_, ok, err = model.Fields{}.EndTime()
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestRecordDay(t *testing.T) {
	day, err := model.Record{Date: "20240229"}.Day()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local), day)

	_, err = model.Record{Date: "20241399"}.Day()
	assert.Error(t, err)
}
