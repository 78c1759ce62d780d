// Package logbody reads and writes the Key: Value lines stored inside a log file.
//
// Each line containing a colon contributes one entry: the key is everything
// before the first colon, the value everything after it, both trimmed. Values
// may contain colons, keys may not. Lines without a colon are ignored and there
// is no escaping.
package logbody

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/Tiliavir/track/internal/model"
)

// Parse decodes a log body.
func Parse(text string) model.Fields {
	fields := model.Fields{}
	for _, line := range strings.Split(text, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return fields
}

// ReadFile parses the body at path. A missing file yields empty Fields.
func ReadFile(path string) (model.Fields, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Fields{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// Format renders the body of a newly started log.
func Format(task, description string, start time.Time) string {
	var b strings.Builder
	writeLine(&b, model.KeyTask, task)
	writeLine(&b, model.KeyDescription, description)
	writeLine(&b, model.KeyStartTime, start.Format(model.TimeLayout))
	return b.String()
}

// EndLine renders the line appended when a log is closed.
func EndLine(end time.Time) string {
	var b strings.Builder
	writeLine(&b, model.KeyEndTime, end.Format(model.TimeLayout))
	return b.String()
}

func writeLine(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}
