// Package logname encodes a record's identity into a log filename and back.
//
// A managed log is named
//
//	<YYYYMMDD>-<sequence>---<client>---<open|closed>.log
//
// Any other name in the log directory is foreign and must be ignored.
package logname

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Tiliavir/track/internal/model"
)

const (
	Separator    = "---"
	Extension    = ".log"
	OpenSuffix   = Separator + "open" + Extension
	ClosedSuffix = Separator + "closed" + Extension
)

var pattern = regexp.MustCompile(`^(\d{8})-(\d+)---(.+?)---(open|closed)\.log$`)

var replacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	"*", "-",
	"?", "-",
	"[", "(",
	"]", ")",
	":", "-",
	"<", "(",
	">", ")",
	"|", "-",
	`"`, "'",
)

// Sanitize makes a client name safe for use in a filename. It is lossy:
// Decode returns the sanitized name, never the original input.
func Sanitize(client string) string {
	s := replacer.Replace(norm.NFC.String(client))
	return strings.TrimRight(s, " .")
}

// Encode builds the filename for a record identity.
func Encode(date string, seq int, client string, status model.Status) string {
	return fmt.Sprintf("%s-%d%s%s%s%s%s", date, seq, Separator, Sanitize(client), Separator, status, Extension)
}

// Decode parses a filename. ok is false for foreign or malformed names.
func Decode(name string) (rec model.Record, ok bool) {
	m := pattern.FindStringSubmatch(name)
	if m == nil {
		return model.Record{}, false
	}
	seq, err := strconv.Atoi(m[2])
	if err != nil {
		return model.Record{}, false
	}
	status, ok := model.ParseStatus(m[4])
	if !ok {
		return model.Record{}, false
	}
	return model.Record{
		Date:     m[1],
		Sequence: seq,
		Client:   norm.NFC.String(m[3]),
		Status:   status,
		Name:     name,
	}, true
}

// Filename returns the filename for rec in the given status.
func Filename(rec model.Record, status model.Status) string {
	return Encode(rec.Date, rec.Sequence, rec.Client, status)
}
