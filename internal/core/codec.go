package core

// codec.go converts delimited inventory text to and from structured rows.
//
// The grammar is deliberately simpler than RFC 4180:
//   - records are separated by \n or \r\n, blank lines are dropped
//   - a comma separates fields only when an even number of double quotes
//     follows it on the same line
//   - each field is trimmed and loses one optional quote at each end;
//     doubled quotes are not unescaped
//
// Serialize quotes only text values that contain a comma and never escapes
// embedded quotes, so Serialize(Parse(text)) is not byte-identical to text but
// re-parses to equivalent rows.

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedInput is returned by Parse when the text cannot describe a table.
var ErrMalformedInput = errors.New("invalid csv")

// Record is one parsed data line keyed by header name.
// Every header name is present; fields absent from a short line hold Missing.
type Record map[string]Value

// Get returns the value for column, or Missing when the column is unknown.
func (r Record) Get(column string) Value {
	return r[column]
}

// Dataset is the result of Parse: the header and the data lines in file order.
type Dataset struct {
	Header []string
	Rows   []Record
}

// Parse converts raw delimited text to a Dataset.
// It fails with ErrMalformedInput when the text has no comma at all or fewer
// than two non-blank lines.
func Parse(text string) (*Dataset, error) {
	if !strings.Contains(text, ",") {
		return nil, fmt.Errorf("%w: no comma found", ErrMalformedInput)
	}

	lines := splitLines(text)
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: need a header line and at least one data line, found %d non-empty line(s)",
			ErrMalformedInput, len(lines))
	}

	header := strings.Split(lines[0], ",")
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, parseRecord(header, line))
	}

	return &Dataset{Header: header, Rows: rows}, nil
}

// parseRecord maps the fields of one data line onto header.
// Extra trailing fields are ignored; missing ones are stored as Missing.
// With duplicate header names the later column wins.
func parseRecord(header []string, line string) Record {
	fields := splitFields(line)
	rec := make(Record, len(header))
	for i, name := range header {
		if i < len(fields) {
			rec[name] = Coerce(cleanField(fields[i]))
		} else {
			rec[name] = Missing()
		}
	}
	return rec
}

// splitLines splits on \n, drops a trailing \r, and discards blank lines.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// splitFields splits a data line on commas that are followed by an even
// number of double quotes through the end of the line.
func splitFields(line string) []string {
	remaining := strings.Count(line, `"`)
	fields := make([]string, 0, 8)
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			remaining--
		case ',':
			if remaining%2 == 0 {
				fields = append(fields, line[start:i])
				start = i + 1
			}
		}
	}
	return append(fields, line[start:])
}

// Serialize renders header and rows back to delimited text.
// Lines are joined with \n and there is no trailing newline.
func Serialize(header []string, rows []Record) string {
	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	for _, rec := range rows {
		b.WriteByte('\n')
		writeRecord(&b, header, rec)
	}
	return b.String()
}

func writeRecord(b *strings.Builder, header []string, rec Record) {
	for i, name := range header {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(serializeField(rec.Get(name)))
	}
}

// serializeField wraps comma-bearing text in double quotes.
func serializeField(v Value) string {
	s := v.String()
	if v.Kind() == KindText && strings.Contains(s, ",") {
		return `"` + s + `"`
	}
	return s
}
