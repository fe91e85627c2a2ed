package core

// ingest.go turns an uploaded file into text ready for Parse.
//
// Spreadsheet exports often carry a UTF-8 BOM and the occasional invalid byte
// sequence; both are normalized here so Parse only ever sees valid UTF-8.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// DefaultMaxFileSize is used by ReadText when maxBytes is not positive.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

var (
	// ErrFileTooLarge is returned when the input exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile is returned when the input is blank.
	ErrEmptyFile = errors.New("empty file")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadText reads all of r, up to maxBytes, strips a leading BOM and replaces
// invalid UTF-8 with U+FFFD.
func ReadText(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileSize
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, maxBytes)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	data = sanitizeUTF8(data)

	if len(bytes.TrimSpace(data)) == 0 {
		return "", ErrEmptyFile
	}
	return string(data), nil
}

// Load parses text and builds a Table named name.
// MalformedInput stops before any Table is constructed.
func Load(name, text string) (*Table, error) {
	ds, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return NewTable(name, ds), nil
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	return bytes.ToValidUTF8(data, []byte("�"))
}
