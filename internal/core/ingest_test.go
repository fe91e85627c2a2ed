package core

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		max     int64
		want    string
		wantErr error
	}{
		{name: "plain", input: "A,B\n1,2", want: "A,B\n1,2"},
		{name: "bom stripped", input: "\xEF\xBB\xBFA,B\n1,2", want: "A,B\n1,2"},
		{name: "partial bom kept", input: "\xEF\xBBA,B", want: "�A,B"},
		{name: "invalid utf8 replaced", input: "A,B\nhe\xfflo,1", want: "A,B\nhe�lo,1"},
		{name: "blank", input: " \n\r\n ", wantErr: ErrEmptyFile},
		{name: "bom only", input: "\xEF\xBB\xBF", wantErr: ErrEmptyFile},
		{name: "at limit", input: "12345", max: 5, want: "12345"},
		{name: "over limit", input: "123456", max: 5, wantErr: ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadText(strings.NewReader(tt.input), tt.max)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestReadText_ReaderError(t *testing.T) {
	_, err := ReadText(failingReader{}, 0)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
