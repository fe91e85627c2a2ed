package core

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// KindMissing marks a field that was absent from a short (ragged) data line.
	KindMissing Kind = iota
	KindNumber
	KindText
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// Value is a single cell: a number, a string, or missing.
// The zero Value is Missing.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Text returns a string Value. Text("") is a real empty string, not Missing.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Missing returns the Value used for fields absent from a ragged row.
func Missing() Value {
	return Value{}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsMissing reports whether v is the ragged-row placeholder.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the numeric payload and whether v is a number.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// String renders v the way it appears in the grid and in exported text.
// Numbers use the shortest decimal form; Missing renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// Equal reports whether two values hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindText:
		return v.text == o.text
	default:
		return true
	}
}

// MarshalJSON encodes numbers as JSON numbers, text as strings and missing
// as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return []byte(formatNumber(v.num)), nil
	case KindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

// containsFold reports whether the rendered value contains the already
// lower-cased needle.
func (v Value) containsFold(lowerNeedle string) bool {
	if v.kind == KindMissing {
		return false
	}
	return strings.Contains(strings.ToLower(v.String()), lowerNeedle)
}

func formatNumber(f float64) string {
	if f == 0 {
		// -0 prints as "0"
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
