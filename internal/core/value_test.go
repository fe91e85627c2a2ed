package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Value
	}{
		{"integer", "12", Number(12)},
		{"decimal", "3.5", Number(3.5)},
		{"negative", "-4", Number(-4)},
		{"explicit plus", "+7", Number(7)},
		{"leading dot", ".5", Number(0.5)},
		{"trailing dot", "5.", Number(5)},
		{"exponent", "1e3", Number(1000)},
		{"padded number", "  42 ", Number(42)},
		{"empty stays text", "", Text("")},
		{"blank stays empty text", "   ", Text("")},
		{"word", "Milk", Text("Milk")},
		{"currency", "$5", Text("$5")},
		{"thousands separator", "1,299", Text("1,299")},
		{"hex", "0x1F", Text("0x1F")},
		{"infinity word", "Infinity", Text("Infinity")},
		{"overflow", "1e999", Text("1e999")},
		{"text keeps padding", " a b ", Text(" a b ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coerce(tt.raw)
			assert.True(t, tt.want.Equal(got), "Coerce(%q) = %#v, want %#v", tt.raw, got, tt.want)
		})
	}
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "10", Number(10).String())
	assert.Equal(t, "3.25", Number(3.25).String())
	assert.Equal(t, "0", Number(0).String())
	assert.Equal(t, "1000000", Number(1e6).String())
	assert.Equal(t, "", Missing().String())
	assert.Equal(t, "", Text("").String())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Missing().Equal(Value{}))
	assert.False(t, Missing().Equal(Text("")), "missing is distinct from empty text")
	assert.False(t, Number(1).Equal(Text("1")))
	assert.True(t, Text("a").Equal(Text("a")))
}

func TestValueMarshalJSON(t *testing.T) {
	rec := Record{"n": Number(2.5), "s": Text("a\"b\n"), "m": Missing()}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 2.5, got["n"])
	assert.Equal(t, "a\"b\n", got["s"])
	assert.Nil(t, got["m"])
}
