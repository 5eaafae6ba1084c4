package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleStringUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"string", `"10115"`, "10115"},
		{"integer", `10115`, "10115"},
		{"float", `1.5`, "1.5"},
		{"boolean", `true`, "true"},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s FlexibleString
			require.NoError(t, json.Unmarshal([]byte(tt.input), &s))
			assert.Equal(t, tt.want, string(s))
		})
	}

	var s FlexibleString
	assert.Error(t, json.Unmarshal([]byte(`{"nested":true}`), &s))
}

func TestFlexibleIntUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"number", `1980`, 1980},
		{"numeric string", `"1980"`, 1980},
		{"padded string", `" 1980 "`, 1980},
		{"null", `null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n FlexibleInt
			require.NoError(t, json.Unmarshal([]byte(tt.input), &n))
			assert.Equal(t, tt.want, int(n))
		})
	}

	var n FlexibleInt
	assert.Error(t, json.Unmarshal([]byte(`"not a year"`), &n))
	assert.Error(t, json.Unmarshal([]byte(`true`), &n))
}

func TestPtrHelpers(t *testing.T) {
	assert.Nil(t, StringPtr(nil))
	assert.Nil(t, IntPtr(nil))

	s := FlexibleString("10115")
	require.NotNil(t, StringPtr(&s))
	assert.Equal(t, "10115", *StringPtr(&s))

	n := FlexibleInt(1980)
	require.NotNil(t, IntPtr(&n))
	assert.Equal(t, 1980, *IntPtr(&n))
}
