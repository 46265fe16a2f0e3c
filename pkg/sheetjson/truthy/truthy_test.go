package truthy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type result struct {
	value bool
	ok    bool
}

func TestCore(t *testing.T) {
	tests := []struct {
		input        string
		emptyIsFalse bool
		expected     result
	}{
		{"1", false, result{true, true}},
		{"0", false, result{false, true}},
		{" TRUE ", false, result{true, true}},
		{"false", false, result{false, true}},
		{"-1", false, result{false, true}},
		{"7", false, result{true, true}},
		{"300", false, result{false, false}},
		{"", false, result{false, false}},
		{"", true, result{false, true}},
		{"yes", false, result{false, false}},
	}

	for _, tt := range tests {
		v, ok := Core(tt.input, tt.emptyIsFalse)
		assert.Equal(t, tt.expected, result{v, ok}, "Core(%q)", tt.input)
	}
}

func TestStandard(t *testing.T) {
	tests := []struct {
		input    string
		expected result
	}{
		{"1", result{true, true}},
		{"0", result{false, true}},
		{"false", result{false, true}},
		{"n", result{false, true}},
		{"Ok", result{true, true}},
		{"okay", result{true, true}},
		{"None", result{false, true}},
		{"maybe", result{false, false}},
	}

	for _, tt := range tests {
		v, ok := Standard(tt.input, false)
		assert.Equal(t, tt.expected, result{v, ok}, "Standard(%q)", tt.input)
	}

	_, ok := Core("Ok", false)
	assert.False(t, ok, "Core must not match English words")
}

func TestCustom(t *testing.T) {
	opts := []Option{
		NewOption(true, "si"),
		NewOption(true, "vero"),
		NewOption(false, "no"),
		NewOption(false, "falso"),
	}

	// English defaults are not part of the custom set
	_, ok := Custom("yes", opts, true, false)
	assert.False(t, ok)

	// core fallback disabled: "false" stays unresolved
	_, ok = Custom("false", opts, false, false)
	assert.False(t, ok)

	v, ok := Custom("si", opts, true, true)
	assert.True(t, ok)
	assert.True(t, v)

	v, ok = Custom(" Falso ", opts, false, false)
	assert.True(t, ok)
	assert.False(t, v)

	// core fallback enabled
	v, ok = Custom("1", opts, true, false)
	assert.True(t, ok)
	assert.True(t, v)
}

func TestCustomPrefixAndCase(t *testing.T) {
	opts := []Option{
		{AssertsTrue: true, Pattern: "Appr", CaseSensitive: true, PrefixOnly: true},
		{AssertsTrue: false, Pattern: "rej", PrefixOnly: true},
	}

	v, ok := Custom("Approved", opts, false, false)
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = Custom("approved", opts, false, false)
	assert.False(t, ok)

	v, ok = Custom("REJECTED", opts, false, false)
	assert.True(t, ok)
	assert.False(t, v)
}

func TestSplit(t *testing.T) {
	opts := Split([]string{"good", " "}, []string{"bad"})
	assert.Equal(t, []Option{NewOption(true, "good"), NewOption(false, "bad")}, opts)
}
