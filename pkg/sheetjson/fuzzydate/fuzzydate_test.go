package fuzzydate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDateTimeString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"2023-8-29 19:34:39", "2023-08-29T19:34:39.000Z", true},
		{"2023-08-29T19:34:39.678Z", "2023-08-29T19:34:39.678Z", true},
		{"2023-08-29T19:34:39Z", "2023-08-29T19:34:39.000Z", true},
		{"1876-08-29 17:15", "1876-08-29T17:15:00.000Z", true},
		{"2023-10-10", "2023-10-10T00:00:00.000Z", true},
		{"2023-9", "2023-09-01T00:00:00.000Z", true},
		{"10:10:10", "", false},
		{"2001-apple", "", false},
		{"invalid-date", "", false},
		{"2023-10-10Tinvalid", "", false},
		{"2023-13-01", "", false},
		{"2023-02-30", "", false},
		{"2023-01-01 24:00:00", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		result, ok := ToDateTimeString(tt.input)
		assert.Equal(t, tt.ok, ok, "ToDateTimeString(%q)", tt.input)
		assert.Equal(t, tt.expected, result, "ToDateTimeString(%q)", tt.input)
	}
}

func TestToDateString(t *testing.T) {
	result, ok := ToDateString("2023-9-10")
	assert.True(t, ok)
	assert.Equal(t, "2023-09-10", result)

	result, ok = ToDateString("2001-9-23 08:00")
	assert.True(t, ok)
	assert.Equal(t, "2001-09-23", result)

	_, ok = ToDateString("10:10:10")
	assert.False(t, ok)
}

func TestToDateTimeStringOpts(t *testing.T) {
	result, ok := ToDateTimeStringOpts("2023-8-29T7:04", ' ', false)
	assert.True(t, ok)
	assert.Equal(t, "2023-08-29 07:04:00", result)
}

func TestToTime(t *testing.T) {
	tm, err := ToTime("1876-08-29 17:15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1876, 8, 29, 17, 15, 0, 0, time.UTC), tm)

	_, err = ToTime("2001-apple")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestIsDateTimeLike(t *testing.T) {
	assert.True(t, IsDateTimeLike("2023-10-10T10:10:10"))
	assert.True(t, IsDateTimeLike("2023-10-10 10:10:10"))
	assert.True(t, IsDateTimeLike("2023-10-10"))
	assert.False(t, IsDateTimeLike("10:10:10"))
	assert.False(t, IsDateTimeLike("invalid-date"))
	assert.False(t, IsDateTimeLike("2023-10-10Tinvalid"))
}

func TestCorrectISODateTime(t *testing.T) {
	assert.Equal(t, "2024-02-03T04:05:06", CorrectISODateTime("2024-2-3T4:5:6"))
	assert.Equal(t, "n/a", CorrectISODateTime("n/a"))
}

func TestFormat(t *testing.T) {
	tm := time.Date(2024, 3, 7, 15, 4, 5, 123000000, time.UTC)

	tests := []struct {
		pattern  string
		expected string
	}{
		{"%Y-%m-%d", "2024-03-07"},
		{"%d/%m/%y %H:%M", "07/03/24 15:04"},
		{"%I:%M %p", "03:04 PM"},
		{"%a %e %b %Y", "Thu  7 Mar 2024"},
		{"%FT%T%.3f", "2024-03-07T15:04:05.123"},
		{"day %j, 100%%", "day 067, 100%"},
		{"%q", "%q"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Format(tm, tt.pattern), "Format(%q)", tt.pattern)
	}
}
