// Package fuzzydate repairs loosely formatted date and date-time strings
// into ISO 8601 compatible text.
//
// Accepted input is year-first with '-' separated date parts and an optional
// ':' separated time part, joined by a space or 'T'. Missing date parts
// default to 01, missing time parts to 00. Month, day and time fields are
// range checked; strings without a date part never normalize.
package fuzzydate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ErrInvalidDate is returned by ToTime when the input cannot be normalized.
var ErrInvalidDate = errors.New("invalid date string")

// isoLayout matches the output of ToDateTimeString.
const isoLayout = "2006-01-02T15:04:05.000Z"

type parts struct {
	year, month, day int
	yearText         string
	clock            string
	fraction         string
}

// ToDateTimeString normalizes dt to "YYYY-MM-DDTHH:MM:SS.mmmZ".
func ToDateTimeString(dt string) (string, bool) {
	return ToDateTimeStringOpts(dt, 'T', true)
}

// ToDateTimeStringOpts normalizes dt using sep between the date and time.
// When addZ is set a millisecond fraction and 'Z' suffix are appended.
func ToDateTimeStringOpts(dt string, sep rune, addZ bool) (string, bool) {
	p, ok := split(dt)
	if !ok {
		return "", false
	}

	fields := strings.Split(p.clock, ":")
	if !isDigits(fields[0]) {
		return "", false
	}
	var clock []int
	for _, f := range fields {
		if !isDigits(f) {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			n = 0
		}
		clock = append(clock, n)
	}
	for len(clock) < 3 {
		clock = append(clock, 0)
	}
	hrs, mins, secs := clock[0], clock[1], clock[2]
	if hrs > 23 || mins > 59 || secs > 59 {
		return "", false
	}

	var b strings.Builder
	b.WriteString(p.date())
	b.WriteRune(sep)
	fmt.Fprintf(&b, "%02d:%02d:%02d", hrs, mins, secs)
	if addZ {
		fmt.Fprintf(&b, ".%03dZ", millis(p.fraction))
	}
	return b.String(), true
}

// ToDateString normalizes dt to "YYYY-MM-DD", ignoring any time part.
func ToDateString(dt string) (string, bool) {
	p, ok := split(dt)
	if !ok {
		return "", false
	}
	return p.date(), true
}

// ToTime normalizes dt and parses it as a UTC time.
func ToTime(dt string) (time.Time, error) {
	s, ok := ToDateTimeString(dt)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, dt)
	}
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, dt)
	}
	return t, nil
}

// IsDateTimeLike reports whether dt normalizes to a date-time.
func IsDateTimeLike(dt string) bool {
	_, ok := ToDateTimeString(dt)
	return ok
}

// CorrectISODateTime tidies an ISO-like date cell emitted by a reader,
// returning the input unchanged when it does not normalize.
func CorrectISODateTime(dt string) string {
	if s, ok := ToDateTimeStringOpts(dt, 'T', false); ok {
		return s
	}
	return dt
}

func split(dt string) (parts, bool) {
	base, fraction, _ := strings.Cut(dt, ".")
	base = strings.TrimSuffix(strings.TrimSpace(base), "Z")
	clean := strings.TrimSpace(strings.ReplaceAll(base, "T", " "))
	if clean == "" {
		return parts{}, false
	}

	fields := strings.Fields(clean)
	datePart := fields[0]
	for _, r := range datePart {
		if unicode.IsLetter(r) {
			return parts{}, false
		}
	}
	clock := "00:00:00"
	if len(fields) > 1 {
		clock = fields[1]
	}

	var dateFields []string
	for _, f := range strings.Split(datePart, "-") {
		if isDigits(f) {
			dateFields = append(dateFields, f)
		}
	}
	if len(dateFields) < 1 {
		return parts{}, false
	}
	for len(dateFields) < 3 {
		dateFields = append(dateFields, "01")
	}

	year, err := strconv.Atoi(dateFields[0])
	if err != nil {
		return parts{}, false
	}
	month, _ := strconv.Atoi(dateFields[1])
	if month < 1 || month > 12 {
		return parts{}, false
	}
	day, _ := strconv.Atoi(dateFields[2])
	if day < 1 || day > daysIn(year, month) {
		return parts{}, false
	}

	return parts{
		year:     year,
		month:    month,
		day:      day,
		yearText: dateFields[0],
		clock:    clock,
		fraction: fraction,
	}, true
}

func (p parts) date() string {
	return fmt.Sprintf("%s-%02d-%02d", p.yearText, p.month, p.day)
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// millis reads up to three leading digits of a fractional second.
func millis(fraction string) int {
	digits := make([]byte, 0, 3)
	for i := 0; i < len(fraction) && len(digits) < 3; i++ {
		c := fraction[i]
		if c < '0' || c > '9' {
			break
		}
		digits = append(digits, c)
	}
	if len(digits) == 0 {
		return 0
	}
	for len(digits) < 3 {
		digits = append(digits, '0')
	}
	n, _ := strconv.Atoi(string(digits))
	return n
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
