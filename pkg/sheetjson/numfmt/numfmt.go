// Package numfmt detects decimal separators and extracts numbers from
// loosely formatted cell text.
package numfmt

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a plain number after separator cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// tokenRegex finds the first number-like run in free text.
var tokenRegex = regexp.MustCompile(`[+-]?(\d[\d.,]*|\.\d+)`)

var plainRegex = regexp.MustCompile(`[+-]?(\d+(\.\d+)?|\.\d+)`)

// IsDecimalComma reports whether txt uses ',' as its decimal separator
// (and '.' for thousands grouping).
//
// A single comma with no dots is read as a decimal separator unless exactly
// three characters follow it, in which case it is assumed to group
// thousands. enforce treats a lone comma, or a lone dot, as the European
// form regardless of position.
func IsDecimalComma(txt string, enforce bool) bool {
	var (
		length            int
		dotPos, commaPos  = -1, -1
		numDots, numComma int
	)
	for _, r := range txt {
		switch r {
		case '.':
			if dotPos < 0 {
				dotPos = length
			}
			numDots++
		case ',':
			if commaPos < 0 {
				commaPos = length
			}
			numComma++
		}
		length++
	}

	switch {
	case dotPos >= 0 && commaPos >= 0:
		return dotPos < commaPos
	case dotPos >= 0:
		return numDots > 1 || enforce
	case commaPos >= 0:
		if numComma > 1 {
			return false
		}
		return length-commaPos != 4 || enforce
	}
	return false
}

// Normalize strips grouping separators so txt can be parsed as a Go float.
func Normalize(txt string, decimalComma bool) string {
	if decimalComma {
		return strings.ReplaceAll(strings.ReplaceAll(txt, ".", ""), ",", ".")
	}
	return strings.ReplaceAll(txt, ",", "")
}

// ParseNumber parses txt when the whole (trimmed) string is numeric.
// isInt is set when the normalized text has no fraction or exponent.
func ParseNumber(txt string, enforce bool) (f float64, isInt bool, ok bool) {
	s := strings.TrimSpace(txt)
	if s == "" || !strings.ContainsAny(s, "0123456789") {
		return 0, false, false
	}
	s = Normalize(s, IsDecimalComma(s, enforce))
	if !numericRegex.MatchString(s) {
		return 0, false, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false, false
	}
	return f, !strings.ContainsAny(s, ".eE"), true
}

// FirstNumber extracts the first numeric token embedded in txt,
// e.g. 112 from "112cm" or -3.5 from "approx -3.5 kg".
func FirstNumber(txt string, enforce bool) (float64, bool) {
	token := tokenRegex.FindString(txt)
	if token == "" {
		return 0, false
	}
	token = strings.TrimRight(token, ".,")
	s := Normalize(token, IsDecimalComma(token, enforce))
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	// malformed grouping such as "1.2.3": fall back to the leading plain number
	if m := plainRegex.FindString(s); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// Round rounds v half away from zero to places fractional digits.
func Round(v float64, places uint8) float64 {
	m := math.Pow10(int(places))
	return math.Round(v*m) / m
}
