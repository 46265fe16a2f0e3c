// Package truthy resolves loosely written yes/no style strings to booleans.
//
// Three rule sets are layered: Core matches booleans and small integers,
// Standard adds common English words, and Custom evaluates a caller supplied
// ordered rule list.
package truthy

import (
	"strconv"
	"strings"
)

// Option is a single custom truthy rule.
type Option struct {
	// AssertsTrue is the value returned when Pattern matches.
	AssertsTrue bool `json:"asserts_true" yaml:"asserts_true"`
	// Pattern is the text to compare against.
	Pattern string `json:"pattern" yaml:"pattern"`
	// CaseSensitive disables case folding for this rule.
	CaseSensitive bool `json:"case_sensitive,omitempty" yaml:"case_sensitive,omitempty"`
	// PrefixOnly matches when the input starts with Pattern.
	PrefixOnly bool `json:"match_prefix_only,omitempty" yaml:"match_prefix_only,omitempty"`
}

// NewOption creates a case-insensitive exact match rule.
func NewOption(assertsTrue bool, pattern string) Option {
	return Option{AssertsTrue: assertsTrue, Pattern: pattern}
}

// Core matches string representations of booleans and integers only.
// The second return value is false when the text cannot be resolved.
func Core(txt string, emptyIsFalse bool) (bool, bool) {
	s := strings.ToLower(strings.TrimSpace(txt))
	switch s {
	case "":
		if emptyIsFalse {
			return false, true
		}
		return false, false
	case "0", "-1", "false":
		return false, true
	case "1", "2", "true":
		return true, true
	}
	if isDigits(s) {
		n, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return false, false
		}
		return n > 0, true
	}
	return false, false
}

// Standard matches Core plus common English words.
func Standard(txt string, emptyIsFalse bool) (bool, bool) {
	if v, ok := Core(txt, emptyIsFalse); ok {
		return v, true
	}
	switch strings.ToLower(strings.TrimSpace(txt)) {
	case "no", "not", "none", "n", "f":
		return false, true
	case "ok", "okay", "y", "yes", "t":
		return true, true
	}
	return false, false
}

// Custom evaluates opts in order and returns the first match.
// When useDefaults is set an unmatched input falls back to Core.
func Custom(txt string, opts []Option, useDefaults, emptyIsFalse bool) (bool, bool) {
	s := strings.TrimSpace(txt)
	for _, opt := range opts {
		if opt.matches(s) {
			return opt.AssertsTrue, true
		}
	}
	if useDefaults {
		return Core(s, emptyIsFalse)
	}
	return false, false
}

func (o Option) matches(s string) bool {
	if o.Pattern == "" {
		return false
	}
	subject, pattern := s, o.Pattern
	if !o.CaseSensitive {
		subject = strings.ToLower(subject)
		pattern = strings.ToLower(pattern)
	}
	if o.PrefixOnly {
		return strings.HasPrefix(subject, pattern)
	}
	return subject == pattern
}

// Split builds an ordered rule list from true patterns followed by false patterns.
func Split(truePatterns, falsePatterns []string) []Option {
	opts := make([]Option, 0, len(truePatterns)+len(falsePatterns))
	for _, p := range truePatterns {
		if p = strings.TrimSpace(p); p != "" {
			opts = append(opts, NewOption(true, p))
		}
	}
	for _, p := range falsePatterns {
		if p = strings.TrimSpace(p); p != "" {
			opts = append(opts, NewOption(false, p))
		}
	}
	return opts
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
