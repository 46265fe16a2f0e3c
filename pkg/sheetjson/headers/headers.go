// Package headers derives column keys from a header row, column overrides
// and a naming scheme.
package headers

import (
	"fmt"
	"strings"
	"unicode"
)

// FieldNameMode controls whether captured header text is kept and which
// synthetic key style fills the gaps.
type FieldNameMode uint8

const (
	// AutoA1 keeps header text and falls back to letters (a, b, ... aa).
	AutoA1 FieldNameMode = iota
	// AutoNumPadded keeps header text and falls back to c01, c02 ...
	AutoNumPadded
	// A1 always uses letter keys.
	A1
	// NumPadded always uses zero-padded numeric keys.
	NumPadded
)

// ParseFieldNameMode maps a CLI or config token to a mode. Unknown tokens yield AutoA1.
func ParseFieldNameMode(s string) FieldNameMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a1", "a", "letters":
		return A1
	case "c", "n", "num", "padded", "num_padded", "c01":
		return NumPadded
	case "auto_c", "auto_n", "auto_num", "auto_padded", "auto_num_padded":
		return AutoNumPadded
	}
	return AutoA1
}

func (m FieldNameMode) String() string {
	switch m {
	case AutoNumPadded:
		return "auto_num_padded"
	case A1:
		return "a1"
	case NumPadded:
		return "num_padded"
	}
	return "auto_a1"
}

// KeepHeaders reports whether captured header text is preferred.
func (m FieldNameMode) KeepHeaders() bool {
	return m == AutoA1 || m == AutoNumPadded
}

// Padded reports whether synthetic keys use the c01 style.
func (m FieldNameMode) Padded() bool {
	return m == AutoNumPadded || m == NumPadded
}

// ToHeadKey returns the spreadsheet-letter key for a 0-based column index:
// 0 → "a", 25 → "z", 26 → "aa", 701 → "zz", 702 → "aaa".
func ToHeadKey(index int) string {
	if index < 0 {
		index = 0
	}
	var buf []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		buf = append(buf, byte('a'+(n-1)%26))
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// padWidth picks the digit count for numeric keys from the column count.
func padWidth(total int) int {
	switch {
	case total < 100:
		return 2
	case total < 1000:
		return 3
	case total < 10000:
		return 4
	}
	return 5
}

func padded(index, total int) string {
	return fmt.Sprintf("%0*d", padWidth(total), index+1)
}

// ToPaddedKey returns the numeric key for a 0-based index, e.g. c03.
func ToPaddedKey(index, total int) string {
	return "c" + padded(index, total)
}

// Synthetic returns the positional key for mode.
func Synthetic(index, total int, mode FieldNameMode) string {
	if mode.Padded() {
		return ToPaddedKey(index, total)
	}
	return ToHeadKey(index)
}

// BuildKeys derives one key per header cell.
//
// A non-empty override at the same position wins. Otherwise the snake-cased
// header text is used when mode keeps headers, and a synthetic key when it
// does not or the text is empty. Repeated keys get "_" plus the padded
// position appended until unique; the first occurrence keeps its name.
func BuildKeys(headerRow []string, overrides []string, mode FieldNameMode) []string {
	total := len(headerRow)
	keys := make([]string, 0, total)
	seen := make(map[string]struct{}, total)

	for i, text := range headerRow {
		var key string
		if i < len(overrides) && strings.TrimSpace(overrides[i]) != "" {
			key = overrides[i]
		} else if sn := ToSnakeCase(text); mode.KeepHeaders() && sn != "" {
			key = sn
		} else {
			key = Synthetic(i, total, mode)
		}

		for {
			if _, dup := seen[key]; !dup {
				break
			}
			key += "_" + padded(i, total)
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// ToSnakeCase lower-cases s and joins its words with underscores.
// Word boundaries are runs of non-alphanumeric characters, a lower-case
// letter or digit followed by an upper-case letter, and the last capital
// of an acronym followed by a lower-case letter ("HTTPServer" → "http_server").
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var words []string
	var word []rune

	flush := func() {
		if len(word) > 0 {
			words = append(words, strings.ToLower(string(word)))
			word = word[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(word) > 0 {
			prev := word[len(word)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		word = append(word, r)
	}
	flush()
	return strings.Join(words, "_")
}
