// Package format defines the closed set of column value formats and the
// compact grammar used to declare them.
//
// Grammar (case-insensitive tokens):
//
//	s, str, string, t, txt, text   Text
//	i, int, integer                Integer
//	d1..d8, decimal_1..decimal_8   Decimal(1..6), precision capped at 6
//	f, fl, float                   Float
//	b, bool, boolean               Boolean
//	da, date                       Date
//	dt, datetime                   DateTime
//	tr, truthy                     Truthy
//	dt:<pattern>                   DateTimeCustom(pattern)
//	tr:<yes|...>,<no|...>          TruthyCustom(rules)
//
// Anything else parses as Auto.
package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/truthy"
)

// Kind identifies a Format variant.
type Kind uint8

const (
	Auto Kind = iota
	Text
	Integer
	Decimal
	Float
	Boolean
	Date
	DateTime
	DateTimeCustom
	Truthy
	TruthyCustom
)

// MaxPrecision caps Decimal precision.
const MaxPrecision = 6

// ErrUnknownFormat is returned by ParseStrict for unrecognized tokens.
var ErrUnknownFormat = errors.New("unknown format")

var kindNames = map[Kind]string{
	Auto:           "auto",
	Text:           "text",
	Integer:        "integer",
	Decimal:        "decimal",
	Float:          "float",
	Boolean:        "boolean",
	Date:           "date",
	DateTime:       "datetime",
	DateTimeCustom: "datetime_custom",
	Truthy:         "truthy",
	TruthyCustom:   "truthy_custom",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "auto"
}

// Format is an immutable column value format.
// The zero value is Auto.
type Format struct {
	kind      Kind
	precision uint8
	pattern   string
	rules     []truthy.Option
}

// New returns a Format for kinds that carry no parameters.
// Decimal defaults to 2 places; parameterized kinds should use their own constructors.
func New(kind Kind) Format {
	if kind == Decimal {
		return NewDecimal(2)
	}
	return Format{kind: kind}
}

// NewDecimal returns Decimal(places), capped at MaxPrecision.
func NewDecimal(places uint8) Format {
	if places > MaxPrecision {
		places = MaxPrecision
	}
	return Format{kind: Decimal, precision: places}
}

// NewDateTimeCustom returns DateTimeCustom with a strftime-style pattern.
func NewDateTimeCustom(pattern string) Format {
	return Format{kind: DateTimeCustom, pattern: pattern}
}

// NewTruthyCustom returns TruthyCustom evaluating rules in order.
func NewTruthyCustom(rules []truthy.Option) Format {
	return Format{kind: TruthyCustom, rules: append([]truthy.Option(nil), rules...)}
}

// TruthyCustomFrom builds a TruthyCustom format from '|'-delimited
// true and false pattern lists, e.g. TruthyCustomFrom("good|ok", "bad").
func TruthyCustomFrom(yes, no string) Format {
	return NewTruthyCustom(truthy.Split(strings.Split(yes, "|"), strings.Split(no, "|")))
}

// Kind returns the variant.
func (f Format) Kind() Kind { return f.kind }

// Precision returns the Decimal places.
func (f Format) Precision() uint8 { return f.precision }

// Pattern returns the DateTimeCustom pattern.
func (f Format) Pattern() string { return f.pattern }

// Rules returns a copy of the TruthyCustom rules.
func (f Format) Rules() []truthy.Option {
	return append([]truthy.Option(nil), f.rules...)
}

// String returns a readable name, e.g. "decimal(2)".
func (f Format) String() string {
	switch f.kind {
	case Decimal:
		return fmt.Sprintf("decimal(%d)", f.precision)
	case DateTimeCustom:
		return fmt.Sprintf("datetime(%s)", f.pattern)
	case TruthyCustom:
		var yes, no []string
		for _, r := range f.rules {
			if r.AssertsTrue {
				yes = append(yes, r.Pattern)
			} else {
				no = append(no, r.Pattern)
			}
		}
		return fmt.Sprintf("truthy(%s,%s)", strings.Join(yes, "|"), strings.Join(no, "|"))
	}
	return f.kind.String()
}

// MarshalText renders the format name.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Parse reads a format declaration. Unrecognized input yields Auto.
func Parse(s string) Format {
	f, _ := parse(s)
	return f
}

// ParseStrict is Parse but reports unrecognized, non-empty input.
func ParseStrict(s string) (Format, error) {
	f, ok := parse(s)
	if !ok && strings.TrimSpace(s) != "" && !isAutoToken(s) {
		return f, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return f, nil
}

func isAutoToken(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "auto":
		return true
	}
	return false
}

func parse(s string) (Format, bool) {
	s = strings.TrimSpace(s)
	if head, rest, found := strings.Cut(s, ":"); found {
		return parseExtended(strings.ToLower(strings.TrimSpace(head)), rest)
	}

	key := strings.ToLower(s)
	switch key {
	case "s", "str", "string", "t", "txt", "text":
		return New(Text), true
	case "i", "int", "integer":
		return New(Integer), true
	case "f", "fl", "float":
		return New(Float), true
	case "b", "bool", "boolean":
		return New(Boolean), true
	case "da", "date":
		return New(Date), true
	case "dt", "datetime":
		return New(DateTime), true
	case "tr", "truthy":
		return New(Truthy), true
	}
	if places, ok := decimalPlaces(key); ok {
		return NewDecimal(places), true
	}
	return Format{}, false
}

func parseExtended(head, rest string) (Format, bool) {
	switch {
	case head == "dt" || head == "datetime":
		if strings.TrimSpace(rest) == "" {
			return New(DateTime), true
		}
		return NewDateTimeCustom(rest), true
	case strings.HasPrefix(head, "tr"):
		yes, no, found := strings.Cut(rest, ",")
		if !found {
			// "tr:yes|no" form with one pattern per side
			pair := strings.Split(rest, "|")
			if len(pair) != 2 {
				return Format{}, false
			}
			yes, no = pair[0], pair[1]
		}
		if strings.TrimSpace(yes) == "" || strings.TrimSpace(no) == "" {
			return Format{}, false
		}
		return TruthyCustomFrom(yes, no), true
	}
	return Format{}, false
}

func decimalPlaces(key string) (uint8, bool) {
	var digits string
	switch {
	case strings.HasPrefix(key, "decimal_"):
		digits = strings.TrimPrefix(key, "decimal_")
	case len(key) == 2 && key[0] == 'd':
		digits = key[1:]
	default:
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > 8 {
		return 0, false
	}
	return uint8(n), true
}
