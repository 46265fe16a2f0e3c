// Package coerce converts raw source cells into JSON-compatible values
// according to a column's declared format.
//
// Coercion never fails: a value that cannot be resolved becomes the
// column default, or nil when no default is declared.
package coerce

import (
	"math"
	"strconv"

	"github.com/spf13/cast"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/format"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/fuzzydate"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/numfmt"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/truthy"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// Spec is the effective configuration for one column.
type Spec struct {
	Format       format.Format
	Default      any
	DateOnly     bool
	DecimalComma bool
}

// Value coerces cell under spec. The result is one of nil, bool, int64,
// float64 or string, or the column default.
func Value(cell models.Cell, spec Spec) any {
	if cell.IsEmpty() {
		return spec.Default
	}

	switch cell.Kind {
	case models.CellInt:
		return intValue(cell.Int, spec)
	case models.CellFloat:
		return floatValue(cell.Float, spec)
	case models.CellBool:
		if spec.Format.Kind() == format.Text {
			return strconv.FormatBool(cell.Bool)
		}
		return cell.Bool
	case models.CellDate:
		return dateValue(cell, spec)
	case models.CellText:
		if spec.Format.Kind() == format.Auto {
			return inferText(cell.Str, spec)
		}
	}
	return stringValue(cell.Str, spec)
}

func intValue(v int64, spec Spec) any {
	switch spec.Format.Kind() {
	case format.Text:
		return strconv.FormatInt(v, 10)
	case format.Boolean, format.Truthy, format.TruthyCustom:
		return v >= 1
	}
	return v
}

func floatValue(v float64, spec Spec) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return spec.Default
	}
	switch spec.Format.Kind() {
	case format.Integer:
		if i, ok := truncate(v); ok {
			return i
		}
		return spec.Default
	case format.Decimal:
		return numfmt.Round(v, spec.Format.Precision())
	case format.Text:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case format.Boolean, format.Truthy, format.TruthyCustom:
		return v >= 1
	}
	return v
}

func dateValue(cell models.Cell, spec Spec) any {
	if cell.Invalid {
		return spec.Default
	}
	t := cell.Time
	switch spec.Format.Kind() {
	case format.Date:
		return t.Format(dateLayout)
	case format.DateTimeCustom:
		return fuzzydate.Format(t, spec.Format.Pattern())
	}
	if spec.DateOnly {
		return t.Format(dateLayout)
	}
	return t.Format(dateTimeLayout)
}

func stringValue(s string, spec Spec) any {
	f := spec.Format
	switch f.Kind() {
	case format.Boolean:
		if b, ok := truthy.Core(s, false); ok {
			return b
		}
	case format.Truthy:
		if b, ok := truthy.Standard(s, false); ok {
			return b
		}
	case format.TruthyCustom:
		if b, ok := truthy.Custom(s, f.Rules(), false, false); ok {
			return b
		}
	case format.Decimal:
		if n, ok := numfmt.FirstNumber(s, spec.DecimalComma); ok {
			return numfmt.Round(n, f.Precision())
		}
	case format.Float:
		if n, ok := numfmt.FirstNumber(s, spec.DecimalComma); ok {
			return n
		}
	case format.Integer:
		if n, ok := numfmt.FirstNumber(s, spec.DecimalComma); ok {
			if i, ok := truncate(n); ok {
				return i
			}
		}
	case format.Date:
		if d, ok := fuzzydate.ToDateString(s); ok {
			return d
		}
	case format.DateTime:
		if spec.DateOnly {
			if d, ok := fuzzydate.ToDateString(s); ok {
				return d
			}
		} else if d, ok := fuzzydate.ToDateTimeString(s); ok {
			return d
		}
	case format.DateTimeCustom:
		if t, err := fuzzydate.ToTime(s); err == nil {
			return fuzzydate.Format(t, f.Pattern())
		}
	default:
		return s
	}
	return spec.Default
}

// inferText types untyped delimited text: numbers, then core booleans,
// else the raw string.
func inferText(s string, spec Spec) any {
	if n, isInt, ok := numfmt.ParseNumber(s, spec.DecimalComma); ok {
		if isInt {
			if i, ok := truncate(n); ok {
				return i
			}
		}
		return n
	}
	if b, ok := truthy.Core(s, false); ok {
		return b
	}
	return s
}

func truncate(v float64) (int64, bool) {
	t := math.Trunc(v)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return 0, false
	}
	return int64(t), true
}

// NormalizeDefault converts a configured default to the type f produces.
// Values that do not convert are returned unchanged.
func NormalizeDefault(v any, f format.Format) any {
	if v == nil {
		return nil
	}
	var (
		out any
		err error
	)
	switch f.Kind() {
	case format.Integer:
		out, err = cast.ToInt64E(v)
	case format.Decimal:
		var n float64
		n, err = cast.ToFloat64E(v)
		out = numfmt.Round(n, f.Precision())
	case format.Float:
		out, err = cast.ToFloat64E(v)
	case format.Boolean, format.Truthy, format.TruthyCustom:
		out, err = cast.ToBoolE(v)
	case format.Text:
		out, err = cast.ToStringE(v)
	default:
		return v
	}
	if err != nil {
		return v
	}
	return out
}
