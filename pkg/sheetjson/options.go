// Package sheetjson converts spreadsheet and delimited files into typed
// JSON row records.
package sheetjson

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/coerce"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/format"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/headers"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ReadMode represents how rows are materialized.
type ReadMode uint8

const (
	// ReadModeSync materializes rows of a single sheet up to the row ceiling.
	ReadModeSync ReadMode = iota
	// ReadModePreviewMultiple materializes a bounded preview of every sheet.
	ReadModePreviewMultiple
	// ReadModeAsync counts rows and streams them to a Sink.
	ReadModeAsync
)

// ParseReadMode maps a CLI or config token to a ReadMode. Unknown tokens yield ReadModeSync.
func ParseReadMode(s string) ReadMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "preview", "multiple", "preview_multiple", "p", "m":
		return ReadModePreviewMultiple
	case "async", "stream", "a":
		return ReadModeAsync
	}
	return ReadModeSync
}

func (m ReadMode) String() string {
	switch m {
	case ReadModePreviewMultiple:
		return "preview_multiple"
	case ReadModeAsync:
		return "async"
	}
	return "sync"
}

const (
	// DefaultMaxRows caps materialized rows for single-sheet reads.
	DefaultMaxRows = 10000
	// DefaultMaxPreviewRows caps materialized rows per sheet for preview reads.
	DefaultMaxPreviewRows = 1000
	// DefaultChannelSize is the capacity of the streaming channel.
	DefaultChannelSize = 32
)

// Limits holds process-level defaults resolved once at startup.
type Limits struct {
	MaxRows        int
	MaxPreviewRows int
	ChannelSize    int
}

// DefaultLimits returns the built-in limits.
func DefaultLimits() Limits {
	return Limits{
		MaxRows:        DefaultMaxRows,
		MaxPreviewRows: DefaultMaxPreviewRows,
		ChannelSize:    DefaultChannelSize,
	}
}

func (l Limits) channelSize() int {
	if l.ChannelSize > 0 {
		return l.ChannelSize
	}
	return DefaultChannelSize
}

// Column configures one source column by position.
type Column struct {
	// Key overrides the header-derived key when non-empty.
	Key string
	// Format declares the target type. The zero value is Auto.
	Format format.Format
	// Default replaces empty or unresolvable cells. nil means null.
	Default any
	// DateOnly renders date-times as dates.
	DateOnly bool
	// DecimalComma forces ',' as the decimal separator.
	DecimalComma bool
}

// NewColumn returns an Auto column with an explicit key.
func NewColumn(key string) Column {
	return Column{Key: key}
}

// ColumnWithFormat returns an unkeyed column with a format and default.
// The default is converted to the format's value type where possible.
func ColumnWithFormat(f format.Format, def any) Column {
	return Column{Format: f, Default: coerce.NormalizeDefault(def, f)}
}

// ColumnFromMap builds a column from a decoded config entry with the keys
// key, format, default, date_only and decimal_comma or euro_number_format.
// decimal_comma wins when both are present.
func ColumnFromMap(m map[string]any) Column {
	col := Column{
		Key:      strings.TrimSpace(cast.ToString(m["key"])),
		Format:   format.Parse(cast.ToString(m["format"])),
		DateOnly: cast.ToBool(m["date_only"]),
	}
	if v, ok := m["decimal_comma"]; ok {
		col.DecimalComma = cast.ToBool(v)
	} else if v, ok := m["euro_number_format"]; ok {
		col.DecimalComma = cast.ToBool(v)
	}
	col.Default = coerce.NormalizeDefault(m["default"], col.Format)
	return col
}

// ParseKeyList parses a list of "key" or "key:format" items, e.g.
// "name,age:i,joined:da". Items are separated by ';' when the list contains
// one, otherwise by ','. In comma lists a segment without ':' that follows an
// open "tr:<yes>" item completes it, so "ok:tr:yes,no" is one column. The
// "tr:yes|no" shorthand followed by more items needs ';' separators.
// An empty key keeps the header text.
func ParseKeyList(s string) []Column {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	sep := ","
	if strings.Contains(s, ";") {
		sep = ";"
	}

	var items []string
	for _, seg := range strings.Split(s, sep) {
		seg = strings.TrimSpace(seg)
		if n := len(items); sep == "," && n > 0 && !strings.Contains(seg, ":") && openTruthy(items[n-1]) {
			items[n-1] += "," + seg
			continue
		}
		items = append(items, seg)
	}

	cols := make([]Column, 0, len(items))
	for _, item := range items {
		key, fmtText, _ := strings.Cut(item, ":")
		cols = append(cols, Column{Key: strings.TrimSpace(key), Format: format.Parse(fmtText)})
	}
	return cols
}

// openTruthy reports whether item is a "key:tr:<yes>" item still missing
// its "<no>" side.
func openTruthy(item string) bool {
	_, fmtText, ok := strings.Cut(item, ":")
	if !ok {
		return false
	}
	head, rules, ok := strings.Cut(fmtText, ":")
	if !ok || !strings.HasPrefix(strings.ToLower(strings.TrimSpace(head)), "tr") {
		return false
	}
	return !strings.Contains(rules, ",")
}

// MarshalJSON echoes the column configuration.
func (c Column) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"key":           c.Key,
		"format":        c.Format.String(),
		"default":       c.Default,
		"date_only":     c.DateOnly,
		"decimal_comma": c.DecimalComma,
	})
}

// RowOptionSet holds per-column overrides and the defaults applied to
// columns that do not set them.
type RowOptionSet struct {
	Columns      []Column
	DecimalComma bool
	DateOnly     bool
}

// Column returns the override at index i, if any.
func (r RowOptionSet) Column(i int) (Column, bool) {
	if i < 0 || i >= len(r.Columns) {
		return Column{}, false
	}
	return r.Columns[i], true
}

// Keys returns the override keys aligned by position.
func (r RowOptionSet) Keys() []string {
	keys := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		keys[i] = c.Key
	}
	return keys
}

// spec resolves the effective coercion settings for column i.
func (r RowOptionSet) spec(i int) coerce.Spec {
	col, _ := r.Column(i)
	return coerce.Spec{
		Format:       col.Format,
		Default:      col.Default,
		DateOnly:     col.DateOnly || r.DateOnly,
		DecimalComma: col.DecimalComma || r.DecimalComma,
	}
}

// withoutColumns keeps the row defaults but drops column overrides.
func (r RowOptionSet) withoutColumns() RowOptionSet {
	return RowOptionSet{DecimalComma: r.DecimalComma, DateOnly: r.DateOnly}
}

// OptionSet is the configuration for one read. It is a value type; the
// builder methods return modified copies and never mutate the receiver.
type OptionSet struct {
	// Sheet selects a sheet by name, ignoring case and spaces.
	Sheet string
	// Index selects a sheet by position when Sheet is empty or unmatched.
	Index int
	Path  string
	Rows  RowOptionSet
	// Max caps materialized rows. Zero uses the mode default from Limits.
	Max int
	// HeaderRow is the 0-based index of the header row.
	HeaderRow int
	// OmitHeader treats the first row as data and synthesizes keys.
	OmitHeader bool
	ReadMode   ReadMode
	FieldMode  headers.FieldNameMode
	Limits     Limits
}

// NewOptionSet returns options for path with default limits.
func NewOptionSet(path string) OptionSet {
	return OptionSet{Path: path, Limits: DefaultLimits()}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (o OptionSet) Clone() OptionSet {
	o.Rows.Columns = append([]Column(nil), o.Rows.Columns...)
	return o
}

func (o OptionSet) SheetName(name string) OptionSet { o.Sheet = name; return o }
func (o OptionSet) SheetIndex(i int) OptionSet { o.Index = i; return o }
func (o OptionSet) MaxRowCount(n int) OptionSet { o.Max = n; return o }
func (o OptionSet) HeaderRowIndex(i int) OptionSet { o.HeaderRow = i; return o }
func (o OptionSet) OmitHeaders() OptionSet { o.OmitHeader = true; return o }
func (o OptionSet) ReadModeSync() OptionSet { o.ReadMode = ReadModeSync; return o }
func (o OptionSet) ReadModePreview() OptionSet { o.ReadMode = ReadModePreviewMultiple; return o }
func (o OptionSet) ReadModeAsync() OptionSet { o.ReadMode = ReadModeAsync; return o }
func (o OptionSet) FieldNameMode(m headers.FieldNameMode) OptionSet {
	o.FieldMode = m
	return o
}
func (o OptionSet) DecimalComma(on bool) OptionSet { o.Rows.DecimalComma = on; return o }
func (o OptionSet) DateOnly(on bool) OptionSet { o.Rows.DateOnly = on; return o }
func (o OptionSet) WithLimits(l Limits) OptionSet { o.Limits = l; return o }

// SetColumns replaces the column overrides with a copy of cols.
func (o OptionSet) SetColumns(cols []Column) OptionSet {
	o.Rows.Columns = append([]Column(nil), cols...)
	return o
}

// Multimode reports whether every sheet is read.
func (o OptionSet) Multimode() bool {
	return o.ReadMode == ReadModePreviewMultiple
}

// CaptureRows reports whether rows are materialized in the result.
func (o OptionSet) CaptureRows() bool {
	return o.ReadMode != ReadModeAsync
}

// MaxRows returns the effective row ceiling.
func (o OptionSet) MaxRows() int {
	if o.Max > 0 {
		return o.Max
	}
	if o.Multimode() {
		if o.Limits.MaxPreviewRows > 0 {
			return o.Limits.MaxPreviewRows
		}
		return DefaultMaxPreviewRows
	}
	if o.Limits.MaxRows > 0 {
		return o.Limits.MaxRows
	}
	return DefaultMaxRows
}

// Validate reports every configuration problem at once.
func (o OptionSet) Validate() error {
	var result *multierror.Error
	if strings.TrimSpace(o.Path) == "" {
		result = multierror.Append(result, ErrNoPath)
	}
	if o.Index < 0 {
		result = multierror.Append(result, fmt.Errorf("sheet index must not be negative: %d", o.Index))
	}
	if o.Max < 0 {
		result = multierror.Append(result, fmt.Errorf("max rows must not be negative: %d", o.Max))
	}
	if o.HeaderRow < 0 {
		result = multierror.Append(result, fmt.Errorf("header row must not be negative: %d", o.HeaderRow))
	}
	return result.ErrorOrNil()
}

// MarshalJSON echoes the options, used in error reports.
func (o OptionSet) MarshalJSON() ([]byte, error) {
	cols := o.Rows.Columns
	if cols == nil {
		cols = []Column{}
	}
	return json.Marshal(struct {
		Sheet        sheetEcho `json:"sheet"`
		Path         string    `json:"path"`
		DecimalComma bool      `json:"decimal_comma"`
		DateOnly     bool      `json:"date_only"`
		Columns      []Column  `json:"columns"`
		Max          int       `json:"max"`
		HeaderRow    int       `json:"header_row"`
		OmitHeader   bool      `json:"omit_header"`
		Mode         string    `json:"mode"`
		FieldMode    string    `json:"field_mode"`
	}{
		Sheet:        sheetEcho{Key: o.Sheet, Index: o.Index},
		Path:         o.Path,
		DecimalComma: o.Rows.DecimalComma,
		DateOnly:     o.Rows.DateOnly,
		Columns:      cols,
		Max:          o.Max,
		HeaderRow:    o.HeaderRow,
		OmitHeader:   o.OmitHeader,
		Mode:         o.ReadMode.String(),
		FieldMode:    o.FieldMode.String(),
	})
}

type sheetEcho struct {
	Key   string `json:"key"`
	Index int    `json:"index"`
}

// ToJSON renders the options echo.
func (o OptionSet) ToJSON() ([]byte, error) {
	return o.MarshalJSON()
}
