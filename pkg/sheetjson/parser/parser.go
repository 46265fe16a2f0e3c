// Package parser provides the workbook and delimited-text sources that feed
// the row pipeline. Sources classify each cell; they never coerce values.
package parser

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
)

// ErrUnsupportedKind is returned by Open for files no source can read.
var ErrUnsupportedKind = errors.New("unsupported file kind")

// Source is an opened tabular file.
type Source interface {
	// SheetNames lists sheets in source order.
	SheetNames() []string
	// Rows starts a fresh pass over one sheet.
	Rows(sheet string) (RowIterator, error)
	Close() error
}

// RowIterator walks the rows of one sheet.
type RowIterator interface {
	Next() bool
	// Cells classifies the current row. A nil slice is a blank row.
	Cells() ([]models.Cell, error)
	// Err reports the error that stopped iteration, if any.
	Err() error
	Close() error
}

// Kind represents a supported input format.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindWorkbook
	KindCSV
	KindTSV
	// KindLegacy covers spreadsheet formats that are recognized but not readable.
	KindLegacy
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindWorkbook:
		return "workbook"
	case KindCSV:
		return "csv"
	case KindTSV:
		return "tsv"
	case KindLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Readable reports whether a source exists for k.
func (k Kind) Readable() bool {
	return k == KindWorkbook || k == KindCSV || k == KindTSV
}

// Delimited reports whether k is a delimited text kind.
func (k Kind) Delimited() bool {
	return k == KindCSV || k == KindTSV
}

// Extension returns the lower-case extension of path without the dot.
func Extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Stem returns the file name without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DetectKind classifies path by extension.
func DetectKind(path string) Kind {
	switch Extension(path) {
	case "xlsx", "xlsm", "xltx", "xltm":
		return KindWorkbook
	case "csv":
		return KindCSV
	case "tsv":
		return KindTSV
	case "xls", "xlsb", "ods":
		return KindLegacy
	default:
		return KindUnknown
	}
}

// Open opens path with the source matching kind.
func Open(path string, kind Kind) (Source, error) {
	var (
		src Source
		err error
	)
	switch kind {
	case KindWorkbook:
		src, err = OpenWorkbook(path)
	case KindCSV:
		src, err = OpenDelimited(path, ',')
	case KindTSV:
		src, err = OpenDelimited(path, '\t')
	default:
		return nil, ErrUnsupportedKind
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}

// CountRows drains it without classifying cells.
func CountRows(it RowIterator) (int, error) {
	n := 0
	for it.Next() {
		n++
	}
	return n, it.Err()
}
