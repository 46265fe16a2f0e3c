package parser

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
)

// Delimited is a CSV or TSV file. Every call to Rows reopens the file, so
// concurrent passes never share a handle.
type Delimited struct {
	path  string
	comma rune
}

// OpenDelimited checks that path is readable and returns a source using comma
// as the field delimiter.
func OpenDelimited(path string, comma rune) (*Delimited, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return &Delimited{path: path, comma: comma}, nil
}

// SheetNames returns the file stem as the only sheet.
func (d *Delimited) SheetNames() []string {
	return []string{Stem(d.path)}
}

// Comma returns the field delimiter.
func (d *Delimited) Comma() rune {
	return d.comma
}

// Rows starts a new pass over the file. The sheet name is ignored.
func (d *Delimited) Rows(string) (RowIterator, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, err
	}
	// strip a UTF-8 BOM, or decode UTF-16 when a BOM says so
	decoded := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	r := csv.NewReader(decoded)
	r.Comma = d.comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return &delimitedRows{f: f, r: r}, nil
}

func (d *Delimited) Close() error {
	return nil
}

type delimitedRows struct {
	f      *os.File
	r      *csv.Reader
	record []string
	err    error
}

func (it *delimitedRows) Next() bool {
	if it.err != nil {
		return false
	}
	record, err := it.r.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			it.err = err
		}
		it.record = nil
		return false
	}
	it.record = record
	return true
}

// Cells returns every field as untyped text.
func (it *delimitedRows) Cells() ([]models.Cell, error) {
	if it.record == nil {
		return nil, it.err
	}
	cells := make([]models.Cell, len(it.record))
	for i, v := range it.record {
		cells[i] = models.TextCell(v)
	}
	return cells, nil
}

func (it *delimitedRows) Err() error {
	return it.err
}

func (it *delimitedRows) Close() error {
	return it.f.Close()
}
