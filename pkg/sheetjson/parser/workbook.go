package parser

import (
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/fuzzydate"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
)

// Workbook is an OOXML spreadsheet opened with excelize.
type Workbook struct {
	f        *excelize.File
	date1904 bool

	mu         sync.Mutex
	dateStyles map[int]bool
}

// OpenWorkbook opens an xlsx-family file.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	w := &Workbook{f: f, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		w.date1904 = *props.Date1904
	}
	return w, nil
}

// SheetNames lists worksheets in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// Rows opens a streaming row iterator over sheet.
func (w *Workbook) Rows(sheet string) (RowIterator, error) {
	rows, err := w.f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	return &workbookRows{w: w, sheet: sheet, rows: rows}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.f.Close()
}

type workbookRows struct {
	w      *Workbook
	sheet  string
	rows   *excelize.Rows
	rowNum int
}

func (r *workbookRows) Next() bool {
	if !r.rows.Next() {
		return false
	}
	r.rowNum++
	return true
}

func (r *workbookRows) Err() error {
	return r.rows.Error()
}

func (r *workbookRows) Close() error {
	return r.rows.Close()
}

// Cells reads the current row with raw values and classifies each cell
// from its stored type and number format.
func (r *workbookRows) Cells() ([]models.Cell, error) {
	cols, err := r.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, nil
	}

	cells := make([]models.Cell, len(cols))
	for colIdx, raw := range cols {
		if raw == "" {
			cells[colIdx] = models.EmptyCell()
			continue
		}
		cellName, err := excelize.CoordinatesToCellName(colIdx+1, r.rowNum)
		if err != nil {
			return nil, err
		}
		cells[colIdx] = r.w.classify(r.sheet, cellName, raw)
	}
	return cells, nil
}

func (w *Workbook) classify(sheet, cellName, raw string) models.Cell {
	cellType, err := w.f.GetCellType(sheet, cellName)
	if err != nil {
		return models.StringCell(raw)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return models.BoolCell(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeDate:
		if t, err := fuzzydate.ToTime(raw); err == nil {
			return models.DateCell(t)
		}
		return models.StringCell(fuzzydate.CorrectISODateTime(raw))
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		return w.numeric(sheet, cellName, raw)
	}
	// shared, inline and formula strings, plus error values like #N/A
	return models.StringCell(raw)
}

// numeric parses a stored number. Integers are tried first, then floats;
// numbers under a date format become dates.
func (w *Workbook) numeric(sheet, cellName, raw string) models.Cell {
	if w.isDateStyled(sheet, cellName) {
		serial, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.InvalidDateCell(raw)
		}
		t, err := excelize.ExcelDateToTime(serial, w.date1904)
		if err != nil {
			return models.InvalidDateCell(raw)
		}
		return models.DateCell(t)
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return models.IntCell(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return models.FloatCell(f)
	}
	return models.StringCell(raw)
}

func (w *Workbook) isDateStyled(sheet, cellName string) bool {
	styleID, err := w.f.GetCellStyle(sheet, cellName)
	if err != nil || styleID == 0 {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if isDate, ok := w.dateStyles[styleID]; ok {
		return isDate
	}
	isDate := false
	if style, err := w.f.GetStyle(styleID); err == nil && style != nil {
		isDate = isDateNumFmt(style.NumFmt, style.CustomNumFmt)
	}
	w.dateStyles[styleID] = isDate
	return isDate
}

// isDateNumFmt reports whether a built-in number format id or a custom
// format code renders dates or times.
func isDateNumFmt(id int, custom *string) bool {
	if custom != nil {
		return isDateFormatCode(*custom)
	}
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode looks for date or time tokens outside quoted literals
// and bracketed sections such as colors or locales.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[':
			inBracket = true
		case c == ']':
			inBracket = false
		case inBracket:
		case c == '\\':
			i++
		default:
			b.WriteByte(c)
		}
	}
	plain := strings.ToLower(b.String())
	if plain == "general" {
		return false
	}
	return strings.ContainsAny(plain, "ydhs")
}
