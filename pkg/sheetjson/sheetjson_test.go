package sheetjson

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/format"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/headers"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
)

// writeWorkbook saves a workbook whose sheets are given in order as name and rows.
func writeWorkbook(t *testing.T, sheets ...sheetFixture) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(s.name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

type sheetFixture struct {
	name string
	rows [][]any
}

// numberedSheet has a header row followed by n data rows.
func numberedSheet(name string, n int) sheetFixture {
	rows := [][]any{{"Id", "Label"}}
	for i := 1; i <= n; i++ {
		rows = append(rows, []any{i, "row"})
	}
	return sheetFixture{name: name, rows: rows}
}

func writeText(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestProcessSync(t *testing.T) {
	path := writeWorkbook(t, numberedSheet("Data", 400))

	rs, err := Process(context.Background(), NewOptionSet(path).MaxRowCount(1000))
	require.NoError(t, err)

	assert.Equal(t, "book", rs.Filename)
	assert.Equal(t, "xlsx", rs.Extension)
	assert.Equal(t, models.SheetRef{Key: "Data", Index: 0}, rs.Sheet)
	assert.Equal(t, []string{"id", "label"}, rs.Keys)
	assert.Equal(t, 401, rs.NumRows)
	require.Len(t, rs.Data, 400)

	first := rs.Data[0]
	assert.Equal(t, []string{"id", "label"}, first.Keys())
	id, _ := first.Get("id")
	assert.Equal(t, int64(1), id)
}

func TestProcessSyncCeiling(t *testing.T) {
	path := writeWorkbook(t, numberedSheet("Data", 30))

	rs, err := Process(context.Background(), NewOptionSet(path).MaxRowCount(5))
	require.NoError(t, err)
	assert.Equal(t, 31, rs.NumRows)
	assert.Len(t, rs.Data, 5)
}

func TestProcessPreviewMultiple(t *testing.T) {
	path := writeWorkbook(t, numberedSheet("First", 100), numberedSheet("Second", 16))

	opts := NewOptionSet(path).ReadModePreview().MaxRowCount(10).
		SetColumns([]Column{NewColumn("ref")})
	rs, err := Process(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 118, rs.NumRows)
	assert.Equal(t, []string{"First", "Second"}, rs.Sheets)
	require.Len(t, rs.Multiple, 2)

	assert.Equal(t, 101, rs.Multiple[0].NumRows)
	assert.Len(t, rs.Multiple[0].Rows, 10)
	assert.Equal(t, []string{"ref", "label"}, rs.Multiple[0].Keys)

	assert.Equal(t, 17, rs.Multiple[1].NumRows)
	assert.Len(t, rs.Multiple[1].Rows, 10)
	assert.Equal(t, []string{"id", "label"}, rs.Multiple[1].Keys)
}

func TestProcessHeaderRow(t *testing.T) {
	path := writeWorkbook(t, sheetFixture{name: "S", rows: [][]any{
		{"Quarterly report"},
		{"Name", "Age"},
		{"ann", 31},
		{"bob", 42},
	}})

	rs, err := Process(context.Background(), NewOptionSet(path).HeaderRowIndex(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, rs.Keys)
	assert.Equal(t, 4, rs.NumRows)
	require.Len(t, rs.Data, 2)
	assert.Equal(t, map[string]any{"name": "bob", "age": int64(42)}, rs.Data[1].Map())
}

func TestProcessOmitHeader(t *testing.T) {
	path := writeWorkbook(t, sheetFixture{name: "S", rows: [][]any{
		{"x", 1},
		{"y", 2},
	}})

	rs, err := Process(context.Background(), NewOptionSet(path).OmitHeaders())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rs.Keys)
	assert.Len(t, rs.Data, 2)

	rs, err = Process(context.Background(), NewOptionSet(path).OmitHeaders().FieldNameMode(headers.NumPadded))
	require.NoError(t, err)
	assert.Equal(t, []string{"c01", "c02"}, rs.Keys)
}

func TestProcessRepeatedHeader(t *testing.T) {
	path := writeWorkbook(t, sheetFixture{name: "S", rows: [][]any{
		{"Name", "Age"},
		{"Name", "Age"},
		{"ann", 31},
	}})

	rs, err := Process(context.Background(), NewOptionSet(path))
	require.NoError(t, err)
	assert.Equal(t, 3, rs.NumRows)
	require.Len(t, rs.Data, 1)
	name, _ := rs.Data[0].Get("name")
	assert.Equal(t, "ann", name)
}

func TestProcessShortRowsPadded(t *testing.T) {
	path := writeText(t, "short.csv", "a,b,c\n1\n4,5,6,7\n")

	opts := NewOptionSet(path).SetColumns([]Column{
		{},
		ColumnWithFormat(format.New(format.Integer), "0"),
	})
	rs, err := Process(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, rs.Data, 2)
	assert.Equal(t, map[string]any{"a": int64(1), "b": int64(0), "c": nil}, rs.Data[0].Map())
	assert.Len(t, rs.Data[1], 3)
}

func TestProcessOverridesBeyondHeader(t *testing.T) {
	path := writeText(t, "narrow.csv", "A,B\n1,2\n")

	opts := NewOptionSet(path).SetColumns([]Column{NewColumn("x"), NewColumn("y"), NewColumn("z")})
	rs, err := Process(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, rs.Keys)
	require.Len(t, rs.Data, 1)
	assert.Equal(t, map[string]any{"x": int64(1), "y": int64(2)}, rs.Data[0].Map())
}

func TestProcessCSVInference(t *testing.T) {
	path := writeText(t, "orders.csv", "Name,Qty,Active,Joined\nfoo,3,true,2023-08-29\nbar,2.5,false,\n")

	opts := NewOptionSet(path).SetColumns([]Column{
		{}, {}, {},
		ColumnWithFormat(format.New(format.Date), "n/a"),
	})
	rs, err := Process(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, "orders", rs.Sheet.Key)
	assert.Equal(t, "csv", rs.Extension)
	require.Len(t, rs.Data, 2)
	assert.Equal(t, map[string]any{"name": "foo", "qty": int64(3), "active": true, "joined": "2023-08-29"}, rs.Data[0].Map())
	assert.Equal(t, map[string]any{"name": "bar", "qty": 2.5, "active": false, "joined": "n/a"}, rs.Data[1].Map())
}

func TestProcessSheetSelection(t *testing.T) {
	path := writeWorkbook(t, numberedSheet("Alpha", 1), numberedSheet("Second Sheet", 2))

	tests := []struct {
		name     string
		opts     OptionSet
		expected models.SheetRef
	}{
		{"by name ignoring case and spaces", NewOptionSet(path).SheetName("secondsheet"), models.SheetRef{Key: "Second Sheet", Index: 1}},
		{"by index", NewOptionSet(path).SheetIndex(1), models.SheetRef{Key: "Second Sheet", Index: 1}},
		{"unmatched name falls back to index", NewOptionSet(path).SheetName("nope").SheetIndex(1), models.SheetRef{Key: "Second Sheet", Index: 1}},
		{"index out of range falls back to first", NewOptionSet(path).SheetIndex(9), models.SheetRef{Key: "Alpha", Index: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := Process(context.Background(), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rs.Sheet)
		})
	}
}

func TestProcessErrors(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.xlsx")
	require.NoError(t, os.WriteFile(broken, []byte("not a zip"), 0644))
	legacy := filepath.Join(dir, "old.ods")
	require.NoError(t, os.WriteFile(legacy, []byte("x"), 0644))
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("x"), 0644))

	tests := []struct {
		name     string
		path     string
		code     string
		sentinel error
	}{
		{"no path", "", CodeNoPath, ErrNoPath},
		{"missing", filepath.Join(dir, "missing.xlsx"), CodeFileNotFound, ErrFileNotFound},
		{"legacy", legacy, CodeUnsupported, ErrUnsupportedFormat},
		{"unknown extension", text, CodeUnsupported, ErrUnsupportedFormat},
		{"broken workbook", broken, CodeWorkbookOpen, ErrWorkbookOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Process(context.Background(), NewOptionSet(tt.path))
			require.Error(t, err)
			assert.Equal(t, tt.code, CodeOf(err))
			assert.ErrorIs(t, err, tt.sentinel)

			report := ErrorReport(err, NewOptionSet(tt.path))
			assert.True(t, report.Error)
			assert.Equal(t, tt.code, report.Code)
		})
	}
}

func TestProcessAsyncCountOnly(t *testing.T) {
	path := writeWorkbook(t, numberedSheet("Data", 50))

	rs, err := Process(context.Background(), NewOptionSet(path).ReadModeAsync().MaxRowCount(5))
	require.NoError(t, err)
	assert.Equal(t, 51, rs.NumRows)
	assert.Equal(t, []string{"id", "label"}, rs.Keys)
	assert.Empty(t, rs.Data)
}

func TestProcessAsyncStreams(t *testing.T) {
	path := writeWorkbook(t, numberedSheet("Data", 75))

	var (
		mu  sync.Mutex
		ids []any
	)
	sink := SaveFunc(func(_ context.Context, rec models.Record) error {
		mu.Lock()
		defer mu.Unlock()
		id, _ := rec.Get("id")
		ids = append(ids, id)
		return nil
	})

	opts := NewOptionSet(path).MaxRowCount(5).WithLimits(Limits{ChannelSize: 4})
	rs, err := ProcessAsync(context.Background(), opts, sink, "")
	require.NoError(t, err)

	assert.Equal(t, 76, rs.NumRows)
	assert.Empty(t, rs.Data)
	assert.True(t, strings.HasPrefix(rs.OutRef, "sheetjson:"))
	require.Len(t, ids, 75)
	for i, id := range ids {
		assert.Equal(t, int64(i+1), id)
	}
}

func TestProcessAsyncSaveFailure(t *testing.T) {
	path := writeWorkbook(t, numberedSheet("Data", 200))

	calls := 0
	boom := errors.New("disk full")
	sink := SaveFunc(func(context.Context, models.Record) error {
		calls++
		if calls == 3 {
			return boom
		}
		return nil
	})

	_, err := ProcessAsync(context.Background(), NewOptionSet(path), sink, "out")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSaveSink)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, CodeSaveSink, CodeOf(err))
	assert.Equal(t, 3, calls)
}

func TestProcessCanceled(t *testing.T) {
	path := writeWorkbook(t, numberedSheet("Data", 5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Process(ctx, NewOptionSet(path))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptionSetValidate(t *testing.T) {
	err := NewOptionSet("").SheetIndex(-1).MaxRowCount(-2).Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPath)
	assert.Contains(t, err.Error(), "sheet index")
	assert.Contains(t, err.Error(), "max rows")

	assert.NoError(t, NewOptionSet("a.csv").Validate())
}

func TestOptionSetBuildersDoNotMutate(t *testing.T) {
	base := NewOptionSet("a.xlsx")
	derived := base.SheetName("S").MaxRowCount(3).ReadModePreview().DecimalComma(true)

	assert.Equal(t, "", base.Sheet)
	assert.Equal(t, ReadModeSync, base.ReadMode)
	assert.False(t, base.Rows.DecimalComma)
	assert.Equal(t, 3, derived.MaxRows())
	assert.True(t, derived.Multimode())
	assert.Equal(t, DefaultMaxPreviewRows, base.ReadModePreview().MaxRows())
	assert.Equal(t, DefaultMaxRows, base.MaxRows())
}

func TestColumnFromMap(t *testing.T) {
	col := ColumnFromMap(map[string]any{
		"key":                " price ",
		"format":             "d2",
		"default":            "1.239",
		"euro_number_format": "true",
	})
	assert.Equal(t, "price", col.Key)
	assert.Equal(t, format.Decimal, col.Format.Kind())
	assert.Equal(t, 1.24, col.Default)
	assert.True(t, col.DecimalComma)

	col = ColumnFromMap(map[string]any{"decimal_comma": false, "euro_number_format": true})
	assert.False(t, col.DecimalComma)
}

func TestParseKeyList(t *testing.T) {
	cols := ParseKeyList("name, age:i ,joined:da")
	require.Len(t, cols, 3)
	assert.Equal(t, "name", cols[0].Key)
	assert.Equal(t, format.Integer, cols[1].Format.Kind())
	assert.Equal(t, "joined", cols[2].Key)
	assert.Equal(t, format.Date, cols[2].Format.Kind())
	assert.Nil(t, ParseKeyList("  "))
}

func TestParseKeyListTruthyRules(t *testing.T) {
	tests := []struct {
		name  string
		input string
		keys  []string
		rules string
	}{
		{name: "single item", input: "ok:tr:yes,no", keys: []string{"ok"}, rules: "truthy(yes,no)"},
		{name: "followed by items", input: "name,ok:tr:yes|y,no|n,age:i", keys: []string{"name", "ok", "age"}, rules: "truthy(yes|y,no|n)"},
		{name: "bare item after rules", input: "ok:tr:yes,no,age", keys: []string{"ok", "age"}, rules: "truthy(yes,no)"},
		{name: "semicolon list", input: "ok:tr:yes|no; age:i", keys: []string{"ok", "age"}, rules: "truthy(yes,no)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := ParseKeyList(tt.input)
			require.Len(t, cols, len(tt.keys))
			var ok Column
			for i, col := range cols {
				assert.Equal(t, tt.keys[i], col.Key)
				if col.Key == "ok" {
					ok = col
				}
			}
			assert.Equal(t, format.TruthyCustom, ok.Format.Kind())
			assert.Equal(t, tt.rules, ok.Format.String())
		})
	}
}

func TestParseReadMode(t *testing.T) {
	assert.Equal(t, ReadModePreviewMultiple, ParseReadMode("Preview"))
	assert.Equal(t, ReadModeAsync, ParseReadMode("stream"))
	assert.Equal(t, ReadModeSync, ParseReadMode("whatever"))
}

func TestOptionSetJSON(t *testing.T) {
	data, err := NewOptionSet("a.csv").SheetName("S").ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sheet":{"key":"S","index":0}`)
	assert.Contains(t, string(data), `"mode":"sync"`)
	assert.Contains(t, string(data), `"columns":[]`)
}

func TestSelectSheetsStrict(t *testing.T) {
	names := []string{"Alpha", "Beta"}

	refs, err := SelectSheets(names, NewOptionSet("x.xlsx").SheetName(" beta "), true)
	require.NoError(t, err)
	assert.Equal(t, []models.SheetRef{{Key: "Beta", Index: 1}}, refs)

	_, err = SelectSheets(names, NewOptionSet("x.xlsx").SheetName("Gamma"), true)
	assert.ErrorIs(t, err, ErrSheetNotFound)

	_, err = SelectSheets(names, NewOptionSet("x.xlsx").SheetIndex(4), true)
	assert.ErrorIs(t, err, ErrSheetNotFound)

	refs, err = SelectSheets(names, NewOptionSet("x.xlsx").ReadModePreview(), true)
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	_, err = SelectSheets(nil, NewOptionSet("x.xlsx"), false)
	assert.ErrorIs(t, err, ErrNoSheets)
}
