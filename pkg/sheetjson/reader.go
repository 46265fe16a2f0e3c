package sheetjson

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/parser"
)

// PathData describes the input file as derived from its path.
type PathData struct {
	Path      string
	Filename  string
	Extension string
	Kind      parser.Kind
}

// NewPathData derives file name, extension and kind from path.
func NewPathData(path string) PathData {
	return PathData{
		Path:      path,
		Filename:  parser.Stem(path),
		Extension: parser.Extension(path),
		Kind:      parser.DetectKind(path),
	}
}

// Process reads the file named in opts in sync or preview mode. Async
// options are honoured as a count-only read.
func Process(ctx context.Context, opts OptionSet) (*models.ResultSet, error) {
	return ProcessCore(ctx, opts, nil, "")
}

// ProcessAsync counts the selected sheet and streams every data row to
// sink. The result carries keys, the total row count and outRef.
func ProcessAsync(ctx context.Context, opts OptionSet, sink Sink, outRef string) (*models.ResultSet, error) {
	return ProcessCore(ctx, opts.ReadModeAsync(), sink, outRef)
}

// ProcessCore is the shared entry point behind Process and ProcessAsync.
func ProcessCore(ctx context.Context, opts OptionSet, sink Sink, outRef string) (*models.ResultSet, error) {
	pd := NewPathData(opts.Path)
	if strings.TrimSpace(pd.Path) == "" {
		return nil, NewReadError(CodeNoPath, "", "", nil)
	}
	if err := opts.Validate(); err != nil {
		return nil, NewReadError(CodeInvalidOptions, pd.Path, "", err)
	}

	if _, err := os.Stat(pd.Path); err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			return nil, NewReadError(CodeFileNotFound, pd.Path, "", err)
		case errors.Is(err, os.ErrPermission):
			return nil, NewReadError(CodePermission, pd.Path, "", err)
		default:
			return nil, NewReadError(openFailureCode(pd.Kind), pd.Path, "", err)
		}
	}
	if !pd.Kind.Readable() {
		return nil, NewReadError(CodeUnsupported, pd.Path, "", nil)
	}

	src, err := openSource(pd)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	names := src.SheetNames()
	if len(names) == 0 {
		return nil, NewReadError(CodeNoSheets, pd.Path, "", nil)
	}

	info := models.WorkbookInfo{
		Filename:  pd.Filename,
		Extension: pd.Extension,
		Sheets:    names,
	}
	info.Selected, _ = SelectSheets(names, opts, false)
	if opts.Multimode() {
		return readMultiple(ctx, src, info, opts)
	}
	if opts.ReadMode == ReadModeAsync {
		return readAsync(ctx, src, pd, info, opts, sink, outRef)
	}
	return readSingle(ctx, src, info, opts)
}

func openFailureCode(kind parser.Kind) string {
	switch kind {
	case parser.KindCSV:
		return CodeUnreadableCSV
	case parser.KindTSV:
		return CodeUnreadableTSV
	default:
		return CodeWorkbookOpen
	}
}

func openSource(pd PathData) (parser.Source, error) {
	src, err := parser.Open(pd.Path, pd.Kind)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, NewReadError(CodePermission, pd.Path, "", err)
		}
		return nil, NewReadError(openFailureCode(pd.Kind), pd.Path, "", err)
	}
	return src, nil
}

// SelectSheets resolves the sheets a read covers. Preview reads cover every
// sheet. Otherwise opts.Sheet is matched ignoring case and spaces, then
// opts.Index is tried, then the first sheet. With strict set, a selection
// that matches nothing returns a sheet_not_found error instead of falling back.
func SelectSheets(names []string, opts OptionSet, strict bool) ([]models.SheetRef, error) {
	if len(names) == 0 {
		return nil, NewReadError(CodeNoSheets, opts.Path, "", nil)
	}
	if opts.Multimode() {
		refs := make([]models.SheetRef, len(names))
		for i, name := range names {
			refs[i] = models.SheetRef{Key: name, Index: i}
		}
		return refs, nil
	}

	if want := sheetMatchKey(opts.Sheet); want != "" {
		for i, name := range names {
			if sheetMatchKey(name) == want {
				return []models.SheetRef{{Key: name, Index: i}}, nil
			}
		}
		if strict {
			return nil, NewReadError(CodeSheetNotFound, opts.Path, opts.Sheet, nil)
		}
		slog.Debug("sheet name not matched, falling back to index", "sheet", opts.Sheet, "index", opts.Index)
	}
	if opts.Index >= 0 && opts.Index < len(names) {
		return []models.SheetRef{{Key: names[opts.Index], Index: opts.Index}}, nil
	}
	if strict {
		return nil, NewReadError(CodeSheetNotFound, opts.Path, "", fmt.Errorf("index %d out of range", opts.Index))
	}
	slog.Debug("sheet index out of range, using first sheet", "index", opts.Index, "sheets", len(names))
	return []models.SheetRef{{Key: names[0], Index: 0}}, nil
}

func sheetMatchKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func readSingle(ctx context.Context, src parser.Source, info models.WorkbookInfo, opts OptionSet) (*models.ResultSet, error) {
	ref := info.Primary()
	ds, err := readSheet(ctx, src, ref.Key, opts, opts.Rows, nil)
	if err != nil {
		return nil, err
	}
	return models.NewResultSet(info, ds, ""), nil
}

func readMultiple(ctx context.Context, src parser.Source, info models.WorkbookInfo, opts OptionSet) (*models.ResultSet, error) {
	sheets := make([]models.SheetDataSet, 0, len(info.Selected))
	for i, ref := range info.Selected {
		rowOpts := opts.Rows
		if i > 0 {
			// column overrides describe the first sheet only
			rowOpts = rowOpts.withoutColumns()
		}
		ds, err := readSheet(ctx, src, ref.Key, opts, rowOpts, nil)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, ds)
	}
	return models.NewMultiResultSet(info, sheets), nil
}

func readSheet(ctx context.Context, src parser.Source, sheet string, opts OptionSet, rowOpts RowOptionSet, emit func(models.Record) error) (models.SheetDataSet, error) {
	it, err := src.Rows(sheet)
	if err != nil {
		return models.SheetDataSet{}, NewReadError(CodeSheetNotFound, opts.Path, sheet, err)
	}
	defer it.Close()

	p := newSheetPipeline(opts, rowOpts, emit)
	if err := p.run(ctx, it); err != nil {
		var re *ReadError
		if errors.As(err, &re) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return models.SheetDataSet{}, err
		}
		return models.SheetDataSet{}, NewReadError(openFailureCode(parser.DetectKind(opts.Path)), opts.Path, sheet, err)
	}
	slog.Debug("sheet read", "sheet", sheet, "num_rows", p.total, "captured", len(p.rows))
	return models.NewSheetDataSet(sheet, p.keys, p.rows, p.total), nil
}
