// Package main provides the CLI entry point for sheetjson.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetjson-go/internal/config"
	"github.com/ukaji3/sheetjson-go/internal/logging"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/headers"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/output"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/sink"
)

type flags struct {
	sheet        string
	index        int
	decimalComma bool
	dateOnly     bool
	keys         string
	max          int
	headerRow    int
	omitHeader   bool
	mode         string
	fieldMode    string
	columns      string
	outputPath   string
	pretty       bool
	sheetsDir    string
	sinkKind     string
	sinkTarget   string
	progress     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	rootCmd := &cobra.Command{
		Use:   "sheetjson [input.xlsx|input.csv|input.tsv]",
		Short: "Convert spreadsheet rows into typed JSON records",
		Long: `sheetjson reads xlsx-family workbooks and CSV/TSV files and writes their
rows as JSON records keyed by header, coercing each column to a declared type.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], f)
		},
	}

	fl := rootCmd.Flags()
	fl.StringVarP(&f.sheet, "sheet", "s", "", "Sheet name, matched ignoring case and spaces")
	fl.IntVarP(&f.index, "index", "i", 0, "Sheet index used when no name matches")
	fl.BoolVar(&f.decimalComma, "decimal-comma", false, "Treat ',' as the decimal separator")
	fl.BoolVar(&f.decimalComma, "euro-number-format", false, "Alias of --decimal-comma")
	fl.BoolVar(&f.dateOnly, "date-only", false, "Render date-times as dates")
	fl.StringVarP(&f.keys, "keys", "k", "", "Column keys with optional formats, separated by , or ; e.g. name,age:i,joined:da")
	fl.IntVarP(&f.max, "max", "m", 0, "Maximum number of rows to return (default: mode limit)")
	fl.IntVarP(&f.headerRow, "header-row", "t", 0, "0-based index of the header row")
	fl.BoolVar(&f.omitHeader, "omit-header", false, "Treat the first row as data")
	fl.StringVar(&f.mode, "mode", "sync", "Read mode: sync, preview, async")
	fl.StringVar(&f.fieldMode, "field-mode", "auto_a1", "Key style: auto_a1, auto_num_padded, a1, num_padded")
	fl.StringVar(&f.columns, "columns", "", "YAML or JSON column override file")
	fl.StringVarP(&f.outputPath, "output", "o", "", "Output file path (default: stdout)")
	fl.BoolVar(&f.pretty, "pretty", false, "Pretty-print JSON output")
	fl.StringVar(&f.sheetsDir, "sheets-dir", "", "Directory for per-sheet output files (preview mode)")
	fl.StringVar(&f.sinkKind, "sink", "", "Stream rows in async mode to: ndjson, postgres, redis")
	fl.StringVar(&f.sinkTarget, "sink-target", "", "File path, table name or list key for --sink")
	fl.BoolVar(&f.progress, "progress", false, "Show a progress bar while streaming")
	return rootCmd
}

func run(cmd *cobra.Command, path string, f flags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	opts, err := buildOptions(path, f, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var (
		rs      *models.ResultSet
		readErr error
	)
	save := func(v any) error {
		return output.SaveToFile(v, f.outputPath, f.pretty)
	}
	if opts.ReadMode == sheetjson.ReadModeAsync && f.sinkKind != "" {
		if streamsToStdout(f) && (f.outputPath == "" || f.outputPath == "-") {
			// stdout carries the records, the result goes to stderr
			save = func(v any) error {
				return output.Write(cmd.ErrOrStderr(), v, f.pretty)
			}
		}
		s, outRef, closeSink, err := openSink(ctx, f, cfg, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if f.progress {
			s = withProgress(s, cmd.ErrOrStderr())
		}
		rs, readErr = sheetjson.ProcessAsync(ctx, opts, s, outRef)
		if err := closeSink(); err != nil && readErr == nil {
			readErr = err
		}
	} else {
		rs, readErr = sheetjson.Process(ctx, opts)
	}

	if readErr != nil {
		if err := save(sheetjson.ErrorReport(readErr, opts)); err != nil {
			return err
		}
		return readErr
	}

	if f.sheetsDir != "" && len(rs.Multiple) > 0 {
		if err := writeSheetFiles(rs, f.sheetsDir, f.pretty); err != nil {
			return fmt.Errorf("failed to write sheet files: %w", err)
		}
		return nil
	}
	return save(rs)
}

func buildOptions(path string, f flags, cfg config.Config) (sheetjson.OptionSet, error) {
	opts := sheetjson.NewOptionSet(path).
		WithLimits(cfg.Limits()).
		SheetName(f.sheet).
		SheetIndex(f.index).
		MaxRowCount(f.max).
		HeaderRowIndex(f.headerRow).
		FieldNameMode(headers.ParseFieldNameMode(f.fieldMode))

	switch sheetjson.ParseReadMode(f.mode) {
	case sheetjson.ReadModePreviewMultiple:
		opts = opts.ReadModePreview()
	case sheetjson.ReadModeAsync:
		opts = opts.ReadModeAsync()
	}
	if f.omitHeader {
		opts = opts.OmitHeaders()
	}

	if f.columns != "" {
		rows, err := config.LoadColumns(f.columns)
		if err != nil {
			return opts, err
		}
		opts = opts.SetColumns(rows.Columns).DecimalComma(rows.DecimalComma).DateOnly(rows.DateOnly)
	}
	if cols := sheetjson.ParseKeyList(f.keys); cols != nil {
		opts = opts.SetColumns(cols)
	}
	if f.decimalComma {
		opts = opts.DecimalComma(true)
	}
	if f.dateOnly {
		opts = opts.DateOnly(true)
	}
	return opts, opts.Validate()
}

func streamsToStdout(f flags) bool {
	return f.sinkKind == "ndjson" && (f.sinkTarget == "" || f.sinkTarget == "-")
}

// openSink returns the sink named by --sink, its output reference and a
// close function. A ndjson sink without a target writes to stdout.
func openSink(ctx context.Context, f flags, cfg config.Config, stdout io.Writer) (sheetjson.Sink, string, func() error, error) {
	outRef := sheetjson.NewOutRef()
	noop := func() error { return nil }

	switch f.sinkKind {
	case "ndjson":
		if streamsToStdout(f) {
			return sink.NewNDJSON(stdout), "stdout", noop, nil
		}
		file, err := os.Create(f.sinkTarget)
		if err != nil {
			return nil, "", nil, err
		}
		return sink.NewNDJSON(file), "file:" + f.sinkTarget, file.Close, nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, "", nil, fmt.Errorf("SHEETJSON_DATABASE_URL is required for the postgres sink")
		}
		pool, err := sink.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, "", nil, err
		}
		table := f.sinkTarget
		if table == "" {
			table = cfg.SinkTable
		}
		pg := sink.NewPostgres(pool, table, outRef)
		if err := pg.EnsureTable(ctx); err != nil {
			pool.Close()
			return nil, "", nil, err
		}
		return pg, outRef, func() error { pool.Close(); return nil }, nil

	case "redis":
		if cfg.RedisURL == "" {
			return nil, "", nil, fmt.Errorf("SHEETJSON_REDIS_URL is required for the redis sink")
		}
		client, err := sink.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, "", nil, err
		}
		key := f.sinkTarget
		if key == "" {
			key = outRef
		}
		return sink.NewRedis(client, key), "redis:" + key, client.Close, nil
	}
	return nil, "", nil, fmt.Errorf("invalid sink: %s (must be ndjson, postgres, or redis)", f.sinkKind)
}

func withProgress(s sheetjson.Sink, w io.Writer) sheetjson.Sink {
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("saving rows"),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return sheetjson.SaveFunc(func(ctx context.Context, rec models.Record) error {
		if err := s.Save(ctx, rec); err != nil {
			return err
		}
		return bar.Add(1)
	})
}

func writeSheetFiles(rs *models.ResultSet, dir string, pretty bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, sheet := range rs.Multiple {
		filename := filepath.Join(dir, sheet.SheetName+".json")
		if err := output.SaveToFile(sheet, filename, pretty); err != nil {
			return err
		}
	}

	return nil
}
