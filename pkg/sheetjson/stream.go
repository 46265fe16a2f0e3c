package sheetjson

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/parser"
)

// Sink receives streamed records one at a time, in source order.
type Sink interface {
	Save(ctx context.Context, rec models.Record) error
}

// SaveFunc adapts a function to the Sink interface.
type SaveFunc func(ctx context.Context, rec models.Record) error

// Save calls f.
func (f SaveFunc) Save(ctx context.Context, rec models.Record) error {
	return f(ctx, rec)
}

// NewOutRef returns a fresh output reference for a streamed run.
func NewOutRef() string {
	return "sheetjson:" + uuid.NewString()
}

// readAsync counts the selected sheet on src, then streams its records to
// sink from a second, independent pass over the same path. The file must
// not change between the two passes.
func readAsync(ctx context.Context, src parser.Source, pd PathData, info models.WorkbookInfo, opts OptionSet, sink Sink, outRef string) (*models.ResultSet, error) {
	ref := info.Primary()
	ds, err := readSheet(ctx, src, ref.Key, opts, opts.Rows, nil)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		slog.Debug("async read without sink, rows counted only", "sheet", ref.Key, "num_rows", ds.NumRows)
		return models.NewResultSet(info, ds, outRef), nil
	}

	if outRef == "" {
		outRef = NewOutRef()
	}
	if err := stream(ctx, pd, ref.Key, opts.Clone(), sink); err != nil {
		return nil, err
	}
	ds.Rows = []models.Record{}
	return models.NewResultSet(info, ds, outRef), nil
}

// stream runs a producer pass that pushes records into a bounded channel
// while the calling goroutine saves them. The first save failure cancels
// the producer and is returned as a save_sink_failure.
func stream(ctx context.Context, pd PathData, sheet string, opts OptionSet, sink Sink) error {
	g, gctx := errgroup.WithContext(ctx)
	ch := make(chan models.Record, opts.Limits.channelSize())

	g.Go(func() error {
		defer close(ch)

		src, err := openSource(pd)
		if err != nil {
			return err
		}
		defer src.Close()

		emit := func(rec models.Record) error {
			select {
			case ch <- rec:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		_, err = readSheet(gctx, src, sheet, opts, opts.Rows, emit)
		return err
	})

	g.Go(func() error {
		saved := 0
		for rec := range ch {
			if err := sink.Save(gctx, rec); err != nil {
				slog.Warn("save sink failed", "sheet", sheet, "row", saved, "error", err)
				return NewReadError(CodeSaveSink, pd.Path, sheet, err)
			}
			saved++
		}
		slog.Debug("stream finished", "sheet", sheet, "saved", saved)
		return nil
	})

	return g.Wait()
}
