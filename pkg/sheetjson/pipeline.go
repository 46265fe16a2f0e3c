package sheetjson

import (
	"context"
	"log/slog"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/coerce"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/headers"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/parser"
)

type pipelineState uint8

const (
	stateHeaderPending pipelineState = iota
	stateCapturing
	stateCounting
)

// sheetPipeline turns the rows of one sheet into records.
type sheetPipeline struct {
	opts    OptionSet
	rowOpts RowOptionSet
	// emit receives records instead of rows when set.
	emit func(models.Record) error

	state       pipelineState
	keys        []string
	headerTexts []string
	rows        []models.Record
	total       int
	captured    int
	// ceiling caps captured records; negative means unlimited.
	ceiling    int
	dupChecked bool
}

func newSheetPipeline(opts OptionSet, rowOpts RowOptionSet, emit func(models.Record) error) *sheetPipeline {
	p := &sheetPipeline{
		opts:    opts,
		rowOpts: rowOpts,
		emit:    emit,
		ceiling: opts.MaxRows(),
	}
	if emit != nil {
		p.ceiling = -1
	}
	return p
}

// capturing reports whether data rows are turned into records at all.
func (p *sheetPipeline) capturing() bool {
	return p.emit != nil || p.opts.CaptureRows()
}

func (p *sheetPipeline) run(ctx context.Context, it parser.RowIterator) error {
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.total++

		if p.state == stateCounting {
			continue
		}
		cells, err := it.Cells()
		if err != nil {
			return err
		}
		if err := p.consume(cells); err != nil {
			return err
		}
	}
	if err := it.Err(); err != nil {
		return err
	}
	if p.keys == nil {
		p.keys = p.buildKeys(nil)
	}
	return nil
}

func (p *sheetPipeline) consume(cells []models.Cell) error {
	if p.state == stateHeaderPending {
		if p.opts.OmitHeader {
			p.keys = p.buildKeys(make([]string, len(cells)))
			p.startCapture()
			if p.state == stateCounting {
				return nil
			}
			// the first row is data
			p.dupChecked = true
			return p.capture(cells)
		}
		if p.total-1 < p.opts.HeaderRow {
			return nil
		}
		p.headerTexts = make([]string, len(cells))
		for i, c := range cells {
			p.headerTexts[i] = c.String()
		}
		p.keys = p.buildKeys(p.headerTexts)
		slog.Debug("header keys resolved", "keys", p.keys, "header_row", p.opts.HeaderRow)
		p.startCapture()
		return nil
	}
	return p.capture(cells)
}

func (p *sheetPipeline) startCapture() {
	if p.capturing() && p.ceiling != 0 {
		p.state = stateCapturing
		return
	}
	p.state = stateCounting
}

// buildKeys resolves one key per header cell. Overrides past the header
// width are ignored.
func (p *sheetPipeline) buildKeys(texts []string) []string {
	return headers.BuildKeys(texts, p.rowOpts.Keys(), p.opts.FieldMode)
}

func (p *sheetPipeline) capture(cells []models.Cell) error {
	if !p.dupChecked {
		p.dupChecked = true
		if p.isHeaderRepeat(cells) {
			slog.Debug("skipping repeated header row", "row", p.total-1)
			return nil
		}
	}

	values := make([]any, len(p.keys))
	for j := range p.keys {
		cell := models.EmptyCell()
		if j < len(cells) {
			cell = cells[j]
		}
		values[j] = coerce.Value(cell, p.rowOpts.spec(j))
	}
	rec := models.NewRecord(p.keys, values)

	if p.emit != nil {
		if err := p.emit(rec); err != nil {
			return err
		}
	} else {
		p.rows = append(p.rows, rec)
	}
	p.captured++
	if p.ceiling >= 0 && p.captured >= p.ceiling {
		p.state = stateCounting
	}
	return nil
}

// isHeaderRepeat reports whether cells literally repeat the header row.
func (p *sheetPipeline) isHeaderRepeat(cells []models.Cell) bool {
	if len(p.headerTexts) == 0 {
		return false
	}
	nonEmpty := false
	for j, key := range p.keys {
		var text string
		if j < len(cells) {
			text = headers.ToSnakeCase(cells[j].String())
		}
		var header string
		if j < len(p.headerTexts) {
			header = headers.ToSnakeCase(p.headerTexts[j])
		}
		if text != key && text != header {
			return false
		}
		if text != "" {
			nonEmpty = true
		}
	}
	return nonEmpty
}
