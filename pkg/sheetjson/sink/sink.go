// Package sink provides save targets for streamed rows.
package sink

import (
	"context"
	"fmt"
	"io"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NDJSON writes one JSON object per line.
type NDJSON struct {
	mu  sync.Mutex
	enc *jsoniter.Encoder
	n   int
}

// NewNDJSON returns a sink writing to w.
func NewNDJSON(w io.Writer) *NDJSON {
	return &NDJSON{enc: json.NewEncoder(w)}
}

// Save encodes rec as a single line.
func (s *NDJSON) Save(_ context.Context, rec models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(rec); err != nil {
		return fmt.Errorf("write record %d: %w", s.n, err)
	}
	s.n++
	return nil
}

// Count returns the number of records written.
func (s *NDJSON) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}
