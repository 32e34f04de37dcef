// Package audit journals rejected transactions as JSON lines.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/ledgerworks/payengine-backend/internal/model"
	"github.com/ledgerworks/payengine-backend/pkg/batcher"
)

const (
	flushSize        = 64
	flushInterval    = time.Second
	flushesPerSecond = 10
)

type entry struct {
	RunID string `json:"run_id"`
	model.Rejection
}

// Journal batches rejection records and writes them to the sink one JSON
// object per line. Record is safe for concurrent use; writes happen on a
// single background goroutine.
type Journal struct {
	runID string
	sink  io.Writer
	batch *batcher.Batcher[entry]
}

// NewJournal builds a Journal writing to sink. The caller owns the sink's
// lifecycle and must Start the journal before recording.
func NewJournal(sink io.Writer, runID string, logger *zap.Logger) *Journal {
	j := &Journal{
		runID: runID,
		sink:  sink,
	}
	j.batch = batcher.New(logger.Named("audit"), j.write, flushSize, flushInterval, flushesPerSecond)
	return j
}

// Start begins background flushing.
func (j *Journal) Start(ctx context.Context) {
	j.batch.Start(ctx)
}

// Stop flushes pending entries and stops the background loop.
func (j *Journal) Stop() {
	j.batch.Stop()
}

// Record queues one rejection for the journal.
func (j *Journal) Record(ctx context.Context, rejection model.Rejection) error {
	return j.batch.Add(ctx, entry{RunID: j.runID, Rejection: rejection})
}

func (j *Journal) write(_ context.Context, entries []entry) error {
	for _, e := range entries {
		line, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal audit entry: %w", err)
		}
		line = append(line, '\n')
		if _, err := j.sink.Write(line); err != nil {
			return fmt.Errorf("write audit entry: %w", err)
		}
	}
	return nil
}
