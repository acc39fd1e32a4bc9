package worker

import (
	"context"
	"time"

	"github.com/osse101/BingoBot_Go/internal/logger"
)

// Pruner deletes records older than a cutoff and reports how many went
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PruneJob enforces a retention window on one store. For the processed-event
// store this also bounds redelivery detection: an event older than the
// retention is treated as new.
type PruneJob struct {
	store     string
	pruner    Pruner
	retention time.Duration
	now       func() time.Time
}

// NewPruneJob creates a retention job; store names the records in logs
func NewPruneJob(store string, pruner Pruner, retention time.Duration) *PruneJob {
	return &PruneJob{store: store, pruner: pruner, retention: retention, now: time.Now}
}

// Process deletes everything older than the retention window
func (j *PruneJob) Process(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	count, err := j.pruner.PruneBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info(LogMsgRecordsPruned, "store", j.store, "deleted_count", count, "cutoff", cutoff)
	return nil
}
