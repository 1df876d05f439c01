package bot

import (
	"context"
	"time"

	"hubstaff-bot-backend/internal/common/logger"
	"hubstaff-bot-backend/internal/platform/telegram"
)

// retryDelay backs the poll loop off after a transport failure.
const retryDelay = 3 * time.Second

// UpdateSource yields batches of raw updates. Implemented by
// *telegram.Client via long polling.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]telegram.Update, error)
}

// Dispatcher drives the long-poll loop: fetch a batch, run each update
// through the pipeline in order, advance the offset.
type Dispatcher struct {
	source     UpdateSource
	pipeline   *Pipeline
	timeoutSec int
}

func NewDispatcher(source UpdateSource, pipeline *Pipeline, timeoutSec int) *Dispatcher {
	return &Dispatcher{
		source:     source,
		pipeline:   pipeline,
		timeoutSec: timeoutSec,
	}
}

// Run polls until the context is canceled. Updates inside one batch are
// processed sequentially, so handlers never race each other.
func (d *Dispatcher) Run(ctx context.Context) {
	logger.Info().Int("timeout_sec", d.timeoutSec).Msg("Update dispatcher started")

	var offset int64
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Update dispatcher stopped")
			return
		default:
		}

		updates, err := d.source.GetUpdates(ctx, offset, d.timeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info().Msg("Update dispatcher stopped")
				return
			}
			logger.Error().Err(err).Msg("Failed to fetch updates")
			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}
			continue
		}

		for _, upd := range updates {
			d.pipeline.HandleUpdate(ctx, upd)
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
		}
	}
}
