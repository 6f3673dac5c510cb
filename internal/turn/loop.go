package turn

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
)

// idlePause keeps a loop without a usable device from spinning
const idlePause = time.Second

// Loop runs live turns until ctx is cancelled. Cancellation is only observed
// between turns; a turn in flight runs to completion on a detached context.
func (o *Orchestrator) Loop(ctx context.Context, options ...TurnOption) error {
	turnCtx := context.WithoutCancel(ctx)
	turns := 0

	o.logger.Info("Interactive loop started", zap.Duration("recordingDuration", o.config.RecordingDuration))

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("Interactive loop stopped", zap.Int("turns", turns))
			return nil
		default:
		}

		result := o.RunTurn(turnCtx, options...)
		turns++

		if result.Outcome() == entities.OutcomeDeviceUnavailable {
			select {
			case <-ctx.Done():
			case <-time.After(idlePause):
			}
		}
	}
}
