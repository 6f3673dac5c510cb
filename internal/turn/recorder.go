package turn

import (
	"context"

	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/repositories"
)

// Recorder stores every finished turn and publishes it as an event.
// Either dependency may be nil.
type Recorder struct {
	turns     repositories.TurnRepository
	publisher repositories.TurnEventPublisher
	logger    *zap.Logger
}

// NewRecorder creates a turn recorder
func NewRecorder(turns repositories.TurnRepository, publisher repositories.TurnEventPublisher, logger *zap.Logger) *Recorder {
	return &Recorder{turns: turns, publisher: publisher, logger: logger}
}

// OnEvent implements Observer
func (r *Recorder) OnEvent(ctx context.Context, event Event) {
	if event.Type != EventTurnCompleted || event.Record == nil {
		return
	}

	if r.turns != nil {
		if err := r.turns.Save(ctx, event.Record); err != nil {
			r.logger.Error("Failed to save turn", zap.String("turnID", event.TurnID), zap.Error(err))
		}
	}

	if r.publisher != nil {
		if err := r.publisher.PublishTurn(ctx, event.Record); err != nil {
			r.logger.Warn("Failed to publish turn", zap.String("turnID", event.TurnID), zap.Error(err))
		}
	}
}
