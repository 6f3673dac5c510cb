package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

// TurnRepository keeps turn records in process memory
type TurnRepository struct {
	mu    sync.RWMutex
	turns map[string][]entities.TurnRecord
}

var _ repositories.TurnRepository = (*TurnRepository)(nil)

// NewTurnRepository creates an empty turn store
func NewTurnRepository() *TurnRepository {
	return &TurnRepository{turns: make(map[string][]entities.TurnRecord)}
}

// Save implements repositories.TurnRepository
func (r *TurnRepository) Save(ctx context.Context, record *entities.TurnRecord) error {
	if record == nil {
		return errors.New("turn record cannot be nil")
	}
	if record.SessionID == "" {
		return errors.New("session ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns[record.SessionID] = append(r.turns[record.SessionID], *record)
	return nil
}

// ListBySession returns the most recent turns first. limit <= 0 returns all.
func (r *TurnRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*entities.TurnRecord, error) {
	r.mu.RLock()
	stored := r.turns[sessionID]
	records := make([]*entities.TurnRecord, 0, len(stored))
	for i := range stored {
		record := stored[i]
		records = append(records, &record)
	}
	r.mu.RUnlock()

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
