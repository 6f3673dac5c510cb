package repositories

import (
	"context"

	"github.com/satriahrh/suara/domain/entities"
)

// SessionRepository defines data access methods for sessions
type SessionRepository interface {
	Create(ctx context.Context, session *entities.Session) error
	GetByID(ctx context.Context, id string) (*entities.Session, error)
	Update(ctx context.Context, session *entities.Session) error
}

// TurnRepository defines data access methods for turn records
type TurnRepository interface {
	Save(ctx context.Context, record *entities.TurnRecord) error
	// ListBySession returns the most recent records first
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*entities.TurnRecord, error)
}

// TurnEventPublisher forwards finished turns to an external consumer
type TurnEventPublisher interface {
	PublishTurn(ctx context.Context, record *entities.TurnRecord) error
	Close() error
}
