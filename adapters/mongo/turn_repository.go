package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

// TurnRepository stores turn records in the "turns" collection
type TurnRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

var _ repositories.TurnRepository = (*TurnRepository)(nil)

// NewTurnRepository creates a new MongoDB turn repository
func NewTurnRepository(db *mongo.Database, logger *zap.Logger) *TurnRepository {
	return &TurnRepository{
		collection: db.Collection("turns"),
		logger:     logger,
	}
}

// EnsureIndexes creates the (session_id, started_at) index used by ListBySession
func (r *TurnRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "session_id", Value: 1},
			{Key: "started_at", Value: -1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create turn indexes: %w", err)
	}

	r.logger.Info("Turn indexes created successfully")
	return nil
}

// Save inserts or replaces the record
func (r *TurnRepository) Save(ctx context.Context, record *entities.TurnRecord) error {
	if record == nil {
		return errors.New("turn record cannot be nil")
	}
	if record.ID == "" || record.SessionID == "" {
		return errors.New("turn record requires an ID and a session ID")
	}

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": record.ID}, record, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}
	return nil
}

// ListBySession returns the most recent turns first. limit <= 0 returns all.
func (r *TurnRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*entities.TurnRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*entities.TurnRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode turns: %w", err)
	}
	return records, nil
}
