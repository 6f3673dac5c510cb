package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/satriahrh/suara/domain/entities"
)

func TestSessionRepository(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()

	session := entities.NewSession(entities.SessionModeInteractive, entities.SessionSettings{Language: "ko"})
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := repo.Create(ctx, session); err == nil {
		t.Errorf("Expected duplicate create to fail")
	}

	session.TurnCount = 3
	session.End()
	if err := repo.Update(ctx, session); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got, err := repo.GetByID(ctx, session.ID)
	if err != nil || got == nil {
		t.Fatalf("Expected session, got %v, %v", got, err)
	}
	if got.TurnCount != 3 || got.IsActive() {
		t.Errorf("Expected ended session with 3 turns, got %+v", got)
	}

	missing, err := repo.GetByID(ctx, "missing")
	if missing != nil || err != nil {
		t.Errorf("Expected nil, nil for unknown id, got %v, %v", missing, err)
	}

	if err := repo.Update(ctx, &entities.Session{ID: "missing"}); err == nil {
		t.Errorf("Expected update of unknown session to fail")
	}
}

func TestTurnRepositoryListsNewestFirst(t *testing.T) {
	repo := NewTurnRepository()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		err := repo.Save(ctx, &entities.TurnRecord{
			ID:        fmt.Sprintf("turn-%d", i),
			SessionID: "s1",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Outcome:   entities.OutcomeCompleted,
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}
	repo.Save(ctx, &entities.TurnRecord{ID: "other", SessionID: "s2", StartedAt: base})

	records, err := repo.ListBySession(ctx, "s1", 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[0].ID != "turn-4" || records[2].ID != "turn-2" {
		t.Errorf("Expected newest first, got %s..%s", records[0].ID, records[2].ID)
	}

	all, _ := repo.ListBySession(ctx, "s1", 0)
	if len(all) != 5 {
		t.Errorf("Expected 5 records without limit, got %d", len(all))
	}
}

func TestTurnRepositoryRejectsOrphans(t *testing.T) {
	repo := NewTurnRepository()
	if err := repo.Save(context.Background(), &entities.TurnRecord{ID: "x"}); err == nil {
		t.Errorf("Expected error for record without session")
	}
	if err := repo.Save(context.Background(), nil); err == nil {
		t.Errorf("Expected error for nil record")
	}
}
