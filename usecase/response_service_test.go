package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/suara/adapters/llm"
	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

func transcript(text string) entities.Transcript {
	return entities.NewTranscript(text, "en")
}

func TestRespondUsesPriorTurns(t *testing.T) {
	engine := llm.NewMockLLM()
	engine.GenerateFunc = func(ctx context.Context, req repositories.GenerateRequest) (repositories.Generation, error) {
		if req.Prompt == "What did I just say?" {
			if len(req.Context) != 2 || req.Context[0].Text != "Hello" {
				return repositories.Generation{}, fmt.Errorf("missing context: %+v", req.Context)
			}
			return repositories.Generation{Text: "You said Hello."}, nil
		}
		return repositories.Generation{Text: "Hi there!"}, nil
	}
	service := NewResponseService(engine, "mock-model", 10, zaptest.NewLogger(t))
	ctx := context.Background()

	first := service.Respond(ctx, transcript("Hello"))
	if !first.Speakable() {
		t.Fatalf("Expected first reply, got %+v", first)
	}

	second := service.Respond(ctx, transcript("What did I just say?"))
	if second.Text != "You said Hello." {
		t.Errorf("Expected reply referencing Hello, got %+v", second)
	}

	history := service.History()
	if len(history) != 4 {
		t.Fatalf("Expected 4 turns, got %d", len(history))
	}
	if history[0].Role != entities.RoleUser || history[1].Role != entities.RoleAssistant {
		t.Errorf("Expected user/assistant pairing, got %+v", history[:2])
	}
}

func TestRespondEmptyHistorySendsPromptOnly(t *testing.T) {
	engine := llm.NewMockLLM()
	service := NewResponseService(engine, "m", 10, zaptest.NewLogger(t))

	service.Respond(context.Background(), transcript("Hello"))

	requests := engine.Requests()
	if len(requests) != 1 || len(requests[0].Context) != 0 {
		t.Errorf("Expected one request without context, got %+v", requests)
	}
}

func TestRespondFailureLeavesHistoryUnchanged(t *testing.T) {
	engine := llm.NewMockLLM()
	service := NewResponseService(engine, "m", 10, zaptest.NewLogger(t))
	ctx := context.Background()

	service.Respond(ctx, transcript("Hello"))
	before := service.History()

	engine.GenerateFunc = func(ctx context.Context, req repositories.GenerateRequest) (repositories.Generation, error) {
		return repositories.Generation{}, errors.New("503 unavailable")
	}
	reply := service.Respond(ctx, transcript("Again"))
	if reply.Status != entities.ReplyGenerationFailed {
		t.Errorf("Expected failed reply, got %+v", reply)
	}
	if !errors.Is(reply.Err, entities.ErrGenerationFailure) {
		t.Errorf("Expected ErrGenerationFailure, got %v", reply.Err)
	}
	if !reflect.DeepEqual(before, service.History()) {
		t.Errorf("Expected history unchanged, got %+v", service.History())
	}
}

func TestRespondBlankOutputIsFailure(t *testing.T) {
	engine := llm.NewMockLLM()
	engine.GenerateFunc = func(ctx context.Context, req repositories.GenerateRequest) (repositories.Generation, error) {
		return repositories.Generation{Text: "  \n "}, nil
	}
	service := NewResponseService(engine, "m", 10, zaptest.NewLogger(t))

	reply := service.Respond(context.Background(), transcript("Hello"))
	if reply.Speakable() || !errors.Is(reply.Err, entities.ErrGenerationFailure) {
		t.Errorf("Expected generation failure, got %+v", reply)
	}
	if len(service.History()) != 0 {
		t.Errorf("Expected empty history, got %d turns", len(service.History()))
	}
}

func TestRespondBoundsHistory(t *testing.T) {
	service := NewResponseService(llm.NewMockLLM(), "m", 3, zaptest.NewLogger(t))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		service.Respond(ctx, transcript(fmt.Sprintf("message %d", i)))
		if n := len(service.History()); n > 6 {
			t.Fatalf("Expected at most 6 turns, got %d", n)
		}
	}

	history := service.History()
	if history[0].Text != "message 7" {
		t.Errorf("Expected oldest kept prompt 'message 7', got %q", history[0].Text)
	}
}

func TestRespondWithContextDoesNotMutateHistory(t *testing.T) {
	engine := llm.NewMockLLM()
	service := NewResponseService(engine, "m", 10, zaptest.NewLogger(t))

	override := []entities.ConversationTurn{
		{Role: entities.RoleUser, Text: "Hello"},
		{Role: entities.RoleAssistant, Text: "Hi"},
	}
	reply := service.RespondWithContext(context.Background(), transcript("What did I say?"), override)
	if !reply.Speakable() {
		t.Fatalf("Expected reply, got %+v", reply)
	}
	if len(service.History()) != 0 {
		t.Errorf("Expected history untouched, got %+v", service.History())
	}
	if got := engine.Requests()[0].Context; len(got) != 2 {
		t.Errorf("Expected override context, got %+v", got)
	}
}

func TestClearHistory(t *testing.T) {
	service := NewResponseService(llm.NewMockLLM(), "m", 10, zaptest.NewLogger(t))
	service.Respond(context.Background(), transcript("Hello"))
	service.ClearHistory()
	if len(service.History()) != 0 {
		t.Errorf("Expected empty history after clear")
	}
}
