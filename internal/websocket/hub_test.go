package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/suara/adapters/audio"
	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/internal/app"
	"github.com/satriahrh/suara/internal/config"
	"github.com/satriahrh/suara/internal/turn"
)

type countingGauge struct {
	value atomic.Int64
}

func (g *countingGauge) Inc() { g.value.Add(1) }
func (g *countingGauge) Dec() { g.value.Add(-1) }

type hubFixture struct {
	app    *app.App
	hub    *Hub
	gauge  *countingGauge
	server *httptest.Server
}

func newHubFixture(t *testing.T) *hubFixture {
	logger := zaptest.NewLogger(t)

	cfg := config.Default()
	cfg.STTProvider = config.ProviderMock
	cfg.LLMProvider = config.ProviderMock
	cfg.TTSProvider = config.ProviderMock
	cfg.RecordingsDir = t.TempDir()
	cfg.OutputDir = t.TempDir()

	a, err := app.New(context.Background(), cfg, app.Options{
		Mode:     entities.SessionModeServer,
		Headless: true,
		Platform: audio.NewNullPlatform(logger),
	}, logger)
	if err != nil {
		t.Fatalf("Failed to build app: %v", err)
	}

	gauge := &countingGauge{}
	hub := NewHub(a.Orchestrator, a.Response, Options{Connections: gauge}, logger)
	a.Orchestrator.AddObserver(hub)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return ServeClient(hub, c, "test-client", logger)
	})
	server := httptest.NewServer(e)

	t.Cleanup(func() {
		server.Close()
		cancel()
		a.Close(context.Background())
	})

	return &hubFixture{app: a, hub: hub, gauge: gauge, server: server}
}

func (f *hubFixture) dial(t *testing.T) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until a text message of type want arrives
func readUntil(t *testing.T, conn *websocket.Conn, want string) (texts []map[string]interface{}, binaries int) {
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed waiting for %s: %v", want, err)
		}
		if messageType == websocket.BinaryMessage {
			binaries++
			continue
		}
		var msg map[string]interface{}
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("Expected JSON text frame, got %q", payload)
		}
		texts = append(texts, msg)
		if msg["type"] == want {
			return texts, binaries
		}
	}
}

func wav(t *testing.T) []byte {
	samples := make([]float32, 8000)
	for i := range samples {
		samples[i] = 0.2
	}
	data, err := audio.EncodeWAV(entities.NewAudioBuffer(samples, 16000))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func waitFor(t *testing.T, cond func() bool) {
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Condition not met before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	f := newHubFixture(t)

	conn := f.dial(t)
	waitFor(t, func() bool { return f.hub.ClientCount() == 1 })
	if f.gauge.value.Load() != 1 {
		t.Errorf("Expected gauge 1, got %d", f.gauge.value.Load())
	}

	conn.Close()
	waitFor(t, func() bool { return f.hub.ClientCount() == 0 })
	if f.gauge.value.Load() != 0 {
		t.Errorf("Expected gauge 0, got %d", f.gauge.value.Load())
	}
}

func TestHub_TurnOverWebsocket(t *testing.T) {
	f := newHubFixture(t)
	conn := f.dial(t)
	waitFor(t, func() bool { return f.hub.ClientCount() == 1 })

	if err := conn.WriteMessage(websocket.BinaryMessage, wav(t)); err != nil {
		t.Fatal(err)
	}

	texts, binaries := readUntil(t, conn, string(MessageTypeTurnResult))
	if binaries == 0 {
		t.Error("Expected reply audio as binary frames")
	}

	seen := map[string]int{}
	for _, msg := range texts {
		seen[msg["type"].(string)]++
	}
	if seen[string(turn.EventStateChanged)] == 0 || seen[string(turn.EventTurnCompleted)] != 1 {
		t.Errorf("Expected state changes and one turn_completed, got %v", seen)
	}
	if seen[string(turn.EventAudioChunk)] != 0 {
		t.Errorf("Expected audio chunks only as binary frames, got %d JSON chunk events", seen[string(turn.EventAudioChunk)])
	}

	result := texts[len(texts)-1]["result"].(map[string]interface{})
	record := result["record"].(map[string]interface{})
	if record["outcome"] != string(entities.OutcomeCompleted) {
		t.Errorf("Expected completed turn, got %v", record["outcome"])
	}
	if got := len(f.app.Response.History()); got != 2 {
		t.Errorf("Expected 2 history entries, got %d", got)
	}
}

func TestHub_TurnEventsStayWithOriginClient(t *testing.T) {
	f := newHubFixture(t)
	speaker := f.dial(t)
	bystander := f.dial(t)
	waitFor(t, func() bool { return f.hub.ClientCount() == 2 })

	if err := speaker.WriteMessage(websocket.BinaryMessage, wav(t)); err != nil {
		t.Fatal(err)
	}
	readUntil(t, speaker, string(MessageTypeTurnResult))

	bystander.WriteJSON(map[string]string{"type": "ping", "message_id": "m-2"})
	texts, binaries := readUntil(t, bystander, string(MessageTypePong))
	if len(texts) != 1 || binaries != 0 {
		t.Errorf("Expected only the pong on the other connection, got %d text and %d binary frames: %v", len(texts), binaries, texts)
	}
}

func TestHub_ControlMessages(t *testing.T) {
	f := newHubFixture(t)
	conn := f.dial(t)

	conn.WriteJSON(map[string]string{"type": "ping", "message_id": "m-1"})
	texts, _ := readUntil(t, conn, string(MessageTypePong))
	if texts[len(texts)-1]["message_id"] != "m-1" {
		t.Errorf("Expected pong to echo message id, got %v", texts[len(texts)-1])
	}

	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"dance"}`))
	texts, _ = readUntil(t, conn, string(MessageTypeError))
	if texts[len(texts)-1]["error_code"] != "invalid_message" {
		t.Errorf("Expected invalid_message, got %v", texts[len(texts)-1])
	}

	conn.WriteMessage(websocket.BinaryMessage, []byte("not audio"))
	texts, _ = readUntil(t, conn, string(MessageTypeError))
	if texts[len(texts)-1]["error_code"] != "invalid_audio" {
		t.Errorf("Expected invalid_audio, got %v", texts[len(texts)-1])
	}

	f.app.Response.Respond(context.Background(), entities.Transcript{Text: "hello", Status: entities.TranscriptOK})
	conn.WriteJSON(map[string]string{"type": "clear_history"})
	readUntil(t, conn, string(MessageTypeHistory))
	if got := len(f.app.Response.History()); got != 0 {
		t.Errorf("Expected cleared history, got %d entries", got)
	}
}

func TestParseClientMessage(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{`)); err == nil {
		t.Error("Expected error for invalid JSON")
	}
	if _, err := ParseClientMessage([]byte(`{}`)); err == nil {
		t.Error("Expected error for missing type")
	}
	msg, err := ParseClientMessage([]byte(`{"type":"ping","message_id":"x"}`))
	if err != nil || msg.Type != MessageTypePing || msg.MessageID != "x" {
		t.Errorf("Expected ping x, got %+v %v", msg, err)
	}
}
