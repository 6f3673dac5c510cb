package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/suara/adapters/audio"
	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/internal/app"
	"github.com/satriahrh/suara/internal/auth"
	"github.com/satriahrh/suara/internal/config"
	"github.com/satriahrh/suara/internal/websocket"
)

const clientSecret = "client-secret"

type testServer struct {
	echo  *echo.Echo
	app   *app.App
	token string
}

func newTestServer(t *testing.T) *testServer {
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
	t.Cleanup(func() { a.Close(context.Background()) })

	tokens := auth.NewTokenService("signing-secret", clientSecret, time.Hour)
	hub := websocket.NewHub(a.Orchestrator, a.Response, websocket.Options{}, logger)

	e := echo.New()
	InitRoutes(e, Dependencies{
		Orchestrator: a.Orchestrator,
		Turns:        a.Turns,
		Content:      a.Content,
		Benchmark:    a.Benchmark,
		Synthesis:    a.Synthesis,
		Tokens:       tokens,
		Metrics:      a.Metrics,
		Hub:          hub,
	}, logger)

	token, _, err := tokens.IssueToken("test-client", clientSecret)
	if err != nil {
		t.Fatal(err)
	}

	return &testServer{echo: e, app: a, token: token}
}

func (s *testServer) do(req *http.Request, authorized bool) *httptest.ResponseRecorder {
	if authorized {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func wavUpload(t *testing.T, data []byte) *http.Request {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio", "utterance.wav")
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/turns", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func utterance(t *testing.T, sampleRate int) []byte {
	samples := make([]float32, sampleRate/4)
	for i := range samples {
		samples[i] = 0.2
	}
	data, err := audio.EncodeWAV(entities.NewAudioBuffer(samples, sampleRate))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/health", nil), false)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "ok" || body["state"] != "idle" {
		t.Errorf("Unexpected health body %v", body)
	}
}

func TestIssueToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(jsonRequest(http.MethodPost, "/api/v1/auth/token", TokenRequest{ClientID: "kiosk", ClientSecret: "wrong"}), false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong secret, got %d", rec.Code)
	}

	rec = s.do(jsonRequest(http.MethodPost, "/api/v1/auth/token", TokenRequest{ClientID: "kiosk"}), false)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing secret, got %d", rec.Code)
	}

	rec = s.do(jsonRequest(http.MethodPost, "/api/v1/auth/token", TokenRequest{ClientID: "kiosk", ClientSecret: clientSecret}), false)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var response TokenResponse
	json.Unmarshal(rec.Body.Bytes(), &response)
	if response.Token == "" || response.ClientID != "kiosk" {
		t.Errorf("Unexpected token response %+v", response)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/v1/history", "/api/v1/turns", "/api/v1/voices", "/ws"} {
		rec := s.do(httptest.NewRequest(http.MethodGet, path, nil), false)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 for %s, got %d", path, rec.Code)
		}
	}
}

func TestTurnLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(wavUpload(t, utterance(t, 44100)), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var turn TurnResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &turn); err != nil {
		t.Fatal(err)
	}
	if turn.Record.Outcome != entities.OutcomeCompleted {
		t.Errorf("Expected completed outcome, got %s", turn.Record.Outcome)
	}
	if turn.Transcript.Text != "안녕하세요" {
		t.Errorf("Expected mock transcript, got %q", turn.Transcript.Text)
	}
	if !strings.Contains(turn.Reply.Text, "안녕하세요") {
		t.Errorf("Expected reply to echo the transcript, got %q", turn.Reply.Text)
	}
	if len(turn.Audio) == 0 {
		t.Error("Expected reply audio in response")
	}

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/history", nil), true)
	var history HistoryResponse
	json.Unmarshal(rec.Body.Bytes(), &history)
	if len(history.Turns) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(history.Turns))
	}
	if history.Turns[0].Role != entities.RoleUser || history.Turns[1].Role != entities.RoleAssistant {
		t.Errorf("Unexpected history order %+v", history.Turns)
	}

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/turns?limit=5", nil), true)
	var turns TurnsResponse
	json.Unmarshal(rec.Body.Bytes(), &turns)
	if len(turns.Turns) != 1 || turns.SessionID != s.app.Session.ID {
		t.Errorf("Expected 1 stored turn for the session, got %+v", turns)
	}

	rec = s.do(httptest.NewRequest(http.MethodDelete, "/api/v1/history", nil), true)
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}
	if got := len(s.app.Response.History()); got != 0 {
		t.Errorf("Expected empty history, got %d entries", got)
	}

	rec = s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil), false)
	if !strings.Contains(rec.Body.String(), `suara_turns_total{outcome="completed",source="buffer"} 1`) {
		t.Errorf("Expected turn counter in metrics output")
	}
}

func TestCreateTurnRejectsBadUpload(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(wavUpload(t, []byte("definitely not a wav file")), true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid audio, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/turns", nil)
	rec = s.do(req, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without audio field, got %d", rec.Code)
	}

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/turns?limit=zero", nil), true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid limit, got %d", rec.Code)
	}
}

func TestGenerateContent(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(jsonRequest(http.MethodPost, "/api/v1/content", ContentRequest{Type: "poster"}), true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown type, got %d", rec.Code)
	}

	rec = s.do(jsonRequest(http.MethodPost, "/api/v1/content", ContentRequest{
		Type: "instagram",
		Profile: entities.BusinessProfile{
			Name:     "소담 베이커리",
			Category: "음식점 > 베이커리",
			Product:  entities.Product{Name: "소금빵"},
		},
	}), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var response ContentResponse
	json.Unmarshal(rec.Body.Bytes(), &response)
	if response.Content.Type != entities.ContentInstagram {
		t.Errorf("Expected instagram content, got %s", response.Content.Type)
	}
	if response.Content.Content == "" || len(response.Hashtags) == 0 || len(response.Keywords) == 0 {
		t.Errorf("Expected content, hashtags and keywords, got %+v", response)
	}
}

func TestBenchmarkAndVoices(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(jsonRequest(http.MethodPost, "/api/v1/benchmark", BenchmarkRequest{}), true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without prompt, got %d", rec.Code)
	}

	rec = s.do(jsonRequest(http.MethodPost, "/api/v1/benchmark", BenchmarkRequest{Prompt: "안녕"}), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var sample entities.PerformanceSample
	json.Unmarshal(rec.Body.Bytes(), &sample)
	if !sample.Success || sample.Model != s.app.Config.LLMModel {
		t.Errorf("Unexpected sample %+v", sample)
	}

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/voices", nil), true)
	var voices VoicesResponse
	json.Unmarshal(rec.Body.Bytes(), &voices)
	if rec.Code != http.StatusOK || len(voices.Voices) == 0 {
		t.Errorf("Expected voices, got %d %+v", rec.Code, voices)
	}
}
