package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/suara/domain/entities"
)

var fakeAudio = bytes.Repeat([]byte{0xff, 0xfb, 0x90, 0x64}, 700)

func newFakeElevenLabs(t *testing.T) (*httptest.Server, *[]ElevenLabsRequest) {
	var received []ElevenLabsRequest

	mux := http.NewServeMux()
	synth := func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "test-api-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("output_format") != defaultOutputFormat {
			t.Errorf("Expected output_format %s, got %s", defaultOutputFormat, r.URL.Query().Get("output_format"))
		}

		var payload ElevenLabsRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		received = append(received, payload)

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(fakeAudio)
	}
	mux.HandleFunc("/text-to-speech/"+defaultVoiceID, synth)
	mux.HandleFunc("/text-to-speech/"+defaultVoiceID+"/stream", synth)
	mux.HandleFunc("/voices", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"voices":[{"voice_id":"JBFqnCBsd6RMkjVDRZzb","name":"George"},{"voice_id":"uyVNoMrnUku1dZyVEXwD","name":"Anna Kim"}]}`))
	})
	mux.HandleFunc("/models", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"model_id":"eleven_flash_v2_5","name":"Eleven Flash v2.5"}]`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &received
}

func newTestTTS(t *testing.T, baseURL string) *ElevenLabsTTS {
	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-api-key", APIBaseURL: baseURL, ChunkSize: 256}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}
	return tts
}

func TestNewElevenLabsTTS(t *testing.T) {
	logger := zaptest.NewLogger(t)

	os.Unsetenv("ELEVENLABS_API_KEY")
	os.Unsetenv("ELEVEN_LABS_API_KEY")
	config := NewElevenLabsConfigFromEnv()
	_, err := NewElevenLabsTTS(config, logger)
	if !errors.Is(err, entities.ErrConfiguration) {
		t.Errorf("Expected configuration error when API key is not set, got %v", err)
	}

	os.Setenv("ELEVENLABS_API_KEY", "test-api-key")
	defer os.Unsetenv("ELEVENLABS_API_KEY")

	config = NewElevenLabsConfigFromEnv()
	tts, err := NewElevenLabsTTS(config, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if tts.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", tts.apiKey)
	}

	if tts.voiceID != defaultVoiceID {
		t.Errorf("Expected default voice ID '%s', got '%s'", defaultVoiceID, tts.voiceID)
	}

	if tts.outputFormat != defaultOutputFormat {
		t.Errorf("Expected default output format '%s', got '%s'", defaultOutputFormat, tts.outputFormat)
	}
}

func TestValidateElevenLabsConfig(t *testing.T) {
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k", Stability: 1.5}); err == nil {
		t.Error("Expected error for stability out of range")
	}

	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k", Clarity: -0.5}); err == nil {
		t.Error("Expected error for clarity out of range")
	}

	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k", ChunkSize: -1}); err == nil {
		t.Error("Expected error for negative chunk size")
	}
}

func TestElevenLabsTTS_SetVoiceSettings(t *testing.T) {
	tts := newTestTTS(t, "http://unused")

	tts.SetVoiceSettings(0.8, 0.9)

	if tts.stability != 0.8 {
		t.Errorf("Expected stability 0.8, got %f", tts.stability)
	}

	if tts.clarity != 0.9 {
		t.Errorf("Expected clarity 0.9, got %f", tts.clarity)
	}
}

func TestElevenLabsTTS_Convert(t *testing.T) {
	server, received := newFakeElevenLabs(t)
	tts := newTestTTS(t, server.URL)

	audio, err := tts.Convert(context.Background(), entities.SynthesisRequest{Text: "안녕하세요"})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if !bytes.Equal(audio, fakeAudio) {
		t.Errorf("Expected %d bytes of audio, got %d", len(fakeAudio), len(audio))
	}

	if len(*received) != 1 || (*received)[0].ModelID != defaultModelID {
		t.Errorf("Expected one request with model %s, got %+v", defaultModelID, *received)
	}
}

func TestElevenLabsTTS_StreamMatchesConvert(t *testing.T) {
	server, _ := newFakeElevenLabs(t)
	tts := newTestTTS(t, server.URL)
	ctx := context.Background()

	stream, err := tts.Stream(ctx, entities.SynthesisRequest{Text: "안녕하세요"})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	defer stream.Close()

	var assembled []byte
	chunks := 0
	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if len(chunk) == 0 {
			t.Error("Received empty audio chunk")
		}
		if len(chunk) > 256 {
			t.Errorf("Chunk of %d bytes exceeds chunk size", len(chunk))
		}
		assembled = append(assembled, chunk...)
		chunks++
	}

	if chunks < 2 {
		t.Errorf("Expected several chunks, got %d", chunks)
	}

	buffered, err := tts.Convert(ctx, entities.SynthesisRequest{Text: "안녕하세요"})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if !bytes.Equal(assembled, buffered) {
		t.Error("Expected streamed audio to assemble to the buffered payload")
	}

	if _, err := stream.Next(); err != io.EOF {
		t.Errorf("Expected io.EOF after end of stream, got %v", err)
	}
}

func TestElevenLabsTTS_StreamCloseStopsEarly(t *testing.T) {
	server, _ := newFakeElevenLabs(t)
	tts := newTestTTS(t, server.URL)

	stream, err := tts.Stream(context.Background(), entities.SynthesisRequest{Text: "hello"})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	if _, err := stream.Next(); err != nil {
		t.Fatalf("Expected first chunk, got %v", err)
	}

	if err := stream.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	if _, err := stream.Next(); err != io.EOF {
		t.Errorf("Expected io.EOF after Close, got %v", err)
	}
}

func TestElevenLabsTTS_EmptyText(t *testing.T) {
	tts := newTestTTS(t, "http://unused")

	if _, err := tts.Convert(context.Background(), entities.SynthesisRequest{Text: "   "}); err == nil {
		t.Error("Expected error for whitespace-only text")
	}

	if _, err := tts.Stream(context.Background(), entities.SynthesisRequest{Text: ""}); err == nil {
		t.Error("Expected error for empty text")
	}
}

func TestElevenLabsTTS_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid api key"}`))
	}))
	defer server.Close()

	tts := newTestTTS(t, server.URL)

	_, err := tts.Convert(context.Background(), entities.SynthesisRequest{Text: "hello"})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("Expected 401 error, got %v", err)
	}
}

func TestElevenLabsTTS_ListVoicesAndModels(t *testing.T) {
	server, _ := newFakeElevenLabs(t)
	tts := newTestTTS(t, server.URL)

	voices, err := tts.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices failed: %v", err)
	}

	if len(voices) != 2 || voices[1].VoiceID != "uyVNoMrnUku1dZyVEXwD" {
		t.Errorf("Unexpected voices: %+v", voices)
	}

	models, err := tts.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}

	if len(models) != 1 || models[0].ModelID != defaultModelID {
		t.Errorf("Unexpected models: %+v", models)
	}
}

// Integration test - only runs if ELEVENLABS_API_KEY is set with real API key
func TestElevenLabsTTS_Stream_Integration(t *testing.T) {
	apiKey := os.Getenv("ELEVENLABS_API_KEY")
	if apiKey == "" || apiKey == "test-api-key" {
		t.Skip("Skipping integration test - set ELEVENLABS_API_KEY environment variable with real API key")
	}

	tts, err := NewElevenLabsTTS(NewElevenLabsConfigFromEnv(), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stream, err := tts.Stream(ctx, entities.SynthesisRequest{Text: "안녕하세요, 통합 테스트입니다."})
	if err != nil {
		t.Fatalf("Failed to stream text to speech: %v", err)
	}
	defer stream.Close()

	totalBytes := 0
	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Stream error: %v", err)
		}
		totalBytes += len(chunk)
	}

	if totalBytes == 0 {
		t.Error("No audio data received")
	}
}
