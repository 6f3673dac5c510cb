package stt

import (
	"context"
	"fmt"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/satriahrh/suara/domain/repositories"
)

// GoogleConfig holds configuration for the GoogleSpeechToText adapter
// Optional fields:
// - CredentialsFile: service account JSON; application default credentials when empty
// - Model: recognition model, e.g. "latest_short" (default: engine default)
type GoogleConfig struct {
	CredentialsFile string
	Model           string
}

// GoogleSpeechToText implements SpeechToText with Google Cloud Speech-to-Text
type GoogleSpeechToText struct {
	client *speech.Client
	model  string
	logger *zap.Logger
}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// NewGoogleConfigFromEnv reads GOOGLE_APPLICATION_CREDENTIALS and GOOGLE_SPEECH_MODEL
func NewGoogleConfigFromEnv() GoogleConfig {
	return GoogleConfig{
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		Model:           os.Getenv("GOOGLE_SPEECH_MODEL"),
	}
}

// NewGoogleSpeechToText creates a Cloud Speech client
func NewGoogleSpeechToText(ctx context.Context, config GoogleConfig, logger *zap.Logger) (*GoogleSpeechToText, error) {
	var opts []option.ClientOption
	if config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
		logger.Info("Using service account credentials", zap.String("credentialsFile", config.CredentialsFile))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return &GoogleSpeechToText{
		client: client,
		model:  config.Model,
		logger: logger,
	}, nil
}

// TranscribeAudio converts audio data to text using synchronous recognition
func (g *GoogleSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	encoding, err := getAudioEncoding(config.Encoding)
	if err != nil {
		return "", err
	}

	request := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: int32(config.SampleRate),
			LanguageCode:    languageCode(config.Language),
			Model:           g.model,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	}

	g.logger.Debug("Sending recognize request",
		zap.Int("bytes", len(audioData)),
		zap.String("language", request.Config.LanguageCode))

	resp, err := g.client.Recognize(ctx, request)
	if err != nil {
		return "", fmt.Errorf("failed to recognize speech: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}

	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

// Close releases the underlying gRPC connection
func (g *GoogleSpeechToText) Close() error {
	return g.client.Close()
}

// languageCode expands bare ISO 639-1 codes into the regional tags Cloud Speech expects
func languageCode(language string) string {
	switch language {
	case "ko":
		return "ko-KR"
	case "en":
		return "en-US"
	case "id":
		return "id-ID"
	case "ja":
		return "ja-JP"
	default:
		return language
	}
}

// getAudioEncoding converts string encoding to Google Speech API enum
func getAudioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch strings.ToUpper(encoding) {
	case "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
