package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/internal/config"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Legacy flags
	legacyMode  string
	legacyAudio string

	// Session overrides
	duration    float64
	voiceID     string
	ttsModel    string
	llmModel    string
	sttModel    string
	sttProvider string
	noSave      bool
	stream      bool
)

var rootCmd = &cobra.Command{
	Use:   "suara",
	Short: "Voice assistant: speech in, spoken reply out",
	Long: `suara - a voice assistant built from a speech recognizer, a language model
and a speech synthesizer.

Each turn records an utterance, transcribes it, generates a reply that
remembers the conversation so far, and speaks the reply.

Configuration is read from defaults, an optional YAML file (--config),
a .env file, the environment and finally the flags below.

Examples:
  # Talk to the assistant
  suara
  suara interactive --duration 3 --stream

  # One turn over a recording
  suara file --audio question.wav

  # Legacy form
  suara --mode file --audio question.wav

  # HTTP and websocket server
  suara serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch legacyMode {
		case "", "interactive":
			return runInteractive(cmd)
		case "file":
			return runFile(cmd, legacyAudio)
		default:
			return fmt.Errorf("unknown mode %q, expected interactive or file", legacyMode)
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "YAML configuration file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	flags.Float64Var(&duration, "duration", 0, "recording duration in seconds")
	flags.StringVar(&voiceID, "voice", "", "synthesis voice id")
	flags.StringVar(&ttsModel, "model", "", "synthesis model id")
	flags.StringVar(&llmModel, "llm-model", "", "language model")
	flags.StringVar(&sttModel, "stt-model", "", "speech recognition model")
	flags.StringVar(&sttProvider, "stt-provider", "", "speech recognition provider (whisper, google, mock)")
	flags.BoolVar(&noSave, "no-save", false, "do not keep recordings")
	flags.BoolVar(&stream, "stream", false, "stream synthesized audio while it is generated")

	rootCmd.Flags().StringVar(&legacyMode, "mode", "", "legacy: interactive or file")
	rootCmd.Flags().StringVar(&legacyAudio, "audio", "", "legacy: audio file for --mode file")
}

// loadConfig loads the configuration and applies the flags the user set
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("duration") {
		cfg.RecordingDuration = duration
	}
	if flags.Changed("voice") {
		cfg.TTSVoiceID = voiceID
	}
	if flags.Changed("model") {
		cfg.TTSModel = ttsModel
	}
	if flags.Changed("llm-model") {
		cfg.LLMModel = llmModel
	}
	if flags.Changed("stt-model") {
		cfg.STTModel = sttModel
	}
	if flags.Changed("stt-provider") {
		cfg.STTProvider = sttProvider
	}
	if flags.Changed("no-save") {
		cfg.SaveRecordings = !noSave
	}
	if flags.Changed("stream") && stream {
		cfg.TTSMode = string(entities.SynthesisStreamed)
	}

	return cfg, nil
}

// newLogger returns a development logger when verbose, a production logger otherwise
func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.Verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// setup loads the configuration and builds the logger
func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}
