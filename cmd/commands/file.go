package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/internal/app"
)

var fileAudio string

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Run one turn over a WAV file",
	Long: `Transcribe a WAV recording, generate a reply and speak it.

Examples:
  suara file --audio question.wav
  suara file --audio question.wav --stream`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFile(cmd, fileAudio)
	},
}

func init() {
	fileCmd.Flags().StringVar(&fileAudio, "audio", "", "WAV file to process (required)")
	rootCmd.AddCommand(fileCmd)
}

func runFile(cmd *cobra.Command, path string) error {
	if path == "" {
		return errors.New("please specify an audio file with --audio")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("audio file not found: %s", path)
	}

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{Mode: entities.SessionModeFile}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer a.Close(context.Background())

	a.Orchestrator.AddObserver(newConsole(os.Stdout, cfg.RecordingDuration))

	fmt.Printf("Processing audio file: %s\n", path)
	result := a.Orchestrator.RunFileTurn(ctx, path)
	if result.Outcome() == entities.OutcomeInvalidInput {
		return result.Err
	}
	return nil
}
