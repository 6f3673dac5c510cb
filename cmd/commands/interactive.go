package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/internal/app"
	"github.com/satriahrh/suara/internal/turn"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Talk to the assistant through the microphone",
	Long: `Record, transcribe, reply and speak in a loop until Ctrl+C.

The turn in progress when Ctrl+C arrives finishes before the program exits.

Examples:
  suara interactive
  suara interactive --duration 3 --voice JBFqnCBsd6RMkjVDRZzb
  suara interactive --stream --no-save
  suara interactive --turns 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd)
	},
}

var maxTurns int

func init() {
	interactiveCmd.Flags().IntVar(&maxTurns, "turns", 0, "stop after this many turns (0 runs until Ctrl+C)")
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	fmt.Println("Initializing components...")
	a, err := app.New(ctx, cfg, app.Options{Mode: entities.SessionModeInteractive}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer a.Close(context.Background())

	device, err := a.Devices.Device(ctx)
	switch {
	case err != nil:
		logger.Warn("Audio device lookup failed", zap.Error(err))
		fmt.Println("⚠️  Could not list audio input devices, retrying every turn")
	case device == nil:
		fmt.Println("⚠️  No working audio input device found, retrying every turn (run 'suara devices' to list them)")
	default:
		fmt.Printf("Using input device: %s\n", device.Name)
	}

	out := newConsole(os.Stdout, cfg.RecordingDuration)
	a.Orchestrator.AddObserver(out)
	out.banner()

	if maxTurns > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		a.Orchestrator.AddObserver(stopAfter(maxTurns, cancel))
	}

	if err := a.Orchestrator.Loop(ctx); err != nil {
		logger.Error("Interactive loop failed", zap.Error(err))
		return err
	}

	fmt.Println("\nGoodbye! 👋")
	return nil
}

// stopAfter cancels the loop once n turns have finished
func stopAfter(n int, cancel context.CancelFunc) turn.Observer {
	var done int
	return turn.ObserverFunc(func(ctx context.Context, event turn.Event) {
		if event.Type != turn.EventTurnCompleted {
			return
		}
		done++
		if done >= n {
			cancel()
		}
	})
}
