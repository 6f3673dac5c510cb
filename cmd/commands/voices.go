package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satriahrh/suara/internal/app"
)

var listModels bool

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List synthesis voices",
	Long: `List the voices (or, with --models, the models) the synthesis engine offers.

Examples:
  suara voices
  suara voices --models`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signalContext()
		defer stop()

		voice, err := app.NewTextToSpeech(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize speech synthesis: %w", err)
		}

		if listModels {
			models, err := voice.ListModels(ctx)
			if err != nil {
				return err
			}
			return printJSON(models)
		}

		voices, err := voice.ListVoices(ctx)
		if err != nil {
			return err
		}
		for _, v := range voices {
			fmt.Printf("%s  %s\n", v.VoiceID, v.Name)
		}
		return nil
	},
}

func init() {
	voicesCmd.Flags().BoolVar(&listModels, "models", false, "list models instead of voices")
	rootCmd.AddCommand(voicesCmd)
}
