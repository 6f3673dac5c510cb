package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satriahrh/suara/adapters/audio"
	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/usecase"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio input devices",
	Long: `List the audio devices the capture backend reports and probe which one
records. The probed device is the one interactive mode uses.

Microphone capture needs a binary built with -tags portaudio.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signalContext()
		defer stop()

		platform, err := audio.NewDefaultPlatform(logger)
		if err != nil {
			return fmt.Errorf("failed to initialize audio platform: %w", err)
		}
		defer platform.Close()

		resolver := usecase.NewDeviceResolver(platform, logger)
		devices, err := resolver.Devices(ctx)
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("No audio devices found.")
			return nil
		}

		working, err := resolver.Device(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Available audio devices:")
		for _, device := range devices {
			marker := " "
			if working != nil && working.Index == device.Index {
				marker = "*"
			}
			fmt.Printf("%s %2d: %s (inputs: %d, default rate: %.0f Hz)\n",
				marker, device.Index, device.Name, device.MaxInputChannels, device.DefaultSampleRate)
		}
		if working == nil {
			fmt.Printf("\nNo device could record at %d Hz.\n", entities.TranscriptionSampleRate)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
