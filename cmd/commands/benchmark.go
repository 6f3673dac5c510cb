package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satriahrh/suara/internal/app"
	"github.com/satriahrh/suara/usecase"
)

const defaultBenchmarkPrompt = "안녕하세요! 간단하게 자기소개를 해주세요."

var (
	benchmarkModel  string
	benchmarkPrompt string
	benchmarkRuns   int
	benchmarkList   bool
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Measure language model latency",
	Long: `Send a prompt to a language model and report latency, heap growth,
token count and a sample of the output.

Examples:
  suara benchmark
  suara benchmark --model gemma-3-12b-it --prompt "오늘 날씨 어때?" --runs 3
  suara benchmark --list`,
	RunE: runBenchmark,
}

func init() {
	flags := benchmarkCmd.Flags()
	flags.StringVar(&benchmarkModel, "model", "", "model to measure (default: configured model)")
	flags.StringVar(&benchmarkPrompt, "prompt", defaultBenchmarkPrompt, "prompt to send")
	flags.IntVar(&benchmarkRuns, "runs", 1, "number of measurements")
	flags.BoolVar(&benchmarkList, "list", false, "list available models and exit")
	rootCmd.AddCommand(benchmarkCmd)
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.ValidateLLM(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	model, err := app.NewLanguageModel(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize language model: %w", err)
	}

	service := usecase.NewBenchmarkService(model, cfg.LLMModel, nil, logger)

	if benchmarkList {
		models, err := service.Models(ctx)
		if err != nil {
			return fmt.Errorf("failed to list models: %w", err)
		}
		for _, name := range models {
			fmt.Println(name)
		}
		return nil
	}

	for i := 0; i < max(benchmarkRuns, 1); i++ {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if err := printJSON(service.Measure(ctx, benchmarkModel, benchmarkPrompt)); err != nil {
			return err
		}
	}
	return nil
}
