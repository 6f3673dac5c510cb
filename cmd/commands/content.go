package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/internal/app"
	"github.com/satriahrh/suara/usecase"
)

var (
	contentName        string
	contentCategory    string
	contentTone        string
	contentKeywords    []string
	contentProduct     string
	contentDescription string
	contentType        string
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Generate marketing copy for a business",
	Long: `Generate a blog post, instagram caption, youtube description or flyer
for a business and product, with hashtags and keywords.

When the language model fails, a template is used instead and the
result is marked as fallback.

Examples:
  suara content --name "소담 베이커리" --product 소금빵 --type instagram
  suara content --name "소담 베이커리" --category "음식점 > 베이커리" --type blog`,
	RunE: runContent,
}

func init() {
	flags := contentCmd.Flags()
	flags.StringVar(&contentName, "name", "", "business name")
	flags.StringVar(&contentCategory, "category", "", "business category, e.g. \"음식점 > 베이커리\"")
	flags.StringVar(&contentTone, "tone", "", "writing tone")
	flags.StringSliceVar(&contentKeywords, "keywords", nil, "keywords to weave in")
	flags.StringVar(&contentProduct, "product", "", "product name")
	flags.StringVar(&contentDescription, "description", "", "product description")
	flags.StringVar(&contentType, "type", string(entities.ContentInstagram), "content type: "+contentTypeNames())
	rootCmd.AddCommand(contentCmd)
}

func contentTypeNames() string {
	names := make([]string, len(entities.ContentTypes))
	for i, ct := range entities.ContentTypes {
		names[i] = string(ct)
	}
	return strings.Join(names, ", ")
}

func runContent(cmd *cobra.Command, args []string) error {
	ct, err := entities.ParseContentType(contentType)
	if err != nil {
		return err
	}

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

	profile := entities.BusinessProfile{
		Name:     contentName,
		Category: contentCategory,
		Tone:     contentTone,
		Keywords: contentKeywords,
		Product:  entities.Product{Name: contentProduct, Description: contentDescription},
	}

	service := usecase.NewContentService(model, cfg.LLMModel, logger)
	content := service.Generate(ctx, profile, ct)

	return printJSON(map[string]interface{}{
		"content":  content,
		"hashtags": service.Hashtags(ctx, content.Content, profile),
		"keywords": service.Keywords(ctx, content.Content),
	})
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}
