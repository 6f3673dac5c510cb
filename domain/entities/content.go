package entities

import "fmt"

// ContentType is the kind of marketing copy requested
type ContentType string

const (
	ContentBlog      ContentType = "blog"
	ContentInstagram ContentType = "instagram"
	ContentYouTube   ContentType = "youtube"
	ContentFlyer     ContentType = "flyer"
)

// ContentTypes lists every supported content type
var ContentTypes = []ContentType{ContentBlog, ContentInstagram, ContentYouTube, ContentFlyer}

// ParseContentType validates s against the supported content types
func ParseContentType(s string) (ContentType, error) {
	for _, ct := range ContentTypes {
		if string(ct) == s {
			return ct, nil
		}
	}
	return "", fmt.Errorf("unsupported content type %q", s)
}

// Product is the item a piece of copy promotes
type Product struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BusinessProfile describes the business copy is written for
type BusinessProfile struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Tone     string   `json:"tone"`
	Keywords []string `json:"keywords"`
	Product  Product  `json:"product"`
}

// ContentMetrics describes generated copy
type ContentMetrics struct {
	GenerationTime       float64 `json:"generation_time"`
	WordCount            int     `json:"word_count"`
	EstimatedReadMinutes float64 `json:"estimated_read_time,omitempty"`
}

// MarketingContent is a titled piece of marketing copy
type MarketingContent struct {
	Type     ContentType    `json:"type"`
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Metrics  ContentMetrics `json:"performance_metrics"`
	Fallback bool           `json:"fallback"`
}
