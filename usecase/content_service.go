package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

const (
	maxHashtags     = 15
	maxKeywords     = 10
	wordsPerMinute  = 200
	hashtagExcerpt  = 200
	keywordExcerpt  = 500
	defaultBusiness = "우리 비즈니스"
	defaultProduct  = "상품"
)

var defaultKeywords = []string{"마케팅", "추천", "고품질", "서비스", "고객만족"}

type contentBrief struct {
	format       string
	requirements []string
}

var contentBriefs = map[entities.ContentType]contentBrief{
	entities.ContentBlog: {
		format: "네이버 블로그 포스트",
		requirements: []string{
			"SEO에 최적화된 제목 (30-40자)",
			"자연스러운 키워드 배치",
			"고객의 관심을 끄는 구성",
			"1000-1500자 분량",
			"단락별로 구성",
		},
	},
	entities.ContentInstagram: {
		format: "인스타그램 게시물",
		requirements: []string{
			"시선을 끄는 첫 문장",
			"150-300자 내외",
			"이모지 적절히 사용",
			"행동 유도 문구 포함",
			"해시태그는 별도로 생성하지 말고 본문만 작성",
		},
	},
	entities.ContentYouTube: {
		format: "유튜브 숏폼 스크립트",
		requirements: []string{
			"15-60초 분량의 스크립트",
			"후킹이 강한 첫 3초",
			"핵심 메시지 전달",
			"행동 유도 문구",
			"대화체 형식",
		},
	},
	entities.ContentFlyer: {
		format: "전단지 텍스트",
		requirements: []string{
			"강력한 헤드라인",
			"핵심 혜택 3-5개",
			"가격/할인 정보 영역",
			"연락처 정보 영역",
			"간결하고 임팩트 있는 문구",
		},
	},
}

// ContentService writes marketing copy for a business profile
type ContentService struct {
	llm    repositories.LargeLanguageModel
	model  string
	logger *zap.Logger
	now    func() time.Time
}

// NewContentService creates a content service
func NewContentService(llm repositories.LargeLanguageModel, model string, logger *zap.Logger) *ContentService {
	return &ContentService{
		llm:    llm,
		model:  model,
		logger: logger,
		now:    time.Now,
	}
}

// Generate writes one piece of copy. Any engine failure yields the fallback template.
func (s *ContentService) Generate(ctx context.Context, profile entities.BusinessProfile, contentType entities.ContentType) entities.MarketingContent {
	start := s.now()

	generation, err := s.llm.Generate(ctx, repositories.GenerateRequest{
		Model:  s.model,
		Prompt: ContentPrompt(profile, contentType),
	})
	if err != nil || strings.TrimSpace(generation.Text) == "" {
		s.logger.Warn("Content generation failed, using fallback",
			zap.String("type", string(contentType)),
			zap.Error(err))
		return FallbackContent(profile, contentType)
	}

	content := formatContent(generation.Text, profile)
	content.Type = contentType
	content.Metrics.GenerationTime = s.now().Sub(start).Seconds()
	return content
}

// Hashtags suggests up to fifteen hashtags, without the leading '#'
func (s *ContentService) Hashtags(ctx context.Context, content string, profile entities.BusinessProfile) []string {
	prompt := fmt.Sprintf(`다음 콘텐츠와 비즈니스 정보를 바탕으로 인스타그램 해시태그 10-15개를 생성해주세요.

비즈니스: %s (%s)
콘텐츠: %s...

요구사항:
1. 관련성 높은 해시태그
2. 인기 해시태그와 니치 해시태그 조합
3. 지역 태그 포함 (가능한 경우)
4. 한글 해시태그도 포함
5. # 없이 단어만 반환

해시태그만 콤마로 구분해서 반환해주세요.`, profile.Name, profile.Category, excerpt(content, hashtagExcerpt))

	generation, err := s.llm.Generate(ctx, repositories.GenerateRequest{Model: s.model, Prompt: prompt})
	if err != nil {
		s.logger.Warn("Hashtag generation failed, using fallback", zap.Error(err))
		return FallbackHashtags(profile)
	}

	return splitTerms(strings.ReplaceAll(generation.Text, "#", ""), maxHashtags)
}

// Keywords extracts up to ten marketing keywords from text
func (s *ContentService) Keywords(ctx context.Context, text string) []string {
	prompt := fmt.Sprintf(`다음 텍스트에서 핵심 키워드를 5-10개 추출해주세요.

텍스트: %s...

요구사항:
1. 마케팅에 중요한 키워드 우선
2. 브랜드/상품명 포함
3. 업종 관련 키워드
4. 감정/특성 키워드

키워드만 콤마로 구분해서 반환해주세요.`, excerpt(text, keywordExcerpt))

	generation, err := s.llm.Generate(ctx, repositories.GenerateRequest{Model: s.model, Prompt: prompt})
	if err != nil {
		s.logger.Warn("Keyword analysis failed, using fallback", zap.Error(err))
		return append([]string(nil), defaultKeywords...)
	}

	return splitTerms(generation.Text, maxKeywords)
}

// ContentPrompt builds the generation prompt for contentType
func ContentPrompt(profile entities.BusinessProfile, contentType entities.ContentType) string {
	name := orDefault(profile.Name, "비즈니스")
	product := orDefault(profile.Product.Name, defaultProduct)
	tone := orDefault(profile.Tone, "친근한")

	brief, ok := contentBriefs[contentType]
	if !ok {
		return fmt.Sprintf("%s의 %s에 대한 %s 톤의 마케팅 콘텐츠를 작성해주세요.", name, product, tone)
	}

	keywords := "없음"
	if len(profile.Keywords) > 0 {
		keywords = strings.Join(profile.Keywords, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s의 %s에 대한 %s를 작성해주세요.\n\n", name, product, brief.format)
	b.WriteString("비즈니스 정보:\n")
	fmt.Fprintf(&b, "- 업체명: %s\n", name)
	fmt.Fprintf(&b, "- 업종: %s\n", profile.Category)
	fmt.Fprintf(&b, "- 상품/서비스: %s\n", product)
	fmt.Fprintf(&b, "- 상품 설명: %s\n", profile.Product.Description)
	fmt.Fprintf(&b, "- 톤앤매너: %s\n\n", tone)
	b.WriteString("요구사항:\n")
	for i, req := range brief.requirements {
		fmt.Fprintf(&b, "%d. %s\n", i+1, req)
	}
	fmt.Fprintf(&b, "\n키워드: %s\n", keywords)
	return b.String()
}

// FallbackContent returns canned copy keyed on the business and product names
func FallbackContent(profile entities.BusinessProfile, contentType entities.ContentType) entities.MarketingContent {
	biz := orDefault(profile.Name, defaultBusiness)
	product := orDefault(profile.Product.Name, defaultProduct)

	var title, body string
	switch contentType {
	case entities.ContentBlog:
		title = fmt.Sprintf("%s의 %s 소개", biz, product)
		body = fmt.Sprintf("%s에서 선보이는 %s을 소개합니다.\n\n고품질의 서비스로 고객 만족을 위해 최선을 다하고 있습니다.\n\n지금 바로 문의해보세요!", biz, product)
	case entities.ContentInstagram:
		title = fmt.Sprintf("%s 신상 출시! 🎉", product)
		body = fmt.Sprintf("%s의 %s을 만나보세요! ✨\n\n특별한 혜택도 함께 준비했어요 💝\n\n지금 바로 DM 주세요! 📱", biz, product)
	case entities.ContentYouTube:
		title = fmt.Sprintf("%s 리뷰 - %s", product, biz)
		body = fmt.Sprintf("안녕하세요! 오늘은 %s의 %s에 대해 소개해 드릴게요.\n\n이 제품의 특별한 점은 무엇일까요?\n\n영상 끝까지 시청하시고 좋아요, 구독 부탁드립니다!", biz, product)
	case entities.ContentFlyer:
		title = fmt.Sprintf("%s 스페셜 프로모션", biz)
		body = fmt.Sprintf("[특별 할인]\n%s 프로모션\n\n지금 구매하시면 20%% 할인!\n\n기간: 이번주 한정\n연락처: 000-0000-0000\n주소: 서울시 강남구", product)
	default:
		title = fmt.Sprintf("%s - %s", biz, product)
		body = fmt.Sprintf("%s의 %s을 소개합니다.", biz, product)
	}

	return entities.MarketingContent{
		Type:    contentType,
		Title:   title,
		Content: body,
		Metrics: entities.ContentMetrics{
			GenerationTime: 0.1,
			WordCount:      len(strings.Fields(body)),
		},
		Fallback: true,
	}
}

// FallbackHashtags returns generic hashtags for profile
func FallbackHashtags(profile entities.BusinessProfile) []string {
	category := ""
	if profile.Category != "" {
		segments := strings.Split(profile.Category, ">")
		category = strings.TrimSpace(segments[len(segments)-1])
	}
	return []string{
		orDefault(profile.Name, "비즈니스"),
		category,
		"맛집", "추천", "일상", "소상공인", "로컬", "이벤트",
	}
}

func formatContent(text string, profile entities.BusinessProfile) entities.MarketingContent {
	text = strings.TrimSpace(text)
	title, _, _ := strings.Cut(text, "\n")
	title = strings.TrimSpace(strings.NewReplacer("#", "", "*", "").Replace(title))
	if title == "" {
		title = orDefault(profile.Product.Name, defaultProduct) + " 소개"
	}

	words := len(strings.Fields(text))
	return entities.MarketingContent{
		Title:   title,
		Content: text,
		Metrics: entities.ContentMetrics{
			WordCount:            words,
			EstimatedReadMinutes: float64(words) / wordsPerMinute,
		},
	}
}

func splitTerms(text string, limit int) []string {
	terms := make([]string, 0, limit)
	for _, raw := range strings.Split(text, ",") {
		term := strings.TrimSpace(raw)
		if utf8.RuneCountInString(term) <= 1 {
			continue
		}
		terms = append(terms, term)
		if len(terms) == limit {
			break
		}
	}
	return terms
}

func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
