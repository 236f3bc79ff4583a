package goquery

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/promptvault"
)

// Defaults for the external-resource heuristic.
const (
	DefaultMaxLinkPostLength = 150
	DefaultMinLinkRatio      = 0.5
)

// KeywordRule maps keyword hits to a post type.
type KeywordRule struct {
	Type    promptvault.PostType
	Matcher promptvault.KeywordMatcher
}

// KeywordSet is the raw keyword list behind a KeywordRule.
type KeywordSet struct {
	Type     promptvault.PostType
	Keywords []string
}

// DefaultKeywordSets returns the keyword sets in priority order:
// jailbreak, template, then meta-prompt markers.
func DefaultKeywordSets() []KeywordSet {
	return []KeywordSet{
		{
			Type: promptvault.PostTypeJailbreak,
			Keywords: []string{
				"jailbreak", "джейлбрейк", "dan mode", "do anything now",
				"обход ограничений", "обход цензуры", "снятие ограничений",
			},
		},
		{
			Type: promptvault.PostTypeTemplate,
			Keywords: []string{
				"шаблон", "template", "[вставьте", "[insert", "{{", "[ваш текст]",
			},
		},
		{
			Type: promptvault.PostTypeMeta,
			Keywords: []string{
				"мета-промпт", "метапромпт", "meta-prompt", "meta prompt", "metaprompt",
				"промпт для создания промптов", "генератор промптов", "prompt generator",
			},
		},
	}
}

// Ensure PostClassifier implements promptvault.PostClassifier at compile time.
var _ promptvault.PostClassifier = (*PostClassifier)(nil)

// PostClassifier decides a post's type with ordered heuristics:
// link-heavy short posts, .txt attachments, the numbered prompt marker and
// keyword rules, in that order. Posts matching no rule go to the fallback
// classifier; without one, or when it fails, they are discussions.
type PostClassifier struct {
	extractor   *Extractor
	rules       []KeywordRule
	fallback    promptvault.PostTypeClassifier
	maxLinkPost int
	minRatio    float64
}

// ClassifierOption configures a PostClassifier.
type ClassifierOption func(*PostClassifier)

// WithKeywordRules sets the keyword rules, checked in order.
func WithKeywordRules(rules ...KeywordRule) ClassifierOption {
	return func(c *PostClassifier) {
		c.rules = rules
	}
}

// WithFallback sets the classifier consulted when no rule matches.
func WithFallback(fallback promptvault.PostTypeClassifier) ClassifierOption {
	return func(c *PostClassifier) {
		c.fallback = fallback
	}
}

// WithLinkHeuristic overrides the external-resource thresholds: posts
// shorter than maxLength runes whose link text exceeds minRatio of the
// visible text are external resources.
func WithLinkHeuristic(maxLength int, minRatio float64) ClassifierOption {
	return func(c *PostClassifier) {
		c.maxLinkPost = maxLength
		c.minRatio = minRatio
	}
}

// NewPostClassifier creates a PostClassifier reading posts with config.
func NewPostClassifier(config promptvault.ParserConfig, opts ...ClassifierOption) (*PostClassifier, error) {
	extractor, err := NewExtractor(config.Selectors)
	if err != nil {
		return nil, err
	}

	c := &PostClassifier{
		extractor:   extractor,
		maxLinkPost: DefaultMaxLinkPostLength,
		minRatio:    DefaultMinLinkRatio,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Classify returns the type of post. It never fails: unreadable posts and
// collaborator errors resolve to PostTypeDiscussion.
func (c *PostClassifier) Classify(ctx context.Context, post *promptvault.Post) (postType promptvault.PostType) {
	defer func() {
		if r := recover(); r != nil {
			postType = promptvault.PostTypeDiscussion
		}
	}()

	if post == nil {
		return promptvault.PostTypeDiscussion
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(post.HTML))
	if err != nil {
		return promptvault.PostTypeDiscussion
	}

	root := doc.Selection
	content := root
	if c.extractor.Has(promptvault.FieldContent) {
		if sel := c.extractor.Select(root, promptvault.FieldContent); sel.Length() > 0 {
			content = sel
		}
	}

	body := normalizeSpace(content.Text())
	if c.isExternalResource(content, body) {
		return promptvault.PostTypeExternalResource
	}

	if _, ok := post.TextAttachment(); ok {
		return promptvault.PostTypeFileAttachment
	}

	title := c.title(root, content)
	if t, ok := c.matchRules(strings.ToLower(title), strings.ToLower(RenderText(content))); ok {
		return t
	}

	return c.classifyFallback(ctx, body)
}

// isExternalResource checks for short posts made mostly of links.
func (c *PostClassifier) isExternalResource(content *goquery.Selection, body string) bool {
	total := utf8.RuneCountInString(body)
	if total == 0 || total >= c.maxLinkPost {
		return false
	}

	var linkText int
	content.Find("a").Each(func(_ int, a *goquery.Selection) {
		linkText += utf8.RuneCountInString(normalizeSpace(a.Text()))
	})
	return float64(linkText)/float64(total) > c.minRatio
}

// title returns the configured title field, else the first block heading.
func (c *PostClassifier) title(root, content *goquery.Selection) string {
	if title, ok := c.extractor.Extract(root, promptvault.FieldTitle); ok {
		return title
	}
	block := c.extractor.Select(content, promptvault.FieldBlock)
	if block.Length() == 0 {
		return ""
	}
	title, _ := c.extractor.Extract(block, promptvault.FieldBlockTitle)
	return title
}

func (c *PostClassifier) matchRules(title, body string) (promptvault.PostType, bool) {
	if hasStandardPrefix(title) || hasStandardPrefix(body) {
		return promptvault.PostTypeStandard, true
	}
	for _, rule := range c.rules {
		if rule.Matcher == nil {
			continue
		}
		if len(rule.Matcher.Match(title)) > 0 || len(rule.Matcher.Match(body)) > 0 {
			return rule.Type, true
		}
	}
	return "", false
}

func (c *PostClassifier) classifyFallback(ctx context.Context, body string) promptvault.PostType {
	if c.fallback == nil || body == "" {
		return promptvault.PostTypeDiscussion
	}
	t, err := c.fallback.ClassifyPost(ctx, body)
	if err != nil {
		return promptvault.PostTypeDiscussion
	}
	parsed, ok := promptvault.ParsePostType(string(t))
	if !ok {
		return promptvault.PostTypeDiscussion
	}
	return parsed
}
