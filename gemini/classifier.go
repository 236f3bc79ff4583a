package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/promptvault"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// DefaultMaxInputRunes caps the post text sent to the model.
const DefaultMaxInputRunes = 4000

// Ensure PostTypeClassifier implements promptvault.PostTypeClassifier at compile time.
var _ promptvault.PostTypeClassifier = (*PostTypeClassifier)(nil)

// PostTypeClassifier implements promptvault.PostTypeClassifier using Google
// Gemini. The model is constrained to answer with one post type label.
type PostTypeClassifier struct {
	client    *genai.Client
	model     string
	maxRunes  int
	counter   promptvault.TokenCounter
	maxTokens int
}

// Option configures a PostTypeClassifier.
type Option func(*PostTypeClassifier)

// WithModel overrides the Gemini model name.
func WithModel(name string) Option {
	return func(c *PostTypeClassifier) {
		c.model = name
	}
}

// WithMaxInputRunes overrides DefaultMaxInputRunes.
func WithMaxInputRunes(n int) Option {
	return func(c *PostTypeClassifier) {
		c.maxRunes = n
	}
}

// WithTokenBudget trims post text to at most maxTokens as counted by
// counter before it is sent.
func WithTokenBudget(counter promptvault.TokenCounter, maxTokens int) Option {
	return func(c *PostTypeClassifier) {
		c.counter = counter
		c.maxTokens = maxTokens
	}
}

// NewPostTypeClassifier creates a new PostTypeClassifier.
func NewPostTypeClassifier(client *genai.Client, opts ...Option) *PostTypeClassifier {
	c := &PostTypeClassifier{
		client:   client,
		model:    model,
		maxRunes: DefaultMaxInputRunes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClassifyPost asks the model which post type text belongs to.
func (c *PostTypeClassifier) ClassifyPost(ctx context.Context, text string) (promptvault.PostType, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", promptvault.Errorf(promptvault.EINVALID, "post text required")
	}
	if c.client == nil {
		return "", promptvault.Errorf(promptvault.EINTERNAL, "gemini client not configured")
	}

	text = truncateRunes(text, c.maxRunes)
	if c.counter != nil && c.maxTokens > 0 {
		var err error
		if text, err = c.counter.Truncate(ctx, text, c.maxTokens); err != nil {
			return "", err
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildUserPrompt(text)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", promptvault.Errorf(promptvault.EINTERNAL, "gemini returned nil result")
	}

	return ParseResponse(result.Text())
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls. The
// response is restricted to the post type labels.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	labels := make([]string, 0, len(promptvault.PostTypes()))
	for _, t := range promptvault.PostTypes() {
		labels = append(labels, string(t))
	}

	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You classify posts from a forum where people share prompts for AI models. " +
					"Answer with exactly one label: " + strings.Join(labels, ", ") + ". " +
					"Use discussion for questions, thanks, opinions and anything that is not a prompt.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "text/x.enum",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeString,
			Enum: labels,
		},
	}
}

// BuildUserPrompt wraps the post text for classification.
func BuildUserPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("<post>\n")
	sb.WriteString(text)
	sb.WriteString("\n</post>\n\n")
	fmt.Fprintf(&sb, "Which label fits this post?")
	return sb.String()
}

// ParseResponse maps the model's answer to a post type. It tolerates
// quotes, code fences and surrounding prose, picking the label that
// appears first. Returns EINVALID when no label is present.
func ParseResponse(answer string) (promptvault.PostType, error) {
	cleaned := strings.Trim(strings.TrimSpace(answer), "`\"' \n.")
	if t, ok := promptvault.ParsePostType(cleaned); ok {
		return t, nil
	}

	lower := strings.ToLower(answer)
	best, bestAt := promptvault.PostType(""), -1
	for _, t := range promptvault.PostTypes() {
		if i := strings.Index(lower, string(t)); i >= 0 && (bestAt < 0 || i < bestAt) {
			best, bestAt = t, i
		}
	}
	if bestAt < 0 {
		return "", promptvault.Errorf(promptvault.EINVALID, "unrecognized post type %q", strings.TrimSpace(answer))
	}
	return best, nil
}

func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
