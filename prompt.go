package promptvault

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Content variant type labels.
const (
	ContentTypePrompt = "prompt"
	ContentTypeFile   = "file_content"
	ContentTypeLink   = "link"
)

// CategoryImportedFile is the category assigned to prompts whose content
// came from a text attachment.
const CategoryImportedFile = "imported_file"

// ContentVariant is one body of a prompt tagged with its kind.
type ContentVariant struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Prompt is a normalized content record extracted from a forum post.
type Prompt struct {
	ID           string           `json:"id"`
	SourcePostID string           `json:"sourcePostId"`
	PostType     PostType         `json:"postType"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Contents     []ContentVariant `json:"contents"`
	Category     string           `json:"category"`
	Tags         []string         `json:"tags,omitempty"`
	Author       Author           `json:"author"`
	ContentHash  string           `json:"contentHash"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	ImportedAt   time.Time        `json:"importedAt"`
}

// Content returns the text of the primary content variant.
func (p *Prompt) Content() string {
	if len(p.Contents) == 0 {
		return ""
	}
	return p.Contents[0].Text
}

// HashContent returns the xxHash of content as 16 hex digits. Stored
// prompts carry the hash of their primary content.
func HashContent(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// Validate returns an error if the prompt contains invalid fields.
func (p *Prompt) Validate() error {
	if p.SourcePostID == "" {
		return Errorf(EINVALID, "prompt source post ID required")
	}
	if strings.TrimSpace(p.Content()) == "" {
		return Errorf(EINVALID, "prompt content required")
	}
	return nil
}

// PromptExtractor produces a prompt record from a classified post.
type PromptExtractor interface {
	// Extract returns nil when the post does not hold an importable prompt.
	Extract(ctx context.Context, postType PostType, post *Post) (*Prompt, error)
}

// PromptService represents a service for managing prompts.
type PromptService interface {
	// CreatePrompt creates a new prompt.
	CreatePrompt(ctx context.Context, prompt *Prompt) error

	// FindPromptByID retrieves a prompt by ID.
	// Returns ENOTFOUND if prompt does not exist.
	FindPromptByID(ctx context.Context, id string) (*Prompt, error)

	// FindPrompts retrieves prompts matching the filter.
	FindPrompts(ctx context.Context, filter PromptFilter) ([]*Prompt, error)

	// DeletePrompt permanently removes a prompt.
	// Returns ENOTFOUND if prompt does not exist.
	DeletePrompt(ctx context.Context, id string) error
}

// PromptFilter represents a filter for FindPrompts.
type PromptFilter struct {
	ID           *string `json:"id"`
	SourcePostID *string `json:"sourcePostId"`
	Category     *string `json:"category"`
	ContentHash  *string `json:"contentHash"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// PromptWriter writes prompts to an export destination.
type PromptWriter interface {
	WritePrompt(ctx context.Context, prompt *Prompt) error
}

// Fetcher retrieves the text behind a URL. It backs attachment downloads.
type Fetcher interface {
	// Fetch returns the body of the resource decoded as UTF-8 text.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (string, error)
}
