package promptvault

import (
	"context"
	"strings"
	"time"
)

// PostType identifies the kind of content a forum post carries.
type PostType string

// Post type variants. Classification is total: every post resolves to
// exactly one of these, defaulting to PostTypeDiscussion.
const (
	PostTypeStandard         PostType = "standard_prompt"
	PostTypeFileAttachment   PostType = "file_attachment"
	PostTypeJailbreak        PostType = "jailbreak"
	PostTypeTemplate         PostType = "template_prompt"
	PostTypeMeta             PostType = "meta_prompt"
	PostTypeExternalResource PostType = "external_resource"
	PostTypeDiscussion       PostType = "discussion"
)

// PostTypes lists every post type variant in declaration order.
func PostTypes() []PostType {
	return []PostType{
		PostTypeStandard,
		PostTypeFileAttachment,
		PostTypeJailbreak,
		PostTypeTemplate,
		PostTypeMeta,
		PostTypeExternalResource,
		PostTypeDiscussion,
	}
}

// ParsePostType maps a label to a PostType. Matching is case-insensitive
// and accepts both "standard_prompt" and "STANDARD_PROMPT" spellings.
// Returns false if the label names no known variant.
func ParsePostType(label string) (PostType, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	for _, t := range PostTypes() {
		if string(t) == label {
			return t, true
		}
	}
	return "", false
}

// Author identifies the writer of a post.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Post is one forum post as found in a page dump. Posts are created once per
// page-parse pass and never mutated afterwards.
type Post struct {
	ID              string    `json:"id"`
	Author          Author    `json:"author"`
	CreatedAt       time.Time `json:"createdAt"`
	EditedAt        time.Time `json:"editedAt,omitempty"`
	HTML            string    `json:"html"`
	Attachments     []string  `json:"attachments,omitempty"`
	LooksLikePrompt bool      `json:"looksLikePrompt"`
}

// TextAttachment returns the first attachment link with a .txt suffix.
// Query strings and fragments are ignored when checking the suffix.
func (p *Post) TextAttachment() (string, bool) {
	for _, link := range p.Attachments {
		path := link
		if i := strings.IndexAny(path, "?#"); i >= 0 {
			path = path[:i]
		}
		if strings.HasSuffix(strings.ToLower(path), ".txt") {
			return link, true
		}
	}
	return "", false
}

// PostClassifier decides what kind of content a post contains.
type PostClassifier interface {
	// Classify always returns a variant. Failures of any collaborator
	// degrade to PostTypeDiscussion instead of being reported.
	Classify(ctx context.Context, post *Post) PostType
}

// PostTypeClassifier is a probabilistic classifier (e.g. an LLM) consulted
// when no heuristic rule matches a post.
type PostTypeClassifier interface {
	// ClassifyPost returns the most likely variant for the post text.
	ClassifyPost(ctx context.Context, text string) (PostType, error)
}

// KeywordMatcher reports which of a fixed set of keywords occur in a text.
type KeywordMatcher interface {
	// Match returns the distinct keywords found in text, in keyword order.
	Match(text string) []string
}

// PostParser splits a forum page dump into posts.
type PostParser interface {
	// ParsePosts returns the posts found in html in document order.
	ParsePosts(html string) ([]*Post, error)
}
