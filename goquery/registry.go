package goquery

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/promptvault"
)

// Ensure Registry implements promptvault.PromptExtractor at compile time.
var _ promptvault.PromptExtractor = (*Registry)(nil)

// Registry maps post types to extraction strategies.
//
// Jailbreak, template and meta-prompt posts share the Standard strategy.
// Types without a strategy are rejected like discussions.
type Registry struct {
	extractor  *Extractor
	fetcher    promptvault.Fetcher
	strategies map[promptvault.PostType]Strategy
}

// NewRegistry creates a Registry with the default strategy table. The
// fetcher downloads .txt attachments and may be nil, in which case
// file-attachment posts keep only their inline content.
func NewRegistry(config promptvault.ParserConfig, fetcher promptvault.Fetcher) (*Registry, error) {
	extractor, err := NewExtractor(config.Selectors)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		extractor: extractor,
		fetcher:   fetcher,
	}
	r.strategies = map[promptvault.PostType]Strategy{
		promptvault.PostTypeStandard:         r.Standard,
		promptvault.PostTypeJailbreak:        r.Standard,
		promptvault.PostTypeTemplate:         r.Standard,
		promptvault.PostTypeMeta:             r.Standard,
		promptvault.PostTypeFileAttachment:   r.FileAttachment,
		promptvault.PostTypeExternalResource: r.ExternalResource,
		promptvault.PostTypeDiscussion:       Discussion,
	}
	return r, nil
}

// Register replaces the strategy for postType.
func (r *Registry) Register(postType promptvault.PostType, strategy Strategy) {
	r.strategies[postType] = strategy
}

// Extract runs the strategy registered for postType. It returns nil for
// rejected posts and for records whose primary content is blank. A panic
// inside a strategy is reported as EINTERNAL so callers can skip the post.
func (r *Registry) Extract(ctx context.Context, postType promptvault.PostType, post *promptvault.Post) (prompt *promptvault.Prompt, err error) {
	if post == nil {
		return nil, nil
	}

	strategy, ok := r.strategies[postType]
	if !ok {
		return nil, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			prompt = nil
			err = promptvault.Errorf(promptvault.EINTERNAL, "extracting post %s: %s", post.ID, fmt.Sprint(rec))
		}
	}()

	prompt, err = strategy(ctx, postType, post)
	if err != nil || prompt == nil {
		return nil, err
	}
	if strings.TrimSpace(prompt.Content()) == "" {
		return nil, nil
	}
	return prompt, nil
}
