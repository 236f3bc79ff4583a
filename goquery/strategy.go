package goquery

import (
	"context"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/promptvault"
)

// Limits applied when deriving titles and descriptions from post text.
const (
	maxTitleLength       = 100
	minTitleLineLength   = 10
	maxDescriptionLength = 200
)

// markerPattern is the numbered prompt marker, "Промпт №5" or "PROMPT№5".
const markerPattern = `(?:промпт|prompt)\s*№`

var (
	// markerRe matches the marker with its number and punctuation at the
	// start of a heading.
	markerRe = regexp.MustCompile(`(?i)^\s*` + markerPattern + `\s*\d*\s*[:.\-–—)]*\s*`)

	// markerLineRe matches the marker at the start of any line.
	markerLineRe = regexp.MustCompile(`(?im)^\s*` + markerPattern)
)

// Strategy turns a classified post into a prompt record. A nil prompt with
// a nil error means the post holds nothing importable.
type Strategy func(ctx context.Context, postType promptvault.PostType, post *promptvault.Post) (*promptvault.Prompt, error)

// fragment is a parsed post with its content container located.
type fragment struct {
	root      *goquery.Selection
	container *goquery.Selection
}

// parse reads post.HTML and finds the content container. Without a
// configured content field the whole post is the container. Returns false
// when the content field is configured but matches nothing.
func (r *Registry) parse(post *promptvault.Post) (fragment, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(post.HTML))
	if err != nil {
		return fragment{}, false, promptvault.Errorf(promptvault.EINVALID, "failed to parse post %s: %v", post.ID, err)
	}

	f := fragment{root: doc.Selection, container: doc.Selection}
	if r.extractor.Has(promptvault.FieldContent) {
		f.container = r.extractor.Select(doc.Selection, promptvault.FieldContent)
		if f.container.Length() == 0 {
			return f, false, nil
		}
	}
	return f, true, nil
}

// newPrompt returns a record carrying the post's identity and timestamps.
func newPrompt(postType promptvault.PostType, post *promptvault.Post) *promptvault.Prompt {
	updated := post.CreatedAt
	if !post.EditedAt.IsZero() {
		updated = post.EditedAt
	}
	return &promptvault.Prompt{
		SourcePostID: post.ID,
		PostType:     postType,
		Tags:         []string{string(postType)},
		Author:       post.Author,
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    updated,
	}
}

// Standard reads the first collapsible block of the content container.
// The block heading, stripped of its numbered marker, is the title and the
// block body is the content. Text before the block plus a second block make
// up the description. Posts whose content is blank are rejected.
func (r *Registry) Standard(_ context.Context, postType promptvault.PostType, post *promptvault.Post) (*promptvault.Prompt, error) {
	f, ok, err := r.parse(post)
	if err != nil || !ok {
		return nil, err
	}

	ex := r.extractor
	blocks := ex.SelectAll(f.container, promptvault.FieldBlock)

	var heading, content, description string
	if blocks.Length() == 0 {
		content = RenderText(f.container)
		heading, _ = ex.Extract(f.root, promptvault.FieldTitle)
	} else {
		first := blocks.First()
		heading, _ = ex.Extract(first, promptvault.FieldBlockTitle)
		content = r.blockBody(first)
		description = r.description(f.container, blocks)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}
	if description == "" {
		description = truncate(content, maxDescriptionLength)
	}

	prompt := newPrompt(postType, post)
	prompt.Title = title(heading, description, post.ID)
	prompt.Description = description
	prompt.Contents = []promptvault.ContentVariant{{Type: promptvault.ContentTypePrompt, Text: content}}
	return prompt, nil
}

// blockBody returns the text of a block's body. A block without a
// configured body field is read whole, minus its heading.
func (r *Registry) blockBody(block *goquery.Selection) string {
	if !r.extractor.Has(promptvault.FieldBlockBody) {
		text := RenderText(block)
		if heading, ok := r.extractor.Extract(block, promptvault.FieldBlockTitle); ok {
			text = strings.TrimPrefix(text, heading)
		}
		return text
	}
	body := r.extractor.Select(block, promptvault.FieldBlockBody)
	if body.Length() == 0 {
		return ""
	}
	return RenderText(body)
}

// description joins the text preceding the first block with the text of
// the next block that is not nested inside it.
func (r *Registry) description(container, blocks *goquery.Selection) string {
	first := blocks.First()
	var parts []string
	if before := renderTextBefore(container, first.Nodes[0]); before != "" {
		parts = append(parts, before)
	}
	for _, n := range blocks.Nodes[1:] {
		if first.Contains(n) {
			continue
		}
		if text := RenderText(blocks.FilterNodes(n)); text != "" {
			parts = append(parts, text)
		}
		break
	}
	return strings.Join(parts, "\n\n")
}

// title picks the marker-stripped heading, then the first line of the
// description long enough to read as a title, then a placeholder.
func title(heading, description, postID string) string {
	if t := strings.TrimSpace(markerRe.ReplaceAllString(heading, "")); t != "" {
		return truncate(t, maxTitleLength)
	}
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) >= minTitleLineLength {
			return truncate(line, maxTitleLength)
		}
	}
	return "Prompt " + postID
}

// FileAttachment extends the Standard record with the text of the post's
// .txt attachment and files it under CategoryImportedFile. The download is
// best-effort: when it fails or is empty the Standard record is returned
// as is.
func (r *Registry) FileAttachment(ctx context.Context, postType promptvault.PostType, post *promptvault.Post) (*promptvault.Prompt, error) {
	base, err := r.Standard(ctx, postType, post)
	if err != nil {
		return nil, err
	}

	link, ok := post.TextAttachment()
	if !ok || r.fetcher == nil {
		return base, nil
	}
	text, err := r.fetcher.Fetch(ctx, link)
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		return base, nil
	}

	if base == nil {
		base = newPrompt(postType, post)
		base.Title = fileTitle(link, post.ID)
		base.Description = truncate(text, maxDescriptionLength)
	}
	base.Contents = append(base.Contents, promptvault.ContentVariant{Type: promptvault.ContentTypeFile, Text: text})
	base.Category = promptvault.CategoryImportedFile
	return base, nil
}

// fileTitle names a record after its attachment file.
func fileTitle(link, postID string) string {
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	name := strings.TrimSuffix(path.Base(link), path.Ext(link))
	if name == "" || name == "." || name == "/" {
		return "Prompt " + postID
	}
	return name
}

// ExternalResource records the first outbound link of the content
// container as the prompt's description and content. Posts without such a
// link are rejected. Identity and title come from the Standard record, so
// a post without a heading is titled after its first long enough line.
func (r *Registry) ExternalResource(ctx context.Context, postType promptvault.PostType, post *promptvault.Post) (*promptvault.Prompt, error) {
	f, ok, err := r.parse(post)
	if err != nil || !ok {
		return nil, err
	}

	var link string
	for _, href := range r.extractor.ExtractAll(f.container, promptvault.FieldLink) {
		if isOutbound(href) {
			link = strings.TrimSpace(href)
			break
		}
	}
	if link == "" {
		return nil, nil
	}

	prompt, err := r.Standard(ctx, postType, post)
	if err != nil {
		return nil, err
	}
	if prompt == nil {
		prompt = newPrompt(postType, post)
		prompt.Title = "Prompt " + post.ID
	}
	prompt.Description = link
	prompt.Contents = []promptvault.ContentVariant{{Type: promptvault.ContentTypeLink, Text: link}}
	return prompt, nil
}

// Discussion rejects every post.
func Discussion(context.Context, promptvault.PostType, *promptvault.Post) (*promptvault.Prompt, error) {
	return nil, nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}
