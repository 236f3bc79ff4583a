package goquery

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/promptvault"
	"github.com/fwojciec/promptvault/dateparse"
)

// Ensure PostParser implements promptvault.PostParser at compile time.
var _ promptvault.PostParser = (*PostParser)(nil)

// PostParser splits a forum page dump into posts.
type PostParser struct {
	container string
	extractor *Extractor
	base      *url.URL
	now       func() time.Time
}

// ParserOption configures a PostParser.
type ParserOption func(*PostParser)

// WithBaseURL resolves relative attachment links against base.
func WithBaseURL(base *url.URL) ParserOption {
	return func(p *PostParser) {
		p.base = base
	}
}

// WithNow sets the clock used as the date parsing fallback and reference.
func WithNow(now func() time.Time) ParserOption {
	return func(p *PostParser) {
		p.now = now
	}
}

// NewPostParser creates a PostParser for config.
func NewPostParser(config promptvault.ParserConfig, opts ...ParserOption) (*PostParser, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	extractor, err := NewExtractor(config.Selectors)
	if err != nil {
		return nil, err
	}

	p := &PostParser{
		container: config.PostContainer,
		extractor: extractor,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ParsePosts returns the posts found in html in document order.
// Containers without a post ID are skipped.
func (p *PostParser) ParsePosts(html string) ([]*promptvault.Post, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, promptvault.Errorf(promptvault.EINVALID, "failed to parse HTML: %v", err)
	}

	now := p.now()
	var posts []*promptvault.Post
	doc.Find(p.container).Each(func(_ int, sel *goquery.Selection) {
		if post := p.parsePost(sel, now); post != nil {
			posts = append(posts, post)
		}
	})
	return posts, nil
}

func (p *PostParser) parsePost(sel *goquery.Selection, now time.Time) *promptvault.Post {
	ex := p.extractor

	id, ok := ex.Extract(sel, promptvault.FieldPostID)
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return nil
	}

	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return nil
	}

	post := &promptvault.Post{
		ID:   id,
		HTML: html,
	}
	post.Author.ID, _ = ex.Extract(sel, promptvault.FieldAuthorID)
	post.Author.Name, _ = ex.Extract(sel, promptvault.FieldAuthorName)

	if created, ok := ex.Extract(sel, promptvault.FieldCreatedAt); ok {
		post.CreatedAt = dateparse.Parse(created, now)
	} else {
		post.CreatedAt = now
	}
	if edited, ok := ex.Extract(sel, promptvault.FieldEditedAt); ok {
		if t, ok := dateparse.DefaultChain().TryParse(edited, now); ok {
			post.EditedAt = t
		}
	}

	seen := make(map[string]bool)
	for _, href := range ex.ExtractAll(sel, promptvault.FieldAttachment) {
		if isNonHTTPLink(href) {
			continue
		}
		link := resolveURL(p.base, href)
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true
		post.Attachments = append(post.Attachments, link)
	}

	post.LooksLikePrompt = ex.Select(sel, promptvault.FieldBlock).Length() > 0 ||
		hasStandardPrefix(strings.ToLower(RenderText(sel)))

	return post
}

// hasStandardPrefix reports whether any line of text starts with the
// numbered prompt marker.
func hasStandardPrefix(text string) bool {
	return markerLineRe.MatchString(text)
}
