// Package importer turns forum page dumps into stored prompts. It parses
// posts, classifies and extracts them concurrently, assigns categories,
// screens out near-duplicates and saves the rest.
package importer

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fwojciec/promptvault"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the number of posts processed at once.
const DefaultConcurrency = 8

// corpusPageSize is the page size used when loading stored prompts.
const corpusPageSize = 500

// SeenSet remembers post keys across pages of one import run.
type SeenSet interface {
	// TestAndAdd records key and reports whether it was seen before.
	TestAndAdd(key string) bool
}

// Importer runs the import pipeline. Parser, Classifier and Extractor are
// required; the remaining collaborators are optional.
type Importer struct {
	Parser     promptvault.PostParser
	Classifier promptvault.PostClassifier
	Extractor  promptvault.PromptExtractor

	// Categories fills in the category of prompts that have none.
	Categories promptvault.CategoryClassifier

	// Prompts stores accepted prompts and supplies the corpus for
	// duplicate screening. Without it the import is a dry run.
	Prompts promptvault.PromptService

	// NewDuplicateFinder builds a finder over the stored prompt texts.
	// Without it only exact repeats within the run are caught.
	NewDuplicateFinder func(corpus []string) promptvault.DuplicateFinder

	// Seen skips posts whose IDs were already handled in this run.
	Seen SeenSet

	Concurrency int
}

// Result holds the outcome of an import.
type Result struct {
	Posts     int
	Skipped   int
	Extracted int
	Rejected  int
	Failed    int
	Saved     int

	// Prompts lists the accepted prompts in post order.
	Prompts []*promptvault.Prompt

	// Duplicates lists prompts held back as near-duplicates.
	Duplicates []Duplicate
}

// Duplicate is an extracted prompt that matched an existing one.
type Duplicate struct {
	Prompt *promptvault.Prompt
	Match  promptvault.PromptMatch
}

// ProgressEvent reports progress during an import.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	PostID    string
	PostType  promptvault.PostType
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressExtracted
	ProgressRejected
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting import progress.
type ProgressFunc func(event ProgressEvent)

// postResult holds the outcome of processing a single post.
type postResult struct {
	position int
	post     *promptvault.Post
	postType promptvault.PostType
	prompt   *promptvault.Prompt
	err      error
}

// Import processes one page dump. Per-post failures are counted, never
// returned; an error means the page could not be parsed or the stored
// corpus could not be read.
func (im *Importer) Import(ctx context.Context, html string, progress ProgressFunc) (*Result, error) {
	posts, err := im.Parser.ParsePosts(html)
	if err != nil {
		return nil, fmt.Errorf("parse posts: %w", err)
	}

	result := &Result{Posts: len(posts)}
	posts = im.unseen(posts, result)

	finder, err := im.duplicateFinder(ctx)
	if err != nil {
		return nil, err
	}

	notify := func(e ProgressEvent) {
		if progress != nil {
			progress(e)
		}
	}

	total := len(posts)
	notify(ProgressEvent{Type: ProgressStarted, Total: total})

	results := im.process(ctx, posts, func(r postResult, completed int) {
		e := ProgressEvent{
			Completed: completed,
			Total:     total,
			PostID:    r.post.ID,
			PostType:  r.postType,
			Error:     r.err,
		}
		switch {
		case r.err != nil:
			e.Type = ProgressFailed
		case r.prompt == nil:
			e.Type = ProgressRejected
		default:
			e.Type = ProgressExtracted
		}
		notify(e)
	})

	batch := make(map[string]bool)
	for _, r := range results {
		switch {
		case r.err != nil:
			result.Failed++
			continue
		case r.prompt == nil:
			result.Rejected++
			continue
		}
		result.Extracted++

		prompt := r.prompt
		im.categorize(prompt)

		key := normalize(prompt.Content())
		if batch[key] {
			result.Duplicates = append(result.Duplicates, Duplicate{
				Prompt: prompt,
				Match:  promptvault.PromptMatch{CandidateText: prompt.Content(), SimilarityScore: 1, IsPotentialDuplicate: true},
			})
			continue
		}
		batch[key] = true

		stored, err := im.stored(ctx, prompt.Content())
		if err != nil {
			result.Failed++
			notify(ProgressEvent{Type: ProgressFailed, Total: total, Completed: total, PostID: r.post.ID, PostType: r.postType, Error: err})
			continue
		}
		if stored {
			result.Duplicates = append(result.Duplicates, Duplicate{
				Prompt: prompt,
				Match:  promptvault.PromptMatch{CandidateText: prompt.Content(), SimilarityScore: 1, IsPotentialDuplicate: true},
			})
			continue
		}

		if match, ok := duplicateOf(finder, prompt.Content()); ok {
			result.Duplicates = append(result.Duplicates, Duplicate{Prompt: prompt, Match: match})
			continue
		}

		if im.Prompts != nil {
			if err := im.Prompts.CreatePrompt(ctx, prompt); err != nil {
				result.Failed++
				notify(ProgressEvent{Type: ProgressFailed, Total: total, Completed: total, PostID: r.post.ID, PostType: r.postType, Error: err})
				continue
			}
			result.Saved++
		}
		result.Prompts = append(result.Prompts, prompt)
	}

	notify(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})

	return result, nil
}

// unseen drops posts already handled in this run.
func (im *Importer) unseen(posts []*promptvault.Post, result *Result) []*promptvault.Post {
	if im.Seen == nil {
		return posts
	}
	kept := posts[:0:0]
	for _, post := range posts {
		if im.Seen.TestAndAdd(post.ID) {
			result.Skipped++
			continue
		}
		kept = append(kept, post)
	}
	return kept
}

// process classifies and extracts posts concurrently and returns the
// results in post order. A failing post never cancels its siblings.
func (im *Importer) process(ctx context.Context, posts []*promptvault.Post, done func(postResult, int)) []postResult {
	concurrency := im.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	resultCh := make(chan postResult, len(posts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, post := range posts {
			g.Go(func() error {
				resultCh <- im.processPost(gctx, i, post)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	// Collect results in order
	results := make([]postResult, len(posts))
	var completed atomic.Int64
	for r := range resultCh {
		results[r.position] = r
		done(r, int(completed.Add(1)))
	}
	return results
}

func (im *Importer) processPost(ctx context.Context, position int, post *promptvault.Post) (result postResult) {
	result = postResult{position: position, post: post}

	defer func() {
		if rec := recover(); rec != nil {
			result.prompt = nil
			result.err = promptvault.Errorf(promptvault.EINTERNAL, "post %s: %v", post.ID, rec)
		}
	}()

	if err := ctx.Err(); err != nil {
		result.err = err
		return result
	}

	result.postType = im.Classifier.Classify(ctx, post)
	result.prompt, result.err = im.Extractor.Extract(ctx, result.postType, post)
	return result
}

// categorize assigns the predicted category to prompts without one.
// Undefined predictions leave the category empty.
func (im *Importer) categorize(prompt *promptvault.Prompt) {
	if im.Categories == nil || prompt.Category != "" {
		return
	}
	if c := im.Categories.Classify(prompt.Content()); c.Defined() {
		prompt.Category = c.Category
	}
}

// stored reports whether a prompt with exactly this content is already
// saved. The finder misses verbatim repeats in very small corpora.
func (im *Importer) stored(ctx context.Context, content string) (bool, error) {
	if im.Prompts == nil {
		return false, nil
	}
	hash := promptvault.HashContent(content)
	found, err := im.Prompts.FindPrompts(ctx, promptvault.PromptFilter{ContentHash: &hash, Limit: 1})
	if err != nil {
		return false, fmt.Errorf("look up content hash: %w", err)
	}
	return len(found) > 0, nil
}

// duplicateFinder loads the stored prompt texts and builds a finder over
// them. Returns nil when there is nothing to screen against.
func (im *Importer) duplicateFinder(ctx context.Context) (promptvault.DuplicateFinder, error) {
	if im.NewDuplicateFinder == nil || im.Prompts == nil {
		return nil, nil
	}

	corpus, err := LoadCorpus(ctx, im.Prompts)
	if err != nil {
		return nil, fmt.Errorf("load stored prompts: %w", err)
	}
	if len(corpus) == 0 {
		return nil, nil
	}
	return im.NewDuplicateFinder(corpus), nil
}

// LoadCorpus returns the primary content of every stored prompt.
func LoadCorpus(ctx context.Context, prompts promptvault.PromptService) ([]string, error) {
	var corpus []string
	for offset := 0; ; offset += corpusPageSize {
		page, err := prompts.FindPrompts(ctx, promptvault.PromptFilter{Offset: offset, Limit: corpusPageSize})
		if err != nil {
			return nil, err
		}
		for _, p := range page {
			corpus = append(corpus, p.Content())
		}
		if len(page) < corpusPageSize {
			return corpus, nil
		}
	}
}

// duplicateOf returns the best match when it is a potential duplicate.
func duplicateOf(finder promptvault.DuplicateFinder, text string) (promptvault.PromptMatch, bool) {
	if finder == nil {
		return promptvault.PromptMatch{}, false
	}
	matches := finder.FindSimilar(text)
	if len(matches) == 0 || !matches[0].IsPotentialDuplicate {
		return promptvault.PromptMatch{}, false
	}
	return matches[0], true
}

// normalize folds case and whitespace for exact-repeat detection.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
