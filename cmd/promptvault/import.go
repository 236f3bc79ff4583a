package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/promptvault"
	"github.com/fwojciec/promptvault/importer"
	"golang.org/x/net/html/charset"
)

// Run executes the import command.
func (c *ImportCmd) Run(deps *Dependencies) error {
	if deps.Importer == nil {
		return promptvault.Errorf(promptvault.EINTERNAL, "import pipeline not configured")
	}

	if c.DryRun {
		deps.Importer.Prompts = nil
	}

	var total importer.Result
	for _, path := range c.Files {
		page, err := readPage(path)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", promptvault.ErrorMessage(err))
			return err
		}

		progress := func(event importer.ProgressEvent) {
			switch event.Type {
			case importer.ProgressStarted:
				fmt.Fprintf(deps.Stdout, "%s: %d new posts\n", filepath.Base(path), event.Total)
			case importer.ProgressFailed:
				fmt.Fprintf(deps.Stderr, "  skip post %s: %v\n", event.PostID, event.Error)
			}
		}

		result, err := deps.Importer.Import(deps.Ctx, page, progress)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error importing %s: %s\n", path, promptvault.ErrorMessage(err))
			return err
		}

		for _, d := range result.Duplicates {
			fmt.Fprintf(deps.Stdout, "  duplicate post %s (%.2f): %s\n",
				d.Prompt.SourcePostID, d.Match.SimilarityScore, d.Prompt.Title)
		}
		if c.DryRun {
			for _, p := range result.Prompts {
				fmt.Fprintf(deps.Stdout, "  %s  %s  %s\n", p.SourcePostID, categoryLabel(p.Category), p.Title)
			}
		}

		total.Posts += result.Posts
		total.Skipped += result.Skipped
		total.Extracted += result.Extracted
		total.Rejected += result.Rejected
		total.Failed += result.Failed
		total.Saved += result.Saved
		total.Duplicates = append(total.Duplicates, result.Duplicates...)
	}

	fmt.Fprintf(deps.Stdout, "Posts: %d, skipped: %d, extracted: %d, rejected: %d, failed: %d, duplicates: %d, saved: %d\n",
		total.Posts, total.Skipped, total.Extracted, total.Rejected, total.Failed, len(total.Duplicates), total.Saved)

	return nil
}

// readPage reads a saved page and decodes it to UTF-8 using the charset
// declared in its markup.
func readPage(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	r, err := charset.NewReader(bytes.NewReader(raw), "text/html")
	if err != nil {
		return "", promptvault.Errorf(promptvault.EINVALID, "%s: %v", path, err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func categoryLabel(category string) string {
	if category == "" {
		return "-"
	}
	return category
}
