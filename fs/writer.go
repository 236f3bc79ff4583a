// Package fs exports prompts as markdown files.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/fwojciec/promptvault"
	"gopkg.in/yaml.v3"
)

const maxSlugLength = 60

// frontMatter is the YAML header of an exported prompt.
type frontMatter struct {
	ID         string    `yaml:"id"`
	SourcePost string    `yaml:"source_post"`
	Type       string    `yaml:"type"`
	Title      string    `yaml:"title"`
	Category   string    `yaml:"category,omitempty"`
	Tags       []string  `yaml:"tags,omitempty"`
	Author     string    `yaml:"author,omitempty"`
	Created    time.Time `yaml:"created"`
	Updated    time.Time `yaml:"updated"`
	Hash       string    `yaml:"hash,omitempty"`
}

// PromptPath returns the file path of prompt relative to the export root:
// one directory per category, one file per prompt named after its source
// post and title.
// Example: category "Перевод", post 42, title "Deutsch" → перевод/42-deutsch.md
func PromptPath(prompt *promptvault.Prompt) string {
	dir := slug(prompt.Category)
	if dir == "" {
		dir = "uncategorized"
	}

	name := slug(prompt.SourcePostID)
	if name == "" {
		name = slug(prompt.ID)
	}
	if title := slug(prompt.Title); title != "" {
		name += "-" + title
	}
	return filepath.Join(dir, name+".md")
}

// FormatPrompt formats a prompt as markdown with YAML front matter.
func FormatPrompt(prompt *promptvault.Prompt) (string, error) {
	header, err := yaml.Marshal(frontMatter{
		ID:         prompt.ID,
		SourcePost: prompt.SourcePostID,
		Type:       string(prompt.PostType),
		Title:      prompt.Title,
		Category:   prompt.Category,
		Tags:       prompt.Tags,
		Author:     prompt.Author.Name,
		Created:    prompt.CreatedAt.UTC(),
		Updated:    prompt.UpdatedAt.UTC(),
		Hash:       prompt.ContentHash,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n", prompt.Title)
	if prompt.Description != "" && prompt.Description != prompt.Content() {
		fmt.Fprintf(&b, "\n%s\n", prompt.Description)
	}
	for _, c := range prompt.Contents {
		switch c.Type {
		case promptvault.ContentTypeLink:
			fmt.Fprintf(&b, "\n<%s>\n", c.Text)
		case promptvault.ContentTypeFile:
			fmt.Fprintf(&b, "\n## File\n\n```text\n%s\n```\n", c.Text)
		default:
			fmt.Fprintf(&b, "\n```text\n%s\n```\n", c.Text)
		}
	}
	return b.String(), nil
}

// Ensure Writer implements promptvault.PromptWriter at compile time.
var _ promptvault.PromptWriter = (*Writer)(nil)

// Writer exports prompts into a directory with atomic replace semantics.
// Files are staged in dir.tmp and moved to dir on Commit.
type Writer struct {
	dir string
}

// NewWriter creates a new Writer exporting to dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: filepath.Clean(dir)}
}

func (w *Writer) tempDir() string {
	return w.dir + ".tmp"
}

// WritePrompt stages prompt as a markdown file.
func (w *Writer) WritePrompt(ctx context.Context, prompt *promptvault.Prompt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := prompt.Validate(); err != nil {
		return err
	}

	content, err := FormatPrompt(prompt)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(w.tempDir(), PromptPath(prompt))

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	return os.WriteFile(fullPath, []byte(content), 0644)
}

// Commit replaces the export directory with the staged files.
func (w *Writer) Commit() error {
	if err := os.MkdirAll(w.tempDir(), 0755); err != nil {
		return err
	}

	// Remove existing final directory if present
	if err := os.RemoveAll(w.dir); err != nil {
		return err
	}

	return os.Rename(w.tempDir(), w.dir)
}

// Abort discards the staged files.
func (w *Writer) Abort() error {
	return os.RemoveAll(w.tempDir())
}

// slug lowercases s and joins its letter and digit runs with dashes.
func slug(s string) string {
	var b strings.Builder
	dash := false
	n := 0
	for _, r := range strings.ToLower(s) {
		if n >= maxSlugLength {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			n++
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
			n++
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
