package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/promptvault"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ promptvault.PromptService = (*PromptService)(nil)

const promptColumns = `id, source_post_id, post_type, title, description, contents, category, tags,
	author_id, author_name, content_hash, created_at, updated_at, imported_at`

// PromptService implements promptvault.PromptService using SQLite.
type PromptService struct {
	db  *DB
	now func() time.Time
}

// NewPromptService creates a new PromptService.
func NewPromptService(db *DB) *PromptService {
	return &PromptService{db: db, now: time.Now}
}

// CreatePrompt creates a new prompt. The ID is generated when empty, and
// the content hash and import time are always set.
func (s *PromptService) CreatePrompt(ctx context.Context, prompt *promptvault.Prompt) error {
	if err := prompt.Validate(); err != nil {
		return err
	}

	if prompt.ID == "" {
		prompt.ID = uuid.New().String()
	}
	prompt.ContentHash = promptvault.HashContent(prompt.Content())
	prompt.ImportedAt = s.now().UTC()
	if prompt.CreatedAt.IsZero() {
		prompt.CreatedAt = prompt.ImportedAt
	}
	if prompt.UpdatedAt.IsZero() {
		prompt.UpdatedAt = prompt.CreatedAt
	}

	contents, err := marshalJSON(prompt.Contents, "contents")
	if err != nil {
		return err
	}
	tags := prompt.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := marshalJSON(tags, "tags")
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO prompts (`+promptColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, prompt.ID, prompt.SourcePostID, string(prompt.PostType), prompt.Title, prompt.Description,
		contents, prompt.Category, tagsJSON, prompt.Author.ID, prompt.Author.Name, prompt.ContentHash,
		formatTime(prompt.CreatedAt), formatTime(prompt.UpdatedAt), formatTime(prompt.ImportedAt))

	return err
}

// FindPromptByID retrieves a prompt by ID.
func (s *PromptService) FindPromptByID(ctx context.Context, id string) (*promptvault.Prompt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+promptColumns+` FROM prompts WHERE id = ?`, id)

	prompt, err := scanPrompt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, promptvault.Errorf(promptvault.ENOTFOUND, "prompt not found")
	}
	if err != nil {
		return nil, err
	}
	return prompt, nil
}

// FindPrompts retrieves prompts matching the filter, most recently
// imported first.
func (s *PromptService) FindPrompts(ctx context.Context, filter promptvault.PromptFilter) ([]*promptvault.Prompt, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT ` + promptColumns + ` FROM prompts WHERE 1=1`)

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.SourcePostID != nil {
		query.WriteString(" AND source_post_id = ?")
		args = append(args, *filter.SourcePostID)
	}
	if filter.Category != nil {
		query.WriteString(" AND category = ?")
		args = append(args, *filter.Category)
	}
	if filter.ContentHash != nil {
		query.WriteString(" AND content_hash = ?")
		args = append(args, *filter.ContentHash)
	}

	query.WriteString(" ORDER BY imported_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []*promptvault.Prompt
	for rows.Next() {
		prompt, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, prompt)
	}

	return prompts, rows.Err()
}

// DeletePrompt permanently removes a prompt.
func (s *PromptService) DeletePrompt(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM prompts WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return promptvault.Errorf(promptvault.ENOTFOUND, "prompt not found")
	}

	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPrompt(row scanner) (*promptvault.Prompt, error) {
	var (
		prompt                            promptvault.Prompt
		postType, contents, tags          string
		createdAt, updatedAt, importedAt string
	)

	if err := row.Scan(&prompt.ID, &prompt.SourcePostID, &postType, &prompt.Title, &prompt.Description,
		&contents, &prompt.Category, &tags, &prompt.Author.ID, &prompt.Author.Name, &prompt.ContentHash,
		&createdAt, &updatedAt, &importedAt); err != nil {
		return nil, err
	}

	prompt.PostType = promptvault.PostType(postType)
	if err := unmarshalJSON(contents, &prompt.Contents, "contents"); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(tags, &prompt.Tags, "tags"); err != nil {
		return nil, err
	}

	var err error
	if prompt.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if prompt.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	if prompt.ImportedAt, err = parseRFC3339(importedAt, "imported_at"); err != nil {
		return nil, err
	}

	return &prompt, nil
}
