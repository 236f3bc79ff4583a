package goquery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/promptvault"
	"github.com/fwojciec/promptvault/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestDefaultParserConfig(t *testing.T) {
	t.Parallel()

	config := goquery.DefaultParserConfig()

	require.NoError(t, config.Validate())
	assert.Equal(t, "div.post", config.PostContainer)
	assert.Contains(t, config.Selectors, promptvault.FieldPostID)
	assert.Contains(t, config.Selectors, promptvault.FieldBlockBody)
}

func TestLoadParserConfig(t *testing.T) {
	t.Parallel()

	t.Run("loads JSON with shorthand selectors", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "forum.json", `{
	"postContainer": "article.message",
	"selectors": {
		"content": ".message-body",
		"postId": {"selector": "article.message", "attribute": "data-id", "regex": "post-(\\d+)"}
	}
}`)

		config, err := goquery.LoadParserConfig(path)

		require.NoError(t, err)
		assert.Equal(t, "article.message", config.PostContainer)
		assert.Equal(t, promptvault.SelectorConfig{Selector: ".message-body"}, config.Selectors["content"])
		assert.Equal(t, promptvault.SelectorConfig{
			Selector:  "article.message",
			Attribute: "data-id",
			Regex:     `post-(\d+)`,
		}, config.Selectors["postId"])
	})

	t.Run("loads YAML with shorthand selectors", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "forum.yaml", `postContainer: article.message
selectors:
  content: .message-body
  authorId:
    selector: .username
    attribute: href
    regex: 'members/(\d+)'
`)

		config, err := goquery.LoadParserConfig(path)

		require.NoError(t, err)
		assert.Equal(t, promptvault.SelectorConfig{Selector: ".message-body"}, config.Selectors["content"])
		assert.Equal(t, promptvault.SelectorConfig{
			Selector:  ".username",
			Attribute: "href",
			Regex:     `members/(\d+)`,
		}, config.Selectors["authorId"])
	})

	t.Run("rejects unsupported extension", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "forum.toml", `postContainer = "div"`)

		_, err := goquery.LoadParserConfig(path)

		require.Error(t, err)
		assert.Equal(t, promptvault.EINVALID, promptvault.ErrorCode(err))
	})

	t.Run("rejects config with invalid regex", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "forum.json", `{"postContainer": "div.post", "selectors": {"postId": {"selector": "div", "regex": "("}}}`)

		_, err := goquery.LoadParserConfig(path)

		require.Error(t, err)
		assert.Equal(t, promptvault.EINVALID, promptvault.ErrorCode(err))
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.LoadParserConfig(filepath.Join(t.TempDir(), "missing.json"))

		require.Error(t, err)
	})
}
