package goquery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/promptvault"
	"gopkg.in/yaml.v3"
)

// DefaultParserConfig returns the schema for the forum markup the importer
// was built against: posts in div.post with spoiler blocks holding prompts.
func DefaultParserConfig() promptvault.ParserConfig {
	return promptvault.ParserConfig{
		PostContainer: "div.post",
		Selectors: map[string]promptvault.SelectorConfig{
			promptvault.FieldPostID:     {Selector: "[data-post]", Attribute: "data-post"},
			promptvault.FieldAuthorID:   {Selector: ".post-author a", Attribute: "href", Regex: `showuser=(\d+)`},
			promptvault.FieldAuthorName: {Selector: ".post-author a"},
			promptvault.FieldCreatedAt:  {Selector: ".post-date"},
			promptvault.FieldEditedAt:   {Selector: ".post-edit", Regex: `(\d{1,2}\.\d{1,2}\.\d{4}(?:,?\s+\d{1,2}:\d{2})?)`},
			promptvault.FieldAttachment: {Selector: ".post-attach a[href], .post-body a[href$='.txt']", Attribute: "href"},
			promptvault.FieldContent:    {Selector: ".post-body"},
			promptvault.FieldBlock:      {Selector: ".post-block.spoil"},
			promptvault.FieldBlockTitle: {Selector: ".block-title"},
			promptvault.FieldBlockBody:  {Selector: ".block-body"},
			promptvault.FieldLink:       {Selector: "a[href^='http']", Attribute: "href"},
		},
	}
}

// LoadParserConfig reads a ParserConfig from a JSON or YAML file, picked
// by extension (.json, .yaml, .yml). The config is validated before it is
// returned.
func LoadParserConfig(path string) (promptvault.ParserConfig, error) {
	var config promptvault.ParserConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read parser config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return config, promptvault.Errorf(promptvault.EINVALID, "unsupported parser config format %q", ext)
	}
	if err != nil {
		return config, promptvault.Errorf(promptvault.EINVALID, "invalid parser config: %v", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}
