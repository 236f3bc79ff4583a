package promptvault

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
)

// Field names looked up in ParserConfig.Selectors by the parser and the
// extraction strategies. A config that omits any of them degrades to a
// missing field for that name.
const (
	FieldPostID     = "postId"
	FieldAuthorID   = "authorId"
	FieldAuthorName = "authorName"
	FieldCreatedAt  = "createdAt"
	FieldEditedAt   = "editedAt"
	FieldAttachment = "attachment"
	FieldTitle      = "title"
	FieldContent    = "content"
	FieldBlock      = "block"
	FieldBlockTitle = "blockTitle"
	FieldBlockBody  = "blockBody"
	FieldLink       = "link"
)

// SelectorConfig describes how to pull one named field out of a document
// fragment: select an element, read either its text or the named attribute,
// then optionally refine the value with a regex.
//
// In JSON and YAML a bare string is shorthand for a config with only the
// selector set.
type SelectorConfig struct {
	Selector  string `json:"selector" yaml:"selector"`
	Attribute string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Regex     string `json:"regex,omitempty" yaml:"regex,omitempty"`
}

// UnmarshalJSON accepts either a selector string or a full object.
func (c *SelectorConfig) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var selector string
		if err := json.Unmarshal(data, &selector); err != nil {
			return err
		}
		*c = SelectorConfig{Selector: selector}
		return nil
	}

	type plain SelectorConfig
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = SelectorConfig(v)
	return nil
}

// UnmarshalYAML accepts either a selector string or a full mapping.
func (c *SelectorConfig) UnmarshalYAML(unmarshal func(any) error) error {
	var selector string
	if err := unmarshal(&selector); err == nil {
		*c = SelectorConfig{Selector: selector}
		return nil
	}

	type plain SelectorConfig
	var v plain
	if err := unmarshal(&v); err != nil {
		return err
	}
	*c = SelectorConfig(v)
	return nil
}

// Validate returns an error if the selector is empty or the regex does not
// compile.
func (c *SelectorConfig) Validate() error {
	if c.Selector == "" {
		return Errorf(EINVALID, "selector required")
	}
	if c.Regex != "" {
		if _, err := regexp.Compile(c.Regex); err != nil {
			return Errorf(EINVALID, "invalid regex %q: %v", c.Regex, err)
		}
	}
	return nil
}

// ParserConfig is the whole extraction schema: a selector locating every
// post on a page plus named field selectors applied inside each post.
type ParserConfig struct {
	PostContainer string                    `json:"postContainer" yaml:"postContainer"`
	Selectors     map[string]SelectorConfig `json:"selectors" yaml:"selectors"`
}

// Validate returns an error if the config contains invalid fields.
func (c *ParserConfig) Validate() error {
	if c.PostContainer == "" {
		return Errorf(EINVALID, "post container selector required")
	}

	names := make([]string, 0, len(c.Selectors))
	for name := range c.Selectors {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sc := c.Selectors[name]
		if err := sc.Validate(); err != nil {
			return Errorf(EINVALID, "field %q: %s", name, ErrorMessage(err))
		}
	}
	return nil
}
