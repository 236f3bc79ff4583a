package goquery

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/promptvault"
)

// field is a compiled SelectorConfig.
type field struct {
	config promptvault.SelectorConfig
	re     *regexp.Regexp
}

// Extractor pulls named fields out of document fragments according to a
// declarative selector map. Fields absent from the map behave like fields
// whose selector matches nothing.
//
// An Extractor is immutable and safe for concurrent use.
type Extractor struct {
	fields map[string]field
}

// NewExtractor compiles the selector map.
// Returns EINVALID if a selector is empty or a regex does not compile.
func NewExtractor(selectors map[string]promptvault.SelectorConfig) (*Extractor, error) {
	e := &Extractor{fields: make(map[string]field, len(selectors))}
	for name, sc := range selectors {
		if err := sc.Validate(); err != nil {
			return nil, promptvault.Errorf(promptvault.EINVALID, "field %q: %s", name, promptvault.ErrorMessage(err))
		}
		f := field{config: sc}
		if sc.Regex != "" {
			f.re = regexp.MustCompile(sc.Regex)
		}
		e.fields[name] = f
	}
	return e, nil
}

// Has reports whether name is configured.
func (e *Extractor) Has(name string) bool {
	_, ok := e.fields[name]
	return ok
}

// Select returns the first element matching the selector of name. The
// fragment root itself is considered before its descendants so that
// attributes of the root are reachable. The result is empty when name is
// not configured or nothing matches.
func (e *Extractor) Select(sel *goquery.Selection, name string) *goquery.Selection {
	return e.selectAll(sel, name).First()
}

// SelectAll is like Select but returns every match.
func (e *Extractor) SelectAll(sel *goquery.Selection, name string) *goquery.Selection {
	return e.selectAll(sel, name)
}

func (e *Extractor) selectAll(sel *goquery.Selection, name string) *goquery.Selection {
	f, ok := e.fields[name]
	if !ok || sel == nil {
		return &goquery.Selection{}
	}
	return sel.Filter(f.config.Selector).AddSelection(sel.Find(f.config.Selector))
}

// Extract returns the value of field name within sel.
//
// The raw value is the attribute named by the config, or the element's
// rendered text when no attribute is set. A configured regex refines it to
// the first capture group, or to the whole match when the pattern has no
// groups. Returns false when the field is not configured, nothing matches,
// the attribute is missing or the regex does not match.
func (e *Extractor) Extract(sel *goquery.Selection, name string) (string, bool) {
	f, ok := e.fields[name]
	if !ok {
		return "", false
	}
	match := e.Select(sel, name)
	if match.Length() == 0 {
		return "", false
	}
	return f.value(match)
}

// ExtractAll returns the values of every element matching field name.
// Elements whose value cannot be read are skipped.
func (e *Extractor) ExtractAll(sel *goquery.Selection, name string) []string {
	f, ok := e.fields[name]
	if !ok {
		return nil
	}

	var values []string
	e.SelectAll(sel, name).Each(func(_ int, s *goquery.Selection) {
		if v, ok := f.value(s); ok {
			values = append(values, v)
		}
	})
	return values
}

func (f field) value(s *goquery.Selection) (string, bool) {
	var raw string
	if f.config.Attribute != "" {
		v, exists := s.Attr(f.config.Attribute)
		if !exists {
			return "", false
		}
		raw = v
	} else {
		raw = RenderText(s)
	}

	if f.re == nil {
		return raw, true
	}

	m := f.re.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	if len(m) > 1 {
		return m[1], true
	}
	return m[0], true
}
