package goquery

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderText returns the visible text of sel the way a browser lays it out:
// whitespace runs collapse to one space, <br> becomes a newline, block
// elements start on their own line and <pre> keeps its line breaks. Each
// line is trimmed and the result has no leading or trailing blank lines.
func RenderText(sel *goquery.Selection) string {
	r := &textRenderer{}
	for _, n := range sel.Nodes {
		r.walk(n)
	}
	return r.String()
}

// renderTextBefore renders the text of root up to, but excluding, stop.
func renderTextBefore(root *goquery.Selection, stop *html.Node) string {
	r := &textRenderer{stop: stop}
	for _, n := range root.Nodes {
		r.walk(n)
	}
	return r.String()
}

// normalizeSpace collapses all whitespace, including newlines, to single
// spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type textRenderer struct {
	sb      strings.Builder
	stop    *html.Node
	stopped bool
	pre     int
	space   bool
}

func (r *textRenderer) walk(n *html.Node) {
	if r.stopped {
		return
	}
	if r.stop != nil && n == r.stop {
		r.stopped = true
		return
	}

	switch n.Type {
	case html.TextNode:
		r.text(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Br:
			r.hardBreak()
			return
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		case atom.Pre:
			r.pre++
			defer func() { r.pre-- }()
		}
	}

	block := n.Type == html.ElementNode && isBlock(n.DataAtom)
	if block {
		r.softBreak()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c)
	}
	if block {
		r.softBreak()
	}
}

func (r *textRenderer) text(s string) {
	if r.pre > 0 {
		r.sb.WriteString(s)
		r.space = false
		return
	}
	for _, c := range s {
		if unicode.IsSpace(c) {
			r.space = true
			continue
		}
		if r.space {
			r.sb.WriteByte(' ')
			r.space = false
		}
		r.sb.WriteRune(c)
	}
}

func (r *textRenderer) hardBreak() {
	r.space = false
	r.sb.WriteByte('\n')
}

// softBreak starts a new line unless the output already ends with one.
func (r *textRenderer) softBreak() {
	r.space = false
	s := r.sb.String()
	if s == "" || strings.HasSuffix(s, "\n") {
		return
	}
	r.sb.WriteByte('\n')
}

func (r *textRenderer) String() string {
	lines := strings.Split(r.sb.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Dd,
		atom.Details, atom.Div, atom.Dl, atom.Dt, atom.Fieldset, atom.Figcaption,
		atom.Figure, atom.Footer, atom.Form, atom.H1, atom.H2, atom.H3, atom.H4,
		atom.H5, atom.H6, atom.Header, atom.Hr, atom.Li, atom.Main, atom.Nav,
		atom.Ol, atom.P, atom.Pre, atom.Section, atom.Summary, atom.Table,
		atom.Tr, atom.Ul:
		return true
	}
	return false
}
