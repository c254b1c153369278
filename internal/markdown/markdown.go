// Package markdown parses and renders document bodies with goldmark.
//
// Rendering goes through a component table keyed by element kind (h1..h6, a),
// so callers decide how headings and links are emitted without touching the
// rest of the HTML renderer.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// newMarkdown is the shared goldmark configuration for parsing and rendering.
func newMarkdown(opts ...goldmark.Option) goldmark.Markdown {
	base := []goldmark.Option{goldmark.WithExtensions(extension.GFM)}
	return goldmark.New(append(base, opts...)...)
}

// Parse parses a body (frontmatter already removed) into a goldmark AST.
func Parse(body []byte) (gmast.Node, parser.Context) {
	ctx := parser.NewContext()
	root := newMarkdown().Parser().Parse(text.NewReader(body), parser.WithContext(ctx))
	return root, ctx
}

// plainText concatenates the text content of n, the way a reader sees it.
func plainText(n gmast.Node, source []byte) string {
	var b bytes.Buffer
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(resolveText(t.Segment.Value(source)))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		case *gmast.AutoLink:
			b.Write(t.Label(source))
		case *gmast.RawHTML:
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// resolveText applies backslash escapes and character references, matching
// what the HTML renderer would display.
func resolveText(raw []byte) []byte {
	out := util.UnescapePunctuations(raw)
	out = util.ResolveNumericReferences(out)
	return util.ResolveEntityNames(out)
}
