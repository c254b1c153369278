package markdown

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"strconv"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Element names a substitutable markdown element.
type Element string

const (
	ElementH1   Element = "h1"
	ElementH2   Element = "h2"
	ElementH3   Element = "h3"
	ElementH4   Element = "h4"
	ElementH5   Element = "h5"
	ElementH6   Element = "h6"
	ElementLink Element = "a"
)

// HeadingElement returns the element for a heading level (1..6).
func HeadingElement(level int) Element {
	return Element("h" + strconv.Itoa(level))
}

// Node is what a component sees of the element being rendered.
type Node struct {
	Element Element
	Level   int    // headings only
	Text    string // plain text content
	Href    string // links only, as written in the source
	Title   string // links only
}

// ComponentFunc writes the opening (entering) or closing markup of an element.
// Inline children are rendered between the two calls by goldmark itself.
type ComponentFunc func(w util.BufWriter, node Node, entering bool) error

// Components is the dispatch table from element kind to component.
// Elements without an entry use the default markup.
type Components map[Element]ComponentFunc

// With returns a copy of c with el bound to fn.
func (c Components) With(el Element, fn ComponentFunc) Components {
	out := make(Components, len(c)+1)
	maps.Copy(out, c)
	out[el] = fn
	return out
}

// Renderer converts markdown bodies to HTML through a component table.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds a renderer using components for the elements they name.
func NewRenderer(components Components) *Renderer {
	cr := &componentRenderer{components: maps.Clone(components)}
	return &Renderer{
		md: newMarkdown(goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(cr, 100)),
		)),
	}
}

// Render writes the HTML for body to w.
func (r *Renderer) Render(w io.Writer, body []byte) error {
	return r.md.Convert(body, w)
}

// RenderString is Render into a string.
func (r *Renderer) RenderString(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, body); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteHeadingStart writes "<hN>" with an optional inline style.
func WriteHeadingStart(w util.BufWriter, level int, style string) {
	_, _ = fmt.Fprintf(w, "<h%d", level)
	if style != "" {
		_, _ = w.WriteString(` style="`)
		_, _ = w.Write(util.EscapeHTML([]byte(style)))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
}

// WriteHeadingEnd writes "</hN>" and a newline.
func WriteHeadingEnd(w util.BufWriter, level int) {
	_, _ = fmt.Fprintf(w, "</h%d>\n", level)
}

// WriteLinkStart writes an anchor opening tag. Dangerous URLs (javascript:
// and friends) produce an anchor without href.
func WriteLinkStart(w util.BufWriter, href, title string) {
	_, _ = w.WriteString("<a")
	if !gmhtml.IsDangerousURL([]byte(href)) {
		_, _ = w.WriteString(` href="`)
		_, _ = w.Write(util.EscapeHTML(util.URLEscape([]byte(href), true)))
		_ = w.WriteByte('"')
	}
	if title != "" {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML([]byte(title)))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
}

func defaultComponent(w util.BufWriter, node Node, entering bool) error {
	switch node.Element {
	case ElementLink:
		if entering {
			WriteLinkStart(w, node.Href, node.Title)
		} else {
			_, _ = w.WriteString("</a>")
		}
	default:
		if entering {
			WriteHeadingStart(w, node.Level, "")
		} else {
			WriteHeadingEnd(w, node.Level)
		}
	}
	return nil
}

type componentRenderer struct {
	components Components
}

func (r *componentRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(gmast.KindHeading, r.renderHeading)
	reg.Register(gmast.KindLink, r.renderLink)
	reg.Register(gmast.KindAutoLink, r.renderAutoLink)
}

func (r *componentRenderer) component(el Element) ComponentFunc {
	if fn, ok := r.components[el]; ok && fn != nil {
		return fn
	}
	return defaultComponent
}

func (r *componentRenderer) renderHeading(w util.BufWriter, source []byte, n gmast.Node, entering bool) (gmast.WalkStatus, error) {
	h := n.(*gmast.Heading)
	node := Node{Element: HeadingElement(h.Level), Level: h.Level, Text: plainText(h, source)}
	if err := r.component(node.Element)(w, node, entering); err != nil {
		return gmast.WalkStop, err
	}
	return gmast.WalkContinue, nil
}

func (r *componentRenderer) renderLink(w util.BufWriter, source []byte, n gmast.Node, entering bool) (gmast.WalkStatus, error) {
	l := n.(*gmast.Link)
	node := Node{
		Element: ElementLink,
		Text:    plainText(l, source),
		Href:    string(l.Destination),
		Title:   string(l.Title),
	}
	if err := r.component(ElementLink)(w, node, entering); err != nil {
		return gmast.WalkStop, err
	}
	return gmast.WalkContinue, nil
}

func (r *componentRenderer) renderAutoLink(w util.BufWriter, source []byte, n gmast.Node, entering bool) (gmast.WalkStatus, error) {
	if !entering {
		return gmast.WalkContinue, nil
	}
	l := n.(*gmast.AutoLink)
	label := l.Label(source)
	href := string(l.URL(source))
	if l.AutoLinkType == gmast.AutoLinkEmail && !bytes.HasPrefix(bytes.ToLower([]byte(href)), []byte("mailto:")) {
		href = "mailto:" + href
	}
	node := Node{Element: ElementLink, Text: string(label), Href: href}

	fn := r.component(ElementLink)
	if err := fn(w, node, true); err != nil {
		return gmast.WalkStop, err
	}
	_, _ = w.Write(util.EscapeHTML(label))
	if err := fn(w, node, false); err != nil {
		return gmast.WalkStop, err
	}
	return gmast.WalkContinue, nil
}
