// Package page renders the single API reference page: navigation frame, side
// navigation and one section per document.
package page

import (
	"bytes"
	_ "embed"
	"html/template"
	"io"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"git.home.luguber.info/inful/apiref/internal/docmodel"
	"git.home.luguber.info/inful/apiref/internal/foundation/errors"
	"git.home.luguber.info/inful/apiref/internal/links"
	"git.home.luguber.info/inful/apiref/internal/logfields"
	"git.home.luguber.info/inful/apiref/internal/markdown"
	"git.home.luguber.info/inful/apiref/internal/nav"
)

//go:embed assets/page.html.tmpl
var pageTemplate string

//go:embed assets/nav.js
var navScript string

// DefaultSectionCacheSize bounds the rendered-section cache.
const DefaultSectionCacheSize = 512

var layout = template.Must(template.New("page").Parse(pageTemplate))

// Options are the per-render page settings.
type Options struct {
	Title     string
	PageName  string
	ContentID string
	Theme     Theme
	// LiveReload is an optional script appended before the navigation
	// script. Preview uses it to reload on rebuild.
	LiveReload template.JS
}

// Report describes a finished render.
type Report struct {
	Sections int
	Nav      []docmodel.HeadingEntry
	Stale    []docmodel.HeadingEntry
	Anchors  *AnchorIndex
	// CacheHits counts sections served from the section cache.
	CacheHits int
}

type section struct {
	Title string
	Body  template.HTML
}

type layoutData struct {
	Title      string
	PageName   string
	ContentID  string
	Theme      Theme
	Nav        []docmodel.HeadingEntry
	Sections   []section
	LiveReload template.JS
	Script     template.JS
}

// Renderer renders reference pages. It is safe for concurrent use.
type Renderer struct {
	md       *markdown.Renderer
	sections *lru.Cache[string, template.HTML]
}

// NewRenderer builds a renderer whose links are rewritten by rw. cacheSize
// <= 0 selects DefaultSectionCacheSize.
func NewRenderer(rw *links.Rewriter, cacheSize int) (*Renderer, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultSectionCacheSize
	}
	cache, err := lru.New[string, template.HTML](cacheSize)
	if err != nil {
		return nil, errors.InternalError("failed to create section cache").WithCause(err).Build()
	}
	return &Renderer{
		md:       markdown.NewRenderer(Components(rw)),
		sections: cache,
	}, nil
}

// RenderBody renders one document body with the reference components.
func (r *Renderer) RenderBody(doc *docmodel.Document) (template.HTML, bool, error) {
	key := doc.ID + "\x00" + doc.Fingerprint
	if body, ok := r.sections.Get(key); ok {
		return body, true, nil
	}
	out, err := r.md.RenderString(doc.Body)
	if err != nil {
		return "", false, errors.RenderError("failed to render document").
			WithCause(err).
			WithContext("path", doc.Path).
			Build()
	}
	// #nosec G203 -- goldmark output with raw HTML disabled.
	body := template.HTML(out)
	r.sections.Add(key, body)
	return body, false, nil
}

// Render writes the full page for docs to w. Navigation entries without a
// target in the rendered page are logged and reported, never fatal.
func (r *Renderer) Render(w io.Writer, docs []*docmodel.Document, opts Options) (*Report, error) {
	report := &Report{Nav: nav.Aggregate(docs)}
	data := layoutData{
		Title:      opts.Title,
		PageName:   opts.PageName,
		ContentID:  opts.ContentID,
		Theme:      opts.Theme.withDefaults(),
		Nav:        report.Nav,
		Sections:   make([]section, 0, len(docs)),
		LiveReload: opts.LiveReload,
		// #nosec G203 -- embedded asset.
		Script: template.JS(navScript),
	}

	for _, doc := range docs {
		if doc == nil {
			continue
		}
		body, hit, err := r.RenderBody(doc)
		if err != nil {
			return nil, err
		}
		if hit {
			report.CacheHits++
		}
		data.Sections = append(data.Sections, section{Title: doc.Frontmatter.Title, Body: body})
	}
	report.Sections = len(data.Sections)

	var buf bytes.Buffer
	if err := layout.Execute(&buf, data); err != nil {
		return nil, errors.RenderError("failed to execute page template").WithCause(err).Build()
	}

	idx, err := IndexAnchors(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, errors.RenderError("failed to index rendered page").WithCause(err).Build()
	}
	report.Anchors = idx
	report.Stale = StaleEntries(report.Nav, idx)
	for _, e := range report.Stale {
		slog.Warn("Navigation entry has no target", logfields.Anchor(e.ID), slog.String("title", e.Title))
	}
	for _, id := range idx.Duplicates() {
		slog.Debug("Duplicate anchor id, last one wins", logfields.Anchor(id))
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return nil, errors.FileSystemError("failed to write page").WithCause(err).Build()
	}
	return report, nil
}
