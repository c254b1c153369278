package page

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apiref/internal/config"
	"git.home.luguber.info/inful/apiref/internal/docmodel"
	"git.home.luguber.info/inful/apiref/internal/links"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(links.NewRewriter("/docs/api", links.Legacy), 0)
	require.NoError(t, err)
	return r
}

func parse(t *testing.T, path, content string) *docmodel.Document {
	t.Helper()
	doc, err := docmodel.Parse(path, []byte(content), docmodel.Options{})
	require.NoError(t, err)
	return doc
}

func TestRenderBody_TrackedHeadingsAndLinks(t *testing.T) {
	r := newTestRenderer(t)
	doc := parse(t, "client.md", "# Client\n\n## Options\n\nSee [retry](./retry.mdx).\n\n##### Fine print\n")

	body, hit, err := r.RenderBody(doc)
	require.NoError(t, err)
	assert.False(t, hit)

	html := string(body)
	assert.Contains(t, html, `<div class="tracked-content" id="client"><h1 style="display:none">Client</h1>`+"\n</div>\n")
	assert.Contains(t, html, `<div class="tracked-content" id="options"><h2>Options</h2>`+"\n</div>\n")
	assert.Contains(t, html, `<a href="/docs/api/retry">retry</a>`)
	assert.Contains(t, html, "<h5>Fine print</h5>")
	assert.NotContains(t, html, `id="fine-print"`)

	_, hit, err = r.RenderBody(doc)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestRender_FullPage(t *testing.T) {
	r := newTestRenderer(t)
	docs := []*docmodel.Document{
		parse(t, "a.md", "---\ntitle: Alpha\n---\n# Alpha\n\n## Setup\n"),
		parse(t, "b.md", "no headings here\n"),
		parse(t, "c.md", "---\ntitle: Gamma\n---\n## Errors\n"),
	}

	var out bytes.Buffer
	report, err := r.Render(&out, docs, Options{Title: "API Reference", PageName: "Documentation", ContentID: "content"})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Sections)
	require.Len(t, report.Nav, 3)
	assert.Empty(t, report.Stale)

	page := out.String()
	assert.Contains(t, page, `<span class="nav-logo">Documentation</span>`)
	assert.Contains(t, page, `<main class="container" id="content">`)
	assert.Contains(t, page, `data-target="setup"`)
	assert.Contains(t, page, `style="padding-left: 2rem"`)
	assert.Contains(t, page, "<h1>Alpha</h1>")
	// Missing titles render as empty headings.
	assert.Contains(t, page, "<h1></h1>")
	assert.Equal(t, 3, strings.Count(page, "<section>"))
	assert.Equal(t, 3, strings.Count(page, "<hr>"))
	assert.Contains(t, page, `scrollIntoView({ behavior: "smooth", block: "start" })`)
	assert.Contains(t, page, "background-color: #f6f6f6")

	alpha := strings.Index(page, "<h1>Alpha</h1>")
	gamma := strings.Index(page, "<h1>Gamma</h1>")
	assert.Less(t, alpha, gamma)
}

func TestRender_ThemeIsApplied(t *testing.T) {
	r := newTestRenderer(t)
	theme := DefaultTheme()
	theme.NavHover = "#123456"
	theme.TransitionSpeed = "0.5s"

	var out bytes.Buffer
	_, err := r.Render(&out, nil, Options{Theme: theme})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "color: #123456")
	assert.Contains(t, out.String(), "transition: opacity 0.5s ease-out")
}

func TestRender_StaleNavigationIsReportedNotFatal(t *testing.T) {
	r := newTestRenderer(t)
	doc := parse(t, "a.md", "## Kept\n\n##### Deep\n")
	doc.TableOfContents = docmodel.Outline(doc.Body, 5)

	var out bytes.Buffer
	report, err := r.Render(&out, []*docmodel.Document{doc}, Options{})
	require.NoError(t, err)
	require.Len(t, report.Stale, 1)
	assert.Equal(t, "deep", report.Stale[0].ID)
}

func TestRender_CacheHitsOnSecondRender(t *testing.T) {
	r := newTestRenderer(t)
	docs := []*docmodel.Document{parse(t, "a.md", "## A\n"), parse(t, "b.md", "## B\n")}

	var out bytes.Buffer
	first, err := r.Render(&out, docs, Options{})
	require.NoError(t, err)
	assert.Zero(t, first.CacheHits)

	out.Reset()
	second, err := r.Render(&out, docs, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, second.CacheHits)
}

func TestRender_LiveReloadScript(t *testing.T) {
	r := newTestRenderer(t)
	var out bytes.Buffer
	_, err := r.Render(&out, nil, Options{LiveReload: "console.log('reload')"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "<script>console.log('reload')</script>")
}

func TestRender_EscapesTitles(t *testing.T) {
	r := newTestRenderer(t)
	doc := parse(t, "a.md", "---\ntitle: \"<b>bold</b>\"\n---\nbody\n")
	var out bytes.Buffer
	_, err := r.Render(&out, []*docmodel.Document{doc}, Options{})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "<h1>&lt;b&gt;bold&lt;/b&gt;</h1>")
}

func TestNavScript_ClickGuardsMissingTarget(t *testing.T) {
	handler := regexp.MustCompile(`(?s)addEventListener\("click", function \(e\) \{(.*?)\n\s*\}\);`).FindStringSubmatch(navScript)
	require.Len(t, handler, 2, "click handler not found")
	body := handler[1]

	prevent := strings.Index(body, "e.preventDefault()")
	guard := strings.Index(body, "if (!target)")
	scroll := strings.Index(body, `scrollIntoView({ behavior: "smooth", block: "start" })`)
	require.NotEqual(t, -1, prevent)
	require.NotEqual(t, -1, guard, "missing-target guard not found")
	require.NotEqual(t, -1, scroll)
	assert.Less(t, prevent, guard)
	assert.Less(t, guard, scroll)
	assert.Contains(t, body[guard:scroll], "return;")

	var buf bytes.Buffer
	_, err := newTestRenderer(t).Render(&buf, nil, Options{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "if (!target)")
}

func TestTrackedDepthCoversConfigurableOutline(t *testing.T) {
	assert.Equal(t, config.MaxTOCDepth, TrackedDepth)
}
