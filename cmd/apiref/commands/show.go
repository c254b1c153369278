package commands

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/glamour"

	"git.home.luguber.info/inful/apiref/internal/build"
	"git.home.luguber.info/inful/apiref/internal/config"
	"git.home.luguber.info/inful/apiref/internal/docmodel"
	ferrors "git.home.luguber.info/inful/apiref/internal/foundation/errors"
	"git.home.luguber.info/inful/apiref/internal/markdown"
)

// ShowCmd implements the 'show' command.
type ShowCmd struct {
	ID       string `arg:"" help:"Document id (frontmatter uid) or path relative to the source directory"`
	Style    string `default:"auto" help:"Glamour style (auto, dark, light, notty, dracula, ...)"`
	Width    int    `default:"80" help:"Word wrap width"`
	SkipSync bool   `name:"skip-sync" help:"Use the existing repository clone without fetching"`

	out io.Writer
}

func (c *ShowCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	return c.run(context.Background(), cfg)
}

func (c *ShowCmd) run(ctx context.Context, cfg *config.Config) error {
	deps, err := newRuntimeDeps(cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	col, err := deps.service.Collect(ctx, cfg, build.BuildOptions{SkipSync: c.SkipSync})
	if err != nil {
		return err
	}
	doc := findDocument(col, c.ID)
	if doc == nil {
		return ferrors.NewError(ferrors.CategoryNotFound, "document not found").
			WithContext("id", c.ID).
			UserAction().
			Build()
	}

	out, err := renderTerminal(doc, c.Style, c.Width)
	if err != nil {
		return err
	}
	w := c.out
	if w == nil {
		w = os.Stdout
	}
	_, err = io.WriteString(w, out)
	return err
}

// findDocument looks id up as a document id first, then as a relative path.
func findDocument(col *build.Collection, id string) *docmodel.Document {
	if doc, ok := col.Store.Get(id); ok {
		return doc
	}
	for _, doc := range col.Store.All() {
		if doc.Path == id {
			return doc
		}
	}
	return nil
}

// renderTerminal renders the document body as styled terminal text. MDX
// import/export lines are dropped and the frontmatter title is prepended
// when the body has no level-1 heading of its own.
func renderTerminal(doc *docmodel.Document, style string, width int) (string, error) {
	body := markdown.StripESM(doc.Body)
	if title := doc.Frontmatter.Title; title != "" && !hasTopHeading(body) {
		body = append([]byte("# "+title+"\n\n"), body...)
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryRender, "failed to create terminal renderer").
			WithContext("style", style).
			Build()
	}
	out, err := r.Render(string(body))
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryRender, "failed to render document").
			WithContext("path", doc.Path).
			Build()
	}
	return out, nil
}

func hasTopHeading(body []byte) bool {
	return len(markdown.Headings(body, 1)) > 0
}
