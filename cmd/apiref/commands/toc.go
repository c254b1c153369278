package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"git.home.luguber.info/inful/apiref/internal/build"
	"git.home.luguber.info/inful/apiref/internal/config"
	"git.home.luguber.info/inful/apiref/internal/docmodel"
	"git.home.luguber.info/inful/apiref/internal/nav"
)

// TOCCmd implements the 'toc' command.
type TOCCmd struct {
	JSON     bool   `name:"json" help:"Print entries as JSON"`
	Filter   string `short:"f" help:"Fuzzy filter on entry titles; results are ordered by match quality"`
	Limit    int    `short:"n" help:"Maximum number of entries (0 for all)"`
	SkipSync bool   `name:"skip-sync" help:"Use the existing repository clone without fetching"`

	out io.Writer
}

func (c *TOCCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	return c.run(context.Background(), cfg)
}

func (c *TOCCmd) run(ctx context.Context, cfg *config.Config) error {
	deps, err := newRuntimeDeps(cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	col, err := deps.service.Collect(ctx, cfg, build.BuildOptions{SkipSync: c.SkipSync})
	if err != nil {
		return err
	}
	matches := nav.Search(nav.Aggregate(col.Selected), c.Filter, c.Limit)

	w := c.out
	if w == nil {
		w = os.Stdout
	}
	if c.JSON {
		entries := make([]docmodel.HeadingEntry, 0, len(matches))
		for _, m := range matches {
			entries = append(entries, m.Entry)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	writeTOC(w, matches)
	return nil
}

// writeTOC prints one line per entry, indented by depth. Matched characters
// are highlighted when a filter is active.
func writeTOC(w io.Writer, matches []nav.Match) {
	r := lipgloss.NewRenderer(w)
	base := r.NewStyle()
	top := r.NewStyle().Bold(true)
	anchor := r.NewStyle().Faint(true)
	hit := r.NewStyle().Foreground(lipgloss.Color("205")).Underline(true)

	for _, m := range matches {
		style := base
		if m.Entry.Depth <= 1 {
			style = top
		}
		title := style.Render(m.Entry.Title)
		if len(m.Positions) > 0 {
			title = lipgloss.StyleRunes(m.Entry.Title, m.Positions, hit, style)
		}
		indent := strings.Repeat("  ", max(m.Entry.Depth-1, 0))
		_, _ = fmt.Fprintf(w, "%s%s %s\n", indent, title, anchor.Render("#"+m.Entry.ID))
	}
	if len(matches) == 0 {
		_, _ = fmt.Fprintln(w, anchor.Render("(no entries)"))
	}
}
