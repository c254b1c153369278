package page

import (
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/apiref/internal/links"
	"git.home.luguber.info/inful/apiref/internal/markdown"
	"git.home.luguber.info/inful/apiref/internal/slug"
)

// TrackedDepth is the deepest heading level wrapped in a scroll target.
const TrackedDepth = 4

// Components returns the component table for reference sections: headings
// h1..h4 become scroll targets and every link goes through rw.
func Components(rw *links.Rewriter) markdown.Components {
	c := markdown.Components{}
	for level := 1; level <= TrackedDepth; level++ {
		c = c.With(markdown.HeadingElement(level), trackedHeading)
	}
	return c.With(markdown.ElementLink, rewrittenLink(rw))
}

// trackedHeading wraps the heading in a tracked-content container whose id is
// the slug of the heading text. The h1 stays in the markup for anchoring but
// is not displayed.
func trackedHeading(w util.BufWriter, n markdown.Node, entering bool) error {
	if !entering {
		markdown.WriteHeadingEnd(w, n.Level)
		_, _ = w.WriteString("</div>\n")
		return nil
	}

	_, _ = w.WriteString(`<div class="tracked-content" id="`)
	_, _ = w.Write(util.EscapeHTML([]byte(slug.Make(n.Text))))
	_, _ = w.WriteString(`">`)

	style := ""
	if n.Level == 1 {
		style = "display:none"
	}
	markdown.WriteHeadingStart(w, n.Level, style)
	return nil
}

func rewrittenLink(rw *links.Rewriter) markdown.ComponentFunc {
	return func(w util.BufWriter, n markdown.Node, entering bool) error {
		if !entering {
			_, _ = w.WriteString("</a>")
			return nil
		}
		markdown.WriteLinkStart(w, rw.Rewrite(n.Href), n.Title)
		return nil
	}
}
