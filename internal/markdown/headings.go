package markdown

import gmast "github.com/yuin/goldmark/ast"

// Heading is one heading of a document body, in source order.
type Heading struct {
	Level int
	Text  string
}

// Headings returns every heading of body with level <= maxDepth.
// A maxDepth below 1 returns all headings.
func Headings(body []byte, maxDepth int) []Heading {
	root, _ := Parse(body)

	var out []Heading
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		if maxDepth < 1 || h.Level <= maxDepth {
			out = append(out, Heading{Level: h.Level, Text: plainText(h, body)})
		}
		return gmast.WalkSkipChildren, nil
	})
	return out
}
