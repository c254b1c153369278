package page

import (
	"io"
	"sort"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/apiref/internal/docmodel"
)

// AnchorIndex records the element ids present in a rendered page.
type AnchorIndex struct {
	counts map[string]int
}

// IndexAnchors parses an HTML document and collects every id attribute.
func IndexAnchors(r io.Reader) (*AnchorIndex, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	idx := &AnchorIndex{counts: make(map[string]int)}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Namespace == "" && a.Key == "id" && a.Val != "" {
					idx.counts[a.Val]++
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return idx, nil
}

// Has reports whether some element carries id.
func (a *AnchorIndex) Has(id string) bool {
	return a.counts[id] > 0
}

// Len is the number of distinct ids.
func (a *AnchorIndex) Len() int {
	return len(a.counts)
}

// Duplicates returns ids carried by more than one element, sorted.
func (a *AnchorIndex) Duplicates() []string {
	var out []string
	for id, n := range a.counts {
		if n > 1 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// StaleEntries returns the navigation entries whose target id is absent
// from idx. Clicking such an entry does nothing.
func StaleEntries(entries []docmodel.HeadingEntry, idx *AnchorIndex) []docmodel.HeadingEntry {
	var stale []docmodel.HeadingEntry
	for _, e := range entries {
		if !idx.Has(e.ID) {
			stale = append(stale, e)
		}
	}
	return stale
}
