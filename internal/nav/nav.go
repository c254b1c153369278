// Package nav aggregates document outlines into the page's side navigation.
package nav

import (
	"github.com/sahilm/fuzzy"

	"git.home.luguber.info/inful/apiref/internal/docmodel"
)

// Aggregate concatenates the outline items of docs in order. Documents with
// no headings contribute nothing; entries are never sorted or deduplicated.
func Aggregate(docs []*docmodel.Document) []docmodel.HeadingEntry {
	total := 0
	for _, d := range docs {
		if d != nil {
			total += len(d.TableOfContents.Items)
		}
	}
	entries := make([]docmodel.HeadingEntry, 0, total)
	for _, d := range docs {
		if d == nil || d.TableOfContents.Empty() {
			continue
		}
		entries = append(entries, d.TableOfContents.Items...)
	}
	return entries
}

// Match is a search hit over navigation entries.
type Match struct {
	Entry docmodel.HeadingEntry
	// Positions are the matched rune offsets in Entry.Title.
	Positions []int
	Score     int
}

type titles []docmodel.HeadingEntry

func (t titles) String(i int) string { return t[i].Title }
func (t titles) Len() int            { return len(t) }

// Search fuzzy-matches query against entry titles, best match first.
// An empty query returns every entry in navigation order. limit <= 0 means
// no limit.
func Search(entries []docmodel.HeadingEntry, query string, limit int) []Match {
	var out []Match
	if query == "" {
		out = make([]Match, 0, len(entries))
		for _, e := range entries {
			out = append(out, Match{Entry: e})
		}
	} else {
		found := fuzzy.FindFrom(query, titles(entries))
		out = make([]Match, 0, len(found))
		for _, m := range found {
			out = append(out, Match{Entry: entries[m.Index], Positions: m.MatchedIndexes, Score: m.Score})
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
