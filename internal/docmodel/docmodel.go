// Package docmodel holds the immutable document model of the reference page:
// frontmatter, body, stable id, fingerprint and table of contents.
package docmodel

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/apiref/internal/foundation/errors"
	"git.home.luguber.info/inful/apiref/internal/frontmatter"
	"git.home.luguber.info/inful/apiref/internal/markdown"
	"git.home.luguber.info/inful/apiref/internal/slug"
)

// DefaultMaxDepth is the deepest heading level collected into a table of
// contents when Options.MaxDepth is unset.
const DefaultMaxDepth = 4

// Frontmatter is the subset of frontmatter the page reads.
type Frontmatter struct {
	Title string `json:"title"`
	UID   string `json:"uid,omitempty"`
}

// HeadingEntry is one item of a table of contents.
type HeadingEntry struct {
	Depth int    `json:"depth"`
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// TableOfContents is a document's flat heading outline.
type TableOfContents struct {
	Items []HeadingEntry `json:"items"`
}

// Empty reports whether the outline has no entries.
func (t TableOfContents) Empty() bool {
	return len(t.Items) == 0
}

// Document is one loaded reference document. Treat it as read-only.
type Document struct {
	ID              string
	Path            string // slash separated, relative to the source root
	Frontmatter     Frontmatter
	Body            []byte
	TableOfContents TableOfContents
	Fingerprint     string
}

// OutlineCache lets Parse reuse the outline of a document whose content has
// not changed since it was last parsed. Outlines are keyed by the depth they
// were extracted with.
type OutlineCache interface {
	Lookup(path, fingerprint string, maxDepth int) (TableOfContents, bool)
	Store(doc *Document, maxDepth int) error
}

// Options controls parsing.
type Options struct {
	MaxDepth int
	Cache    OutlineCache
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Parse builds a Document from raw file content. relPath is the document's
// path relative to the source root and is used for the fallback id.
func Parse(relPath string, content []byte, opts Options) (*Document, error) {
	relPath = filepath.ToSlash(relPath)

	fmRaw, body, _, err := frontmatter.Split(content)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to split frontmatter").
			WithContext("path", relPath).
			Build()
	}
	fields, err := frontmatter.Decode(fmRaw)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid frontmatter").
			WithContext("path", relPath).
			Build()
	}

	if strings.EqualFold(path.Ext(relPath), ".mdx") {
		body = markdown.StripESM(body)
	}

	doc := &Document{
		ID:          fields.UID,
		Path:        relPath,
		Frontmatter: Frontmatter{Title: fields.Title, UID: fields.UID},
		Body:        append([]byte(nil), body...),
		Fingerprint: Fingerprint(fmRaw, body),
	}
	if doc.ID == "" {
		doc.ID = StableID(relPath)
	}

	depth := opts.maxDepth()
	if opts.Cache != nil {
		if toc, ok := opts.Cache.Lookup(relPath, doc.Fingerprint, depth); ok {
			doc.TableOfContents = toc
			return doc, nil
		}
	}

	doc.TableOfContents = Outline(doc.Body, depth)
	if opts.Cache != nil {
		// A cache write failure only costs a re-parse next time.
		_ = opts.Cache.Store(doc, depth)
	}
	return doc, nil
}

// ParseFile reads root/relPath and parses it.
func ParseFile(root, relPath string, opts Options) (*Document, error) {
	full := filepath.Join(root, filepath.FromSlash(relPath))
	// #nosec G304 -- path comes from discovery under the configured source root.
	content, err := os.ReadFile(full)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read document").
			WithContext("path", full).
			Build()
	}
	return Parse(relPath, content, opts)
}

// Outline extracts the table of contents of body: headings of level
// 1..maxDepth in document order, each keyed by the slug of its text.
func Outline(body []byte, maxDepth int) TableOfContents {
	headings := markdown.Headings(body, maxDepth)
	if len(headings) == 0 {
		return TableOfContents{}
	}
	items := make([]HeadingEntry, 0, len(headings))
	for _, h := range headings {
		id := slug.Make(h.Text)
		items = append(items, HeadingEntry{
			Depth: h.Level,
			ID:    id,
			Title: h.Text,
			URL:   "#" + id,
		})
	}
	return TableOfContents{Items: items}
}

// StableID derives a document id from its relative path. The same path
// always yields the same id.
func StableID(relPath string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(filepath.ToSlash(relPath))).String()
}

// Fingerprint hashes raw frontmatter and body. Line endings in the
// frontmatter are normalized so CRLF checkouts hash like LF ones.
func Fingerprint(fmRaw, body []byte) string {
	fm := strings.TrimSuffix(string(frontmatter.Normalize(fmRaw)), "\n")
	return mdfp.CalculateFingerprintFromParts(fm, string(body))
}
