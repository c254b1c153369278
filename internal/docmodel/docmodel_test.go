package docmodel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apiref/internal/foundation/errors"
	"git.home.luguber.info/inful/apiref/internal/frontmatter"
)

func TestParse_TitleBodyAndOutline(t *testing.T) {
	content := []byte("---\ntitle: Client\n---\n# Client\n\nIntro\n\n## Options\n\n### Retry policy\n\n##### Too deep\n")

	doc, err := Parse("client/index.md", content, Options{})
	require.NoError(t, err)
	require.Equal(t, "Client", doc.Frontmatter.Title)
	require.Equal(t, "client/index.md", doc.Path)
	require.Equal(t, StableID("client/index.md"), doc.ID)
	require.NotEmpty(t, doc.Fingerprint)

	want := []HeadingEntry{
		{Depth: 1, ID: "client", Title: "Client", URL: "#client"},
		{Depth: 2, ID: "options", Title: "Options", URL: "#options"},
		{Depth: 3, ID: "retry-policy", Title: "Retry policy", URL: "#retry-policy"},
	}
	if diff := cmp.Diff(want, doc.TableOfContents.Items); diff != "" {
		t.Fatalf("outline mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_UIDOverridesPathID(t *testing.T) {
	doc, err := Parse("a.md", []byte("---\nuid: reference-client\n---\nbody\n"), Options{})
	require.NoError(t, err)
	require.Equal(t, "reference-client", doc.ID)
	require.Equal(t, "reference-client", doc.Frontmatter.UID)
}

func TestParse_NoHeadingsGivesEmptyOutline(t *testing.T) {
	doc, err := Parse("a.md", []byte("just text\n"), Options{})
	require.NoError(t, err)
	require.True(t, doc.TableOfContents.Empty())
	require.Empty(t, doc.Frontmatter.Title)
}

func TestParse_MaxDepth(t *testing.T) {
	doc, err := Parse("a.md", []byte("# A\n## B\n### C\n"), Options{MaxDepth: 2})
	require.NoError(t, err)
	require.Len(t, doc.TableOfContents.Items, 2)
}

func TestParse_MDXStripsModuleLines(t *testing.T) {
	doc, err := Parse("x.mdx", []byte("import Foo from \"./foo\"\n\n# Title\n"), Options{})
	require.NoError(t, err)
	require.Equal(t, "\n# Title\n", string(doc.Body))
}

func TestParse_MalformedFrontmatterIsValidationError(t *testing.T) {
	_, err := Parse("bad.md", []byte("---\ntitle: x\n# no close\n"), Options{})
	require.Error(t, err)
	require.ErrorIs(t, err, frontmatter.ErrMissingClosingDelimiter)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = Parse("bad.md", []byte("---\ntitle: [unclosed\n---\nbody\n"), Options{})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestStableID_Deterministic(t *testing.T) {
	require.Equal(t, StableID("a/b.md"), StableID("a/b.md"))
	require.NotEqual(t, StableID("a/b.md"), StableID("a/c.md"))
}

func TestFingerprint_LineEndingsInFrontmatter(t *testing.T) {
	require.Equal(t, Fingerprint([]byte("title: x\n"), []byte("b")), Fingerprint([]byte("title: x\r\n"), []byte("b")))
	require.NotEqual(t, Fingerprint([]byte("title: x\n"), []byte("b")), Fingerprint([]byte("title: y\n"), []byte("b")))
}

type fakeCache struct {
	toc    TableOfContents
	hit    bool
	stored []*Document
}

func (f *fakeCache) Lookup(string, string, int) (TableOfContents, bool) { return f.toc, f.hit }
func (f *fakeCache) Store(doc *Document, _ int) error {
	f.stored = append(f.stored, doc)
	return nil
}

func TestParse_CacheHitSkipsOutline(t *testing.T) {
	cached := TableOfContents{Items: []HeadingEntry{{Depth: 2, ID: "cached", Title: "Cached", URL: "#cached"}}}
	c := &fakeCache{toc: cached, hit: true}

	doc, err := Parse("a.md", []byte("# Fresh\n"), Options{Cache: c})
	require.NoError(t, err)
	require.Equal(t, cached, doc.TableOfContents)
	require.Empty(t, c.stored)
}

func TestParse_CacheMissStores(t *testing.T) {
	c := &fakeCache{}
	doc, err := Parse("a.md", []byte("# Fresh\n"), Options{Cache: c})
	require.NoError(t, err)
	require.Len(t, c.stored, 1)
	require.Same(t, doc, c.stored[0])
}

func TestParseFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "doc.md"), []byte("# Hi\n"), 0o600))

	doc, err := ParseFile(root, "sub/doc.md", Options{})
	require.NoError(t, err)
	require.Equal(t, "sub/doc.md", doc.Path)

	_, err = ParseFile(root, "missing.md", Options{})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}
