package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/apiref/internal/docs/errors"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
}

func TestDiscover_FiltersAndOrders(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zeta.md", "# Z\n")
	writeFile(t, root, "alpha.mdx", "# A\n")
	writeFile(t, root, "nested/beta.MD", "# B\n")
	writeFile(t, root, "image.png", "png")
	writeFile(t, root, ".hidden.md", "# H\n")
	writeFile(t, root, ".git/config.md", "# G\n")
	writeFile(t, root, "drafts/.docignore", "")
	writeFile(t, root, "drafts/wip.md", "# WIP\n")

	files, err := NewDiscovery(root, nil).Discover()
	require.NoError(t, err)

	var rels []string
	for _, f := range files {
		rels = append(rels, f.RelativePath)
	}
	assert.Equal(t, []string{"alpha.mdx", "nested/beta.MD", "zeta.md"}, rels)
	assert.Equal(t, "beta", files[1].Name)
	assert.Equal(t, ".MD", files[1].Extension)
}

func TestDiscover_CustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "")
	writeFile(t, root, "b.mdx", "")

	files, err := NewDiscovery(root, []string{".mdx"}).Discover()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "b.mdx", files[0].RelativePath)
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := NewDiscovery(filepath.Join(t.TempDir(), "nope"), nil).Discover()
	require.ErrorIs(t, err, derrors.ErrDocsPathNotFound)
}
