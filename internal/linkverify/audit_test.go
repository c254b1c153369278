package linkverify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apiref/internal/docmodel"
	"git.home.luguber.info/inful/apiref/internal/links"
)

type anchorSet map[string]bool

func (s anchorSet) Has(id string) bool { return s[id] }

func doc(body string) *docmodel.Document {
	return &docmodel.Document{ID: "d1", Path: "client.mdx", Body: []byte(body)}
}

func TestAudit_Legacy(t *testing.T) {
	a := NewAuditor(links.NewRewriter("/docs/api", links.Legacy))
	body := "[ok](./retry.mdx) [up](../errors.mdx) [far](../../guides/setup.mdx) " +
		"[index](./index.mdx) [ext](https://example.com/x.mdx) [here](#options) [gone](#missing) " +
		"[blank](index.mdx) ![img](../../img.png)\n"

	findings := a.Audit([]*docmodel.Document{doc(body)}, anchorSet{"options": true})
	require.Len(t, findings, 3)

	assert.Equal(t, Finding{DocumentID: "d1", Path: "client.mdx", Href: "../../guides/setup.mdx", Rewritten: "/docs/guides/setup", Reason: ReasonEscapesBase}, findings[0])
	assert.Equal(t, ReasonMissingAnchor, findings[1].Reason)
	assert.Equal(t, "#missing", findings[1].Href)
	assert.Equal(t, ReasonEmpty, findings[2].Reason)
	assert.Equal(t, "index.mdx", findings[2].Href)
}

func TestAudit_FlattenKeepsLinksInside(t *testing.T) {
	a := NewAuditor(links.NewRewriter("/docs/api", links.Flatten))
	findings := a.Audit([]*docmodel.Document{doc("[far](../../guides/setup.mdx)\n")}, nil)
	assert.Empty(t, findings)
}

func TestAudit_NilAnchorsSkipsAnchorCheck(t *testing.T) {
	a := NewAuditor(links.NewRewriter("/docs/api", links.Legacy))
	assert.Empty(t, a.Audit([]*docmodel.Document{doc("[gone](#missing)\n"), nil}, nil))
}
