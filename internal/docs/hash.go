package docs

import (
	"crypto/sha256"
	"encoding/hex"

	"git.home.luguber.info/inful/apiref/internal/docmodel"
)

// SetHash computes a deterministic hash over an ordered document set from
// each document's path, id and fingerprint. Order is significant because it
// is the order of sections on the page.
func SetHash(docs []*docmodel.Document) string {
	h := sha256.New()
	n := 0
	for _, d := range docs {
		if d == nil {
			continue
		}
		n++
		h.Write([]byte(d.Path + "|" + d.ID + "|" + d.Fingerprint + "\n"))
	}
	if n == 0 {
		sum := sha256.Sum256([]byte("empty-docs-set"))
		return hex.EncodeToString(sum[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
