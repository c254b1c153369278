// Package linkverify audits the links of reference documents after they are
// rewritten for the page.
package linkverify

import (
	"strings"

	"git.home.luguber.info/inful/apiref/internal/docmodel"
	"git.home.luguber.info/inful/apiref/internal/links"
	"git.home.luguber.info/inful/apiref/internal/markdown"
)

// Reason classifies a suspicious link.
type Reason string

const (
	// ReasonEscapesBase marks a relative href that resolves outside the
	// reference base path, typically "../../x.mdx" under legacy resolution.
	ReasonEscapesBase Reason = "escapes_base"
	// ReasonMissingAnchor marks an in-page "#id" link with no matching element.
	ReasonMissingAnchor Reason = "missing_anchor"
	// ReasonEmpty marks an href that rewrites to the empty string.
	ReasonEmpty Reason = "empty"
)

// Finding is one suspicious link.
type Finding struct {
	DocumentID string
	Path       string
	Href       string
	Rewritten  string
	Reason     Reason
}

// AnchorLookup answers whether an element id exists on the page.
type AnchorLookup interface {
	Has(id string) bool
}

// Auditor checks links the way the page renders them.
type Auditor struct {
	rw *links.Rewriter
}

// NewAuditor returns an auditor using rw.
func NewAuditor(rw *links.Rewriter) *Auditor {
	return &Auditor{rw: rw}
}

// Audit returns findings for docs in document and link order. anchors may be
// nil, which skips the missing-anchor check.
func (a *Auditor) Audit(docs []*docmodel.Document, anchors AnchorLookup) []Finding {
	var findings []Finding
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		for _, l := range markdown.ExtractLinks(doc.Body) {
			if l.Kind != markdown.LinkKindInline && l.Kind != markdown.LinkKindAuto {
				continue
			}
			if reason, ok := a.check(l.Destination, anchors); ok {
				findings = append(findings, Finding{
					DocumentID: doc.ID,
					Path:       doc.Path,
					Href:       l.Destination,
					Rewritten:  a.rw.Rewrite(l.Destination),
					Reason:     reason,
				})
			}
		}
	}
	return findings
}

func (a *Auditor) check(href string, anchors AnchorLookup) (Reason, bool) {
	if href == "" {
		return "", false
	}
	rewritten := a.rw.Rewrite(href)
	switch {
	case rewritten == "":
		return ReasonEmpty, true
	case strings.HasPrefix(rewritten, "#"):
		if anchors != nil && !anchors.Has(rewritten[1:]) {
			return ReasonMissingAnchor, true
		}
	case strings.HasPrefix(href, "."):
		base := strings.TrimSuffix(a.rw.BasePath(), "/")
		if rewritten != base && !strings.HasPrefix(rewritten, base+"/") {
			return ReasonEscapesBase, true
		}
	}
	return "", false
}
