// Package links rewrites hrefs found in reference documents into the flat
// reference URL space.
package links

import (
	"path"
	"strings"
)

// Resolution selects how relative hrefs are resolved against the base path.
type Resolution string

const (
	// Legacy replaces only the first ".." with "." and then resolves lexically.
	// "../../foo.mdx" therefore lands one level above the base path.
	Legacy Resolution = "legacy"
	// Flatten drops every leading "./" and "../" segment before joining.
	Flatten Resolution = "flatten"
)

const (
	docExtension = ".mdx"
	indexToken   = "index"
)

// Rewriter turns raw markdown hrefs into page URLs.
type Rewriter struct {
	basePath   string
	resolution Resolution
}

// NewRewriter returns a Rewriter rooted at basePath (e.g. "/docs/api").
// Unknown resolutions behave like Legacy.
func NewRewriter(basePath string, resolution Resolution) *Rewriter {
	if resolution != Flatten {
		resolution = Legacy
	}
	return &Rewriter{basePath: basePath, resolution: resolution}
}

// BasePath returns the path relative hrefs are resolved against.
func (r *Rewriter) BasePath() string {
	return r.basePath
}

// Rewrite returns the displayable URL for href. Everything from the first
// ".mdx" on is dropped, then the first "index" token is removed. Only hrefs
// that then start with "." are resolved against the base path. Empty results
// are returned as-is.
func (r *Rewriter) Rewrite(href string) string {
	url, _, _ := strings.Cut(href, docExtension)
	url = strings.Replace(url, indexToken, "", 1)

	if !strings.HasPrefix(url, ".") {
		return url
	}
	if r.resolution == Flatten {
		return r.flatten(url)
	}
	return r.legacy(url)
}

func (r *Rewriter) legacy(url string) string {
	return joinKeepingSlash(r.basePath, strings.Replace(url, "..", ".", 1))
}

func (r *Rewriter) flatten(url string) string {
	rest := url
	for {
		switch {
		case strings.HasPrefix(rest, "../"):
			rest = rest[len("../"):]
		case strings.HasPrefix(rest, "./"):
			rest = rest[len("./"):]
		case rest == "." || rest == "..":
			rest = ""
		default:
			joined := path.Join(r.basePath, rest)
			if strings.HasSuffix(url, "/") && !strings.HasSuffix(joined, "/") {
				joined += "/"
			}
			return joined
		}
	}
}

// joinKeepingSlash resolves rel against base like path.Join but keeps a
// trailing slash, so "./" maps to the base directory URL.
func joinKeepingSlash(base, rel string) string {
	joined := path.Join(base, rel)
	if strings.HasSuffix(rel, "/") && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}
	return joined
}
