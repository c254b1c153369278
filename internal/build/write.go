package build

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/apiref/internal/config"
	dberrors "git.home.luguber.info/inful/apiref/internal/foundation/errors"
)

const outputFileMode = 0o644

// writeAtomic writes data to path through a temporary file in the same
// directory, so readers never observe a partially written page.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return dberrors.FileSystemError("failed to create output directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}

	tmp, err := os.CreateTemp(dir, ".apiref-*.tmp")
	if err != nil {
		return dberrors.FileSystemError("failed to create temporary file").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return dberrors.FileSystemError("failed to write page").WithCause(err).WithContext("path", path).Build()
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return dberrors.FileSystemError("failed to sync page").WithCause(err).WithContext("path", path).Build()
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return dberrors.FileSystemError("failed to close page").WithCause(err).WithContext("path", path).Build()
	}
	// #nosec G302 -- the page is a public artifact.
	if err := os.Chmod(tmpName, outputFileMode); err != nil {
		cleanup()
		return dberrors.FileSystemError("failed to set page permissions").WithCause(err).WithContext("path", path).Build()
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return dberrors.FileSystemError("failed to move page into place").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}

// renderInputs is the part of the configuration that changes the page bytes
// for an unchanged document set.
type renderInputs struct {
	Extensions []string
	Query      config.QueryConfig
	Links      config.LinksConfig
	TOC        config.TOCConfig
	Page       config.PageConfig
	Theme      config.ThemeConfig
	Output     string
	LiveReload string `json:",omitempty"`
}

// ConfigHash fingerprints the render-affecting configuration. A page carrying
// a live reload script never matches one rendered without it.
func ConfigHash(cfg *config.Config, liveReload template.JS) string {
	in := renderInputs{
		Extensions: cfg.Source.Extensions,
		Query:      cfg.Query,
		Links:      cfg.Links,
		TOC:        cfg.TOC,
		Page:       cfg.Page,
		Theme:      cfg.Theme,
		Output:     cfg.Output.File,
		LiveReload: string(liveReload),
	}
	data, err := json.Marshal(in)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
