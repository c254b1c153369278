package docs

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	derrors "git.home.luguber.info/inful/apiref/internal/docs/errors"
	"git.home.luguber.info/inful/apiref/internal/logfields"
)

// DocIgnoreFile marks a directory (and everything below it) as excluded.
const DocIgnoreFile = ".docignore"

// DefaultExtensions are the document extensions discovered when none are configured.
var DefaultExtensions = []string{".md", ".mdx"}

// DocFile is a discovered document on disk.
type DocFile struct {
	Path         string // Absolute or root-joined path
	RelativePath string // Slash separated, relative to the source root
	Name         string // File name without extension
	Extension    string
}

// Discovery finds reference documents under a source root.
type Discovery struct {
	root       string
	extensions map[string]struct{}
}

// NewDiscovery creates a discovery rooted at root. Extensions are matched
// case-insensitively and must include the leading dot.
func NewDiscovery(root string, extensions []string) *Discovery {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	ext := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		ext[strings.ToLower(e)] = struct{}{}
	}
	return &Discovery{root: root, extensions: ext}
}

// Root returns the directory discovery walks.
func (d *Discovery) Root() string {
	return d.root
}

// Discover walks the source root and returns matching files ordered by
// relative path. Hidden files and directories are skipped, as are
// directories containing a .docignore file.
func (d *Discovery) Discover() ([]DocFile, error) {
	if _, err := os.Stat(d.root); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", derrors.ErrDocsPathNotFound, d.root)
	}

	var files []DocFile
	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := entry.Name()
		if entry.IsDir() {
			if path == d.root {
				return nil
			}
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if hasDocIgnore(path) {
				slog.Debug("Skipping directory due to .docignore", logfields.Path(path))
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		ext := filepath.Ext(name)
		if _, ok := d.extensions[strings.ToLower(ext)]; !ok {
			return nil
		}

		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return fmt.Errorf("%w: %w", derrors.ErrInvalidRelativePath, err)
		}

		files = append(files, DocFile{
			Path:         path,
			RelativePath: filepath.ToSlash(rel),
			Name:         strings.TrimSuffix(name, ext),
			Extension:    ext,
		})
		slog.Debug("Discovered file", logfields.Path(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrDocsDirWalkFailed, d.root, err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})

	slog.Info("Documentation discovered", logfields.Path(d.root), logfields.Count(len(files)))
	return files, nil
}

func hasDocIgnore(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, DocIgnoreFile))
	return err == nil
}
