package docs

import (
	"log/slog"

	"git.home.luguber.info/inful/apiref/internal/docmodel"
	"git.home.luguber.info/inful/apiref/internal/logfields"
)

// Store is the ordered, immutable set of loaded documents.
type Store struct {
	docs []*docmodel.Document
	byID map[string]*docmodel.Document
}

// NewStore wraps docs in their given order. When two documents share an id
// the first one is returned by Get; both stay in the store.
func NewStore(docs []*docmodel.Document) *Store {
	s := &Store{
		docs: make([]*docmodel.Document, 0, len(docs)),
		byID: make(map[string]*docmodel.Document, len(docs)),
	}
	for _, d := range docs {
		if d == nil {
			continue
		}
		if prev, dup := s.byID[d.ID]; dup {
			slog.Warn("Duplicate document id",
				logfields.DocumentID(d.ID),
				logfields.Path(d.Path),
				slog.String("first_path", prev.Path))
		} else {
			s.byID[d.ID] = d
		}
		s.docs = append(s.docs, d)
	}
	return s
}

// LoadStats summarizes a Load.
type LoadStats struct {
	Loaded  int
	Skipped int
}

// Load parses every file. A file that cannot be read or has malformed
// frontmatter is logged and skipped; it never fails the load.
func Load(files []DocFile, root string, opts docmodel.Options) (*Store, LoadStats) {
	var stats LoadStats
	docs := make([]*docmodel.Document, 0, len(files))
	for _, f := range files {
		doc, err := docmodel.ParseFile(root, f.RelativePath, opts)
		if err != nil {
			stats.Skipped++
			slog.Warn("Skipping document", logfields.Path(f.RelativePath), logfields.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	stats.Loaded = len(docs)
	return NewStore(docs), stats
}

// All returns every document in store order.
func (s *Store) All() []*docmodel.Document {
	return append([]*docmodel.Document(nil), s.docs...)
}

// Len is the number of documents.
func (s *Store) Len() int {
	return len(s.docs)
}

// Get returns the document with id.
func (s *Store) Get(id string) (*docmodel.Document, bool) {
	d, ok := s.byID[id]
	return d, ok
}

// Paths returns the relative path of every document.
func (s *Store) Paths() []string {
	out := make([]string, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d.Path)
	}
	return out
}

// Query selects the documents whose id is in ids, in store order. Unknown
// ids are ignored. An empty ids list selects every document.
func (s *Store) Query(ids []string) []*docmodel.Document {
	if len(ids) == 0 {
		return s.All()
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
		if _, ok := s.byID[id]; !ok {
			slog.Debug("Query id matches no document", logfields.DocumentID(id))
		}
	}

	out := make([]*docmodel.Document, 0, len(wanted))
	for _, d := range s.docs {
		if _, ok := wanted[d.ID]; ok {
			out = append(out, d)
		}
	}
	return out
}
