package cache

import (
	"github.com/segfault87/ldraw-go/common"
	"github.com/segfault87/ldraw-go/document"
)

// TransientDocumentCache holds documents scoped to a single resolution run
// (LDraw's "local" parts: siblings of the file being resolved, never
// promoted to the shared PartCache). It carries no reference counting —
// its whole contents are dropped with the resolver that owns it.
type TransientDocumentCache struct {
	documents map[common.PartAlias]*document.MultipartDocument
}

// NewTransientDocumentCache returns an empty TransientDocumentCache.
func NewTransientDocumentCache() *TransientDocumentCache {
	return &TransientDocumentCache{documents: make(map[common.PartAlias]*document.MultipartDocument)}
}

// Register stores doc under alias, replacing any previous entry.
func (t *TransientDocumentCache) Register(alias common.PartAlias, doc *document.MultipartDocument) {
	t.documents[alias] = doc
}

// Query returns the document registered under alias, if any.
func (t *TransientDocumentCache) Query(alias common.PartAlias) (*document.MultipartDocument, bool) {
	d, ok := t.documents[alias]
	return d, ok
}
