package bake

import (
	"github.com/segfault87/ldraw-go/common"
	"github.com/segfault87/ldraw-go/document"
	"github.com/segfault87/ldraw-go/resolver"
)

// Resolutions is the baker's read-only view into everything a PartReference
// command might point at: the enclosing multipart document's own named
// sub-parts, and the external documents a resolver.Result already loaded.
// The baker never touches the cache or loader directly — by the time baking
// starts, resolution has already run to completion.
type Resolutions struct {
	External *resolver.Result
}

// scope is the traversal's current sub-part namespace: the multipart
// document whose Subparts map is consulted before falling through to the
// external resolution result. It changes only when traversal steps into an
// externally resolved document, which brings its own sub-part namespace.
type scope struct {
	parent *document.MultipartDocument
}

// resolve locates the document a PartReference should recurse into: first
// as one of the current scope's own sub-parts, then as an externally
// resolved part or primitive. It reports false if neither source has it
// (a genuinely missing dependency, left for the caller to skip or report).
func (r Resolutions) resolve(alias common.PartAlias, sc scope) (*document.Document, scope, bool) {
	if sc.parent != nil {
		if sub, ok := sc.parent.GetSubpart(alias); ok {
			return sub, sc, true
		}
	}

	if r.External != nil {
		if doc, _, ok := r.External.Query(alias, true); ok {
			return &doc.Body, scope{parent: doc}, true
		}
	}

	return nil, scope{}, false
}
