package resolver

import (
	"context"

	"github.com/segfault87/ldraw-go/cache"
	"github.com/segfault87/ldraw-go/color"
	"github.com/segfault87/ldraw-go/common"
	"github.com/segfault87/ldraw-go/document"
)

// Result is the terminal output of a resolution run: two mappings (library,
// local) from alias to resolved document.
type Result struct {
	libraryEntries map[common.PartAlias]*document.MultipartDocument
	localEntries   map[common.PartAlias]*document.MultipartDocument
}

// Query returns the resolved document for alias. When allowLocal is true,
// a local-scope hit is preferred over a library one; otherwise only the
// library mapping is consulted. The returned bool reports whether the hit
// came from the local mapping.
func (r *Result) Query(alias common.PartAlias, allowLocal bool) (*document.MultipartDocument, bool, bool) {
	if allowLocal {
		if d, ok := r.localEntries[alias]; ok {
			return d, true, true
		}
	}
	d, ok := r.libraryEntries[alias]
	return d, false, ok
}

// ListDependencies returns every alias present in either mapping.
func (r *Result) ListDependencies() map[common.PartAlias]struct{} {
	out := make(map[common.PartAlias]struct{}, len(r.libraryEntries)+len(r.localEntries))
	for alias := range r.libraryEntries {
		out[alias] = struct{}{}
	}
	for alias := range r.localEntries {
		out[alias] = struct{}{}
	}
	return out
}

func drainToResult(r *Resolver) *Result {
	res := &Result{
		libraryEntries: make(map[common.PartAlias]*document.MultipartDocument),
		localEntries:   make(map[common.PartAlias]*document.MultipartDocument),
	}
	for alias, st := range r.state {
		if st.Kind == StateAssociated {
			res.libraryEntries[alias] = st.Document
		}
	}
	for alias, st := range r.localState {
		if st.Kind == StateAssociated {
			res.localEntries[alias] = st.Document
		}
	}
	return res
}

// ResolveDependenciesMultipart scans doc (as a local-scope document, so
// that its own sub-parts and sibling local files are preferred over the
// shared library) and drains every pending reference to a fixed point.
func ResolveDependenciesMultipart(ctx context.Context, doc *document.MultipartDocument, c *cache.PartCache, colors color.Catalog, loader LibraryLoader, options ...Option) *Result {
	r := New(c, colors, loader, options...)
	r.ScanDependenciesWithParent(nil, doc, true)
	for r.ResolvePendingDependencies(ctx) {
	}
	return drainToResult(r)
}

// ResolveDependencies scans a single-part doc and drains every pending
// reference to a fixed point.
func ResolveDependencies(ctx context.Context, doc *document.Document, c *cache.PartCache, colors color.Catalog, loader LibraryLoader, options ...Option) *Result {
	r := New(c, colors, loader, options...)
	r.ScanDependencies(doc, true)
	for r.ResolvePendingDependencies(ctx) {
	}
	return drainToResult(r)
}
