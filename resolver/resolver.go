// Package resolver implements the recursive dependency resolver: given a
// document (or multipart document), it walks every PartReference
// transitively, consulting the shared PartCache and a per-run transient
// local cache before falling back to an injected LibraryLoader, and loads
// the still-missing set concurrently in batches until nothing is pending.
package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/segfault87/ldraw-go/cache"
	"github.com/segfault87/ldraw-go/color"
	"github.com/segfault87/ldraw-go/common"
	"github.com/segfault87/ldraw-go/document"
)

// FileLocation reports where a loaded document came from.
type FileLocation struct {
	IsLibrary bool
	Kind      cache.Kind // valid when IsLibrary is true
}

// LibraryLoader is the external contract the resolver depends on for actual
// byte transport and parsing. Concrete implementations (e.g. loaders/fs)
// translate an alias into bytes and parse them; the resolver never touches
// I/O directly.
type LibraryLoader interface {
	// LoadColors returns the color catalog used to resolve color
	// references encountered while loading parts.
	LoadColors(ctx context.Context) (color.Catalog, error)

	// LoadReference locates and parses the document for alias. allowLocal
	// indicates the resolver is willing to accept a document-local
	// (non-shared) hit; the loader reports back via FileLocation whether
	// the result should be treated as a shared library document or a
	// local-only one.
	LoadReference(ctx context.Context, alias common.PartAlias, allowLocal bool, colors color.Catalog) (FileLocation, *document.MultipartDocument, error)
}

// StateKind discriminates the variants of a ResolutionState.
type StateKind int

const (
	StateMissing StateKind = iota
	StatePending
	StateSubpart
	StateAssociated
)

// ResolutionState is the per-alias bookkeeping the resolver maintains
// while draining the pending set.
type ResolutionState struct {
	Kind StateKind
	// Document is valid when Kind == StateAssociated.
	Document *document.MultipartDocument
}

// OnUpdate is the resolver's progress callback — the structured-logging
// seam a caller hooks into; the resolver itself performs no logging of its
// own initiative beyond invoking this once per settled alias.
type OnUpdate func(alias common.PartAlias, err error)

// Option configures a Resolver at construction time.
type Option func(*Resolver)

// WithConcurrency overrides the worker pool size used to drain pending
// reference batches (default 8). n == 0 leaves the current value in place.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		r.concurrency = common.Coalesce(n, r.concurrency)
	}
}

// WithOnUpdate registers the progress callback.
func WithOnUpdate(fn OnUpdate) Option {
	return func(r *Resolver) {
		r.onUpdate = fn
	}
}

// Resolver drains a document's transitive PartReference set against a
// shared PartCache, a per-run TransientDocumentCache, and an injected
// LibraryLoader.
type Resolver struct {
	colors     color.Catalog
	cache      *cache.PartCache
	localCache *cache.TransientDocumentCache
	loader     LibraryLoader
	onUpdate   OnUpdate

	concurrency int

	state      map[common.PartAlias]ResolutionState
	localState map[common.PartAlias]ResolutionState
}

// New constructs a Resolver over the given shared cache, color catalog, and
// loader.
func New(c *cache.PartCache, colors color.Catalog, loader LibraryLoader, options ...Option) *Resolver {
	r := &Resolver{
		colors:      colors,
		cache:       c,
		localCache:  cache.NewTransientDocumentCache(),
		loader:      loader,
		concurrency: 8,
		state:       make(map[common.PartAlias]ResolutionState),
		localState:  make(map[common.PartAlias]ResolutionState),
	}
	for _, opt := range options {
		opt(r)
	}
	if r.onUpdate == nil {
		r.onUpdate = func(common.PartAlias, error) {}
	}
	return r
}

func (r *Resolver) containsState(alias common.PartAlias, local bool) bool {
	if local {
		_, ok := r.localState[alias]
		return ok
	}
	_, ok := r.state[alias]
	return ok
}

func (r *Resolver) putState(alias common.PartAlias, local bool, state ResolutionState) {
	if local {
		r.localState[alias] = state
	} else {
		r.state[alias] = state
	}
}

func (r *Resolver) clearState(alias common.PartAlias, local bool) {
	if local {
		delete(r.localState, alias)
	} else {
		delete(r.state, alias)
	}
}

// ScanDependencies seeds the pending set from every PartReference in doc,
// consulting the shared cache (and, if local, the transient local cache)
// before marking an alias Pending.
func (r *Resolver) ScanDependencies(doc *document.Document, local bool) {
	for _, ref := range doc.IterRefs() {
		r.scanOne(ref.Name, local)
	}
}

func (r *Resolver) scanOne(alias common.PartAlias, local bool) {
	if r.containsState(alias, local) {
		return
	}

	if local {
		if cached, ok := r.localCache.Query(alias); ok {
			r.ScanDependenciesWithParent(nil, cached, true)
			r.putState(alias, true, ResolutionState{Kind: StateAssociated, Document: cached})
			return
		}
	}

	if h, ok := r.cache.Query(alias); ok {
		doc := h.Document()
		r.ScanDependenciesWithParent(nil, doc, false)
		r.putState(alias, false, ResolutionState{Kind: StateAssociated, Document: doc})
		h.Release()
		return
	}

	r.putState(alias, local, ResolutionState{Kind: StatePending})
}

// ScanDependenciesWithParent scans a single document within parent (the
// parent's own body when subAlias is nil, or one of its named sub-parts).
// References that resolve to one of parent's own sub-parts are marked
// Subpart and recursed into directly, without consulting the cache or
// loader — sub-parts are internal to their multipart document.
func (r *Resolver) ScanDependenciesWithParent(subAlias *common.PartAlias, parent *document.MultipartDocument, local bool) {
	var doc *document.Document
	if subAlias == nil {
		doc = &parent.Body
	} else {
		sub, ok := parent.GetSubpart(*subAlias)
		if !ok {
			return
		}
		doc = sub
	}

	for _, ref := range doc.IterRefs() {
		alias := ref.Name

		if r.containsState(alias, local) {
			continue
		}

		if _, ok := parent.GetSubpart(alias); ok {
			r.putState(alias, local, ResolutionState{Kind: StateSubpart})
			r.ScanDependenciesWithParent(&alias, parent, local)
			continue
		}

		if local {
			if cached, ok := r.localCache.Query(alias); ok {
				r.ScanDependenciesWithParent(nil, cached, true)
				r.putState(alias, true, ResolutionState{Kind: StateAssociated, Document: cached})
				continue
			}
		}

		if h, ok := r.cache.Query(alias); ok {
			cached := h.Document()
			r.ScanDependenciesWithParent(nil, cached, false)
			r.putState(alias, false, ResolutionState{Kind: StateAssociated, Document: cached})
			h.Release()
			continue
		}

		r.putState(alias, local, ResolutionState{Kind: StatePending})
	}
}

type pendingRef struct {
	alias common.PartAlias
	local bool
}

type loadResult struct {
	location FileLocation
	doc      *document.MultipartDocument
	err      error
}

// ResolvePendingDependencies loads every alias currently in state Pending,
// concurrently, via the worker pool — the same reusable-pool +
// sync.WaitGroup barrier idiom used for per-frame compute fan-out, applied
// here to a per-batch reference-load fan-out. It returns true if it
// processed a non-empty batch (the caller should call it again, since
// loading a batch can discover new Pending aliases via recursive scanning).
func (r *Resolver) ResolvePendingDependencies(ctx context.Context) bool {
	var pending []pendingRef
	for alias, st := range r.localState {
		if st.Kind == StatePending {
			pending = append(pending, pendingRef{alias: alias, local: true})
		}
	}
	for alias, st := range r.state {
		if st.Kind == StatePending {
			pending = append(pending, pendingRef{alias: alias, local: false})
		}
	}
	if len(pending) == 0 {
		return false
	}

	results := make([]loadResult, len(pending))

	pool := worker.NewDynamicWorkerPool(r.concurrency, len(pending), 1*time.Second)
	var wg sync.WaitGroup

	for i, p := range pending {
		wg.Add(1)
		idx := i
		ref := p
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				loc, doc, err := r.loader.LoadReference(ctx, ref.alias, ref.local, r.colors)
				results[idx] = loadResult{location: loc, doc: doc, err: err}
				return nil, nil
			},
		})
	}
	wg.Wait()

	for i, p := range pending {
		res := results[i]
		local := p.local

		var newState ResolutionState
		if res.err != nil {
			r.onUpdate(p.alias, res.err)
			newState = ResolutionState{Kind: StateMissing}
		} else {
			r.onUpdate(p.alias, nil)

			if res.location.IsLibrary {
				if local {
					r.clearState(p.alias, true)
				}
				local = false
				r.cache.Register(res.location.Kind, p.alias, res.doc)
			} else {
				r.localCache.Register(p.alias, res.doc)
			}

			r.ScanDependenciesWithParent(nil, res.doc, local)
			newState = ResolutionState{Kind: StateAssociated, Document: res.doc}
		}

		r.putState(p.alias, local, newState)
	}

	return true
}
