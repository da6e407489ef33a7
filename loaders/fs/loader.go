// Package fs implements a filesystem-backed resolver.LibraryLoader: it
// locates a part's source file by searching, in order, the current working
// directory, the library's parts/ directory, and its p/ (primitives)
// directory — the same precedence the reference implementation's
// LocalFileLoader uses.
package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/segfault87/ldraw-go/cache"
	"github.com/segfault87/ldraw-go/color"
	"github.com/segfault87/ldraw-go/common"
	"github.com/segfault87/ldraw-go/document"
	"github.com/segfault87/ldraw-go/ldrawerr"
	"github.com/segfault87/ldraw-go/ldrawtext"
	"github.com/segfault87/ldraw-go/resolver"
)

// Option configures a Loader at construction time.
type Option func(*Loader)

// WithColorDefinitionPath overrides the color-definition file path; by
// default LoadColors reads "<ldrawDir>/LDConfig.ldr".
func WithColorDefinitionPath(path string) Option {
	return func(l *Loader) { l.colorDefPath = path }
}

// Loader is a resolver.LibraryLoader backed by the local filesystem.
type Loader struct {
	ldrawDir     string
	cwd          string
	colorDefPath string
}

var _ resolver.LibraryLoader = (*Loader)(nil)

// New constructs a Loader rooted at ldrawDir (the LDraw parts library
// install) and cwd (the directory containing the document currently being
// resolved, searched first for local/sibling parts).
func New(ldrawDir, cwd string, options ...Option) (*Loader, error) {
	info, err := os.Stat(ldrawDir)
	if err != nil || !info.IsDir() {
		return nil, &ldrawerr.LibraryError{Reason: ldrawerr.NoLDrawDir, Inner: err}
	}

	l := &Loader{
		ldrawDir:     ldrawDir,
		cwd:          cwd,
		colorDefPath: filepath.Join(ldrawDir, "LDConfig.ldr"),
	}
	for _, opt := range options {
		opt(l)
	}
	return l, nil
}

// LoadColors parses the library's LDConfig.ldr color-definition file.
func (l *Loader) LoadColors(ctx context.Context) (color.Catalog, error) {
	f, err := os.Open(l.colorDefPath)
	if err != nil {
		return nil, &ldrawerr.LibraryError{Reason: ldrawerr.LibraryIo, Inner: err}
	}
	defer f.Close()

	catalog, err := ldrawtext.ParseColorDefinition(f)
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// LoadReference searches cwd, then "<ldrawDir>/parts/", then
// "<ldrawDir>/p/" for alias's normalized name, parses the first match, and
// reports which of the three locations it came from.
func (l *Loader) LoadReference(ctx context.Context, alias common.PartAlias, allowLocal bool, colors color.Catalog) (resolver.FileLocation, *document.MultipartDocument, error) {
	candidates := []struct {
		path     string
		location resolver.FileLocation
	}{
		{filepath.Join(l.cwd, alias.String()), resolver.FileLocation{IsLibrary: false}},
		{filepath.Join(l.ldrawDir, "parts", alias.String()), resolver.FileLocation{IsLibrary: true, Kind: cache.KindPart}},
		{filepath.Join(l.ldrawDir, "p", alias.String()), resolver.FileLocation{IsLibrary: true, Kind: cache.KindPrimitive}},
	}

	for _, cand := range candidates {
		if !allowLocal && !cand.location.IsLibrary {
			continue
		}
		info, err := os.Stat(cand.path)
		if err != nil || info.IsDir() {
			continue
		}

		f, err := os.Open(cand.path)
		if err != nil {
			return resolver.FileLocation{}, nil, &ldrawerr.ResolutionError{Alias: alias.Original(), Reason: ldrawerr.TransportError, Inner: err}
		}
		defer f.Close()

		doc, err := ldrawtext.ParseMultipartDocument(f)
		if err != nil {
			return resolver.FileLocation{}, nil, &ldrawerr.ResolutionError{Alias: alias.Original(), Reason: ldrawerr.ResolutionParseError, Inner: err}
		}
		resolveDocumentColors(doc, colors)

		return cand.location, doc, nil
	}

	return resolver.FileLocation{}, nil, &ldrawerr.ResolutionError{Alias: alias.Original(), Reason: ldrawerr.FileNotFound}
}

// resolveDocumentColors walks every color reference in doc (and its
// sub-parts) and resolves it in place against catalog, so that documents
// handed back to the resolver never carry Unresolved references.
func resolveDocumentColors(doc *document.MultipartDocument, catalog color.Catalog) {
	resolveOneDocumentColors(&doc.Body, catalog)
	for _, sub := range doc.Subparts {
		resolveOneDocumentColors(sub, catalog)
	}
}

func resolveOneDocumentColors(d *document.Document, catalog color.Catalog) {
	for i := range d.Commands {
		cmd := &d.Commands[i]
		switch cmd.Kind {
		case document.CommandPartReference:
			cmd.PartReference.Color.ResolveSelf(catalog)
		case document.CommandLine:
			cmd.Line.Color.ResolveSelf(catalog)
		case document.CommandTriangle:
			cmd.Triangle.Color.ResolveSelf(catalog)
		case document.CommandQuad:
			cmd.Quad.Color.ResolveSelf(catalog)
		case document.CommandOptionalLine:
			cmd.OptionalLine.Color.ResolveSelf(catalog)
		}
	}
}
