package document

import "github.com/segfault87/ldraw-go/common"

// CertificationKind discriminates the variants of a BfcCertification.
type CertificationKind int

const (
	// NotApplicable means the document carries no `0 BFC CERTIFY`/`0 BFC
	// NOCERTIFY` header at all.
	NotApplicable CertificationKind = iota
	NoCertify
	Certify
)

// BfcCertification is a document's declared back-face-culling status, from
// its header block.
type BfcCertification struct {
	Kind CertificationKind
	// Winding is valid when Kind == Certify.
	Winding common.Winding
}

// IsCertified reports the document's BFC status: true if Certify, false if
// NoCertify, and ok=false if NotApplicable (the document never declared
// either way).
func (c BfcCertification) IsCertified() (certified bool, ok bool) {
	switch c.Kind {
	case Certify:
		return true, true
	case NoCertify:
		return false, true
	default:
		return false, false
	}
}

// GetWinding returns the certified winding and true, or false if the
// document is not Certify.
func (c BfcCertification) GetWinding() (common.Winding, bool) {
	if c.Kind != Certify {
		return 0, false
	}
	return c.Winding, true
}

// Document is the in-memory representation of a single parsed LDraw file
// (or, for a multipart file, one of its `0 FILE` sections).
type Document struct {
	Name        string
	Description string
	Author      string
	Bfc         BfcCertification
	Headers     []Header
	Commands    []Command
}

// HasGeometry reports whether the document contains any line, triangle,
// quad, or optional-line command.
func (d *Document) HasGeometry() bool {
	for _, cmd := range d.Commands {
		switch cmd.Kind {
		case CommandLine, CommandTriangle, CommandQuad, CommandOptionalLine:
			return true
		}
	}
	return false
}

// IterRefs returns every PartReference command in file order.
func (d *Document) IterRefs() []PartReference {
	var out []PartReference
	for _, cmd := range d.Commands {
		if cmd.Kind == CommandPartReference {
			out = append(out, cmd.PartReference)
		}
	}
	return out
}

// IterLines returns every Line command in file order.
func (d *Document) IterLines() []Line {
	var out []Line
	for _, cmd := range d.Commands {
		if cmd.Kind == CommandLine {
			out = append(out, cmd.Line)
		}
	}
	return out
}

// IterTriangles returns every Triangle command in file order.
func (d *Document) IterTriangles() []Triangle {
	var out []Triangle
	for _, cmd := range d.Commands {
		if cmd.Kind == CommandTriangle {
			out = append(out, cmd.Triangle)
		}
	}
	return out
}

// IterQuads returns every Quad command in file order.
func (d *Document) IterQuads() []Quad {
	var out []Quad
	for _, cmd := range d.Commands {
		if cmd.Kind == CommandQuad {
			out = append(out, cmd.Quad)
		}
	}
	return out
}

// IterOptionalLines returns every OptionalLine command in file order.
func (d *Document) IterOptionalLines() []OptionalLine {
	var out []OptionalLine
	for _, cmd := range d.Commands {
		if cmd.Kind == CommandOptionalLine {
			out = append(out, cmd.OptionalLine)
		}
	}
	return out
}

// IterMeta returns every Meta command in file order.
func (d *Document) IterMeta() []Meta {
	var out []Meta
	for _, cmd := range d.Commands {
		if cmd.Kind == CommandMeta {
			out = append(out, cmd.Meta)
		}
	}
	return out
}

// ListDependencies returns the set of aliases this document references,
// recursing into sub-parts when parent is non-nil and the referenced alias
// resolves to one of the parent's sub-parts rather than an external part.
// A multipart document's internal sub-part references never surface here;
// only aliases that must be resolved through the loader do.
func (d *Document) ListDependencies(parent *MultipartDocument) map[common.PartAlias]struct{} {
	result := make(map[common.PartAlias]struct{})
	traverseDependencies(d, parent, result)
	return result
}

func traverseDependencies(d *Document, parent *MultipartDocument, list map[common.PartAlias]struct{}) {
	for _, ref := range d.IterRefs() {
		if parent != nil {
			if sub, ok := parent.Subparts[ref.Name]; ok {
				traverseDependencies(sub, parent, list)
				continue
			}
		}
		list[ref.Name] = struct{}{}
	}
}

// MultipartDocument is a document together with any `0 FILE` sub-parts it
// declares. Single-part files are represented with an empty Subparts map.
type MultipartDocument struct {
	Body     Document
	Subparts map[common.PartAlias]*Document
}

// GetSubpart returns the named sub-part, if present.
func (m *MultipartDocument) GetSubpart(alias common.PartAlias) (*Document, bool) {
	d, ok := m.Subparts[alias]
	return d, ok
}

// ListDependencies returns the set of external aliases referenced anywhere
// in the body, recursing through internal sub-part references without
// surfacing them.
func (m *MultipartDocument) ListDependencies() map[common.PartAlias]struct{} {
	result := make(map[common.PartAlias]struct{})
	traverseDependencies(&m.Body, m, result)
	return result
}
