// Package document implements the in-memory representation of a parsed
// LDraw file: its header metadata, its command stream, and (for multipart
// files) its named sub-parts. Nothing in this package performs I/O or
// tokenizes LDraw text — that is ldrawtext's job; this package only models
// the parsed result.
package document

import (
	"github.com/segfault87/ldraw-go/color"
	"github.com/segfault87/ldraw-go/common"
)

// Header is a single `key value` metadata line (e.g. "AUTHOR", "!LDRAW_ORG")
// captured from a document's header block, in file order.
type Header struct {
	Key   string
	Value string
}

// BfcStatementKind discriminates the variants of a BfcStatement.
type BfcStatementKind int

const (
	BfcWinding BfcStatementKind = iota
	BfcClip
	BfcNoClip
	BfcInvertNext
)

// BfcStatement is the payload of a `0 BFC ...` meta-command.
type BfcStatement struct {
	Kind BfcStatementKind
	// Winding is valid when Kind == BfcWinding, or when Kind == BfcClip
	// and HasWinding is true (a combined "CLIP CW"/"CLIP CCW" statement).
	Winding common.Winding
	// HasWinding distinguishes a bare "CLIP" from "CLIP CW"/"CLIP CCW".
	HasWinding bool
}

// MetaKind discriminates the payload-less meta-commands from the
// BFC-carrying one.
type MetaKind int

const (
	MetaStep MetaKind = iota
	MetaWrite
	MetaPrint
	MetaClear
	MetaPause
	MetaSave
	MetaComment
	MetaBfc
)

// Meta is a `0 ...` command that is not a plain comment line captured as
// the document description.
type Meta struct {
	Kind    MetaKind
	Comment string       // valid when Kind == MetaComment
	Bfc     BfcStatement // valid when Kind == MetaBfc
}

// PartReference is a `1 color matrix name` command: an instance of another
// part (or primitive) placed into this document's geometry.
type PartReference struct {
	Color  color.Reference
	Matrix common.Matrix4
	Name   common.PartAlias
}

// Line is a `2 color a b` command.
type Line struct {
	Color color.Reference
	A, B  common.Vector3
}

// Triangle is a `3 color a b c` command.
type Triangle struct {
	Color   color.Reference
	A, B, C common.Vector3
}

// Quad is a `4 color a b c d` command.
type Quad struct {
	Color      color.Reference
	A, B, C, D common.Vector3
}

// OptionalLine is a `5 color a b c d` command: a and b are the rendered
// endpoints, c and d are control points that decide visibility.
type OptionalLine struct {
	Color      color.Reference
	A, B, C, D common.Vector3
}

// CommandKind discriminates the variants of a Command.
type CommandKind int

const (
	CommandMeta CommandKind = iota
	CommandPartReference
	CommandLine
	CommandTriangle
	CommandQuad
	CommandOptionalLine
)

// Command is a single parsed line of LDraw geometry or metadata, tagged by
// Kind with exactly one of the payload fields populated.
type Command struct {
	Kind CommandKind

	Meta          Meta
	PartReference PartReference
	Line          Line
	Triangle      Triangle
	Quad          Quad
	OptionalLine  OptionalLine
}
