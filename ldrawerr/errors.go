// Package ldrawerr defines the typed error kinds of the ingestion/baking
// pipeline (§7 of the specification this module implements). Each kind is a
// distinct Go type so callers can branch on it with errors.As, and each
// wraps an inner cause with fmt.Errorf("...: %w", ...) the way the rest of
// this module's ambient error handling does — no third-party error library
// is used anywhere in this codebase's retrieval pack, so none is introduced
// here either.
package ldrawerr

import "fmt"

// ParseReason enumerates the syntactic violations a line-level parse can
// report.
type ParseReason int

const (
	TypeMismatch ParseReason = iota
	EndOfLine
	InvalidBfcStatement
	UnexpectedCommand
	InvalidToken
	UnexpectedMultipart
)

// String renders the reason for diagnostics.
func (r ParseReason) String() string {
	switch r {
	case TypeMismatch:
		return "type mismatch"
	case EndOfLine:
		return "unexpected end of line"
	case InvalidBfcStatement:
		return "invalid BFC statement"
	case UnexpectedCommand:
		return "unexpected command"
	case InvalidToken:
		return "invalid token"
	case UnexpectedMultipart:
		return "unexpected multipart marker"
	default:
		return "unknown parse error"
	}
}

// ParseError reports a syntactic violation on a specific line of a
// document. It is fatal for that document only; the caller of a parse
// function receives it directly.
type ParseError struct {
	Line   int
	Reason ParseReason
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("parse error at line %d: %s: %s", e.Line, e.Reason, e.Detail)
	}
	return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Reason)
}

// IoError wraps an underlying transport failure encountered during parse.
type IoError struct {
	Inner error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("io error: %v", e.Inner)
}

func (e *IoError) Unwrap() error {
	return e.Inner
}

// LibraryReason enumerates the ways constructing a library loader can fail.
type LibraryReason int

const (
	NoLDrawDir LibraryReason = iota
	LibraryIo
)

// LibraryError is fatal for loader construction: either the library root is
// missing, or an I/O error occurred scanning its directory structure.
type LibraryError struct {
	Reason LibraryReason
	Inner  error
}

func (e *LibraryError) Error() string {
	switch e.Reason {
	case NoLDrawDir:
		return "ldraw library directory not found"
	default:
		return fmt.Sprintf("ldraw library io error: %v", e.Inner)
	}
}

func (e *LibraryError) Unwrap() error {
	return e.Inner
}

// ResolutionReason enumerates the three ways a single load_reference call
// can fail. Kept as three distinct reason values on ResolutionError (rather
// than one generic "load failed" error) so callers can branch on which kind
// occurred — e.g. to decide a transport error merits a manual retry of the
// whole run, while a parse error does not.
type ResolutionReason int

const (
	FileNotFound ResolutionReason = iota
	TransportError
	ResolutionParseError
)

// ResolutionError reports a per-alias failure during load_reference. It is
// non-fatal to the overall resolution run: the failing alias is marked
// Missing and resolution continues for the rest of the pending set.
type ResolutionError struct {
	Alias  string
	Reason ResolutionReason
	Inner  error
}

func (e *ResolutionError) Error() string {
	switch e.Reason {
	case FileNotFound:
		return fmt.Sprintf("resolution error for %q: file not found", e.Alias)
	case TransportError:
		return fmt.Sprintf("resolution error for %q: transport error: %v", e.Alias, e.Inner)
	default:
		return fmt.Sprintf("resolution error for %q: parse error: %v", e.Alias, e.Inner)
	}
}

func (e *ResolutionError) Unwrap() error {
	return e.Inner
}

// ColorDefinitionReason enumerates the ways a color-definition file can
// fail to parse.
type ColorDefinitionReason int

const (
	ColorDefinitionParse ColorDefinitionReason = iota
	UnknownMaterial
)

// ColorDefinitionError is fatal for catalog load: the color-definition file
// itself is malformed, or names a MATERIAL/finish keyword this module does
// not recognize.
type ColorDefinitionError struct {
	Reason  ColorDefinitionReason
	Line    int
	Keyword string
	Inner   error
}

func (e *ColorDefinitionError) Error() string {
	if e.Reason == UnknownMaterial {
		return fmt.Sprintf("color definition error at line %d: unknown material %q", e.Line, e.Keyword)
	}
	return fmt.Sprintf("color definition error at line %d: %v", e.Line, e.Inner)
}

func (e *ColorDefinitionError) Unwrap() error {
	return e.Inner
}

// UnknownColorError reports that a reference used a code with no catalog
// entry and no derivation rule. It is non-fatal: the caller receives it
// only if it chooses to surface the condition, since color.Unknown(code)
// otherwise flows through the pipeline unreported and the baker simply
// skips meshes whose color cannot resolve to a material.
type UnknownColorError struct {
	Code uint32
}

func (e *UnknownColorError) Error() string {
	return fmt.Sprintf("unknown color code %d", e.Code)
}
