package color

import "fmt"

// ReferenceKind discriminates the variants of a ColorReference.
type ReferenceKind int

const (
	// KindUnknown is a code with no catalog entry and no derivation rule.
	KindUnknown ReferenceKind = iota
	// KindCurrent inherits the ambient color of the traversal's color
	// stack; encoded as code 16.
	KindCurrent
	// KindComplement is the edge-color sibling of Current; encoded as
	// code 24.
	KindComplement
	// KindResolved wraps a concrete Color.
	KindResolved
	// KindUnresolved is a pending numeric code awaiting ResolveSelf.
	KindUnresolved
)

const (
	codeCurrent    = 16
	codeComplement = 24
)

// Reference is a tagged color reference, as it appears in a parsed LDraw
// command before (and after) catalog resolution. Equal compares Code()
// alone, so references to identical codes compare equal regardless of
// variant. The == operator and map keys (including mesh.GroupKey) compare
// every field instead, so two references with the same code but different
// variants are distinct map keys.
type Reference struct {
	kind     ReferenceKind
	code     uint32
	resolved Color
}

// Current returns the reference variant meaning "inherit the ambient color".
func Current() Reference {
	return Reference{kind: KindCurrent, code: codeCurrent}
}

// Complement returns the reference variant meaning "the edge-color sibling
// of the ambient color".
func Complement() Reference {
	return Reference{kind: KindComplement, code: codeComplement}
}

// Resolved wraps a concrete Color as a reference.
func Resolved(c Color) Reference {
	return Reference{kind: KindResolved, code: c.Code, resolved: c}
}

// Unresolved returns a pending reference for a raw numeric code, to be
// resolved later via ResolveSelf.
func Unresolved(code uint32) Reference {
	return Reference{kind: KindUnresolved, code: code}
}

// Unknown returns a reference to a code with no catalog entry and no
// derivation rule; it is not an error, it flows through the pipeline and is
// skipped by consumers that require a concrete material.
func Unknown(code uint32) Reference {
	return Reference{kind: KindUnknown, code: code}
}

// Kind returns the reference's variant tag.
func (r Reference) Kind() ReferenceKind {
	return r.kind
}

// Code returns the reference's numeric color code: 16 for Current, 24 for
// Complement, the wrapped Color's code for Resolved, or the raw code for
// Unresolved/Unknown.
func (r Reference) Code() uint32 {
	return r.code
}

// IsCurrent reports whether this is the Current variant.
func (r Reference) IsCurrent() bool {
	return r.kind == KindCurrent
}

// IsComplement reports whether this is the Complement variant.
func (r Reference) IsComplement() bool {
	return r.kind == KindComplement
}

// IsResolved reports whether this reference wraps a concrete Color.
func (r Reference) IsResolved() bool {
	return r.kind == KindResolved
}

// Color returns the wrapped Color and true if this reference is Resolved,
// else the zero Color and false.
func (r Reference) Color() (Color, bool) {
	if r.kind != KindResolved {
		return Color{}, false
	}
	return r.resolved, true
}

// Equal compares two references by Code() alone, matching the Eq/Hash
// contract: references to the same numeric code are equal regardless of
// variant.
func (r Reference) Equal(other Reference) bool {
	return r.code == other.code
}

// String renders the reference for diagnostics.
func (r Reference) String() string {
	switch r.kind {
	case KindCurrent:
		return "Current"
	case KindComplement:
		return "Complement"
	case KindResolved:
		return fmt.Sprintf("Resolved(%s #%d)", r.resolved.Name, r.resolved.Code)
	case KindUnresolved:
		return fmt.Sprintf("Unresolved(%d)", r.code)
	default:
		return fmt.Sprintf("Unknown(%d)", r.code)
	}
}

// resolveBlended derives a synthetic opaque Color for a code in the blended
// range [256, 512] by averaging the fill channels of codes (code/16,
// code%16). Returns false if either constituent code is absent from the
// catalog.
func resolveBlended(code uint32, catalog Catalog) (Color, bool) {
	code1 := code / 16
	code2 := code % 16

	c1, ok := catalog.Lookup(code1)
	if !ok {
		return Color{}, false
	}
	c2, ok := catalog.Lookup(code2)
	if !ok {
		return Color{}, false
	}

	fill := NewRgba(
		c1.Fill.R/2+c2.Fill.R/2,
		c1.Fill.G/2+c2.Fill.G/2,
		c1.Fill.B/2+c2.Fill.B/2,
		255,
	)
	return Color{
		Code:      code,
		Name:      fmt.Sprintf("Blended Color (%d and %d)", code1, code2),
		Fill:      fill,
		Edge:      RgbaFromValue(0xff595959),
		Luminance: 0,
		Finish:    Finish{Kind: FinishPlastic},
	}, true
}

// resolveRGB4 derives a Color from a nibble-packed fill+edge code
// (0x04000000 | fill:0xFFF | edge:0xFFF), each nibble scaled by 16.
func resolveRGB4(code uint32) Color {
	red := uint8(((code & 0xf00) >> 8) * 16)
	green := uint8(((code & 0x0f0) >> 4) * 16)
	blue := uint8((code & 0x00f) * 16)

	edgeRed := uint8(((code & 0xf00000) >> 20) * 16)
	edgeGreen := uint8(((code & 0x0f0000) >> 16) * 16)
	edgeBlue := uint8(((code & 0x00f000) >> 12) * 16)

	return Color{
		Code:      code,
		Name:      fmt.Sprintf("RGB Color (%03x)", code&0xfff),
		Fill:      NewRgba(red, green, blue, 255),
		Edge:      NewRgba(edgeRed, edgeGreen, edgeBlue, 255),
		Luminance: 0,
		Finish:    Finish{Kind: FinishPlastic},
	}
}

// resolveRGB2 derives an opaque Color from a direct-RGB code (0x02000000 |
// rrggbb in the low 24 bits).
func resolveRGB2(code uint32) Color {
	return Color{
		Code:      code,
		Name:      fmt.Sprintf("RGB Color (%06x)", code&0xffffff),
		Fill:      RgbaFromValue(0xff000000 | (code & 0xffffff)),
		Edge:      RgbaFromValue(0xff595959),
		Luminance: 0,
		Finish:    Finish{Kind: FinishPlastic},
	}
}

// Resolve derives a Reference for code against catalog, trying in order:
// reserved codes (16/24), catalog lookup, the blended-range rule, the
// RGB-2/RGB-4 derivation rules, and finally Unknown.
func Resolve(code uint32, catalog Catalog) Reference {
	switch code {
	case codeCurrent:
		return Current()
	case codeComplement:
		return Complement()
	}

	if c, ok := catalog.Lookup(code); ok {
		return Resolved(c)
	}

	if code >= 256 && code <= 512 {
		if c, ok := resolveBlended(code, catalog); ok {
			return Resolved(c)
		}
	}

	switch code & 0xff000000 {
	case 0x02000000:
		return Resolved(resolveRGB2(code))
	case 0x04000000:
		return Resolved(resolveRGB4(code))
	}

	return Unknown(code)
}

// ResolveSelf mutates r in place if it is Unresolved, replacing it with the
// result of Resolve(code, catalog). All other variants are left unchanged,
// making ResolveSelf idempotent once a reference has settled.
func (r *Reference) ResolveSelf(catalog Catalog) {
	if r.kind != KindUnresolved {
		return
	}
	*r = Resolve(r.code, catalog)
}
