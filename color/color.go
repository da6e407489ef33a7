// Package color implements the LDraw color catalog: numeric color codes,
// their resolution to concrete material records, and the handful of derived
// color rules (blended and direct-RGB codes) that LDraw documents may
// reference without a catalog entry.
package color

import "fmt"

// Rgba is a packed 8-bit-per-channel color value.
type Rgba struct {
	R, G, B, A uint8
}

// NewRgba constructs an Rgba from four channel values.
func NewRgba(r, g, b, a uint8) Rgba {
	return Rgba{R: r, G: g, B: b, A: a}
}

// RgbaFromValue unpacks a 0xAARRGGBB encoded 32-bit value into an Rgba.
func RgbaFromValue(value uint32) Rgba {
	return Rgba{
		R: uint8((value & 0x00ff0000) >> 16),
		G: uint8((value & 0x0000ff00) >> 8),
		B: uint8(value & 0x000000ff),
		A: uint8((value & 0xff000000) >> 24),
	}
}

// Vector4 returns the channels normalized to [0, 1].
func (c Rgba) Vector4() (r, g, b, a float32) {
	return float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255
}

// MaterialGlitter holds the parameters of a GLITTER finish parsed from a
// color-definition file's MATERIAL clause.
type MaterialGlitter struct {
	Value     Rgba
	Luminance uint8
	Fraction  float32
	VFraction float32
	Size      uint32
	MinSize   float32
	MaxSize   float32
}

// MaterialSpeckle holds the parameters of a SPECKLE finish. It has the same
// fields as MaterialGlitter minus VFraction.
type MaterialSpeckle struct {
	Value     Rgba
	Luminance uint8
	Fraction  float32
	Size      uint32
	MinSize   float32
	MaxSize   float32
}

// FinishKind enumerates the base surface finishes a Color may declare.
type FinishKind int

const (
	// FinishPlastic is the default finish when no keyword is present.
	FinishPlastic FinishKind = iota
	FinishChrome
	FinishPearlescent
	FinishRubber
	FinishMatteMetallic
	FinishMetal
	// FinishCustomGlitter and FinishCustomSpeckle carry parameters in
	// Finish.Glitter / Finish.Speckle respectively.
	FinishCustomGlitter
	FinishCustomSpeckle
)

// Finish is the tagged surface-finish value of a Color. Kind selects which
// of Glitter/Speckle (if any) is populated.
type Finish struct {
	Kind    FinishKind
	Glitter *MaterialGlitter
	Speckle *MaterialSpeckle
}

// String renders the finish kind, mainly for diagnostics.
func (f Finish) String() string {
	switch f.Kind {
	case FinishPlastic:
		return "Plastic"
	case FinishChrome:
		return "Chrome"
	case FinishPearlescent:
		return "Pearlescent"
	case FinishRubber:
		return "Rubber"
	case FinishMatteMetallic:
		return "MatteMetallic"
	case FinishMetal:
		return "Metal"
	case FinishCustomGlitter:
		return "Glitter"
	case FinishCustomSpeckle:
		return "Speckle"
	default:
		return fmt.Sprintf("Finish(%d)", f.Kind)
	}
}

// Color is a concrete, resolved material record: the result of looking up
// (or deriving) a numeric LDraw color code.
type Color struct {
	Code      uint32
	Name      string
	Fill      Rgba
	Edge      Rgba
	Luminance uint8
	Finish    Finish
}

// DefaultColor returns a built-in code 0 ("Black") record. It is not looked
// up in any Catalog, and its channels differ from the Black entry of the
// embedded default catalog.
func DefaultColor() Color {
	return Color{
		Code:      0,
		Name:      "Black",
		Fill:      NewRgba(0x05, 0x13, 0x1d, 0xff),
		Edge:      NewRgba(0x59, 0x59, 0x59, 0xff),
		Luminance: 0,
		Finish:    Finish{Kind: FinishPlastic},
	}
}

// IsTranslucent reports whether the color's fill alpha indicates a
// translucent material (fill.a < 255).
func (c Color) IsTranslucent() bool {
	return c.Fill.A < 255
}

// Catalog maps a numeric color code to its resolved Color record. A Catalog
// is immutable once parsing completes; it is safe to share across
// concurrent resolver/baker contexts without locking.
type Catalog map[uint32]Color

// Lookup returns the catalog entry for code, if present.
func (c Catalog) Lookup(code uint32) (Color, bool) {
	v, ok := c[code]
	return v, ok
}
