package mesh

import (
	"github.com/segfault87/ldraw-go/color"
	"github.com/segfault87/ldraw-go/common"
)

// EdgeVertex is one endpoint of a baked edge segment: its position and an
// encoded color. Encoded colors -1 and -2 stand in for Current and
// Complement respectively — an edge drawn with one of those variants
// inherits its color from whatever material the consuming renderer applies
// to the part as a whole, so it cannot be baked to a concrete RGBA ahead of
// time; every other variant is baked to its resolved color's code.
type EdgeVertex struct {
	Position common.Vector3
	Color    int64
}

const (
	// EncodedCurrent is the EdgeVertex.Color sentinel for color.Current().
	EncodedCurrent int64 = -1
	// EncodedComplement is the EdgeVertex.Color sentinel for color.Complement().
	EncodedComplement int64 = -2
)

func encodeEdgeColor(ref color.Reference) int64 {
	switch {
	case ref.IsCurrent():
		return EncodedCurrent
	case ref.IsComplement():
		return EncodedComplement
	default:
		return int64(ref.Code())
	}
}

// EdgeBufferBuilder accumulates plain (always-visible) line segments.
type EdgeBufferBuilder struct {
	Vertices []EdgeVertex
}

// Add appends one segment (a, b), both colored by top (the BFC color-stack
// top active when the line command was traversed).
func (b *EdgeBufferBuilder) Add(a, bv common.Vector3, top color.Reference) {
	c := encodeEdgeColor(top)
	b.Vertices = append(b.Vertices, EdgeVertex{Position: a, Color: c}, EdgeVertex{Position: bv, Color: c})
}

// OptionalEdgeVertex is one endpoint of a conditional line segment: its
// position, the encoded segment color, the segment's two control points,
// and the direction from the segment's first endpoint to its second (v2 -
// v1), used by consuming renderers to decide at draw time whether the two
// control points c1/c2 fall on the same side of the view-projected line (in
// which case the segment is hidden).
type OptionalEdgeVertex struct {
	Position  common.Vector3
	Direction common.Vector3
	Control1  common.Vector3
	Control2  common.Vector3
	Color     int64
}

// OptionalEdgeBufferBuilder accumulates conditional line segments.
type OptionalEdgeBufferBuilder struct {
	Vertices []OptionalEdgeVertex
}

// Add appends one conditional segment (v1, v2) with control points (c1, c2),
// colored by top.
func (b *OptionalEdgeBufferBuilder) Add(v1, v2, c1, c2 common.Vector3, top color.Reference) {
	c := encodeEdgeColor(top)
	dir := v2.Sub(v1)
	b.Vertices = append(b.Vertices,
		OptionalEdgeVertex{Position: v1, Direction: dir, Control1: c1, Control2: c2, Color: c},
		OptionalEdgeVertex{Position: v2, Direction: dir, Control1: c1, Control2: c2, Color: c},
	)
}
