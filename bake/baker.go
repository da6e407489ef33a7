// Package bake implements the part baker: the traversal that walks a
// resolved document tree under an accumulating transform, color stack, and
// BFC (back-face culling) state, emitting triangles and quads into the
// mesh welder and lines into the edge buffers, and captures feature-part
// references instead of recursing into them.
package bake

import (
	"github.com/segfault87/ldraw-go/color"
	"github.com/segfault87/ldraw-go/common"
	"github.com/segfault87/ldraw-go/document"
	"github.com/segfault87/ldraw-go/mesh"
	"github.com/segfault87/ldraw-go/part"
)

// determinantEpsilon is the tolerance below which a PartReference's local
// transform's determinant is treated as negative for the child-invert
// check — exact zero never occurs in practice, but a transform that is
// numerically a hair off zero should not flip-flop the winding.
const determinantEpsilon = 1e-6

// Baker holds the traversal's accumulating state: the feature set it
// extracts instead of recursing into, the mesh/edge/feature buffers it
// writes to, and the live color stack.
type Baker struct {
	resolutions     Resolutions
	enabledFeatures map[string]struct{}

	builder     *part.Builder
	meshBuilder *mesh.MeshBuilder
	colorStack  []color.Reference
}

// New returns a Baker ready to traverse under resolutions, treating any
// alias in enabledFeatures (normalized part-alias strings) as a feature:
// captured as a (color, transform) instance rather than recursed into.
func New(resolutions Resolutions, enabledFeatures map[string]struct{}) *Baker {
	return &Baker{
		resolutions:     resolutions,
		enabledFeatures: enabledFeatures,
		builder:         part.NewBuilder(),
		meshBuilder:     mesh.NewMeshBuilder(),
	}
}

func (b *Baker) currentColor() color.Reference {
	if len(b.colorStack) == 0 {
		return color.Current()
	}
	return b.colorStack[len(b.colorStack)-1]
}

// Traverse walks doc's command stream under the given accumulated matrix,
// cull (whether an ancestor scope wants BFC culling applied), and invert
// (whether an odd number of negative-determinant transforms or explicit
// INVERTNEXT statements have flipped the effective winding so far).
func (b *Baker) Traverse(doc *document.Document, sc scope, matrix common.Matrix4, cull bool, invert bool) {
	localCull := true
	winding := common.CCW
	bfcCertified := true
	if certified, ok := doc.Bfc.IsCertified(); ok {
		bfcCertified = certified
	}
	if bfcCertified {
		if w, ok := doc.Bfc.GetWinding(); ok {
			winding = w.XorInvert(invert)
		}
	}
	invertNext := false

	for _, cmd := range doc.Commands {
		switch cmd.Kind {
		case document.CommandPartReference:
			b.traversePartReference(cmd.PartReference, sc, matrix, cull, localCull, bfcCertified, invert, invertNext)
			invertNext = false

		case document.CommandLine:
			ln := cmd.Line
			top := b.currentColor()
			a := matrix.TransformPoint(ln.A)
			bv := matrix.TransformPoint(ln.B)
			b.builder.Edges.Add(a, bv, top)

		case document.CommandOptionalLine:
			ol := cmd.OptionalLine
			top := b.currentColor()
			a := matrix.TransformPoint(ol.A)
			bv := matrix.TransformPoint(ol.B)
			c := matrix.TransformPoint(ol.C)
			d := matrix.TransformPoint(ol.D)
			b.builder.OptionalEdges.Add(a, bv, c, d, top)

		case document.CommandTriangle:
			b.addTriangle(cmd.Triangle, matrix, winding, cull, localCull, bfcCertified)

		case document.CommandQuad:
			b.addQuad(cmd.Quad, matrix, winding, cull, localCull, bfcCertified)

		case document.CommandMeta:
			if cmd.Meta.Kind != document.MetaBfc {
				continue
			}
			switch stmt := cmd.Meta.Bfc; stmt.Kind {
			case document.BfcInvertNext:
				invertNext = true
			case document.BfcNoClip:
				localCull = false
			case document.BfcClip:
				localCull = true
				if stmt.HasWinding {
					winding = stmt.Winding.XorInvert(invert)
				}
			case document.BfcWinding:
				winding = stmt.Winding.XorInvert(invert)
			}
		}
	}
}

func (b *Baker) traversePartReference(ref document.PartReference, sc scope, matrix common.Matrix4, cull, localCull, bfcCertified, invert, invertNext bool) {
	childMatrix := matrix.Mul(ref.Matrix)

	childInvert := invert != invertNext
	if ref.Matrix.Determinant3() < -determinantEpsilon {
		childInvert = invert == invertNext
	}

	cullNext := false
	if bfcCertified {
		cullNext = cull && localCull
	}

	col := ref.Color
	if col.IsCurrent() {
		col = b.currentColor()
	}

	if _, enabled := b.enabledFeatures[ref.Name.String()]; enabled && !childInvert {
		b.builder.Features.Add(ref.Name, part.FeatureInstance{Color: col, Matrix: childMatrix})
		return
	}

	childDoc, childScope, found := b.resolutions.resolve(ref.Name, sc)
	if !found {
		return
	}

	b.colorStack = append(b.colorStack, col)
	b.Traverse(childDoc, childScope, childMatrix, cullNext, childInvert)
	b.colorStack = b.colorStack[:len(b.colorStack)-1]
}

func (b *Baker) groupBFC(cull, localCull, bfcCertified bool) bool {
	if !bfcCertified {
		return false
	}
	return cull && localCull
}

func (b *Baker) addTriangle(tr document.Triangle, matrix common.Matrix4, winding common.Winding, cull, localCull, bfcCertified bool) {
	col := tr.Color
	if col.IsCurrent() {
		col = b.currentColor()
	}

	a := matrix.TransformPoint(tr.A)
	bv := matrix.TransformPoint(tr.B)
	c := matrix.TransformPoint(tr.C)

	var face mesh.Face
	if winding == common.CW {
		face = mesh.NewTriangle(c, bv, a, winding)
	} else {
		face = mesh.NewTriangle(a, bv, c, winding)
	}

	b.meshBuilder.Add(mesh.GroupKey{Color: col, BFC: b.groupBFC(cull, localCull, bfcCertified)}, face)
}

func (b *Baker) addQuad(q document.Quad, matrix common.Matrix4, winding common.Winding, cull, localCull, bfcCertified bool) {
	col := q.Color
	if col.IsCurrent() {
		col = b.currentColor()
	}

	a := matrix.TransformPoint(q.A)
	bv := matrix.TransformPoint(q.B)
	c := matrix.TransformPoint(q.C)
	d := matrix.TransformPoint(q.D)

	var face mesh.Face
	if winding == common.CW {
		face = mesh.NewQuad(d, c, bv, a, winding)
	} else {
		face = mesh.NewQuad(a, bv, c, d, winding)
	}

	b.meshBuilder.Add(mesh.GroupKey{Color: col, BFC: b.groupBFC(cull, localCull, bfcCertified)}, face)
}

// Bake finishes the welder's accumulated faces into routed mesh groups and
// assembles the final Part.
func (b *Baker) Bake() *part.Part {
	groups, box := b.meshBuilder.Bake()
	for _, g := range groups {
		b.builder.RouteGroup(g)
	}
	return part.Build(b.builder, box, common.Vector3{})
}

// BakePart is the baker's entry point: traverse doc's body from the
// identity transform with culling enabled and no inversion. Per the color
// stack's lifecycle invariant, Current sits at the base of the stack before
// traversal begins, so root-level geometry that never specifies an
// explicit color stays Current and is routed into the uncolored mesh
// buckets rather than being baked into a concrete color.
func BakePart(resolutions Resolutions, enabledFeatures map[string]struct{}, doc *document.MultipartDocument) *part.Part {
	baker := New(resolutions, enabledFeatures)
	baker.colorStack = append(baker.colorStack, color.Current())
	baker.Traverse(&doc.Body, scope{parent: doc}, common.Identity4(), true, false)
	return baker.Bake()
}
