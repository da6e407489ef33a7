// Package part assembles a baked part's per-group mesh data, edges, and
// feature instances into the final immutable Part, and packs its buffers
// into contiguous GPU-upload-ready streams.
package part

import (
	"sort"

	"github.com/segfault87/ldraw-go/color"
	"github.com/segfault87/ldraw-go/common"
	"github.com/segfault87/ldraw-go/mesh"
)

// FeatureInstance is one placement of an enabled feature part: the color
// and transform it was referenced with, captured instead of recursed into
// during traversal.
type FeatureInstance struct {
	Color  color.Reference
	Matrix common.Matrix4
}

// FeatureMap collects every FeatureInstance keyed by the referenced part's
// alias.
type FeatureMap map[common.PartAlias][]FeatureInstance

// Add appends an instance for alias.
func (m FeatureMap) Add(alias common.PartAlias, instance FeatureInstance) {
	m[alias] = append(m[alias], instance)
}

// GroupMesh is one routed destination's accumulated vertex/normal streams,
// merged from one or more baked mesh.BakedGroup buffers.
type GroupMesh struct {
	Vertices []common.Vector3
	Normals  []common.Vector3
}

func (g *GroupMesh) append(src mesh.BakedGroup) {
	g.Vertices = append(g.Vertices, src.Vertices...)
	g.Normals = append(g.Normals, src.Normals...)
}

// Builder routes baked mesh groups into the four render buckets a consumer
// needs: the uncolored (Current-color) mesh, split by whether BFC culling
// applied to it, and the colored meshes, split into opaque and translucent
// by material. It also accumulates the edge buffers and feature map built
// up during traversal.
type Builder struct {
	UncoloredMesh           GroupMesh
	UncoloredWithoutBFCMesh GroupMesh
	OpaqueMeshes            map[uint32]*GroupMesh
	TranslucentMeshes       map[uint32]*GroupMesh

	Edges         mesh.EdgeBufferBuilder
	OptionalEdges mesh.OptionalEdgeBufferBuilder
	Features      FeatureMap
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		OpaqueMeshes:      make(map[uint32]*GroupMesh),
		TranslucentMeshes: make(map[uint32]*GroupMesh),
		Features:          make(FeatureMap),
	}
}

// RouteGroup appends a baked mesh.BakedGroup into the bucket its key
// describes: group.Color == Current routes on BFC alone; any other color
// routes by material translucency, merging across BFC state (colored
// triangles are not re-split by culling once their material is known).
func (b *Builder) RouteGroup(group mesh.BakedGroup) {
	if group.Key.Color.IsCurrent() {
		if group.Key.BFC {
			b.UncoloredMesh.append(group)
		} else {
			b.UncoloredWithoutBFCMesh.append(group)
		}
		return
	}

	code := group.Key.Color.Code()
	target := b.OpaqueMeshes
	if c, ok := group.Key.Color.Color(); ok && c.IsTranslucent() {
		target = b.TranslucentMeshes
	}
	gm, ok := target[code]
	if !ok {
		gm = &GroupMesh{}
		target[code] = gm
	}
	gm.append(group)
}

// Part is the finished, immutable bake result for one LDraw part.
type Part struct {
	UncoloredMesh           GroupMesh
	UncoloredWithoutBFCMesh GroupMesh
	OpaqueMeshes            map[uint32]*GroupMesh
	TranslucentMeshes       map[uint32]*GroupMesh

	Edges         []mesh.EdgeVertex
	OptionalEdges []mesh.OptionalEdgeVertex
	Features      FeatureMap

	BoundingBox    mesh.BoundingBox
	RotationCenter common.Vector3
}

// Build finalizes b into a Part using boundingBox (accumulated by the mesh
// welder over every baked vertex) and rotationCenter (the part's declared
// pivot, or the zero vector when none is declared).
func Build(b *Builder, boundingBox mesh.BoundingBox, rotationCenter common.Vector3) *Part {
	return &Part{
		UncoloredMesh:           b.UncoloredMesh,
		UncoloredWithoutBFCMesh: b.UncoloredWithoutBFCMesh,
		OpaqueMeshes:            b.OpaqueMeshes,
		TranslucentMeshes:       b.TranslucentMeshes,
		Edges:                   b.Edges.Vertices,
		OptionalEdges:           b.OptionalEdges.Vertices,
		Features:                b.Features,
		BoundingBox:             boundingBox,
		RotationCenter:          rotationCenter,
	}
}

// MeshSlot is one named mesh's location within a PackedPart's shared vertex
// pool: the color this slot draws under (Code is meaningless for the two
// uncolored slots, which BFC tells apart; colored slots merge both BFC
// states and leave BFC false) and the {start, span} range of the pool it
// occupies.
type MeshSlot struct {
	Colored bool
	Code    uint32
	BFC     bool
	Start   uint32
	Span    uint32
}

// PackedPart is a Part's buffers assembled into a single contiguous
// vertex/normal pool, with a named slot per mesh group carved out of it, per
// spec.md §4.6/§6.3. Uncolored slots come first, then uncolored-without-bfc,
// then opaque groups in ascending color-code order, then translucent groups
// in ascending color-code order — the same opaque-before-translucent,
// ascending-code order mesh.SortGroupKeys establishes for baked groups.
type PackedPart struct {
	Vertices []common.Vector3
	Normals  []common.Vector3
	Slots    []MeshSlot
}

// Pack assembles p's mesh buckets into one PackedPart: a single contiguous
// vertex/normal pool plus a MeshSlot per group recording where in the pool
// that group's range begins and how long it runs, so each group can be
// drawn with a single range.
func (p *Part) Pack() PackedPart {
	var packed PackedPart

	appendSlot := func(slot MeshSlot, gm GroupMesh) {
		slot.Start = uint32(len(packed.Vertices))
		slot.Span = uint32(len(gm.Vertices))
		packed.Vertices = append(packed.Vertices, gm.Vertices...)
		packed.Normals = append(packed.Normals, gm.Normals...)
		packed.Slots = append(packed.Slots, slot)
	}

	appendSlot(MeshSlot{BFC: true}, p.UncoloredMesh)
	appendSlot(MeshSlot{BFC: false}, p.UncoloredWithoutBFCMesh)

	opaqueCodes := sortedCodes(p.OpaqueMeshes)
	for _, code := range opaqueCodes {
		appendSlot(MeshSlot{Colored: true, Code: code}, *p.OpaqueMeshes[code])
	}

	translucentCodes := sortedCodes(p.TranslucentMeshes)
	for _, code := range translucentCodes {
		appendSlot(MeshSlot{Colored: true, Code: code}, *p.TranslucentMeshes[code])
	}

	return packed
}

func sortedCodes(groups map[uint32]*GroupMesh) []uint32 {
	codes := make([]uint32, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
