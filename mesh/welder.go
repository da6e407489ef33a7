package mesh

import (
	"math"

	"github.com/segfault87/ldraw-go/common"
)

// normalBlendThreshold is the maximum angle (radians) between two adjacent
// faces' normals for which their shared vertex gets a blended (smoothed)
// normal; beyond it the edge is treated as a hard edge and each face keeps
// its own flat normal. 30 degrees, matching the reference baker.
const normalBlendThreshold = math.Pi / 6

// weldEpsilon is the squared-distance tolerance under which two face
// vertices are treated as the same point for clustering and normal
// blending purposes.
const weldEpsilon = 1e-5 * 1e-5

// gridCellSize buckets the point cloud into cells sized to weldEpsilon's
// tolerance, so a nearest-point query only has to examine one cell and its
// 26 neighbors instead of the whole point set.
const gridCellSize = 1e-3

type gridCell [3]int32

func cellOf(v common.Vector3) gridCell {
	return gridCell{
		int32(math.Floor(float64(v.X) / gridCellSize)),
		int32(math.Floor(float64(v.Y) / gridCellSize)),
		int32(math.Floor(float64(v.Z) / gridCellSize)),
	}
}

// faceRef identifies one face within MeshBuilder's per-group face lists.
type faceRef struct {
	group GroupKey
	index int
}

// adjacency is one distinct vertex position in the point cloud, together
// with every face (possibly spanning multiple groups) that touches it.
type adjacency struct {
	position common.Vector3
	faces    []faceRef
}

// MeshBuilder accumulates faces per GroupKey and, on Bake, clusters
// coincident vertices and blends their normals across adjacent faces whose
// dihedral angle is below normalBlendThreshold. This is the stdlib
// substitute for the reference implementation's kd-tree point cloud: since
// vertex welding only ever needs same-cell or neighbor-cell lookups within
// a fixed tolerance, a uniform grid hash gives the same answer without an
// external nearest-neighbor library.
type MeshBuilder struct {
	faces  map[GroupKey][]Face
	points []adjacency
	grid   map[gridCell][]int
}

// NewMeshBuilder returns an empty MeshBuilder.
func NewMeshBuilder() *MeshBuilder {
	return &MeshBuilder{
		faces: make(map[GroupKey][]Face),
		grid:  make(map[gridCell][]int),
	}
}

// Add appends face to group's face list and registers its vertices in the
// point cloud used for normal blending.
func (b *MeshBuilder) Add(group GroupKey, face Face) {
	idx := len(b.faces[group])
	b.faces[group] = append(b.faces[group], face)
	ref := faceRef{group: group, index: idx}

	n := face.vertexCount()
	for i := 0; i < n; i++ {
		b.insert(face.Vertices[i], ref)
	}
}

// insert finds or creates the adjacency entry at (or within weldEpsilon of)
// v, and appends ref to its face list.
func (b *MeshBuilder) insert(v common.Vector3, ref faceRef) {
	if i, ok := b.nearest(v); ok {
		b.points[i].faces = append(b.points[i].faces, ref)
		return
	}
	idx := len(b.points)
	b.points = append(b.points, adjacency{position: v, faces: []faceRef{ref}})
	cell := cellOf(v)
	b.grid[cell] = append(b.grid[cell], idx)
}

// nearest returns the index of the point-cloud entry within weldEpsilon
// squared distance of v, if any, searching v's grid cell and its 26
// neighbors.
func (b *MeshBuilder) nearest(v common.Vector3) (int, bool) {
	center := cellOf(v)
	best := -1
	var bestDist float32
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				cell := gridCell{center[0] + dx, center[1] + dy, center[2] + dz}
				for _, idx := range b.grid[cell] {
					d := b.points[idx].position.Sub(v)
					distSq := d.Dot(d)
					if distSq <= weldEpsilon && (best == -1 || distSq < bestDist) {
						best = idx
						bestDist = distSq
					}
				}
			}
		}
	}
	return best, best != -1
}

// BakedGroup is one group's welded mesh output: parallel vertex/normal
// streams, triangulated (every 3 entries is one triangle).
type BakedGroup struct {
	Key      GroupKey
	Vertices []common.Vector3
	Normals  []common.Vector3
}

// BoundingBox is an axis-aligned box accumulated across every baked vertex.
type BoundingBox struct {
	Min, Max common.Vector3
	set      bool
}

func (bb *BoundingBox) include(v common.Vector3) {
	if !bb.set {
		bb.Min, bb.Max = v, v
		bb.set = true
		return
	}
	bb.Min = common.Vector3{X: minf(bb.Min.X, v.X), Y: minf(bb.Min.Y, v.Y), Z: minf(bb.Min.Z, v.Z)}
	bb.Max = common.Vector3{X: maxf(bb.Max.X, v.X), Y: maxf(bb.Max.Y, v.Y), Z: maxf(bb.Max.Z, v.Z)}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Bake triangulates every accumulated face, blends each vertex's normal
// with every adjacent face within normalBlendThreshold, and returns one
// BakedGroup per GroupKey, ordered by SortGroupKeys, plus the accumulated
// bounding box.
func (b *MeshBuilder) Bake() ([]BakedGroup, BoundingBox) {
	var box BoundingBox

	keys := make([]GroupKey, 0, len(b.faces))
	for k := range b.faces {
		keys = append(keys, k)
	}
	keys = SortGroupKeys(keys)

	out := make([]BakedGroup, 0, len(keys))
	for _, key := range keys {
		group := BakedGroup{Key: key}
		for _, face := range b.faces[key] {
			// normal is declared once per face and carried, mutated, across
			// every vertex of that face: each vertex's blend starts from
			// wherever the previous vertex's blend left off, rather than
			// restarting from the face's raw normal.
			normal := face.Normal()
			face.Triangles(false, func(v common.Vector3) {
				normal = b.blendNormal(v, normal)
				box.include(v)
				group.Vertices = append(group.Vertices, v)
				group.Normals = append(group.Normals, normal)
			})
		}
		out = append(out, group)
	}
	return out, box
}

// blendNormal blends normal (the face's running normal, possibly already
// adjusted by an earlier vertex of the same face) with the normal of every
// face sharing vertex v's point-cloud entry — including the face normal
// itself — whose angle to the running normal is below
// normalBlendThreshold, then renormalizes.
func (b *MeshBuilder) blendNormal(v common.Vector3, normal common.Vector3) common.Vector3 {
	idx, ok := b.nearest(v)
	if !ok {
		return normal
	}

	for _, ref := range b.points[idx].faces {
		otherNormal := b.faces[ref.group][ref.index].Normal()
		cos := normal.Dot(otherNormal)
		if cos > 1 {
			cos = 1
		} else if cos < -1 {
			cos = -1
		}
		angle := math.Acos(float64(cos))
		if angle < normalBlendThreshold {
			normal = normal.Add(otherNormal).Scale(0.5)
		}
	}
	return normal.Normalize()
}
