// Package mesh implements the vertex-welding engine: it accumulates faces
// grouped by (color, bfc) key, clusters coincident vertices via a spatial
// index, blends per-vertex normals across faces whose dihedral angle falls
// below a threshold, and bakes the result into flat vertex/normal buffers
// per group.
package mesh

import "github.com/segfault87/ldraw-go/common"

// FaceKind discriminates a triangle face from a quad face.
type FaceKind int

const (
	FaceTriangle FaceKind = iota
	FaceQuad
)

// triangleIndexOrder and quadIndexOrder fan a face's vertices out into a
// triangle list: a triangle is already one triangle; a quad is split into
// two by its diagonal (0,1,2) and (2,3,0).
var (
	triangleIndexOrder = [3]int{0, 1, 2}
	quadIndexOrder     = [6]int{0, 1, 2, 2, 3, 0}
)

// Face is one polygon emitted by the baker: either 3 or 4 vertices already
// transformed into the part's local space, tagged with the winding they
// were emitted at.
type Face struct {
	Kind     FaceKind
	Vertices [4]common.Vector3 // only [0:3] valid when Kind == FaceTriangle
	Winding  common.Winding
}

// NewTriangle returns a 3-vertex Face.
func NewTriangle(a, b, c common.Vector3, winding common.Winding) Face {
	return Face{Kind: FaceTriangle, Vertices: [4]common.Vector3{a, b, c}, Winding: winding}
}

// NewQuad returns a 4-vertex Face.
func NewQuad(a, b, c, d common.Vector3, winding common.Winding) Face {
	return Face{Kind: FaceQuad, Vertices: [4]common.Vector3{a, b, c, d}, Winding: winding}
}

// vertexCount returns 3 for a triangle, 4 for a quad.
func (f Face) vertexCount() int {
	if f.Kind == FaceQuad {
		return 4
	}
	return 3
}

// Triangles calls visit once per vertex of the triangle-fanned
// decomposition of f (a quad yields 6 vertices across its two triangles),
// in order, or in reverse order if reverse is true.
func (f Face) Triangles(reverse bool, visit func(common.Vector3)) {
	order := triangleIndexOrder[:]
	if f.Kind == FaceQuad {
		order = quadIndexOrder[:]
	}
	if !reverse {
		for _, idx := range order {
			visit(f.Vertices[idx])
		}
		return
	}
	for i := len(order) - 1; i >= 0; i-- {
		visit(f.Vertices[order[i]])
	}
}

// Normal returns the face's geometric normal, computed from its first
// three vertices: (v1-v2) x (v1-v0), normalized.
func (f Face) Normal() common.Vector3 {
	v := f.Vertices
	return v[1].Sub(v[2]).Cross(v[1].Sub(v[0])).Normalize()
}

// Center returns the unweighted average of the face's vertices.
func (f Face) Center() common.Vector3 {
	n := f.vertexCount()
	sum := common.Vector3{}
	for i := 0; i < n; i++ {
		sum = sum.Add(f.Vertices[i])
	}
	return sum.Scale(1 / float32(n))
}

// Edge returns the vertex pair (v[i], v[(i+1)%n]) forming the i-th edge of
// the face's perimeter.
func (f Face) Edge(index int) (common.Vector3, common.Vector3) {
	n := f.vertexCount()
	return f.Vertices[index%n], f.Vertices[(index+1)%n]
}

const coincidentEpsilon = 1e-5

// Contains reports whether v equals one of the face's vertices within
// coincidentEpsilon.
func (f Face) Contains(v common.Vector3) bool {
	n := f.vertexCount()
	for i := 0; i < n; i++ {
		d := f.Vertices[i].Sub(v)
		if d.Dot(d) < coincidentEpsilon*coincidentEpsilon {
			return true
		}
	}
	return false
}
