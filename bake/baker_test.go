package bake

import (
	"testing"

	"github.com/segfault87/ldraw-go/color"
	"github.com/segfault87/ldraw-go/common"
	"github.com/segfault87/ldraw-go/document"
)

func mirrorXMatrix() common.Matrix4 {
	m := common.Identity4()
	m[0] = -1
	return m
}

// TestBakePartDoubleNegationCancelsInversion covers spec.md §8's boundary
// scenario: a PartReference with a negative-determinant matrix, preceded
// by a BFC INVERTNEXT statement, must produce the same effective winding
// as a reference with neither — the two inversions cancel.
func TestBakePartDoubleNegationCancelsInversion(t *testing.T) {
	childAlias := common.NewPartAlias("child.dat")

	child := &document.Document{
		Bfc: document.BfcCertification{Kind: document.Certify, Winding: common.CCW},
		Commands: []document.Command{
			{
				Kind: document.CommandTriangle,
				Triangle: document.Triangle{
					Color: color.Current(),
					A:     common.Vector3{X: 0, Y: 0, Z: 0},
					B:     common.Vector3{X: 1, Y: 0, Z: 0},
					C:     common.Vector3{X: 0, Y: 1, Z: 0},
				},
			},
		},
	}

	body := document.Document{
		Commands: []document.Command{
			{
				Kind: document.CommandPartReference,
				PartReference: document.PartReference{
					Color:  color.Current(),
					Matrix: common.Identity4(),
					Name:   childAlias,
				},
			},
			{
				Kind: document.CommandMeta,
				Meta: document.Meta{Kind: document.MetaBfc, Bfc: document.BfcStatement{Kind: document.BfcInvertNext}},
			},
			{
				Kind: document.CommandPartReference,
				PartReference: document.PartReference{
					Color:  color.Current(),
					Matrix: mirrorXMatrix(),
					Name:   childAlias,
				},
			},
		},
	}

	multipart := &document.MultipartDocument{
		Body:     body,
		Subparts: map[common.PartAlias]*document.Document{childAlias: child},
	}

	p := BakePart(Resolutions{}, nil, multipart)

	// Both references carry Current color and a certified-CCW,
	// BFC-culled child, so both land in UncoloredMesh.
	gm := &p.UncoloredMesh
	if len(gm.Vertices) != 6 {
		t.Fatalf("Vertices len = %d, want 6 (two triangles)", len(gm.Vertices))
	}

	// Baseline (first reference, identity matrix, no inversions): emitted
	// non-reversed, so its first vertex is the transformed A = (0,0,0).
	if v := gm.Vertices[0]; v != (common.Vector3{X: 0, Y: 0, Z: 0}) {
		t.Fatalf("baseline triangle's first vertex = %+v, want (0,0,0)", v)
	}

	// Second reference: negative-determinant matrix + INVERTNEXT. If the
	// two inversions cancel as required, the child's winding is still CCW
	// and the triangle is emitted non-reversed — its first vertex is the
	// mirrored A, still (0,0,0). A reversed (CW) emission would instead
	// start from the mirrored C = (0,1,0).
	if v := gm.Vertices[3]; v != (common.Vector3{X: 0, Y: 0, Z: 0}) {
		t.Fatalf("double-negated triangle's first vertex = %+v, want (0,0,0) (non-reversed)", v)
	}
	if v := gm.Vertices[4]; v != (common.Vector3{X: -1, Y: 0, Z: 0}) {
		t.Fatalf("double-negated triangle's second vertex = %+v, want (-1,0,0) (mirrored B, non-reversed order)", v)
	}
}

// TestBakePartFeatureExtractionSkipsRecursion covers spec.md §8's feature
// boundary scenario: a PartReference to an enabled feature alias is
// captured as a FeatureInstance and never recursed into, leaving the mesh
// buffers untouched.
func TestBakePartFeatureExtractionSkipsRecursion(t *testing.T) {
	featureAlias := common.NewPartAlias("stud.dat")

	feature := &document.Document{
		Bfc: document.BfcCertification{Kind: document.Certify, Winding: common.CCW},
		Commands: []document.Command{
			{
				Kind: document.CommandTriangle,
				Triangle: document.Triangle{
					Color: color.Current(),
					A:     common.Vector3{X: 0, Y: 0, Z: 0},
					B:     common.Vector3{X: 1, Y: 0, Z: 0},
					C:     common.Vector3{X: 0, Y: 1, Z: 0},
				},
			},
		},
	}

	m := common.Identity4()
	m[12] = 5 // translate X by 5

	body := document.Document{
		Commands: []document.Command{
			{
				Kind: document.CommandPartReference,
				PartReference: document.PartReference{
					Color:  color.Current(),
					Matrix: m,
					Name:   featureAlias,
				},
			},
		},
	}

	multipart := &document.MultipartDocument{
		Body:     body,
		Subparts: map[common.PartAlias]*document.Document{featureAlias: feature},
	}

	enabled := map[string]struct{}{featureAlias.String(): {}}
	p := BakePart(Resolutions{}, enabled, multipart)

	instances, ok := p.Features[featureAlias]
	if !ok || len(instances) != 1 {
		t.Fatalf("Features[%q] = %v, want exactly 1 instance", featureAlias.String(), instances)
	}
	if instances[0].Matrix != m {
		t.Fatalf("feature instance matrix = %+v, want %+v", instances[0].Matrix, m)
	}

	if len(p.OpaqueMeshes) != 0 || len(p.UncoloredMesh.Vertices) != 0 {
		t.Fatal("a feature reference must not recurse into mesh emission")
	}
}

// TestBakePartPlainTriangleRoutesToUncoloredMesh covers the color stack's
// lifecycle invariant (spec.md §3/§4.3): Current sits at the base of the
// stack before traversal begins, so root-level geometry that never names
// an explicit color stays Current rather than baking into a concrete
// color, and is routed by BFC state alone into the uncolored buckets.
func TestBakePartPlainTriangleRoutesToUncoloredMesh(t *testing.T) {
	body := document.Document{
		Bfc: document.BfcCertification{Kind: document.Certify, Winding: common.CCW},
		Commands: []document.Command{
			{
				Kind: document.CommandTriangle,
				Triangle: document.Triangle{
					Color: color.Current(),
					A:     common.Vector3{X: 0, Y: 0, Z: 0},
					B:     common.Vector3{X: 1, Y: 0, Z: 0},
					C:     common.Vector3{X: 0, Y: 1, Z: 0},
				},
			},
		},
	}
	multipart := &document.MultipartDocument{Body: body}

	p := BakePart(Resolutions{}, nil, multipart)

	if len(p.OpaqueMeshes) != 0 {
		t.Fatalf("expected no OpaqueMeshes entries for Current-colored geometry, got %v", p.OpaqueMeshes)
	}
	if len(p.UncoloredMesh.Vertices) != 3 {
		t.Fatalf("expected 1 triangle (3 vertices) routed into UncoloredMesh, got %v", p.UncoloredMesh)
	}
}
