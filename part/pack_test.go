package part

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/segfault87/ldraw-go/common"
	"github.com/segfault87/ldraw-go/mesh"
)

func TestPackVerticesLayout(t *testing.T) {
	gm := GroupMesh{
		Vertices: []common.Vector3{{X: 1, Y: 2, Z: 3}},
		Normals:  []common.Vector3{{X: 0, Y: 0, Z: 1}},
	}
	buf := PackVertices(gm)
	if len(buf) != vertexSize {
		t.Fatalf("len(buf) = %d, want %d", len(buf), vertexSize)
	}

	readF32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
	}
	if readF32(0) != 1 || readF32(4) != 2 || readF32(8) != 3 {
		t.Fatalf("packed position = (%v, %v, %v), want (1, 2, 3)", readF32(0), readF32(4), readF32(8))
	}
	if readF32(12) != 0 || readF32(16) != 0 || readF32(20) != 1 {
		t.Fatalf("packed normal = (%v, %v, %v), want (0, 0, 1)", readF32(12), readF32(16), readF32(20))
	}
}

func TestPackEdgesLayoutAndColorEncoding(t *testing.T) {
	vertices := []mesh.EdgeVertex{
		{Position: common.Vector3{X: 1, Y: 2, Z: 3}, Color: mesh.EncodedCurrent},
	}
	buf := PackEdges(vertices)
	if len(buf) != edgeVertexSize {
		t.Fatalf("len(buf) = %d, want %d", len(buf), edgeVertexSize)
	}
	gotColor := int32(binary.LittleEndian.Uint32(buf[12:16]))
	if int64(gotColor) != mesh.EncodedCurrent {
		t.Fatalf("packed color = %d, want %d", gotColor, mesh.EncodedCurrent)
	}
}

func TestPackOptionalEdgesLayout(t *testing.T) {
	vertices := []mesh.OptionalEdgeVertex{
		{
			Position:  common.Vector3{X: 1},
			Direction: common.Vector3{X: 2},
			Control1:  common.Vector3{X: 3},
			Control2:  common.Vector3{X: 4},
			Color:     7,
		},
	}
	buf := PackOptionalEdges(vertices)
	if len(buf) != optionalEdgeVertexSize {
		t.Fatalf("len(buf) = %d, want %d", len(buf), optionalEdgeVertexSize)
	}

	readF32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
	}
	if readF32(0) != 1 {
		t.Fatalf("Position.X = %v, want 1", readF32(0))
	}
	if readF32(12) != 2 {
		t.Fatalf("Direction.X = %v, want 2", readF32(12))
	}
	if readF32(24) != 3 {
		t.Fatalf("Control1.X = %v, want 3", readF32(24))
	}
	if readF32(36) != 4 {
		t.Fatalf("Control2.X = %v, want 4", readF32(36))
	}
	gotColor := int32(binary.LittleEndian.Uint32(buf[48:52]))
	if gotColor != 7 {
		t.Fatalf("Color = %d, want 7", gotColor)
	}
}

// TestPartPackOrdersSlotsAndAssignsContiguousSpans covers spec.md §4.6's
// packing order: uncolored, then uncolored-without-bfc, then opaque groups
// in ascending color-code order, then translucent groups in ascending
// color-code order, each carved out of one contiguous pool.
func TestPartPackOrdersSlotsAndAssignsContiguousSpans(t *testing.T) {
	p := &Part{
		UncoloredMesh:           GroupMesh{Vertices: make([]common.Vector3, 3), Normals: make([]common.Vector3, 3)},
		UncoloredWithoutBFCMesh: GroupMesh{Vertices: make([]common.Vector3, 2), Normals: make([]common.Vector3, 2)},
		OpaqueMeshes: map[uint32]*GroupMesh{
			4: {Vertices: make([]common.Vector3, 3), Normals: make([]common.Vector3, 3)},
			1: {Vertices: make([]common.Vector3, 6), Normals: make([]common.Vector3, 6)},
		},
		TranslucentMeshes: map[uint32]*GroupMesh{
			9: {Vertices: make([]common.Vector3, 3), Normals: make([]common.Vector3, 3)},
		},
	}

	packed := p.Pack()

	if len(packed.Vertices) != 3+2+3+6+3 {
		t.Fatalf("len(packed.Vertices) = %d, want %d", len(packed.Vertices), 3+2+3+6+3)
	}
	if len(packed.Normals) != len(packed.Vertices) {
		t.Fatalf("len(packed.Normals) = %d, want %d", len(packed.Normals), len(packed.Vertices))
	}

	wantOrder := []struct {
		colored bool
		code    uint32
		span    uint32
	}{
		{colored: false, code: 0, span: 3},
		{colored: false, code: 0, span: 2},
		{colored: true, code: 1, span: 6},
		{colored: true, code: 4, span: 3},
		{colored: true, code: 9, span: 3},
	}
	if len(packed.Slots) != len(wantOrder) {
		t.Fatalf("len(packed.Slots) = %d, want %d", len(packed.Slots), len(wantOrder))
	}

	var start uint32
	for i, want := range wantOrder {
		slot := packed.Slots[i]
		if slot.Colored != want.colored || slot.Code != want.code {
			t.Fatalf("Slots[%d] = %+v, want colored=%v code=%d", i, slot, want.colored, want.code)
		}
		if slot.Start != start {
			t.Fatalf("Slots[%d].Start = %d, want %d", i, slot.Start, start)
		}
		if slot.Span != want.span {
			t.Fatalf("Slots[%d].Span = %d, want %d", i, slot.Span, want.span)
		}
		start += slot.Span
	}
}

func TestPackEmptyBuffersReturnEmptySlice(t *testing.T) {
	if got := PackVertices(GroupMesh{}); len(got) != 0 {
		t.Fatalf("PackVertices(empty) len = %d, want 0", len(got))
	}
	if got := PackEdges(nil); len(got) != 0 {
		t.Fatalf("PackEdges(nil) len = %d, want 0", len(got))
	}
	if got := PackOptionalEdges(nil); len(got) != 0 {
		t.Fatalf("PackOptionalEdges(nil) len = %d, want 0", len(got))
	}
}
