package part

import (
	"encoding/binary"
	"math"

	"github.com/segfault87/ldraw-go/mesh"
)

// vertexSize is the packed byte size of one position+normal pair: two
// 3-component float32 vectors, 12 bytes each.
const vertexSize = 24

// PackVertices serializes a parallel vertices/normals stream into a flat
// little-endian buffer of (position, normal) pairs, ready for GPU upload.
func PackVertices(gm GroupMesh) []byte {
	buf := make([]byte, len(gm.Vertices)*vertexSize)
	for i, v := range gm.Vertices {
		n := gm.Normals[i]
		off := i * vertexSize
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v.X))
		binary.LittleEndian.PutUint32(buf[off+4:off+8], math.Float32bits(v.Y))
		binary.LittleEndian.PutUint32(buf[off+8:off+12], math.Float32bits(v.Z))
		binary.LittleEndian.PutUint32(buf[off+12:off+16], math.Float32bits(n.X))
		binary.LittleEndian.PutUint32(buf[off+16:off+20], math.Float32bits(n.Y))
		binary.LittleEndian.PutUint32(buf[off+20:off+24], math.Float32bits(n.Z))
	}
	return buf
}

// slotHeaderSize is the packed byte size of one MeshSlot header: a color
// code (4 bytes), a colored/bfc flag byte packed into its own 4-byte field
// for alignment, and the {start, span} range (4 bytes each).
const slotHeaderSize = 16

// PackPackedPart serializes a PackedPart into its binary layout per
// spec.md §6.3: the pool of interleaved (position, normal) pairs, then one
// fixed-size header per named mesh slot recording where in the pool it
// starts and how far it runs.
func PackPackedPart(pp PackedPart) []byte {
	buf := make([]byte, len(pp.Vertices)*vertexSize+len(pp.Slots)*slotHeaderSize)

	for i, v := range pp.Vertices {
		n := pp.Normals[i]
		off := i * vertexSize
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v.X))
		binary.LittleEndian.PutUint32(buf[off+4:off+8], math.Float32bits(v.Y))
		binary.LittleEndian.PutUint32(buf[off+8:off+12], math.Float32bits(v.Z))
		binary.LittleEndian.PutUint32(buf[off+12:off+16], math.Float32bits(n.X))
		binary.LittleEndian.PutUint32(buf[off+16:off+20], math.Float32bits(n.Y))
		binary.LittleEndian.PutUint32(buf[off+20:off+24], math.Float32bits(n.Z))
	}

	base := len(pp.Vertices) * vertexSize
	for i, slot := range pp.Slots {
		off := base + i*slotHeaderSize
		colored := uint32(0)
		if slot.Colored {
			colored = 1
		}
		bfc := uint32(0)
		if slot.BFC {
			bfc = 1
		}
		binary.LittleEndian.PutUint32(buf[off:off+4], slot.Code)
		binary.LittleEndian.PutUint32(buf[off+4:off+8], colored<<1|bfc)
		binary.LittleEndian.PutUint32(buf[off+8:off+12], slot.Start)
		binary.LittleEndian.PutUint32(buf[off+12:off+16], slot.Span)
	}

	return buf
}

// edgeVertexSize is the packed byte size of one packed edge vertex: a
// Vector3 position (12 bytes) plus its encoded color as int32 (4 bytes).
const edgeVertexSize = 16

// PackEdges serializes a plain-edge vertex stream into a flat
// little-endian buffer. Colors are truncated to int32: codes below
// 0x80000000 (including the 0x02xxxxxx/0x04xxxxxx direct-color codes) and
// the -1/-2 sentinels survive unchanged.
func PackEdges(vertices []mesh.EdgeVertex) []byte {
	buf := make([]byte, len(vertices)*edgeVertexSize)
	for i, v := range vertices {
		off := i * edgeVertexSize
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v.Position.X))
		binary.LittleEndian.PutUint32(buf[off+4:off+8], math.Float32bits(v.Position.Y))
		binary.LittleEndian.PutUint32(buf[off+8:off+12], math.Float32bits(v.Position.Z))
		binary.LittleEndian.PutUint32(buf[off+12:off+16], uint32(int32(v.Color)))
	}
	return buf
}

// optionalEdgeVertexSize is the packed byte size of one packed optional
// (conditional) edge vertex: position, direction, and both control points
// (12 bytes each), plus the encoded color as int32 (4 bytes).
const optionalEdgeVertexSize = 52

// PackOptionalEdges serializes a conditional-edge vertex stream into a flat
// little-endian buffer.
func PackOptionalEdges(vertices []mesh.OptionalEdgeVertex) []byte {
	buf := make([]byte, len(vertices)*optionalEdgeVertexSize)
	for i, v := range vertices {
		off := i * optionalEdgeVertexSize
		putVec3 := func(at int, x, y, z float32) {
			binary.LittleEndian.PutUint32(buf[off+at:off+at+4], math.Float32bits(x))
			binary.LittleEndian.PutUint32(buf[off+at+4:off+at+8], math.Float32bits(y))
			binary.LittleEndian.PutUint32(buf[off+at+8:off+at+12], math.Float32bits(z))
		}
		putVec3(0, v.Position.X, v.Position.Y, v.Position.Z)
		putVec3(12, v.Direction.X, v.Direction.Y, v.Direction.Z)
		putVec3(24, v.Control1.X, v.Control1.Y, v.Control1.Z)
		putVec3(36, v.Control2.X, v.Control2.Y, v.Control2.Z)
		binary.LittleEndian.PutUint32(buf[off+48:off+52], uint32(int32(v.Color)))
	}
	return buf
}
