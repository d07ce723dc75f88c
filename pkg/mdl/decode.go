package mdl

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"unsafe"

	"github.com/Faultbox/mdlc/pkg/mesh"
)

// View is a typed read-only view over an encoded MDL buffer. It borrows the
// buffer passed to Decode; the buffer must outlive the view. When the
// buffer happens to be misaligned for direct reinterpretation the view owns
// copied slices instead, reported by Copied.
type View struct {
	vertices []mesh.Vertex
	indices  []uint32
	copied   bool
}

// Vertices returns the vertex sequence. The slice aliases the decoded
// buffer unless Copied reports true.
func (v *View) Vertices() []mesh.Vertex { return v.vertices }

// Indices returns the triangle index sequence.
func (v *View) Indices() []uint32 { return v.indices }

// VertexCount returns the number of vertices.
func (v *View) VertexCount() int { return len(v.vertices) }

// IndexCount returns the number of indices.
func (v *View) IndexCount() int { return len(v.indices) }

// Copied reports whether the view holds copies rather than aliasing the
// decoded buffer.
func (v *View) Copied() bool { return v.copied }

// Decode validates an encoded MDL buffer and returns a typed view over it.
// Ownership of data stays with the caller; the returned view borrows it for
// zero-copy access, so data must not be mutated or freed while the view is
// in use.
//
// This is the single trust boundary between bytes from storage and typed
// geometry: version, size and index bounds are all checked here, and the
// one byte-to-struct reinterpretation in the package happens at the end of
// this function, only after every check passed and only on an aligned base
// address.
func Decode(data []byte) (*View, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrTruncatedData, len(data), headerSize)
	}

	if got := binary.LittleEndian.Uint32(data[0:4]); got != magic {
		return nil, fmt.Errorf("%w: %#08x", ErrInvalidMagic, got)
	}
	if got := binary.LittleEndian.Uint32(data[4:8]); got != Version {
		return nil, fmt.Errorf("%w: artifact version %d, decoder expects %d", ErrVersionMismatch, got, Version)
	}

	vertexCount := binary.LittleEndian.Uint32(data[8:12])
	vertexBytes := uint64(vertexCount) * mesh.VertexSize

	// The index count sits after the vertex payload; make sure it is
	// reachable before trusting it.
	indexCountOff := headerSize + vertexBytes
	if uint64(len(data)) < indexCountOff+4 {
		return nil, fmt.Errorf("%w: %d vertices need %d bytes, buffer has %d",
			ErrSizeMismatch, vertexCount, indexCountOff+4, len(data))
	}
	indexCount := binary.LittleEndian.Uint32(data[indexCountOff : indexCountOff+4])

	// Declared counts must account for the buffer exactly; shortfall and
	// surplus both fail.
	expected := indexCountOff + 4 + uint64(indexCount)*4
	if uint64(len(data)) != expected {
		return nil, fmt.Errorf("%w: %d vertices and %d indices declare %d bytes, buffer has %d",
			ErrSizeMismatch, vertexCount, indexCount, expected, len(data))
	}

	view := &View{}
	vertexData := data[headerSize:indexCountOff]
	indexData := data[indexCountOff+4:]

	// A base address aligned for Vertex is also aligned for uint32, and
	// both payload offsets are multiples of 4, so one check covers the
	// vertex and index views.
	aligned := uintptr(unsafe.Pointer(unsafe.SliceData(data)))%unsafe.Alignof(mesh.Vertex{}) == 0

	if aligned {
		if vertexCount > 0 {
			view.vertices = unsafe.Slice((*mesh.Vertex)(unsafe.Pointer(unsafe.SliceData(vertexData))), vertexCount)
		}
		if indexCount > 0 {
			view.indices = unsafe.Slice((*uint32)(unsafe.Pointer(unsafe.SliceData(indexData))), indexCount)
		}
	} else {
		// Unaligned reinterpretation is undefined behavior; rebuild by
		// copying instead.
		view.copied = true
		view.vertices = copyVertices(vertexData, vertexCount)
		view.indices = make([]uint32, indexCount)
		for i := range view.indices {
			view.indices[i] = binary.LittleEndian.Uint32(indexData[i*4 : i*4+4])
		}
	}

	for i, idx := range view.indices {
		if idx >= vertexCount {
			return nil, fmt.Errorf("%w: index %d at position %d, %d vertices", ErrIndexOutOfRange, idx, i, vertexCount)
		}
	}

	return view, nil
}

// DecodeFile reads and decodes an MDL artifact from disk. The returned
// view owns its backing buffer, so no lifetime constraint applies.
func DecodeFile(path string) (*View, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading MDL file: %w", err)
	}
	return Decode(data)
}

// copyVertices rebuilds a vertex slice field by field from packed bytes.
func copyVertices(data []byte, count uint32) []mesh.Vertex {
	vertices := make([]mesh.Vertex, count)
	for i := range vertices {
		off := i * mesh.VertexSize
		vertices[i] = mesh.Vertex{
			Px: f32(data[off+0:]), Py: f32(data[off+4:]), Pz: f32(data[off+8:]),
			Nx: f32(data[off+12:]), Ny: f32(data[off+16:]), Nz: f32(data[off+20:]),
			Tu: f32(data[off+24:]), Tv: f32(data[off+28:]),
		}
	}
	return vertices
}

func f32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[:4]))
}
