package collada

import (
	"errors"
	"fmt"

	"github.com/Faultbox/mdlc/pkg/math"
	"github.com/Faultbox/mdlc/pkg/mesh"
)

// Extraction errors.
var (
	ErrMissingInput    = errors.New("missing triangle input")
	ErrMissingSource   = errors.New("missing attribute source")
	ErrBadAccessor     = errors.New("unexpected accessor layout")
	ErrBadIndexStream  = errors.New("malformed triangle index stream")
	ErrAttributeBounds = errors.New("attribute index out of range")
)

// GeometryError is an extraction failure scoped to one geometry. Other
// geometries in the same document are unaffected.
type GeometryError struct {
	Geometry string
	Err      error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry %q: %v", e.Geometry, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }

// ExtractMeshes converts every geometry in the document into a mesh, baking
// in scene-node transforms. A geometry that cannot be extracted contributes
// a GeometryError instead of aborting the document.
func ExtractMeshes(doc *Document) ([]*mesh.Mesh, []error) {
	var meshes []*mesh.Mesh
	var errs []error
	for i := range doc.Geometries {
		geom := &doc.Geometries[i]
		m, err := extractGeometry(doc, geom)
		if err != nil {
			errs = append(errs, &GeometryError{Geometry: geom.Name, Err: err})
			continue
		}
		meshes = append(meshes, m)
	}
	return meshes, errs
}

// extractGeometry normalizes one geometry's independently indexed COLLADA
// attribute streams into a single unified vertex and index buffer.
func extractGeometry(doc *Document, geom *Geometry) (*mesh.Mesh, error) {
	streams, err := resolveStreams(&geom.Mesh)
	if err != nil {
		return nil, err
	}

	rawIndices, err := parseInts(geom.Mesh.Triangles.Indices)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadIndexStream, err)
	}
	if len(rawIndices)%streams.stride != 0 {
		return nil, fmt.Errorf("%w: %d indices not divisible by input stride %d",
			ErrBadIndexStream, len(rawIndices), streams.stride)
	}
	cornerCount := len(rawIndices) / streams.stride
	if cornerCount%3 != 0 {
		return nil, fmt.Errorf("%w: %d corners do not form triangles", ErrBadIndexStream, cornerCount)
	}

	// COLLADA indexes each attribute independently; collapse the index
	// tuples into one index space, reusing vertices for repeated tuples.
	type tuple struct{ pos, norm, tex int }
	seen := make(map[tuple]uint32)
	vertices := make([]mesh.Vertex, 0, cornerCount)
	indices := make([]uint32, 0, cornerCount)

	for corner := 0; corner < cornerCount; corner++ {
		base := corner * streams.stride
		key := tuple{
			pos:  rawIndices[base+streams.posOffset],
			norm: rawIndices[base+streams.normOffset],
			tex:  rawIndices[base+streams.texOffset],
		}
		idx, ok := seen[key]
		if !ok {
			v, err := streams.vertexAt(key.pos, key.norm, key.tex)
			if err != nil {
				return nil, err
			}
			idx = uint32(len(vertices))
			vertices = append(vertices, v)
			seen[key] = idx
		}
		indices = append(indices, idx)
	}

	if m, ok := doc.TransformFor(geom.ID); ok && !m.IsIdentity() {
		transformVertices(vertices, m)
	}

	return mesh.New(geom.Name, vertices, indices)
}

// attributeStreams holds the decoded position/normal/texcoord arrays and
// the per-attribute offsets into the shared triangle index stream.
type attributeStreams struct {
	positions []float32
	normals   []float32
	texCoords []float32

	posOffset  int
	normOffset int
	texOffset  int
	stride     int
}

// vertexAt assembles one vertex from per-attribute indices, bounds-checking
// each against its stream.
func (s *attributeStreams) vertexAt(pos, norm, tex int) (mesh.Vertex, error) {
	if pos*3+3 > len(s.positions) {
		return mesh.Vertex{}, fmt.Errorf("%w: position %d of %d", ErrAttributeBounds, pos, len(s.positions)/3)
	}
	if norm*3+3 > len(s.normals) {
		return mesh.Vertex{}, fmt.Errorf("%w: normal %d of %d", ErrAttributeBounds, norm, len(s.normals)/3)
	}
	if tex*2+2 > len(s.texCoords) {
		return mesh.Vertex{}, fmt.Errorf("%w: texcoord %d of %d", ErrAttributeBounds, tex, len(s.texCoords)/2)
	}
	return mesh.Vertex{
		Px: s.positions[pos*3], Py: s.positions[pos*3+1], Pz: s.positions[pos*3+2],
		Nx: s.normals[norm*3], Ny: s.normals[norm*3+1], Nz: s.normals[norm*3+2],
		Tu: s.texCoords[tex*2], Tv: s.texCoords[tex*2+1],
	}, nil
}

// resolveStreams follows the triangles inputs through the vertices
// indirection to the backing sources and decodes their float arrays.
func resolveStreams(m *Mesh) (*attributeStreams, error) {
	vertexInput := findInput(m.Triangles.Inputs, semanticVertex)
	normalInput := findInput(m.Triangles.Inputs, semanticNormal)
	texInput := findInput(m.Triangles.Inputs, semanticTexCoord)
	if vertexInput == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingInput, semanticVertex)
	}
	if normalInput == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingInput, semanticNormal)
	}
	if texInput == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingInput, semanticTexCoord)
	}

	// The VERTEX input points at <vertices>, which in turn names the
	// position source.
	if refID(vertexInput.Source) != m.Vertices.ID {
		return nil, fmt.Errorf("%w: VERTEX input %q does not match vertices id %q",
			ErrMissingSource, vertexInput.Source, m.Vertices.ID)
	}
	positionInput := findInput(m.Vertices.Inputs, semanticPosition)
	if positionInput == nil {
		return nil, fmt.Errorf("%w: vertices carry no %s input", ErrMissingInput, semanticPosition)
	}

	positions, err := decodeSource(m, positionInput.Source, 3)
	if err != nil {
		return nil, fmt.Errorf("position: %w", err)
	}
	normals, err := decodeSource(m, normalInput.Source, 3)
	if err != nil {
		return nil, fmt.Errorf("normal: %w", err)
	}
	texCoords, err := decodeSource(m, texInput.Source, 2)
	if err != nil {
		return nil, fmt.Errorf("texcoord: %w", err)
	}

	stride := 0
	for _, in := range m.Triangles.Inputs {
		if in.Offset+1 > stride {
			stride = in.Offset + 1
		}
	}

	return &attributeStreams{
		positions:  positions,
		normals:    normals,
		texCoords:  texCoords,
		posOffset:  vertexInput.Offset,
		normOffset: normalInput.Offset,
		texOffset:  texInput.Offset,
		stride:     stride,
	}, nil
}

// decodeSource finds a source by URI reference, checks its accessor stride
// and decodes its float array.
func decodeSource(m *Mesh, uri string, stride int) ([]float32, error) {
	id := refID(uri)
	for i := range m.Sources {
		src := &m.Sources[i]
		if src.ID != id {
			continue
		}
		if len(src.Accessor.Params) != stride {
			return nil, fmt.Errorf("%w: source %q has %d params, want %d",
				ErrBadAccessor, id, len(src.Accessor.Params), stride)
		}
		values, err := parseFloats(src.FloatArray.Values)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", id, err)
		}
		return values, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrMissingSource, id)
}

// findInput returns the input with the given semantic, or nil.
func findInput(inputs []Input, semantic string) *Input {
	for i := range inputs {
		if inputs[i].Semantic == semantic {
			return &inputs[i]
		}
	}
	return nil
}

// transformVertices bakes a scene transform into the vertex data in place.
// Positions take the full affine transform, normals only the linear part.
func transformVertices(vertices []mesh.Vertex, m math.Mat4) {
	for i := range vertices {
		v := &vertices[i]
		p := m.TransformPoint(math.Vec3{X: v.Px, Y: v.Py, Z: v.Pz})
		n := m.TransformDirection(math.Vec3{X: v.Nx, Y: v.Ny, Z: v.Nz})
		v.Px, v.Py, v.Pz = p.X, p.Y, p.Z
		v.Nx, v.Ny, v.Nz = n.X, n.Y, n.Z
	}
}
