package mdl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/Faultbox/mdlc/pkg/mesh"
)

// Encode serializes a mesh into the MDL byte layout. The mesh invariant
// (validated at construction) already guarantees index bounds, so no
// re-validation happens here.
func Encode(m *mesh.Mesh) []byte {
	size := headerSize + len(m.Vertices)*mesh.VertexSize + 4 + len(m.Indices)*4
	buf := bytes.NewBuffer(make([]byte, 0, size))

	binary.Write(buf, binary.LittleEndian, magic)
	binary.Write(buf, binary.LittleEndian, Version)
	binary.Write(buf, binary.LittleEndian, uint32(len(m.Vertices)))
	binary.Write(buf, binary.LittleEndian, m.Vertices)
	binary.Write(buf, binary.LittleEndian, uint32(len(m.Indices)))
	binary.Write(buf, binary.LittleEndian, m.Indices)

	return buf.Bytes()
}

// EncodeFile serializes a mesh and writes it to path.
func EncodeFile(m *mesh.Mesh, path string) error {
	if err := os.WriteFile(path, Encode(m), 0644); err != nil {
		return fmt.Errorf("writing MDL file: %w", err)
	}
	return nil
}
