// Package mdl implements the MDL binary model format: the compiled,
// directly loadable form of one triangle mesh.
//
// Layout (little-endian, packed):
//
//	magic        u32  "MDL\0"
//	version      u32
//	vertex_count u32
//	vertex_count × 32-byte vertex (position, normal, texcoord)
//	index_count  u32
//	index_count × u32
package mdl

import "errors"

// Version identifies the vertex layout of the current format. It must be
// bumped whenever the vertex layout changes, so that stale artifacts are
// rejected instead of misread.
const Version uint32 = 1

// Extension is the file extension for MDL artifacts.
const Extension = ".mdl"

// magic marks a file as an MDL artifact ("MDL\0" little-endian).
const magic uint32 = 0x004c444d

// headerSize covers magic, version and vertex_count.
const headerSize = 12

// MDL format errors.
var (
	ErrTruncatedData   = errors.New("truncated MDL data")
	ErrInvalidMagic    = errors.New("invalid MDL magic")
	ErrVersionMismatch = errors.New("MDL version mismatch")
	ErrSizeMismatch    = errors.New("MDL size mismatch")
	ErrIndexOutOfRange = errors.New("MDL index out of range")
)
