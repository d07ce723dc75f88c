package mesh

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Merge resolution errors.
var ErrUnknownGeometry = errors.New("merge references unknown geometry")

// MergeSpec requests that the named geometries be concatenated, in order,
// into one new geometry.
type MergeSpec struct {
	Name       string   `toml:"name"`
	Geometries []string `toml:"geometries"`
}

// MergeConfig is the optional per-source-file merge configuration, read
// from a TOML sibling of the scene file.
type MergeConfig struct {
	Merges []MergeSpec `toml:"merges"`
}

// LoadMergeConfig parses a merge configuration from a TOML file.
func LoadMergeConfig(path string) (*MergeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading merge config: %w", err)
	}
	var cfg MergeConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing merge config %s: %w", path, err)
	}
	return &cfg, nil
}

// Merge concatenates the source meshes, in order, into one mesh under a new
// name. Vertices are appended as-is; each source's indices are offset by the
// total vertex count of the sources before it. Raw index concatenation
// without that offset silently corrupts geometry. Vertices equal across
// sources are not deduplicated.
func Merge(name string, sources []*Mesh) *Mesh {
	var vertexTotal, indexTotal int
	for _, src := range sources {
		vertexTotal += len(src.Vertices)
		indexTotal += len(src.Indices)
	}

	merged := &Mesh{
		Name:     name,
		Vertices: make([]Vertex, 0, vertexTotal),
		Indices:  make([]uint32, 0, indexTotal),
	}
	for _, src := range sources {
		base := uint32(len(merged.Vertices))
		merged.Vertices = append(merged.Vertices, src.Vertices...)
		for _, idx := range src.Indices {
			merged.Indices = append(merged.Indices, base+idx)
		}
	}
	return merged
}

// Resolve applies the merge specs to a set of extracted meshes and returns
// the final meshes to emit. Named inputs are consumed into their merge
// output; meshes no spec names pass through unchanged. A spec naming a
// geometry that was not extracted is a configuration error and fails the
// whole resolution.
func Resolve(meshes []*Mesh, specs []MergeSpec) ([]*Mesh, error) {
	if len(specs) == 0 {
		return meshes, nil
	}

	byName := make(map[string]*Mesh, len(meshes))
	for _, m := range meshes {
		byName[m.Name] = m
	}

	consumed := make(map[string]bool)
	var out []*Mesh
	for _, spec := range specs {
		sources := make([]*Mesh, 0, len(spec.Geometries))
		for _, name := range spec.Geometries {
			src, ok := byName[name]
			if !ok || consumed[name] {
				return nil, fmt.Errorf("merge %q: %w: %q", spec.Name, ErrUnknownGeometry, name)
			}
			consumed[name] = true
			sources = append(sources, src)
		}
		out = append(out, Merge(spec.Name, sources))
	}

	// Keep extraction order for the pass-through meshes.
	for _, m := range meshes {
		if !consumed[m.Name] {
			out = append(out, m)
		}
	}
	return out, nil
}
