package mesh

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// triangle builds a one-triangle mesh whose first vertex carries a marker
// so merge order stays observable.
func triangle(name string, marker float32) *Mesh {
	m, err := New(name, []Vertex{
		{Px: marker, Nz: 1},
		{Px: 1, Nz: 1},
		{Py: 1, Nz: 1},
	}, []uint32{0, 1, 2})
	if err != nil {
		panic(err)
	}
	return m
}

func TestMergeOffsetsIndices(t *testing.T) {
	a := triangle("a", 10)
	b := triangle("b", 20)

	merged := Merge("ab", []*Mesh{a, b})

	if len(merged.Vertices) != 6 {
		t.Fatalf("merged vertex count = %d, want 6", len(merged.Vertices))
	}
	// B's indices must be offset by A's vertex count; raw concatenation
	// would repeat 0,1,2.
	want := []uint32{0, 1, 2, 3, 4, 5}
	if !reflect.DeepEqual(merged.Indices, want) {
		t.Errorf("merged indices = %v, want %v", merged.Indices, want)
	}
	if merged.Vertices[0].Px != 10 || merged.Vertices[3].Px != 20 {
		t.Errorf("merged vertices out of order: %v", merged.Vertices)
	}
}

func TestMergeOrderPreserved(t *testing.T) {
	a := triangle("a", 10)
	b := triangle("b", 20)

	merged := Merge("ba", []*Mesh{b, a})

	if merged.Vertices[0].Px != 20 || merged.Vertices[3].Px != 10 {
		t.Errorf("merge did not preserve caller order: %v", merged.Vertices)
	}
}

func TestResolveNoSpecsPassThrough(t *testing.T) {
	meshes := []*Mesh{triangle("a", 1), triangle("b", 2)}

	out, err := Resolve(meshes, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(out) != 2 || out[0].Name != "a" || out[1].Name != "b" {
		t.Errorf("pass-through changed meshes: %v", out)
	}
}

func TestResolveConsumesInputs(t *testing.T) {
	meshes := []*Mesh{triangle("a", 1), triangle("b", 2), triangle("c", 3)}
	specs := []MergeSpec{{Name: "ab", Geometries: []string{"a", "b"}}}

	out, err := Resolve(meshes, specs)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Resolve returned %d meshes, want 2", len(out))
	}
	if out[0].Name != "ab" || len(out[0].Vertices) != 6 {
		t.Errorf("merge output wrong: %s with %d vertices", out[0].Name, len(out[0].Vertices))
	}
	// c was not named by any spec and passes through.
	if out[1].Name != "c" {
		t.Errorf("pass-through mesh = %q, want c", out[1].Name)
	}
}

func TestResolveUnknownGeometry(t *testing.T) {
	meshes := []*Mesh{triangle("a", 1)}
	specs := []MergeSpec{{Name: "ab", Geometries: []string{"a", "missing"}}}

	_, err := Resolve(meshes, specs)
	if !errors.Is(err, ErrUnknownGeometry) {
		t.Errorf("Resolve error = %v, want ErrUnknownGeometry", err)
	}
}

func TestResolveDoubleConsume(t *testing.T) {
	meshes := []*Mesh{triangle("a", 1), triangle("b", 2)}
	specs := []MergeSpec{
		{Name: "x", Geometries: []string{"a", "b"}},
		{Name: "y", Geometries: []string{"a"}},
	}

	_, err := Resolve(meshes, specs)
	if !errors.Is(err, ErrUnknownGeometry) {
		t.Errorf("Resolve error = %v, want ErrUnknownGeometry for consumed input", err)
	}
}

func TestLoadMergeConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	content := `[[merges]]
name = "terrain"
geometries = ["ground", "rocks"]

[[merges]]
name = "props"
geometries = ["barrel"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadMergeConfig(path)
	if err != nil {
		t.Fatalf("LoadMergeConfig failed: %v", err)
	}
	if len(cfg.Merges) != 2 {
		t.Fatalf("got %d merges, want 2", len(cfg.Merges))
	}
	want := MergeSpec{Name: "terrain", Geometries: []string{"ground", "rocks"}}
	if !reflect.DeepEqual(cfg.Merges[0], want) {
		t.Errorf("first merge = %+v, want %+v", cfg.Merges[0], want)
	}
}

func TestLoadMergeConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	if err := os.WriteFile(path, []byte("[[merges]\nname = "), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := LoadMergeConfig(path); err == nil {
		t.Error("expected error for malformed TOML")
	}
}
