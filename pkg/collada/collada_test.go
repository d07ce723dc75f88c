package collada

import (
	"errors"
	"strings"
	"testing"
)

// sceneDoc wraps geometry and scene fragments into a COLLADA document.
func sceneDoc(geometries, nodes string) []byte {
	return []byte(`<?xml version="1.0" encoding="utf-8"?>
<COLLADA xmlns="http://www.collada.org/2005/11/COLLADASchema" version="1.4.1">
  <library_geometries>` + geometries + `</library_geometries>
  <library_visual_scenes>
    <visual_scene id="Scene" name="Scene">` + nodes + `</visual_scene>
  </library_visual_scenes>
</COLLADA>`)
}

// triangleGeometry builds one geometry with a single triangle and fully
// independent per-attribute indexing.
func triangleGeometry(id, name string) string {
	return `
    <geometry id="` + id + `" name="` + name + `">
      <mesh>
        <source id="` + id + `-positions">
          <float_array id="` + id + `-positions-array" count="9">0 0 0 1 0 0 0 1 0</float_array>
          <technique_common>
            <accessor source="#` + id + `-positions-array" count="3" stride="3">
              <param name="X" type="float"/><param name="Y" type="float"/><param name="Z" type="float"/>
            </accessor>
          </technique_common>
        </source>
        <source id="` + id + `-normals">
          <float_array id="` + id + `-normals-array" count="3">0 0 1</float_array>
          <technique_common>
            <accessor source="#` + id + `-normals-array" count="1" stride="3">
              <param name="X" type="float"/><param name="Y" type="float"/><param name="Z" type="float"/>
            </accessor>
          </technique_common>
        </source>
        <source id="` + id + `-map">
          <float_array id="` + id + `-map-array" count="6">0 0 1 0 0 1</float_array>
          <technique_common>
            <accessor source="#` + id + `-map-array" count="3" stride="2">
              <param name="S" type="float"/><param name="T" type="float"/>
            </accessor>
          </technique_common>
        </source>
        <vertices id="` + id + `-vertices">
          <input semantic="POSITION" source="#` + id + `-positions"/>
        </vertices>
        <triangles count="1">
          <input semantic="VERTEX" source="#` + id + `-vertices" offset="0"/>
          <input semantic="NORMAL" source="#` + id + `-normals" offset="1"/>
          <input semantic="TEXCOORD" source="#` + id + `-map" offset="2"/>
          <p>0 0 0 1 0 1 2 0 2</p>
        </triangles>
      </mesh>
    </geometry>`
}

func TestParseAndExtract(t *testing.T) {
	doc, err := Parse(sceneDoc(triangleGeometry("Tri-mesh", "Tri"), ""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	meshes, errs := ExtractMeshes(doc)
	if len(errs) != 0 {
		t.Fatalf("unexpected extraction errors: %v", errs)
	}
	if len(meshes) != 1 {
		t.Fatalf("got %d meshes, want 1", len(meshes))
	}

	m := meshes[0]
	if m.Name != "Tri" {
		t.Errorf("mesh name = %q, want Tri", m.Name)
	}
	if len(m.Vertices) != 3 {
		t.Fatalf("got %d vertices, want 3", len(m.Vertices))
	}
	if len(m.Indices) != 3 {
		t.Fatalf("got %d indices, want 3", len(m.Indices))
	}

	v := m.Vertices[1]
	if v.Px != 1 || v.Py != 0 || v.Pz != 0 {
		t.Errorf("vertex 1 position = (%g,%g,%g), want (1,0,0)", v.Px, v.Py, v.Pz)
	}
	if v.Nx != 0 || v.Ny != 0 || v.Nz != 1 {
		t.Errorf("vertex 1 normal = (%g,%g,%g), want (0,0,1)", v.Nx, v.Ny, v.Nz)
	}
	if v.Tu != 1 || v.Tv != 0 {
		t.Errorf("vertex 1 texcoord = (%g,%g), want (1,0)", v.Tu, v.Tv)
	}
}

func TestExtractDeduplicatesTuples(t *testing.T) {
	// Two triangles sharing an edge: 6 corners, 4 distinct index tuples.
	geom := strings.Replace(triangleGeometry("Quad-mesh", "Quad"),
		"<float_array id=\"Quad-mesh-positions-array\" count=\"9\">0 0 0 1 0 0 0 1 0</float_array>",
		"<float_array id=\"Quad-mesh-positions-array\" count=\"12\">0 0 0 1 0 0 1 1 0 0 1 0</float_array>",
		1)
	geom = strings.Replace(geom,
		`<accessor source="#Quad-mesh-positions-array" count="3" stride="3">`,
		`<accessor source="#Quad-mesh-positions-array" count="4" stride="3">`,
		1)
	geom = strings.Replace(geom,
		"<p>0 0 0 1 0 1 2 0 2</p>",
		"<p>0 0 0 1 0 1 2 0 2 0 0 0 2 0 2 3 0 1</p>",
		1)

	doc, err := Parse(sceneDoc(geom, ""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	meshes, errs := ExtractMeshes(doc)
	if len(errs) != 0 {
		t.Fatalf("unexpected extraction errors: %v", errs)
	}

	m := meshes[0]
	if len(m.Vertices) != 4 {
		t.Errorf("got %d vertices, want 4 after dedup", len(m.Vertices))
	}
	if len(m.Indices) != 6 {
		t.Errorf("got %d indices, want 6", len(m.Indices))
	}
	// Shared corners reuse the same unified index.
	if m.Indices[0] != m.Indices[3] || m.Indices[2] != m.Indices[4] {
		t.Errorf("shared corners not deduplicated: %v", m.Indices)
	}
}

func TestExtractBakesNodeTransform(t *testing.T) {
	nodes := `
      <node id="Tri" name="Tri" type="NODE">
        <matrix sid="transform">1 0 0 10 0 1 0 20 0 0 1 30 0 0 0 1</matrix>
        <instance_geometry url="#Tri-mesh"/>
      </node>`

	doc, err := Parse(sceneDoc(triangleGeometry("Tri-mesh", "Tri"), nodes))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	meshes, errs := ExtractMeshes(doc)
	if len(errs) != 0 {
		t.Fatalf("unexpected extraction errors: %v", errs)
	}

	v := meshes[0].Vertices[0]
	if v.Px != 10 || v.Py != 20 || v.Pz != 30 {
		t.Errorf("vertex 0 position = (%g,%g,%g), want translated (10,20,30)", v.Px, v.Py, v.Pz)
	}
	// Translation must not touch normals.
	if v.Nx != 0 || v.Ny != 0 || v.Nz != 1 {
		t.Errorf("vertex 0 normal = (%g,%g,%g), want (0,0,1)", v.Nx, v.Ny, v.Nz)
	}
}

func TestExtractPartialFailure(t *testing.T) {
	// Strip the TEXCOORD input from the second geometry; the first must
	// still extract.
	broken := strings.Replace(triangleGeometry("Bad-mesh", "Bad"),
		`<input semantic="TEXCOORD" source="#Bad-mesh-map" offset="2"/>`, "", 1)
	doc, err := Parse(sceneDoc(triangleGeometry("Good-mesh", "Good")+broken, ""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	meshes, errs := ExtractMeshes(doc)
	if len(meshes) != 1 || meshes[0].Name != "Good" {
		t.Errorf("expected only Good to extract, got %d meshes", len(meshes))
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if !errors.Is(errs[0], ErrMissingInput) {
		t.Errorf("error = %v, want ErrMissingInput", errs[0])
	}
	var geomErr *GeometryError
	if !errors.As(errs[0], &geomErr) || geomErr.Geometry != "Bad" {
		t.Errorf("error does not name the failing geometry: %v", errs[0])
	}
}

func TestExtractBadIndexStream(t *testing.T) {
	geom := strings.Replace(triangleGeometry("Tri-mesh", "Tri"),
		"<p>0 0 0 1 0 1 2 0 2</p>", "<p>0 0 0 1 0</p>", 1)
	doc, err := Parse(sceneDoc(geom, ""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	_, errs := ExtractMeshes(doc)
	if len(errs) != 1 || !errors.Is(errs[0], ErrBadIndexStream) {
		t.Errorf("errors = %v, want one ErrBadIndexStream", errs)
	}
}

func TestExtractAttributeOutOfRange(t *testing.T) {
	geom := strings.Replace(triangleGeometry("Tri-mesh", "Tri"),
		"<p>0 0 0 1 0 1 2 0 2</p>", "<p>0 0 0 1 0 1 9 0 2</p>", 1)
	doc, err := Parse(sceneDoc(geom, ""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	_, errs := ExtractMeshes(doc)
	if len(errs) != 1 || !errors.Is(errs[0], ErrAttributeBounds) {
		t.Errorf("errors = %v, want one ErrAttributeBounds", errs)
	}
}

func TestParseMalformedXML(t *testing.T) {
	if _, err := Parse([]byte("<COLLADA><library_geometries>")); err == nil {
		t.Error("expected error for malformed XML")
	}
}
