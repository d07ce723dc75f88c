// Package collada reads the subset of COLLADA XML the model pipeline
// consumes: triangulated geometry with position, normal and texture
// coordinate streams, plus per-node scene transforms.
package collada

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/mdlc/pkg/math"
)

// Semantic values recognised on <input> tags.
const (
	semanticVertex   = "VERTEX"
	semanticPosition = "POSITION"
	semanticNormal   = "NORMAL"
	semanticTexCoord = "TEXCOORD"
)

// Document is the root COLLADA element.
type Document struct {
	XMLName    xml.Name      `xml:"COLLADA"`
	Geometries []Geometry    `xml:"library_geometries>geometry"`
	Scenes     []VisualScene `xml:"library_visual_scenes>visual_scene"`
}

// Geometry is one <geometry> element.
type Geometry struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
	Mesh Mesh   `xml:"mesh"`
}

// Mesh is a <mesh> element: attribute sources, the vertices indirection and
// the triangle index stream.
type Mesh struct {
	Sources   []Source  `xml:"source"`
	Vertices  Vertices  `xml:"vertices"`
	Triangles Triangles `xml:"triangles"`
}

// Source is a <source> element holding one attribute stream.
type Source struct {
	ID         string     `xml:"id,attr"`
	FloatArray FloatArray `xml:"float_array"`
	Accessor   Accessor   `xml:"technique_common>accessor"`
}

// FloatArray is a <float_array> element.
type FloatArray struct {
	ID     string `xml:"id,attr"`
	Count  int    `xml:"count,attr"`
	Values string `xml:",chardata"`
}

// Accessor is an <accessor> element describing a source's layout.
type Accessor struct {
	Source string  `xml:"source,attr"`
	Count  int     `xml:"count,attr"`
	Stride int     `xml:"stride,attr"`
	Params []Param `xml:"param"`
}

// Param is a <param> element within an accessor.
type Param struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

// Vertices is a <vertices> element, the indirection from the VERTEX
// semantic to the position source.
type Vertices struct {
	ID     string  `xml:"id,attr"`
	Inputs []Input `xml:"input"`
}

// Input is an <input> element binding a semantic to a source, with the
// index offset used inside the shared <p> stream.
type Input struct {
	Semantic string `xml:"semantic,attr"`
	Source   string `xml:"source,attr"`
	Offset   int    `xml:"offset,attr"`
}

// Triangles is a <triangles> element.
type Triangles struct {
	Count   int     `xml:"count,attr"`
	Inputs  []Input `xml:"input"`
	Indices string  `xml:"p"`
}

// VisualScene is a <visual_scene> element.
type VisualScene struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Nodes []Node `xml:"node"`
}

// Node is a scene <node> with its transform and optional geometry instance.
type Node struct {
	ID               string    `xml:"id,attr"`
	Name             string    `xml:"name,attr"`
	Matrix           string    `xml:"matrix"`
	InstanceGeometry *Instance `xml:"instance_geometry"`
}

// Instance is an <instance_geometry> reference.
type Instance struct {
	URL string `xml:"url,attr"`
}

// Parse reads a COLLADA document from raw XML bytes.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing COLLADA XML: %w", err)
	}
	return &doc, nil
}

// TransformFor returns the scene transform baked onto a geometry, looked up
// through the visual-scene node that instances it. Geometries no node
// references keep the identity transform.
func (d *Document) TransformFor(geometryID string) (math.Mat4, bool) {
	for _, scene := range d.Scenes {
		for _, node := range scene.Nodes {
			inst := node.InstanceGeometry
			if inst == nil || refID(inst.URL) != geometryID {
				continue
			}
			m, err := parseMatrix(node.Matrix)
			if err != nil {
				return math.Identity(), false
			}
			return m, true
		}
	}
	return math.Identity(), false
}

// refID strips the leading '#' from a COLLADA URI fragment reference.
func refID(uri string) string {
	return strings.TrimPrefix(uri, "#")
}

// parseMatrix decodes the 16 space-separated elements of a <matrix> tag.
func parseMatrix(values string) (math.Mat4, error) {
	fields := strings.Fields(values)
	if len(fields) != 16 {
		return math.Identity(), fmt.Errorf("matrix has %d elements, want 16", len(fields))
	}
	var m math.Mat4
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return math.Identity(), fmt.Errorf("matrix element %d: %w", i, err)
		}
		m[i] = float32(v)
	}
	return m, nil
}

// parseFloats decodes a whitespace-separated float array.
func parseFloats(values string) ([]float32, error) {
	fields := strings.Fields(values)
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// parseInts decodes a whitespace-separated unsigned integer array.
func parseInts(values string) ([]int, error) {
	fields := strings.Fields(values)
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("element %d: negative index %d", i, v)
		}
		out[i] = v
	}
	return out, nil
}
