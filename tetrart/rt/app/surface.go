package app

import (
	"errors"
	"fmt"

	"github.com/gekko3d/tetra/tetrart/rt/bunyk"
	"github.com/gekko3d/tetra/tetrart/rt/mesh"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var ErrNoBoundary = errors.New("app: mesh has no boundary triangles")

// BoundaryDocument builds a glTF document holding every single-owner face of
// topo as one triangle-list primitive in m's model space. A nil topo has no
// boundary.
func BoundaryDocument(m *mesh.Mesh, topo *bunyk.Topology) (*gltf.Document, error) {
	if topo == nil {
		return nil, ErrNoBoundary
	}
	boundary := topo.BoundaryTriangles()
	if len(boundary) == 0 {
		return nil, ErrNoBoundary
	}

	// Points are re-indexed so only boundary points are written.
	remap := make(map[int]uint32)
	var positions [][3]float32
	indices := make([]uint32, 0, 3*len(boundary))
	for _, ti := range boundary {
		for _, id := range topo.Triangle(ti).PointIndex {
			vi, ok := remap[id]
			if !ok {
				p := m.Point(id)
				vi = uint32(len(positions))
				remap[id] = vi
				positions = append(positions, [3]float32{float32(p[0]), float32(p[1]), float32(p[2])})
			}
			indices = append(indices, vi)
		}
	}

	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, positions)
	idx := modeler.WriteIndices(doc, indices)
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "boundary",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos},
		}},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "boundary", Mesh: gltf.Index(len(doc.Meshes) - 1)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	return doc, nil
}

// ExportBoundary writes the boundary surface of m as binary glTF.
func ExportBoundary(path string, m *mesh.Mesh, topo *bunyk.Topology) error {
	doc, err := BoundaryDocument(m, topo)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("write surface %s: %w", path, err)
	}
	return nil
}
