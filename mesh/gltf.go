package mesh

import (
	"io"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadGLTF opens a .gltf or .glb file. All triangle primitives of the single mesh
// are merged, node transforms are ignored.
func LoadGLTF(path, name string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read gltf")
	}
	return meshFromDocument(doc, name)
}

// DecodeGLTF is LoadGLTF for streams. External buffers are not resolved.
func DecodeGLTF(r io.Reader, name string) (*Mesh, error) {
	doc := &gltf.Document{}
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, errors.Wrapf(err, "Failed to read gltf")
	}
	return meshFromDocument(doc, name)
}

func meshFromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	if len(doc.Meshes) == 0 {
		return nil, errors.Errorf("gltf %q contains no meshes", name)
	}
	if len(doc.Meshes) > 1 {
		return nil, errors.Wrapf(ErrMultipleMeshes, "%d meshes in %q", len(doc.Meshes), name)
	}

	var vertices, normals []mgl32.Vec3
	var indices []uint32
	missingNormals := false

	gm := doc.Meshes[0]
	for iPrimitive, primitive := range gm.Primitives {
		if primitive.Mode != gltf.PrimitiveTriangles {
			log.Printf("[mesh] Skipping primitive %d of %q: mode %v", iPrimitive, gm.Name, primitive.Mode)
			continue
		}
		positionAccessor, ok := primitive.Attributes["POSITION"]
		if !ok {
			continue
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[positionAccessor], nil)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read mesh vertices")
		}

		var primitiveNormals [][3]float32
		if normalAccessor, ok := primitive.Attributes["NORMAL"]; ok {
			primitiveNormals, err = modeler.ReadNormal(doc, doc.Accessors[normalAccessor], nil)
			if err != nil {
				return nil, errors.Wrapf(err, "Failed to read mesh normals")
			}
		}
		if len(primitiveNormals) != len(positions) {
			missingNormals = true
		}

		var primitiveIndices []uint32
		if primitive.Indices != nil {
			primitiveIndices, err = modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
			if err != nil {
				return nil, errors.Wrapf(err, "Failed to read mesh indices")
			}
		} else {
			primitiveIndices = make([]uint32, len(positions))
			for i := range primitiveIndices {
				primitiveIndices[i] = uint32(i)
			}
		}

		indicesOffset := uint32(len(vertices))
		for i, p := range positions {
			vertices = append(vertices, mgl32.Vec3(p))
			if i < len(primitiveNormals) {
				normals = append(normals, mgl32.Vec3(primitiveNormals[i]))
			} else {
				normals = append(normals, mgl32.Vec3{})
			}
		}
		for _, index := range primitiveIndices {
			indices = append(indices, index+indicesOffset)
		}
	}

	if missingNormals {
		normals = nil
	}
	return New(name, vertices, normals, indices)
}

// ExportGLB writes the mesh as a single node binary glTF.
func (m *Mesh) ExportGLB(w io.Writer) error {
	doc := gltf.NewDocument()

	positions := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = v
	}
	normals := make([][3]float32, len(m.Normals))
	for i, n := range m.Normals {
		normals[i] = n
	}

	positionAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	indicesAccessor := modeler.WriteIndices(doc, m.Indices)

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: m.Name,
		Primitives: []*gltf.Primitive{
			{
				Indices: &indicesAccessor,
				Attributes: map[string]uint32{
					"POSITION": positionAccessor,
					"NORMAL":   normalAccessor,
				},
			},
		},
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: m.Name,
		Mesh: gltf.Index(0),
	})

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
