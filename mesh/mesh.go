package mesh

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Mesh is an indexed triangle list with per-vertex normals.
type Mesh struct {
	ID       uuid.UUID
	Name     string
	Vertices []mgl32.Vec3
	Normals  []mgl32.Vec3
	Indices  []uint32
}

func New(name string, vertices, normals []mgl32.Vec3, indices []uint32) (*Mesh, error) {
	m := &Mesh{
		ID:       uuid.New(),
		Name:     name,
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}
	if len(m.Normals) == 0 {
		m.ComputeNormals()
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mesh) Validate() error {
	if len(m.Vertices) == 0 {
		return errors.Errorf("mesh %q has no vertices", m.Name)
	}
	if len(m.Normals) != len(m.Vertices) {
		return errors.Errorf("mesh %q has %d normals for %d vertices", m.Name, len(m.Normals), len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return errors.Errorf("mesh %q index count %d is not a multiple of 3", m.Name, len(m.Indices))
	}
	for i, index := range m.Indices {
		if int(index) >= len(m.Vertices) {
			return errors.Errorf("mesh %q index %d out of range: %d >= %d", m.Name, i, index, len(m.Vertices))
		}
	}
	return nil
}

func (m *Mesh) TrianglesCount() int { return len(m.Indices) / 3 }

// ComputeNormals replaces normals with area weighted averages of adjacent face normals.
func (m *Mesh) ComputeNormals() {
	m.Normals = make([]mgl32.Vec3, len(m.Vertices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if int(a) >= len(m.Vertices) || int(b) >= len(m.Vertices) || int(c) >= len(m.Vertices) {
			continue
		}
		// cross product length is twice the triangle area
		faceNormal := m.Vertices[b].Sub(m.Vertices[a]).Cross(m.Vertices[c].Sub(m.Vertices[a]))
		m.Normals[a] = m.Normals[a].Add(faceNormal)
		m.Normals[b] = m.Normals[b].Add(faceNormal)
		m.Normals[c] = m.Normals[c].Add(faceNormal)
	}
	for i, n := range m.Normals {
		if n.Len() > 1e-12 {
			m.Normals[i] = n.Normalize()
		}
	}
}

func vec3Bytes(list []mgl32.Vec3) []byte {
	buf := make([]byte, len(list)*12)
	for i, v := range list {
		for j := 0; j < 3; j++ {
			binary.LittleEndian.PutUint32(buf[i*12+j*4:], math.Float32bits(v[j]))
		}
	}
	return buf
}

// VertexBytes returns positions as tightly packed little-endian float32 triples.
func (m *Mesh) VertexBytes() []byte { return vec3Bytes(m.Vertices) }
func (m *Mesh) NormalBytes() []byte { return vec3Bytes(m.Normals) }

func (m *Mesh) IndexBytes() []byte { return IndicesBytes(m.Indices) }

// IndicesBytes packs indices as little-endian uint32.
func IndicesBytes(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, index := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], index)
	}
	return buf
}

func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			min[i] = float32(math.Min(float64(min[i]), float64(v[i])))
			max[i] = float32(math.Max(float64(max[i]), float64(v[i])))
		}
	}
	return
}

// WireEdges returns unique triangle edges as index pairs, smaller index first, sorted.
func (m *Mesh) WireEdges() []uint32 {
	type edge [2]uint32
	seen := make(map[edge]struct{}, len(m.Indices))
	edges := make([]edge, 0, len(m.Indices))
	add := func(a, b uint32) {
		if a > b {
			a, b = b, a
		}
		e := edge{a, b}
		if _, exists := seen[e]; exists {
			return
		}
		seen[e] = struct{}{}
		edges = append(edges, e)
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		add(a, b)
		add(b, c)
		add(a, c)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})

	result := make([]uint32, 0, len(edges)*2)
	for _, e := range edges {
		result = append(result, e[0], e[1])
	}
	return result
}

// Cube returns an axis aligned cube of the given half size with flat face normals
// and counter-clockwise front faces.
func Cube(halfSize float32) *Mesh {
	faces := []struct {
		normal mgl32.Vec3
		u, v   mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}},
	}

	m := &Mesh{ID: uuid.New(), Name: "cube"}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		center := f.normal.Mul(halfSize)
		u, v := f.u.Mul(halfSize), f.v.Mul(halfSize)
		m.Vertices = append(m.Vertices,
			center.Sub(u).Sub(v),
			center.Add(u).Sub(v),
			center.Add(u).Add(v),
			center.Sub(u).Add(v),
		)
		m.Normals = append(m.Normals, f.normal, f.normal, f.normal, f.normal)
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}
