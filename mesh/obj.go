package mesh

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

type objCorner struct {
	position int
	normal   int // -1 when the face has no normal reference
}

// LoadOBJ reads positions, normals and faces of a Wavefront OBJ stream.
// Polygons are triangulated as fans. Corners with distinct position/normal pairs become distinct vertices.
func LoadOBJ(r io.Reader, name string) (*Mesh, error) {
	var positions, normals []mgl32.Vec3
	var faces [][]objCorner
	objects := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v", "vn":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			if fields[0] == "v" {
				positions = append(positions, v)
			} else {
				normals = append(normals, v)
			}
		case "f":
			if len(fields) < 4 {
				return nil, errors.Errorf("line %d: face with %d corners", lineNo, len(fields)-1)
			}
			face := make([]objCorner, len(fields)-1)
			for i, ref := range fields[1:] {
				c, err := parseObjCorner(ref, len(positions), len(normals))
				if err != nil {
					return nil, errors.Wrapf(err, "line %d", lineNo)
				}
				face[i] = c
			}
			faces = append(faces, face)
		case "o":
			objects++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "Failed to read obj")
	}
	if objects > 1 {
		return nil, errors.Wrapf(ErrMultipleMeshes, "%d objects in %q", objects, name)
	}

	m := &Mesh{Name: name}
	vertexIndex := make(map[objCorner]uint32)
	haveNormals := true
	corner := func(c objCorner) uint32 {
		if idx, ok := vertexIndex[c]; ok {
			return idx
		}
		idx := uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices, positions[c.position])
		if c.normal >= 0 {
			m.Normals = append(m.Normals, normals[c.normal])
		} else {
			haveNormals = false
			m.Normals = append(m.Normals, mgl32.Vec3{})
		}
		vertexIndex[c] = idx
		return idx
	}
	for _, face := range faces {
		first := corner(face[0])
		for i := 1; i+1 < len(face); i++ {
			m.Indices = append(m.Indices, first, corner(face[i]), corner(face[i+1]))
		}
	}

	if !haveNormals {
		m.Normals = nil
	}
	return New(name, m.Vertices, m.Normals, m.Indices)
}

func parseVec3(fields []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	if len(fields) < 3 {
		return v, errors.Errorf("expected 3 components, got %d", len(fields))
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, errors.Wrapf(err, "component %d", i)
		}
		v[i] = float32(f)
	}
	return v, nil
}

// resolveObjIndex converts 1-based or negative (relative) references to 0-based indices.
func resolveObjIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i = count + i
	} else {
		i--
	}
	if i < 0 || i >= count {
		return 0, errors.Errorf("reference %s out of range (%d defined)", s, count)
	}
	return i, nil
}

func parseObjCorner(ref string, positionsCount, normalsCount int) (objCorner, error) {
	parts := strings.Split(ref, "/")
	c := objCorner{normal: -1}

	var err error
	if c.position, err = resolveObjIndex(parts[0], positionsCount); err != nil {
		return c, errors.Wrapf(err, "vertex %q", ref)
	}
	if len(parts) >= 3 && parts[2] != "" {
		if c.normal, err = resolveObjIndex(parts[2], normalsCount); err != nil {
			return c, errors.Wrapf(err, "normal %q", ref)
		}
	}
	return c, nil
}
