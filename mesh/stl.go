package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

// LoadSTL reads ascii or binary STL. Equal positions are welded so normals come out smooth.
func LoadSTL(r io.Reader, name string) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read stl")
	}

	var triangles []mgl32.Vec3
	if isBinarySTL(data) {
		triangles, err = parseBinarySTL(data)
	} else {
		triangles, err = parseAsciiSTL(data)
	}
	if err != nil {
		return nil, err
	}
	if len(triangles) == 0 {
		return nil, errors.Errorf("stl %q has no triangles", name)
	}

	vertices := make([]mgl32.Vec3, 0, len(triangles)/2)
	indices := make([]uint32, len(triangles))
	welded := make(map[mgl32.Vec3]uint32, len(triangles)/2)
	for i, v := range triangles {
		idx, ok := welded[v]
		if !ok {
			idx = uint32(len(vertices))
			vertices = append(vertices, v)
			welded[v] = idx
		}
		indices[i] = idx
	}
	return New(name, vertices, nil, indices)
}

func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return uint64(len(data)) == stlHeaderSize+4+uint64(count)*stlTriangleSize
}

func parseBinarySTL(data []byte) ([]mgl32.Vec3, error) {
	count := int(binary.LittleEndian.Uint32(data[stlHeaderSize:]))
	result := make([]mgl32.Vec3, 0, count*3)
	pos := stlHeaderSize + 4
	for i := 0; i < count; i++ {
		tri := data[pos : pos+stlTriangleSize]
		// skip facet normal, it is recomputed
		for iVertex := 0; iVertex < 3; iVertex++ {
			var v mgl32.Vec3
			for j := 0; j < 3; j++ {
				v[j] = math.Float32frombits(binary.LittleEndian.Uint32(tri[12+iVertex*12+j*4:]))
			}
			result = append(result, v)
		}
		pos += stlTriangleSize
	}
	return result, nil
}

func parseAsciiSTL(data []byte) ([]mgl32.Vec3, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("solid")) {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "stl is neither binary nor ascii")
	}

	var result []mgl32.Vec3
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for lineNo := 1; scanner.Scan(); lineNo++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || fields[0] != "vertex" {
			continue
		}
		v, err := parseVec3(fields[1:])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		result = append(result, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "Failed to read stl")
	}
	if len(result)%3 != 0 {
		return nil, errors.Errorf("stl has %d vertices, not a triangle list", len(result))
	}
	return result, nil
}
