package meshviewer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mogaika/graphicslab/mesh"
)

func TestExportGLB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.glb")
	cube := mesh.Cube(0.5)
	if err := exportGLB(cube, path); err != nil {
		t.Fatal(err)
	}

	m, err := mesh.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != len(cube.Vertices) || m.TrianglesCount() != cube.TrianglesCount() {
		t.Errorf("exported %d vertices %d triangles; expected %d %d",
			len(m.Vertices), m.TrianglesCount(), len(cube.Vertices), cube.TrianglesCount())
	}
}

func TestExportGLBBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "cube.glb")
	if err := exportGLB(mesh.Cube(1), path); err == nil {
		t.Error("expected error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file created: %v", err)
	}
}
