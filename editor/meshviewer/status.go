package meshviewer

import (
	"path/filepath"

	"github.com/mogaika/graphicslab/mesh"
	"github.com/mogaika/graphicslab/status"
)

func statusLoading(path string) {
	status.Progress(statusKey, 0, "Loading %s", filepath.Base(path))
}

func statusLoadFailed(path string, err error) {
	status.Error(statusKey, "Failed to load %s: %v", filepath.Base(path), err)
}

func statusLoaded(m *mesh.Mesh) {
	status.Info(statusKey, "%s: %d vertices, %d triangles", m.Name, len(m.Vertices), m.TrianglesCount())
}
