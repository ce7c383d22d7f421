package mesh

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
	ErrMultipleMeshes    = errors.New("loading multiple meshes is not supported")
)

// Extensions lists the file extensions Load understands.
var Extensions = []string{"obj", "stl", "gltf", "glb"}

// Load reads a mesh file choosing the parser by extension.
func Load(path string) (*Mesh, error) {
	name := filepath.Base(path)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	switch ext {
	case "gltf", "glb":
		return LoadGLTF(path, name)
	case "obj", "stl":
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open mesh")
	}
	defer f.Close()

	if ext == "obj" {
		return LoadOBJ(f, name)
	}
	return LoadSTL(f, name)
}

// Loader loads meshes off the render thread. The render loop polls IsLoaded
// and picks the result up with Mesh.
type Loader struct {
	lock    sync.Mutex
	mesh    *Mesh
	err     error
	loading bool
	loaded  bool

	load func(path string) (*Mesh, error)
}

func NewLoader() *Loader {
	return &Loader{load: Load}
}

// Load blocks until the mesh is parsed or ctx is done.
func (l *Loader) Load(ctx context.Context, path string) error {
	l.lock.Lock()
	if l.loading {
		l.lock.Unlock()
		return errors.Errorf("mesh loading already in progress")
	}
	l.loading = true
	l.lock.Unlock()

	type result struct {
		mesh *Mesh
		err  error
	}
	done := make(chan result, 1)
	go func() {
		log.Printf("[mesh] Loading mesh from %q", path)
		m, err := l.load(path)
		done <- result{m, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	l.loading = false
	l.err = res.err
	if res.err != nil {
		log.Printf("[mesh] Mesh %q load failed: %v", path, res.err)
		return res.err
	}
	log.Printf("[mesh] Mesh %q is loaded: %d vertices, %d triangles",
		path, len(res.mesh.Vertices), res.mesh.TrianglesCount())
	l.mesh = res.mesh
	l.loaded = true
	return nil
}

// LoadAsync starts Load in background. The returned channel receives the load error (or nil).
func (l *Loader) LoadAsync(ctx context.Context, path string) <-chan error {
	result := make(chan error, 1)
	go func() {
		result <- l.Load(ctx, path)
	}()
	return result
}

// IsLoaded reports a finished load once, then resets until the next load finishes.
func (l *Loader) IsLoaded() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.loaded {
		l.loaded = false
		return true
	}
	return false
}

func (l *Loader) IsLoading() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.loading
}

// Mesh returns the last successfully loaded mesh.
func (l *Loader) Mesh() *Mesh {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.mesh
}

// Err returns the error of the last load.
func (l *Loader) Err() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.err
}
