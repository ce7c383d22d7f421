package r3d

import (
	"io/ioutil"
	"log"

	"github.com/pkg/errors"

	"github.com/mogaika/graphicslab/config"
	"github.com/mogaika/graphicslab/shaders"
	"github.com/mogaika/graphicslab/shaders/watch"
	"github.com/mogaika/graphicslab/status"
)

const statusKey = "Shader"

var errorProgram, wireProgram *Program

type programLoader func(vert, frag string) (*Program, error)

func loadFallbacks(load programLoader) (errProg, wireProg *Program, err error) {
	for _, fb := range []struct {
		v   shaders.Variant
		dst **Program
	}{
		{shaders.Error, &errProg},
		{shaders.WireFrame, &wireProg},
	} {
		p, err := load(fb.v.VertexSource(), fb.v.FragmentSource())
		if err != nil {
			return nil, nil, errors.Wrapf(err, "Failed to build %v program", fb.v)
		}
		*fb.dst = p
	}
	return errProg, wireProg, nil
}

// Init builds the error and wire frame programs. Must be called once the GL context exists,
// before any Shader or Viewport is used.
func Init() error {
	errProg, wireProg, err := loadFallbacks(LoadProgram)
	if err != nil {
		return err
	}
	errorProgram, wireProgram = errProg, wireProg
	log.Printf("[r3d] Fallback programs loaded")
	return nil
}

// Release deletes the programs created by Init.
func Release() {
	for _, p := range []**Program{&errorProgram, &wireProgram} {
		if *p != nil {
			(*p).Delete()
			*p = nil
		}
	}
}

// ErrorProgram is the magenta program drawn in place of shaders that fail to build.
func ErrorProgram() *Program {
	if errorProgram == nil {
		panic("r3d: Init was not called")
	}
	return errorProgram
}

// WireProgram draws mesh edges with wire_color.
func WireProgram() *Program {
	if wireProgram == nil {
		panic("r3d: Init was not called")
	}
	return wireProgram
}

// Shader is a mesh program built either from an embedded variant or from files on disk.
// File shaders are rebuilt by Reload when their sources change.
type Shader struct {
	Variant            shaders.Variant
	VertPath, FragPath string

	program *Program
	failed  bool
	Err     error

	files *watch.Files
}

func NewBuiltinShader(v shaders.Variant) *Shader {
	s := &Shader{Variant: v}
	s.build()
	return s
}

func NewFileShader(vertPath, fragPath string) (*Shader, error) {
	s := &Shader{Variant: -1, VertPath: vertPath, FragPath: fragPath}
	files, err := watch.New(vertPath, fragPath)
	if err != nil {
		return nil, err
	}
	s.files = files
	s.build()
	return s, nil
}

// Sources lists where the stages come from: watched files or embedded variant files.
func (s *Shader) Sources() []string {
	if s.files != nil {
		return s.files.Paths()
	}
	vert, frag := s.Variant.Paths()
	return []string{"embedded " + vert, "embedded " + frag}
}

func (s *Shader) Name() string {
	if s.files != nil {
		return s.VertPath + " + " + s.FragPath
	}
	return s.Variant.String()
}

func (s *Shader) sources() (string, string, error) {
	if s.files == nil {
		return s.Variant.VertexSource(), s.Variant.FragmentSource(), nil
	}
	vert, err := ioutil.ReadFile(s.VertPath)
	if err != nil {
		return "", "", errors.Wrapf(err, "Failed to read vertex shader")
	}
	frag, err := ioutil.ReadFile(s.FragPath)
	if err != nil {
		return "", "", errors.Wrapf(err, "Failed to read fragment shader")
	}
	return string(vert), string(frag), nil
}

func (s *Shader) build() {
	vert, frag, err := s.sources()
	var p *Program
	if err == nil {
		if cerr := shaders.Check(vert, frag); cerr != nil {
			config.Warnf("[r3d] Shader %s preflight: %v", s.Name(), cerr)
		}
		p, err = LoadProgram(vert, frag)
	}

	if err != nil {
		log.Printf("[r3d] Shader %s failed, using error shader: %v", s.Name(), err)
		status.Error(statusKey, "%s: %v", s.Name(), err)
		s.Err = err
		s.failed = true
		p = ErrorProgram()
	} else {
		if s.failed {
			status.Finish(statusKey)
		}
		s.Err = nil
		s.failed = false
		log.Printf("[r3d] Shader %s loaded", s.Name())
	}

	if s.program != nil && s.program != errorProgram {
		s.program.Delete()
	}
	s.program = p
}

// Program returns the program to draw with, the error program when building failed.
func (s *Shader) Program() *Program { return s.program }

func (s *Shader) Failed() bool { return s.failed }

// Reload rebuilds file shaders whose sources changed and reports whether the program was replaced.
func (s *Shader) Reload() bool {
	if s.files == nil || !s.files.Changed() {
		return false
	}
	s.build()
	return true
}

// ForceReload rebuilds the program regardless of file changes.
func (s *Shader) ForceReload() {
	if s.files != nil {
		s.files.Changed()
	}
	s.build()
}

func (s *Shader) Delete() {
	if s.files != nil {
		s.files.Close()
	}
	if s.program != nil && s.program != errorProgram {
		s.program.Delete()
	}
	s.program = nil
}
