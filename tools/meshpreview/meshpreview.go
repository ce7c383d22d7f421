package main

import (
	"flag"
	"image/png"
	"log"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/graphicslab/camera"
	"github.com/mogaika/graphicslab/config"
	"github.com/mogaika/graphicslab/mesh"
	"github.com/mogaika/graphicslab/shaders"
	"github.com/mogaika/graphicslab/shading"
	"github.com/mogaika/graphicslab/utils"
)

type previewOptions struct {
	MeshPath string
	Variant  string
	Width    int
	Height   int
	Wire     bool
	Ortho    bool

	Rho, Theta, Phi float32
}

func render(opts previewOptions, out string) error {
	v, err := shaders.Parse(opts.Variant)
	if err != nil {
		return err
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return errors.Errorf("bad image size %dx%d", opts.Width, opts.Height)
	}

	m := mesh.Cube(0.5)
	if opts.MeshPath != "" {
		if m, err = mesh.Load(opts.MeshPath); err != nil {
			return errors.Wrapf(err, "Failed to load mesh")
		}
	}

	cam := camera.New()
	cam.SetRho(opts.Rho)
	cam.Theta = camera.WrapAngle(opts.Theta)
	cam.Phi = camera.WrapAngle(opts.Phi)
	if opts.Ortho {
		cam.Mode = camera.Orthogonal
	}

	u := shading.NewUniforms(mgl32.Ident4(), cam.View(), cam.Projection(float32(opts.Width)/float32(opts.Height)))
	img := shading.Render(m, v, &u, opts.Width, opts.Height, opts.Wire)

	f, err := os.Create(out)
	if err != nil {
		return errors.Wrapf(err, "Failed to create %q", out)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return errors.Wrapf(err, "Failed to encode png")
	}
	config.Infof("[meshpreview] %s rendered with %s into %q", m.Name, v, out)
	return nil
}

func main() {
	def := camera.New()
	var opts previewOptions
	var out, logLevel string
	flag.StringVar(&opts.MeshPath, "mesh", "", "Mesh file (obj, stl, gltf, glb), unit cube when empty")
	flag.StringVar(&opts.Variant, "shader", shaders.DiffuseView.String(), "Shader variant")
	flag.IntVar(&opts.Width, "w", 512, "Image width")
	flag.IntVar(&opts.Height, "h", 512, "Image height")
	flag.BoolVar(&opts.Wire, "wire", false, "Draw wire frame over the mesh")
	flag.BoolVar(&opts.Ortho, "ortho", false, "Orthogonal projection")
	var rho, theta, phi float64
	flag.Float64Var(&rho, "rho", float64(def.Rho), "Camera distance")
	flag.Float64Var(&theta, "theta", float64(def.Theta), "Camera azimuth, radians")
	flag.Float64Var(&phi, "phi", float64(def.Phi), "Camera elevation, radians")
	flag.StringVar(&out, "o", "", "Output png, random name in current dir when empty")
	flag.StringVar(&logLevel, "log", "info", "Log level")
	flag.Parse()

	opts.Rho, opts.Theta, opts.Phi = float32(rho), float32(theta), float32(phi)

	if level, err := config.ParseLogLevel(logLevel); err != nil {
		log.Fatal(err)
	} else {
		config.SetLogLevel(level)
	}

	if out == "" {
		out = utils.NewRandomNameGenerator(time.Now().UnixNano()).FreeFileName(".", ".png")
	}
	if err := render(opts, out); err != nil {
		log.Fatal(err)
	}
}
