package main

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func defaultOptions() previewOptions {
	return previewOptions{
		Variant: "magenta",
		Width:   32,
		Height:  32,
		Rho:     3,
		Theta:   1.5707964,
		Phi:     0.7853982,
	}
}

func TestRenderCubePreview(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cube.png")
	if err := render(defaultOptions(), out); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Errorf("image size %v", b)
	}
	if c := color.RGBAModel.Convert(img.At(16, 16)).(color.RGBA); c != (color.RGBA{255, 0, 255, 255}) {
		t.Errorf("center pixel %v; expected magenta", c)
	}
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		modify func(o *previewOptions)
	}{
		{"unknown variant", func(o *previewOptions) { o.Variant = "nope" }},
		{"bad size", func(o *previewOptions) { o.Width = 0 }},
		{"missing mesh", func(o *previewOptions) { o.MeshPath = filepath.Join(dir, "missing.obj") }},
		{"unsupported mesh", func(o *previewOptions) { o.MeshPath = filepath.Join(dir, "mesh.fbx") }},
	}
	for _, test := range tests {
		opts := defaultOptions()
		test.modify(&opts)
		if err := render(opts, filepath.Join(dir, "out.png")); err == nil {
			t.Errorf("%s: expected error", test.name)
		}
	}
}
