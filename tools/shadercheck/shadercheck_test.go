package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunBuiltin(t *testing.T) {
	var out bytes.Buffer
	if code := run(nil, &out); code != 0 {
		t.Fatalf("exit code %d:\n%s", code, out.String())
	}
	if !strings.Contains(out.String(), "normal_view") {
		t.Errorf("output misses variant names:\n%s", out.String())
	}
}

func TestRunArgs(t *testing.T) {
	tests := []struct {
		args []string
		code int
	}{
		{[]string{"magenta", "outline"}, 0},
		{[]string{"no_such_shader"}, 2},
		{[]string{"-vert", "a.vert"}, 2},
		{[]string{"-vert", "missing.vert", "-frag", "missing.frag"}, 1},
		{[]string{
			"-vert", filepath.Join("..", "..", "shaders", "glsl", "diffuse_world", "vert.glsl"),
			"-frag", filepath.Join("..", "..", "shaders", "testdata", "diffuse_world_typo.frag"),
		}, 1},
	}
	for _, test := range tests {
		var out bytes.Buffer
		if code := run(test.args, &out); code != test.code {
			t.Errorf("%v: exit code %d; expected %d\n%s", test.args, code, test.code, out.String())
		}
	}
}
