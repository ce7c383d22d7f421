package watch

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestChanged(t *testing.T) {
	dir := t.TempDir()
	vert := filepath.Join(dir, "vert.glsl")
	frag := filepath.Join(dir, "frag.glsl")
	for _, p := range []string{vert, frag} {
		if err := ioutil.WriteFile(p, []byte("#version 330 core\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	f, err := New(vert, frag)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if f.Changed() {
		t.Fatal("changed before any write")
	}

	if err := ioutil.WriteFile(frag, []byte("#version 330 core\nvoid main() {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// force a distinct modification time for file systems with coarse timestamps
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(frag, future, future); err != nil {
		t.Fatal(err)
	}

	if !f.Changed() {
		t.Fatal("write not detected")
	}

	time.Sleep(50 * time.Millisecond)
	f.Changed() // drain late notifications
	if f.Changed() {
		t.Error("change reported twice")
	}
}

func TestUntrackedFile(t *testing.T) {
	dir := t.TempDir()
	vert := filepath.Join(dir, "vert.glsl")
	if err := ioutil.WriteFile(vert, nil, 0644); err != nil {
		t.Fatal(err)
	}
	f, err := New(vert)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := ioutil.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if f.Changed() {
		t.Error("untracked file reported")
	}
}

func TestPathsAndDoubleClose(t *testing.T) {
	dir := t.TempDir()
	vert := filepath.Join(dir, "vert.glsl")
	if err := ioutil.WriteFile(vert, nil, 0644); err != nil {
		t.Fatal(err)
	}
	f, err := New(vert)
	if err != nil {
		t.Fatal(err)
	}

	if paths := f.Paths(); len(paths) != 1 || !filepath.IsAbs(paths[0]) || filepath.Base(paths[0]) != "vert.glsl" {
		t.Errorf("paths %v", paths)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}
