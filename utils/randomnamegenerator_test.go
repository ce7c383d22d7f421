package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRandomNamesAreUnique(t *testing.T) {
	rng := NewRandomNameGenerator(1)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		name := rng.RandomName()
		if seen[name] {
			t.Fatalf("duplicate name %q", name)
		}
		seen[name] = true
	}
}

func TestFreeFileName(t *testing.T) {
	dir := t.TempDir()
	first := NewRandomNameGenerator(7).FreeFileName(dir, ".png")
	if err := os.WriteFile(first, nil, 0666); err != nil {
		t.Fatal(err)
	}

	// same seed yields the taken name first
	second := NewRandomNameGenerator(7).FreeFileName(dir, ".png")
	if second == first {
		t.Errorf("got taken name %q", second)
	}
	if filepath.Dir(second) != dir || !strings.HasSuffix(second, ".png") {
		t.Errorf("unexpected path %q", second)
	}
}
