package utils

import (
	"math/rand"
	"os"
	"path/filepath"

	"github.com/Pallinder/go-randomdata"
)

// RandomNameGenerator hands out unique silly names, used for output files.
type RandomNameGenerator struct {
	used map[string]struct{}
}

// NewRandomNameGenerator seeds the shared randomdata source, equal seeds give equal names.
func NewRandomNameGenerator(seed int64) *RandomNameGenerator {
	randomdata.CustomRand(rand.New(rand.NewSource(seed)))
	return &RandomNameGenerator{used: make(map[string]struct{})}
}

func (rng *RandomNameGenerator) RandomName() string {
	for {
		name := randomdata.SillyName()
		if _, exists := rng.used[name]; !exists {
			rng.used[name] = struct{}{}
			return name
		}
	}
}

// FreeFileName returns dir/<name><ext> for a name not present on disk.
func (rng *RandomNameGenerator) FreeFileName(dir, ext string) string {
	for {
		path := filepath.Join(dir, rng.RandomName()+ext)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
	}
}
