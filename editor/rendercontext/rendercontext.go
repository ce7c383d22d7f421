// Package rendercontext releases GL objects of views that stopped being drawn.
package rendercontext

type TempDataHolder interface {
	ClearTempRenderData()
}

var global = NewStore()

func Use(dh TempDataHolder) { global.Use(dh) }
func Swap()                 { global.Swap() }
func ReleaseAll()           { global.ReleaseAll() }

// Store tracks holders used during the current and the previous frame.
type Store struct {
	used    map[TempDataHolder]struct{}
	notUsed map[TempDataHolder]struct{}
}

func NewStore() *Store {
	return &Store{
		used:    make(map[TempDataHolder]struct{}),
		notUsed: make(map[TempDataHolder]struct{}),
	}
}

// Swap ends a frame: holders not used during it are cleared.
func (s *Store) Swap() {
	for dh := range s.notUsed {
		dh.ClearTempRenderData()
	}
	s.notUsed = s.used
	s.used = make(map[TempDataHolder]struct{})
}

func (s *Store) Use(dh TempDataHolder) {
	delete(s.notUsed, dh)
	s.used[dh] = struct{}{}
}

// ReleaseAll clears every tracked holder, used before the GL context goes away.
func (s *Store) ReleaseAll() {
	for dh := range s.notUsed {
		dh.ClearTempRenderData()
	}
	for dh := range s.used {
		dh.ClearTempRenderData()
	}
	s.notUsed = make(map[TempDataHolder]struct{})
	s.used = make(map[TempDataHolder]struct{})
}

func (s *Store) Len() int { return len(s.used) + len(s.notUsed) }
