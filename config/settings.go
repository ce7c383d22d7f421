package config

import (
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	MinMouseSensitivity = 0.1
	MaxMouseSensitivity = 10
)

type InterfaceSettings struct {
	ShowFPSCounter           bool    `yaml:"show_fps_counter" json:"show_fps_counter"`
	RevertZoom               bool    `yaml:"revert_zoom" json:"revert_zoom"`
	ViewportMouseSensitivity float32 `yaml:"viewport_mouse_sensitivity" json:"viewport_mouse_sensitivity"`
	UseTrackpad              bool    `yaml:"use_trackpad" json:"use_trackpad"`
}

type Settings struct {
	Interface InterfaceSettings `yaml:"interface" json:"interface"`
}

func DefaultSettings() Settings {
	return Settings{
		Interface: InterfaceSettings{
			ViewportMouseSensitivity: 1,
		},
	}
}

// Sanitize clamps values edited by hand into their valid ranges.
func (s *Settings) Sanitize() {
	sens := s.Interface.ViewportMouseSensitivity
	if sens < MinMouseSensitivity {
		sens = MinMouseSensitivity
	} else if sens > MaxMouseSensitivity {
		sens = MaxMouseSensitivity
	}
	s.Interface.ViewportMouseSensitivity = sens
}

func DefaultSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrapf(err, "Failed to locate user config dir")
	}
	return filepath.Join(dir, "graphicslab", "config.yaml"), nil
}

// LoadSettings reads settings from path. A missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, errors.Wrapf(err, "Failed to read settings")
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), errors.Wrapf(err, "Failed to parse settings %q", path)
	}
	s.Sanitize()
	return s, nil
}

func SaveSettings(path string, s Settings) error {
	data, err := yaml.Marshal(&s)
	if err != nil {
		return errors.Wrapf(err, "Failed to marshal settings")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "Failed to create settings dir")
	}
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "Failed to write settings")
	}
	return nil
}

// SettingsState owns the current settings and notifies observers on every change.
type SettingsState struct {
	lock      sync.Mutex
	path      string
	settings  Settings
	observers map[int]func(Settings)
	nextID    int
}

// NewSettingsState loads settings from path, creating the file with defaults
// when it does not exist yet. Empty path keeps settings in memory only.
func NewSettingsState(path string) (*SettingsState, error) {
	st := &SettingsState{
		path:      path,
		settings:  DefaultSettings(),
		observers: make(map[int]func(Settings)),
	}
	if path == "" {
		return st, nil
	}

	_, statErr := os.Stat(path)
	s, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}
	st.settings = s
	if os.IsNotExist(statErr) {
		log.Printf("[settings] Creating %q with defaults", path)
		if err := SaveSettings(path, s); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func (st *SettingsState) Path() string { return st.path }

func (st *SettingsState) Get() Settings {
	st.lock.Lock()
	defer st.lock.Unlock()
	return st.settings
}

// Update applies fn to a copy of the settings, stores and persists the result,
// then notifies observers.
func (st *SettingsState) Update(fn func(s *Settings)) error {
	st.lock.Lock()
	s := st.settings
	fn(&s)
	s.Sanitize()
	changed := s != st.settings
	st.settings = s
	observers := make([]func(Settings), 0, len(st.observers))
	for _, o := range st.observers {
		observers = append(observers, o)
	}
	st.lock.Unlock()

	if !changed {
		return nil
	}
	for _, o := range observers {
		o(s)
	}
	if st.path != "" {
		return SaveSettings(st.path, s)
	}
	return nil
}

// Observe registers fn for changes. The returned function unregisters it.
func (st *SettingsState) Observe(fn func(Settings)) (cancel func()) {
	st.lock.Lock()
	defer st.lock.Unlock()
	id := st.nextID
	st.nextID++
	st.observers[id] = fn
	return func() {
		st.lock.Lock()
		defer st.lock.Unlock()
		delete(st.observers, id)
	}
}
