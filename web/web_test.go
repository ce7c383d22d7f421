package web

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mogaika/graphicslab/config"
	"github.com/mogaika/graphicslab/mesh"
	"github.com/mogaika/graphicslab/status"
)

type staticMesh struct{ m *mesh.Mesh }

func (s staticMesh) Mesh() *mesh.Mesh { return s.m }

func newTestServer(t *testing.T, m *mesh.Mesh) (*httptest.Server, *Server) {
	settings, err := config.NewSettingsState("")
	if err != nil {
		t.Fatal(err)
	}
	s := NewServer(staticMesh{m}, settings, status.NewTable())
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts, s
}

func getJson(t *testing.T, url string, expectedCode int, v interface{}) {
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != expectedCode {
		t.Fatalf("GET %s: status %d; expected %d", url, resp.StatusCode, expectedCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func TestShaders(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	var list []shaderInfo
	getJson(t, ts.URL+"/json/shaders", http.StatusOK, &list)
	if len(list) != 7 || list[0].Name != "normal" {
		t.Errorf("shaders %+v", list)
	}

	var details struct {
		Name         string `json:"name"`
		FragmentPath string `json:"fragment_path"`
		Fragment     string `json:"fragment"`
		Problems     []json.RawMessage
		Reflection   struct {
			Vertex struct {
				Uniforms []struct{ Name string }
			}
		}
	}
	getJson(t, ts.URL+"/json/shaders/diffuse_world", http.StatusOK, &details)
	if details.Name != "diffuse_world" || len(details.Problems) != 0 || !strings.Contains(details.Fragment, "light_color") {
		t.Errorf("details %+v", details)
	}
	if details.FragmentPath != "diffuse_world/frag.glsl" {
		t.Errorf("fragment path %q", details.FragmentPath)
	}
	if len(details.Reflection.Vertex.Uniforms) == 0 {
		t.Error("no vertex uniforms reflected")
	}

	var jerr struct{ Error string }
	getJson(t, ts.URL+"/json/shaders/bogus", http.StatusNotFound, &jerr)
	if jerr.Error == "" {
		t.Error("no error message")
	}
}

func TestPreview(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/preview/magenta.png?w=32&h=24")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("status %d, content type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Errorf("bounds %v", b)
	}
	r, g, b, _ := img.At(16, 12).RGBA()
	if r != 0xffff || g != 0 || b != 0xffff {
		t.Errorf("center pixel %v %v %v; expected magenta cube", r, g, b)
	}

	for _, query := range []string{"w=0", "w=abc", "h=100000", "theta=x"} {
		resp, err := http.Get(ts.URL + "/preview/normal.png?" + query)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("query %q: status %d", query, resp.StatusCode)
		}
	}
}

func TestExportMesh(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/export/mesh.glb")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("export without mesh: status %d", resp.StatusCode)
	}

	ts, _ = newTestServer(t, mesh.Cube(1))
	resp, err = http.Get(ts.URL + "/export/mesh.glb")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	m, err := mesh.DecodeGLTF(resp.Body, "cube.glb")
	if err != nil {
		t.Fatal(err)
	}
	if m.TrianglesCount() != 12 {
		t.Errorf("exported %d triangles", m.TrianglesCount())
	}
}

func TestStatusAndSettings(t *testing.T) {
	ts, s := newTestServer(t, nil)
	s.Status.Update("mesh", "Loading")

	var list []status.Status
	getJson(t, ts.URL+"/json/status", http.StatusOK, &list)
	if len(list) != 1 || list[0].Key != "mesh" {
		t.Errorf("status %+v", list)
	}

	body := bytes.NewBufferString(`{"show_fps_counter": true, "viewport_mouse_sensitivity": 100}`)
	resp, err := http.Post(ts.URL+"/json/settings", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status %d", resp.StatusCode)
	}

	var settings config.Settings
	getJson(t, ts.URL+"/json/settings", http.StatusOK, &settings)
	if !settings.Interface.ShowFPSCounter || settings.Interface.ViewportMouseSensitivity != config.MaxMouseSensitivity {
		t.Errorf("settings %+v", settings)
	}

	resp, err = http.Post(ts.URL+"/json/settings", "application/json", bytes.NewBufferString("{"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("broken settings: status %d", resp.StatusCode)
	}
}
