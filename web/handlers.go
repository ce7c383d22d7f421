package web

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/mogaika/graphicslab/camera"
	"github.com/mogaika/graphicslab/config"
	"github.com/mogaika/graphicslab/mesh"
	"github.com/mogaika/graphicslab/shaders"
	"github.com/mogaika/graphicslab/shading"
	"github.com/mogaika/graphicslab/webutils"
)

const maxPreviewSize = 2048

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type shaderInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

type shaderDetails struct {
	shaderInfo
	VertexPath   string                     `json:"vertex_path"`
	FragmentPath string                     `json:"fragment_path"`
	Vertex       string                     `json:"vertex"`
	Fragment     string                     `json:"fragment"`
	Reflection   *shaders.ProgramReflection `json:"reflection"`
	Problems     []shaders.Problem          `json:"problems"`
}

func (s *Server) HandlerShaders(w http.ResponseWriter, r *http.Request) {
	list := make([]shaderInfo, 0)
	for _, v := range shaders.Builtin() {
		list = append(list, shaderInfo{Name: v.String(), Title: v.Title()})
	}
	webutils.WriteJson(w, list)
}

func (s *Server) HandlerShader(w http.ResponseWriter, r *http.Request) {
	v, err := shaders.Parse(mux.Vars(r)["name"])
	if err != nil {
		webutils.WriteErrorStatus(w, http.StatusNotFound, err)
		return
	}

	details := shaderDetails{
		shaderInfo: shaderInfo{Name: v.String(), Title: v.Title()},
		Vertex:     v.VertexSource(),
		Fragment:   v.FragmentSource(),
		Problems:   make([]shaders.Problem, 0),
	}
	details.VertexPath, details.FragmentPath = v.Paths()
	if details.Reflection, err = shaders.ReflectProgram(details.Vertex, details.Fragment); err != nil {
		webutils.WriteError(w, err)
		return
	}
	if err := shaders.CheckVariant(v); err != nil {
		var cerr *shaders.CheckError
		if !errors.As(err, &cerr) {
			webutils.WriteError(w, err)
			return
		}
		details.Problems = cerr.Problems
	}
	webutils.WriteJson(w, details)
}

func queryFloat(r *http.Request, key string, def float32) (float32, error) {
	str := r.URL.Query().Get(key)
	if str == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(str, 32)
	if err != nil {
		return def, errors.Errorf("param %q is not a number", key)
	}
	return float32(f), nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	str := r.URL.Query().Get(key)
	if str == "" {
		return def, nil
	}
	i, err := strconv.Atoi(str)
	if err != nil || i <= 0 || i > maxPreviewSize {
		return def, errors.Errorf("param %q must be in range [1, %d]", key, maxPreviewSize)
	}
	return i, nil
}

func (s *Server) currentMesh() *mesh.Mesh {
	if s.Meshes != nil {
		if m := s.Meshes.Mesh(); m != nil {
			return m
		}
	}
	return s.fallback
}

// HandlerPreview renders the current mesh in software with the requested variant.
func (s *Server) HandlerPreview(w http.ResponseWriter, r *http.Request) {
	v, err := shaders.Parse(mux.Vars(r)["name"])
	if err != nil {
		webutils.WriteErrorStatus(w, http.StatusNotFound, err)
		return
	}

	width, err := queryInt(r, "w", 256)
	if err != nil {
		webutils.WriteErrorStatus(w, http.StatusBadRequest, err)
		return
	}
	height, err := queryInt(r, "h", width)
	if err != nil {
		webutils.WriteErrorStatus(w, http.StatusBadRequest, err)
		return
	}
	cam := camera.New()
	if err := s.parseCamera(r, cam); err != nil {
		webutils.WriteErrorStatus(w, http.StatusBadRequest, err)
		return
	}

	u := shading.NewUniforms(mgl32.Ident4(), cam.View(), cam.Projection(float32(width)/float32(height)))
	wire := r.URL.Query().Get("wire") == "1"
	webutils.WritePNG(w, shading.Render(s.currentMesh(), v, &u, width, height, wire))
}

func (s *Server) parseCamera(r *http.Request, cam *camera.Camera) error {
	var err error
	if cam.Theta, err = queryFloat(r, "theta", cam.Theta); err != nil {
		return err
	}
	if cam.Phi, err = queryFloat(r, "phi", cam.Phi); err != nil {
		return err
	}
	rho, err := queryFloat(r, "rho", cam.Rho)
	if err != nil {
		return err
	}
	cam.SetRho(rho)
	cam.Theta = camera.WrapAngle(cam.Theta)
	cam.Phi = camera.WrapAngle(cam.Phi)
	if r.URL.Query().Get("mode") == "ortho" {
		cam.Mode = camera.Orthogonal
	}
	return nil
}

func (s *Server) HandlerExportMesh(w http.ResponseWriter, r *http.Request) {
	var m *mesh.Mesh
	if s.Meshes != nil {
		m = s.Meshes.Mesh()
	}
	if m == nil {
		webutils.WriteErrorStatus(w, http.StatusNotFound, errors.New("no mesh is loaded"))
		return
	}
	var buf bytes.Buffer
	if err := m.ExportGLB(&buf); err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Failed to export mesh"))
		return
	}
	webutils.WriteFile(w, &buf, m.Name+".glb")
}

func (s *Server) HandlerStatus(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJson(w, s.Status.Snapshot())
}

func (s *Server) HandlerStatusWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.Status.NewClient(conn)
}

func (s *Server) HandlerSettings(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJson(w, s.Settings.Get())
}

func (s *Server) HandlerSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	interfaceSettings := s.Settings.Get().Interface
	if err := webutils.ReadJson(r, &interfaceSettings); err != nil {
		webutils.WriteErrorStatus(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Settings.Update(func(st *config.Settings) { st.Interface = interfaceSettings }); err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, s.Settings.Get())
}
