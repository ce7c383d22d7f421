package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/graphicslab/config"
	"github.com/mogaika/graphicslab/mesh"
	"github.com/mogaika/graphicslab/status"
)

// MeshSource provides the mesh the inspector previews and exports.
type MeshSource interface {
	Mesh() *mesh.Mesh
}

// Server is the read mostly http inspector running next to the editor.
type Server struct {
	Meshes   MeshSource
	Settings *config.SettingsState
	Status   *status.Table

	fallback *mesh.Mesh
}

func NewServer(meshes MeshSource, settings *config.SettingsState, st *status.Table) *Server {
	return &Server{
		Meshes:   meshes,
		Settings: settings,
		Status:   st,
		fallback: mesh.Cube(0.5),
	}
}

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/json/shaders", s.HandlerShaders)
	r.HandleFunc("/json/shaders/{name}", s.HandlerShader)
	r.HandleFunc("/preview/{name:[a-z_]+}.png", s.HandlerPreview)
	r.HandleFunc("/export/mesh.glb", s.HandlerExportMesh)
	r.HandleFunc("/json/status", s.HandlerStatus)
	r.HandleFunc("/ws/status", s.HandlerStatusWebsocket)
	r.HandleFunc("/json/settings", s.HandlerSettings).Methods(http.MethodGet)
	r.HandleFunc("/json/settings", s.HandlerSettingsUpdate).Methods(http.MethodPost, http.MethodPut)

	return handlers.RecoveryHandler()(r)
}

func StartServer(addr string, s *Server) error {
	h := handlers.LoggingHandler(os.Stdout, s.Router())

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
