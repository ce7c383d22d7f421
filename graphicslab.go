package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/mogaika/graphicslab/config"
	"github.com/mogaika/graphicslab/editor/app"
	"github.com/mogaika/graphicslab/mesh"
	"github.com/mogaika/graphicslab/shaders"
	"github.com/mogaika/graphicslab/status"
	"github.com/mogaika/graphicslab/web"
)

func init() {
	// glfw and gl calls must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	var logLevel, configPath, addr, shaderName, meshPath, vertPath, fragPath string
	flag.StringVar(&logLevel, "log", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&configPath, "config", "", "Settings file, default is graphicslab/config.yaml in user config dir")
	flag.StringVar(&addr, "http", "", "Address of web inspector, disabled when empty")
	flag.StringVar(&shaderName, "shader", shaders.DiffuseView.String(), "Initial shader variant")
	flag.StringVar(&meshPath, "mesh", "", "Mesh to load on start (obj, stl, gltf, glb)")
	flag.StringVar(&vertPath, "vert", "", "Custom vertex shader file, used together with -frag")
	flag.StringVar(&fragPath, "frag", "", "Custom fragment shader file, used together with -vert")
	flag.Parse()

	level, err := config.ParseLogLevel(logLevel)
	if err != nil {
		log.Fatal(err)
	}
	config.SetLogLevel(level)

	variant, err := shaders.Parse(shaderName)
	if err != nil {
		log.Fatal(err)
	}

	if configPath == "" {
		if configPath, err = config.DefaultSettingsPath(); err != nil {
			log.Printf("[settings] %v, settings will not be saved", err)
		}
	}
	settings, err := config.NewSettingsState(configPath)
	if err != nil {
		log.Fatal(err)
	}

	loader := mesh.NewLoader()

	if addr != "" {
		go func() {
			if err := web.StartServer(addr, web.NewServer(loader, settings, status.Default())); err != nil {
				log.Printf("[web] Server stopped: %v", err)
			}
		}()
	}

	if err := app.Run(app.Options{
		Settings: settings,
		Loader:   loader,
		Variant:  variant,
		MeshPath: meshPath,
		VertPath: vertPath,
		FragPath: fragPath,
	}); err != nil {
		log.Fatal(err)
	}
}
