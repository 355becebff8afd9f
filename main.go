/*
Demo application that imports a model file, builds a live component tree
from it and keeps re-importing while the file changes on disk.
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spaghettifunk/forma/engine/assets"
	"github.com/spaghettifunk/forma/engine/components"
	"github.com/spaghettifunk/forma/engine/config"
	"github.com/spaghettifunk/forma/engine/constructor"
	"github.com/spaghettifunk/forma/engine/core"
	"github.com/spaghettifunk/forma/engine/loader"
	"github.com/spaghettifunk/forma/engine/systems"
)

const configFile = "forma.toml"

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("usage: %s <model.gltf|model.glb>\n", os.Args[0])
		os.Exit(1)
	}
	modelPath := os.Args[1]

	cfg := config.Default()
	if _, err := os.Stat(configFile); err == nil {
		loaded, err := config.Load(configFile)
		if err != nil {
			core.LogFatal(err.Error())
		}
		cfg = loaded
	}

	textures, err := systems.NewTextureSystem(cfg.TextureSystemConfig())
	if err != nil {
		core.LogFatal(err.Error())
	}

	meshLoader, err := loader.New(&loader.Config{
		Flags:         cfg.Flags(),
		Textures:      textures,
		SimplifyRatio: cfg.SimplifyRatio,
	})
	if err != nil {
		core.LogFatal(err.Error())
	}

	jobs, err := systems.NewJobSystem(cfg.Workers, cfg.QueueSize)
	if err != nil {
		core.LogFatal(err.Error())
	}
	defer jobs.Shutdown()

	treeBuilder, err := constructor.New(&constructor.Config{
		Builder:  components.ProceduralMeshBuilder{},
		Textures: textures,
	})
	if err != nil {
		core.LogFatal(err.Error())
	}

	template := constructor.NewBaseMaterialTemplate("BaseMaterial")

	actor := components.NewActor("ImportedModel")

	data, result := meshLoader.LoadMeshFromAssetFile(modelPath)
	if result != loader.LoadResultSuccess {
		core.LogFatal("import of `%s` failed", modelPath)
	}

	root := treeBuilder.ConstructMeshComponentTree(actor, &data, template, false)
	core.LogInfo("imported `%s`: %d components registered, root `%s`",
		modelPath, len(actor.RegisteredComponents()), root.Name())

	// store the portable value next to the model for later reuse
	cachePath := modelPath + ".meshdata"
	if err := data.SaveFile(cachePath); err != nil {
		core.LogWarn(err.Error())
	} else {
		core.LogInfo("cached mesh data at `%s`", cachePath)
	}

	manager, err := assets.NewAssetManager(meshLoader)
	if err != nil {
		core.LogFatal(err.Error())
	}
	if err := manager.Initialize(filepath.Dir(modelPath)); err != nil {
		core.LogFatal(err.Error())
	}
	defer manager.Shutdown()

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	core.LogInfo("watching `%s` for changes, ctrl-c to stop", filepath.Dir(modelPath))
	for {
		select {
		case event, ok := <-manager.Reimports():
			if !ok {
				return
			}
			if event.Result != loader.LoadResultSuccess {
				core.LogWarn("reimport of `%s` failed", event.Path)
				continue
			}
			core.LogInfo("reimported `%s`: %d nodes, %d sections",
				event.Path, len(event.Data.Nodes), event.Data.SectionCount())
		case <-sigCh:
			return
		}
	}
}
