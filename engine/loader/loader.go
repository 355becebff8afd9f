package loader

import (
	"fmt"

	"github.com/spaghettifunk/forma/engine/core"
	"github.com/spaghettifunk/forma/engine/mesh"
	"github.com/spaghettifunk/forma/engine/scene"
	"github.com/spaghettifunk/forma/engine/systems"
)

/** @brief Outcome of a load request. Load failure is an ordinary result for
 * user supplied content, never a panic. */
type LoadResult uint8

const (
	LoadResultSuccess LoadResult = iota
	LoadResultFailure
)

func (lr LoadResult) String() string {
	if lr == LoadResultSuccess {
		return "Success"
	}
	return "Failure"
}

/** @brief configuration for the mesh loader */
type Config struct {
	/** @brief Post-process steps requested from the scene backend. */
	Flags scene.ImportFlag
	/** @brief Texture system used to re-encode raster payloads. Required. */
	Textures *systems.TextureSystem
	/** @brief Triangle retention ratio in (0,1) for optional section
	 * decimation. Zero or one disables it. */
	SimplifyRatio float32
}

/**
 * @brief Loader runs the extraction pipeline: open the source scene, bake
 * the coordinate and unit correction into the root, extract materials,
 * flatten the node tree and build geometry sections. The result is a
 * portable MeshData value detached from the source library.
 */
type Loader struct {
	flags         scene.ImportFlag
	textures      *systems.TextureSystem
	simplifyRatio float32
}

func New(config *Config) (*Loader, error) {
	if config == nil {
		return nil, fmt.Errorf("loader config is required")
	}
	if config.Textures == nil {
		return nil, fmt.Errorf("loader requires a texture system")
	}
	flags := config.Flags
	if flags == 0 {
		flags = scene.DefaultImportFlags
	}
	return &Loader{
		flags:         flags,
		textures:      config.Textures,
		simplifyRatio: config.SimplifyRatio,
	}, nil
}

/**
 * @brief LoadMeshFromAssetFile loads the model file at path and converts it
 * into mesh data. On failure the returned value is empty and the result
 * indicates failure.
 */
func (l *Loader) LoadMeshFromAssetFile(path string) (mesh.MeshData, LoadResult) {
	core.LogInfo("loading mesh from asset file `%s`", path)

	sourceScene, err := scene.Open(path, l.flags)
	if err != nil {
		core.LogError("failed to load asset file `%s`: %s", path, err.Error())
		return mesh.MeshData{}, LoadResultFailure
	}
	defer sourceScene.Release()

	return l.extract(sourceScene), LoadResultSuccess
}

/**
 * @brief LoadMeshFromAssetData converts an in-memory model buffer into mesh
 * data. On failure the returned value is empty and the result indicates
 * failure.
 */
func (l *Loader) LoadMeshFromAssetData(data []byte) (mesh.MeshData, LoadResult) {
	core.LogInfo("loading mesh from asset buffer, %d bytes", len(data))

	sourceScene, err := scene.OpenMemory(data, l.flags)
	if err != nil {
		core.LogError("failed to load asset buffer: %s", err.Error())
		return mesh.MeshData{}, LoadResultFailure
	}
	defer sourceScene.Release()

	return l.extract(sourceScene), LoadResultSuccess
}

/**
 * @brief LoadMeshFromScene runs extraction on an already opened scene
 * handle. The handle stays owned by the caller.
 */
func (l *Loader) LoadMeshFromScene(sourceScene scene.Scene) mesh.MeshData {
	return l.extract(sourceScene)
}
