package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/forma/engine/core"
	"github.com/spaghettifunk/forma/engine/scene"
	"github.com/spaghettifunk/forma/engine/systems"
)

/**
 * @brief ImporterConfig is the TOML configuration of the import pipeline.
 * Zero values fall back to the defaults from Default().
 */
type ImporterConfig struct {
	/** @brief Post-process flag names. Empty means the default set. */
	ImportFlags []string `toml:"import_flags"`
	/** @brief Container for re-encoded textures, png or webp. */
	TextureContainer string `toml:"texture_container"`
	/** @brief Hard cap on either texture dimension. */
	MaxTextureDimension int `toml:"max_texture_dimension"`
	/** @brief Triangle retention ratio in (0,1), zero disables decimation. */
	SimplifyRatio float32 `toml:"simplify_ratio"`
	/** @brief Worker count of the job system. */
	Workers int `toml:"workers"`
	/** @brief Queue capacity of the job system. */
	QueueSize int `toml:"queue_size"`
	/** @brief Directories watched for model changes by the asset manager. */
	WatchPaths []string `toml:"watch_paths"`
}

var flagsByName = map[string]scene.ImportFlag{
	"Triangulate":              scene.FlagTriangulate,
	"JoinIdenticalVertices":    scene.FlagJoinIdenticalVertices,
	"CalcTangentSpace":         scene.FlagCalcTangentSpace,
	"GenSmoothNormals":         scene.FlagGenSmoothNormals,
	"OptimizeMeshes":           scene.FlagOptimizeMeshes,
	"RemoveRedundantMaterials": scene.FlagRemoveRedundantMaterials,
	"ImproveCacheLocality":     scene.FlagImproveCacheLocality,
	"FindInvalidData":          scene.FlagFindInvalidData,
	"EmbedTextures":            scene.FlagEmbedTextures,
	"GenUVCoords":              scene.FlagGenUVCoords,
	"TransformUVCoords":        scene.FlagTransformUVCoords,
	"MakeLeftHanded":           scene.FlagMakeLeftHanded,
	"FlipUVs":                  scene.FlagFlipUVs,
}

func Default() *ImporterConfig {
	return &ImporterConfig{
		TextureContainer:    systems.TextureContainerPNG,
		MaxTextureDimension: 4096,
		Workers:             4,
		QueueSize:           256,
	}
}

/**
 * @brief Load reads a TOML configuration file and overlays it on the
 * defaults.
 */
func Load(path string) (*ImporterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file `%s`: %w", path, err)
	}

	out := Default()
	if err := toml.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to parse config file `%s`: %w", path, err)
	}
	if out.TextureContainer == "" {
		out.TextureContainer = systems.TextureContainerPNG
	}
	if out.MaxTextureDimension <= 0 {
		out.MaxTextureDimension = 4096
	}
	if out.Workers <= 0 {
		out.Workers = 4
	}
	if out.QueueSize <= 0 {
		out.QueueSize = 256
	}
	return out, nil
}

/**
 * @brief Flags resolves the configured flag names into the flag set handed
 * to the scene backend. Unknown names are logged and skipped; an empty list
 * resolves to the default set.
 */
func (c *ImporterConfig) Flags() scene.ImportFlag {
	if len(c.ImportFlags) == 0 {
		return scene.DefaultImportFlags
	}
	flags := scene.ImportFlag(0)
	for _, name := range c.ImportFlags {
		flag, found := flagsByName[name]
		if !found {
			core.LogWarn("unknown import flag %q in config, skipping", name)
			continue
		}
		flags |= flag
	}
	return flags
}

// TextureSystemConfig maps the file values onto the texture system config.
func (c *ImporterConfig) TextureSystemConfig() *systems.TextureSystemConfig {
	return &systems.TextureSystemConfig{
		MaxTextureDimension: c.MaxTextureDimension,
		Container:           c.TextureContainer,
	}
}
