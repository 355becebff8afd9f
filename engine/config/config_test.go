package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/forma/engine/scene"
	"github.com/spaghettifunk/forma/engine/systems"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	assert.Equal(t, systems.TextureContainerPNG, cfg.TextureContainer)
	assert.Equal(t, 4096, cfg.MaxTextureDimension)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 256, cfg.QueueSize)
	assert.Empty(t, cfg.ImportFlags)
	assert.Zero(t, cfg.SimplifyRatio)
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forma.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
import_flags = ["Triangulate", "GenSmoothNormals"]
texture_container = "webp"
max_texture_dimension = 1024
simplify_ratio = 0.5
watch_paths = ["assets/models"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, systems.TextureContainerWebP, cfg.TextureContainer)
	assert.Equal(t, 1024, cfg.MaxTextureDimension)
	assert.Equal(t, float32(0.5), cfg.SimplifyRatio)
	assert.Equal(t, []string{"assets/models"}, cfg.WatchPaths)

	// values absent from the file keep their defaults
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 256, cfg.QueueSize)

	assert.Equal(t, scene.FlagTriangulate|scene.FlagGenSmoothNormals, cfg.Flags())
}

func TestLoadRejectsMissingOrBrokenFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("workers = [not toml"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestFlagsResolveNames(t *testing.T) {
	cfg := Default()
	cfg.ImportFlags = []string{"Triangulate", "MakeLeftHanded", "FlipUVs"}

	flags := cfg.Flags()
	assert.Equal(t, scene.FlagTriangulate|scene.FlagMakeLeftHanded|scene.FlagFlipUVs, flags)
}

func TestFlagsSkipUnknownNames(t *testing.T) {
	cfg := Default()
	cfg.ImportFlags = []string{"Triangulate", "NoSuchFlag"}

	assert.Equal(t, scene.FlagTriangulate, cfg.Flags())
}

func TestEmptyFlagListMeansDefaultSet(t *testing.T) {
	cfg := Default()
	assert.Equal(t, scene.DefaultImportFlags, cfg.Flags())
}

func TestTextureSystemConfigMapping(t *testing.T) {
	cfg := Default()
	cfg.TextureContainer = systems.TextureContainerWebP
	cfg.MaxTextureDimension = 512

	tsc := cfg.TextureSystemConfig()
	assert.Equal(t, systems.TextureContainerWebP, tsc.Container)
	assert.Equal(t, 512, tsc.MaxTextureDimension)
}
