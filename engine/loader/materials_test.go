package loader

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/forma/engine/math"
	"github.com/spaghettifunk/forma/engine/mesh"
	"github.com/spaghettifunk/forma/engine/scene"
)

func materialScene(material *scene.MemoryMaterial, embedded map[string]*scene.EmbeddedTexture) *scene.MemoryScene {
	return &scene.MemoryScene{
		RootNode: &scene.MemoryNode{
			NodeName:  "root",
			Transform: rowMajorIdentity(),
		},
		Materials: []*scene.MemoryMaterial{material},
		Embedded:  embedded,
	}
}

func TestMaterialWithoutTextureIsColorOnly(t *testing.T) {
	l := testLoader(t)
	data := l.LoadMeshFromScene(materialScene(&scene.MemoryMaterial{
		MaterialName: "flat",
		Color:        math.NewVec4(0.2, 0.4, 0.6, 1),
	}, nil))

	require.Len(t, data.Materials, 1)
	assert.Equal(t, mesh.MaterialColorOnly, data.Materials[0].Interface)
	assert.True(t, data.Materials[0].Color.Compare(math.NewVec4(0.2, 0.4, 0.6, 1), tolerance))
	assert.Empty(t, data.Materials[0].TexturePayload)
}

func TestUnreadableColorStaysColorOnlyWithDefault(t *testing.T) {
	l := testLoader(t)
	data := l.LoadMeshFromScene(materialScene(&scene.MemoryMaterial{
		MaterialName: "broken",
		ColorErr:     errors.New("color channel unavailable"),
	}, nil))

	require.Len(t, data.Materials, 1)
	assert.Equal(t, mesh.MaterialColorOnly, data.Materials[0].Interface)
	assert.True(t, data.Materials[0].Color.Compare(math.NewVec4Zero(), tolerance))
}

func TestUnresolvableTextureDegradesToTextureFailed(t *testing.T) {
	l := testLoader(t)
	data := l.LoadMeshFromScene(materialScene(&scene.MemoryMaterial{
		MaterialName: "missing",
		TextureCount: 1,
		TexturePath:  "*0",
	}, nil)) // nothing embedded

	require.Len(t, data.Materials, 1)
	assert.Equal(t, mesh.MaterialTextureFailed, data.Materials[0].Interface)
	assert.Empty(t, data.Materials[0].TexturePayload)
}

func TestUnreadableTexturePathDegradesToTextureFailed(t *testing.T) {
	l := testLoader(t)
	data := l.LoadMeshFromScene(materialScene(&scene.MemoryMaterial{
		MaterialName: "pathless",
		TextureCount: 1,
		PathErr:      errors.New("texture slot unavailable"),
	}, nil))

	require.Len(t, data.Materials, 1)
	assert.Equal(t, mesh.MaterialTextureFailed, data.Materials[0].Interface)
}

func TestPreCompressedPayloadIsCopiedVerbatim(t *testing.T) {
	blob := []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02}
	l := testLoader(t)
	data := l.LoadMeshFromScene(materialScene(&scene.MemoryMaterial{
		MaterialName: "packed",
		TextureCount: 1,
		TexturePath:  "*0",
	}, map[string]*scene.EmbeddedTexture{
		"*0": {
			Path:   "*0",
			Width:  uint32(len(blob)),
			Height: 0, // compressed container
			Data:   blob,
		},
	}))

	require.Len(t, data.Materials, 1)
	assert.Equal(t, mesh.MaterialTextureOnly, data.Materials[0].Interface)
	assert.Equal(t, blob, data.Materials[0].TexturePayload)
}

func TestRasterPayloadIsReEncoded(t *testing.T) {
	// 2x1 BGRA raster: pure blue pixel, pure red pixel, both opaque
	raster := []byte{
		0xff, 0x00, 0x00, 0xff,
		0x00, 0x00, 0xff, 0xff,
	}
	l := testLoader(t)
	data := l.LoadMeshFromScene(materialScene(&scene.MemoryMaterial{
		MaterialName: "raster",
		TextureCount: 1,
		TexturePath:  "*0",
	}, map[string]*scene.EmbeddedTexture{
		"*0": {Path: "*0", Width: 2, Height: 1, Data: raster},
	}))

	require.Len(t, data.Materials, 1)
	require.Equal(t, mesh.MaterialTextureOnly, data.Materials[0].Interface)

	img, format, err := image.Decode(bytes.NewReader(data.Materials[0].TexturePayload))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 1, img.Bounds().Dy())

	r, g, b, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), r>>8)
	assert.Equal(t, uint32(0), g>>8)
	assert.Equal(t, uint32(0xff), b>>8)
	assert.Equal(t, uint32(0xff), a>>8)
}

func TestTruncatedRasterDegradesToTextureFailed(t *testing.T) {
	l := testLoader(t)
	data := l.LoadMeshFromScene(materialScene(&scene.MemoryMaterial{
		MaterialName: "short",
		TextureCount: 1,
		TexturePath:  "*0",
	}, map[string]*scene.EmbeddedTexture{
		"*0": {Path: "*0", Width: 4, Height: 4, Data: []byte{1, 2, 3}},
	}))

	require.Len(t, data.Materials, 1)
	assert.Equal(t, mesh.MaterialTextureFailed, data.Materials[0].Interface)
}

func TestMultipleDiffuseTexturesPanics(t *testing.T) {
	l := testLoader(t)
	assert.Panics(t, func() {
		l.LoadMeshFromScene(materialScene(&scene.MemoryMaterial{
			MaterialName: "layered",
			TextureCount: 2,
		}, nil))
	})
}

func TestEmptyMaterialListYieldsEmptyOutput(t *testing.T) {
	l := testLoader(t)
	data := l.LoadMeshFromScene(&scene.MemoryScene{
		RootNode: &scene.MemoryNode{NodeName: "root", Transform: rowMajorIdentity()},
	})

	assert.Empty(t, data.Materials)
	require.Len(t, data.Nodes, 1)
}
