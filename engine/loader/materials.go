package loader

import (
	"github.com/spaghettifunk/forma/engine/core"
	"github.com/spaghettifunk/forma/engine/mesh"
	"github.com/spaghettifunk/forma/engine/scene"
)

/**
 * @brief Converts the scene's material list into descriptors, one to one and
 * in source order. An empty material list is noted and produces an empty
 * output, never a failure.
 */
func (l *Loader) extractMaterials(sourceScene scene.Scene) []mesh.MaterialData {
	materialCount := sourceScene.MaterialCount()
	if materialCount == 0 {
		core.LogInfo("scene has no materials")
		return []mesh.MaterialData{}
	}

	out := make([]mesh.MaterialData, 0, materialCount)
	for i := 0; i < materialCount; i++ {
		out = append(out, l.extractMaterial(sourceScene, sourceScene.Material(i)))
	}
	return out
}

/**
 * @brief Classifies one material into exactly one of the three states.
 *
 * No diffuse texture means ColorOnly; an unreadable diffuse color keeps the
 * default color and stays ColorOnly, a missing color is never an error
 * state. Exactly one texture means the embedded payload is resolved by its
 * referenced path: any resolution failure degrades this one material to
 * TextureFailed without payload and leaves the rest of the pipeline
 * untouched. A resolved pre-compressed payload is copied verbatim; a
 * resolved raw raster is re-encoded into a portable compressed container.
 * More than one diffuse texture violates the content contract and aborts.
 */
func (l *Loader) extractMaterial(sourceScene scene.Scene, material scene.Material) mesh.MaterialData {
	textureCount := material.DiffuseTextureCount()
	core.Assertf(textureCount <= 1,
		"material %q has %d diffuse textures, at most one is supported", material.Name(), textureCount)

	if textureCount == 0 {
		out := mesh.MaterialData{Interface: mesh.MaterialColorOnly}
		color, err := material.DiffuseColor()
		if err != nil {
			core.LogError("failed to read diffuse color of material %q, keeping default: %s",
				material.Name(), err.Error())
			return out
		}
		out.Color = color
		return out
	}

	path, err := material.DiffuseTexturePath(0)
	if err != nil {
		core.LogWarn("failed to read diffuse texture path of material %q: %s", material.Name(), err.Error())
		return mesh.MaterialData{Interface: mesh.MaterialTextureFailed}
	}

	embedded, err := sourceScene.EmbeddedTexture(path)
	if err != nil {
		core.LogError("failed to resolve texture `%s` of material %q: %s", path, material.Name(), err.Error())
		return mesh.MaterialData{Interface: mesh.MaterialTextureFailed}
	}

	if embedded.Compressed() {
		payload := append([]byte{}, embedded.Data...)
		return mesh.MaterialData{Interface: mesh.MaterialTextureOnly, TexturePayload: payload}
	}

	payload, err := l.textures.EncodeRaster(embedded.Data, embedded.Width, embedded.Height)
	if err != nil {
		core.LogError("failed to re-encode texture `%s` of material %q: %s", path, material.Name(), err.Error())
		return mesh.MaterialData{Interface: mesh.MaterialTextureFailed}
	}
	return mesh.MaterialData{Interface: mesh.MaterialTextureOnly, TexturePayload: payload}
}
