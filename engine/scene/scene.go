package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/forma/engine/math"
)

/**
 * @brief Post-process steps requested from the source-scene backend. The
 * default set matches what the extraction pipeline downstream assumes:
 * pure triangle lists, tangent data and embedded textures.
 */
type ImportFlag uint32

const (
	FlagTriangulate ImportFlag = 1 << iota
	FlagJoinIdenticalVertices
	FlagCalcTangentSpace
	FlagGenSmoothNormals
	FlagOptimizeMeshes
	FlagRemoveRedundantMaterials
	FlagImproveCacheLocality
	FlagFindInvalidData
	FlagEmbedTextures
	FlagGenUVCoords
	FlagTransformUVCoords
	FlagMakeLeftHanded
	FlagFlipUVs
)

const DefaultImportFlags = FlagTriangulate | FlagJoinIdenticalVertices |
	FlagCalcTangentSpace | FlagGenSmoothNormals | FlagOptimizeMeshes |
	FlagRemoveRedundantMaterials | FlagImproveCacheLocality |
	FlagFindInvalidData | FlagEmbedTextures | FlagGenUVCoords |
	FlagTransformUVCoords | FlagMakeLeftHanded | FlagFlipUVs

/** @brief Scene-level metadata key carrying the source unit scale. */
const MetadataKeyUnitScaleFactor = "UnitScaleFactor"

/**
 * @brief An image stored inside the source asset rather than referenced
 * externally. Two payload shapes exist:
 *   - Height > 0: Data is uncompressed BGRA8 raster data, Width*Height*4 bytes.
 *   - Height == 0: Data is an already-compressed image container (png, jpg, ...)
 *     and Width holds the byte size.
 */
type EmbeddedTexture struct {
	Path   string
	Width  uint32
	Height uint32
	Data   []byte
}

// Compressed reports whether the payload is an already-compressed container.
func (et *EmbeddedTexture) Compressed() bool {
	return et.Height == 0
}

/**
 * @brief Scene is the handle to a loaded source scene. It owns every node,
 * mesh, material and embedded texture for its lifetime; nothing handed out
 * by it may be retained after Release. The extraction pipeline copies all
 * data it needs into owned values before the handle is released.
 */
type Scene interface {
	/** @brief The root of the node hierarchy. Never nil for a loaded scene. */
	Root() Node
	MaterialCount() int
	Material(index int) Material
	MeshCount() int
	Mesh(index int) Mesh
	/** @brief Scene-level numeric metadata lookup by key. */
	Metadata(key string) (float32, bool)
	/** @brief Resolve an embedded texture by its referenced path. */
	EmbeddedTexture(path string) (*EmbeddedTexture, error)
	/** @brief Releases all backing memory. The handle is dead afterwards. */
	Release()
}

/**
 * @brief Node is a named, transform-bearing point in the source scene tree.
 * The local transform is reported in the source library's row-major 4-row
 * layout and must be transposed into the engine convention before use.
 */
type Node interface {
	Name() string
	Transformation() [16]float32
	/** @brief Overwrites the local transform. Used to bake the coordinate-system
	 * correction into the root before extraction. */
	SetTransformation(elements [16]float32)
	MeshIndices() []int
	Children() []Node
}

/**
 * @brief Mesh is one drawable primitive group of the source scene. Each
 * attribute comes with a presence flag; an absent attribute returns a nil
 * slice. All present per-vertex attributes have exactly one entry per vertex.
 */
type Mesh interface {
	HasPositions() bool
	Positions() []math.Vec3

	HasFaces() bool
	/** @brief Faces as index groups. After triangulation every face must have
	 * exactly three indices; the geometry builder treats anything else as a
	 * violated precondition. */
	Faces() [][]uint32

	HasNormals() bool
	Normals() []math.Vec3

	NumUVChannels() int
	HasTextureCoords(channel int) bool
	TextureCoords(channel int) []math.Vec2

	NumColorChannels() int
	HasVertexColors(channel int) bool
	VertexColors(channel int) []math.Vec4

	HasTangents() bool
	Tangents() []math.Tangent

	/** @brief Index into the scene's material list. */
	MaterialIndex() int
}

/**
 * @brief Material exposes the diffuse slot of a source material. Lookups can
 * fail at the library boundary; the extractor maps failures to its
 * three-state policy instead of aborting.
 */
type Material interface {
	Name() string
	DiffuseTextureCount() int
	DiffuseColor() (math.Vec4, error)
	DiffuseTexturePath(index int) (string, error)
}

/**
 * @brief Open loads the source asset at path and returns a scene handle.
 * The backend is picked from the file extension.
 */
func Open(path string, flags ImportFlag) (Scene, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return openGltf(path, flags)
	default:
		return nil, fmt.Errorf("unsupported source asset format %q: %w", filepath.Ext(path), errUnsupportedFormat)
	}
}

/**
 * @brief OpenMemory loads a source asset from an in-memory buffer. Only the
 * binary glTF container can be sniffed reliably from raw bytes.
 */
func OpenMemory(data []byte, flags ImportFlag) (Scene, error) {
	return openGltfMemory(data, flags)
}
