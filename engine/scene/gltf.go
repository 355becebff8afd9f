package scene

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/spaghettifunk/forma/engine/core"
	"github.com/spaghettifunk/forma/engine/math"
)

var errUnsupportedFormat = errors.New("unsupported source asset format")

var mat4IdentityElements = [16]float64{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// gltfScene adapts a glTF 2.0 document to the Scene interface. All data is
// copied out of the document eagerly so the handle owns its memory.
type gltfScene struct {
	root      *gltfNode
	meshes    []*gltfMesh
	materials []*gltfMaterial
	embedded  map[string]*EmbeddedTexture
	metadata  map[string]float32
}

func (s *gltfScene) Root() Node          { return s.root }
func (s *gltfScene) MaterialCount() int  { return len(s.materials) }
func (s *gltfScene) MeshCount() int      { return len(s.meshes) }
func (s *gltfScene) Mesh(index int) Mesh { return s.meshes[index] }

func (s *gltfScene) Material(index int) Material {
	return s.materials[index]
}

func (s *gltfScene) Metadata(key string) (float32, bool) {
	value, found := s.metadata[key]
	return value, found
}

func (s *gltfScene) EmbeddedTexture(path string) (*EmbeddedTexture, error) {
	if texture, found := s.embedded[path]; found {
		return texture, nil
	}
	return nil, fmt.Errorf("texture %q: %w", path, core.ErrTextureNotEmbedded)
}

func (s *gltfScene) Release() {
	s.root = nil
	s.meshes = nil
	s.materials = nil
	s.embedded = nil
	s.metadata = nil
}

type gltfNode struct {
	name      string
	transform [16]float32
	meshes    []int
	children  []Node
}

func (n *gltfNode) Name() string                           { return n.name }
func (n *gltfNode) Transformation() [16]float32            { return n.transform }
func (n *gltfNode) SetTransformation(elements [16]float32) { n.transform = elements }
func (n *gltfNode) MeshIndices() []int                     { return n.meshes }
func (n *gltfNode) Children() []Node                       { return n.children }

type gltfMesh struct {
	positions     []math.Vec3
	faces         [][]uint32
	normals       []math.Vec3
	uvChannels    [][]math.Vec2
	colorChannels [][]math.Vec4
	tangents      []math.Tangent
	materialIndex int
}

func (gm *gltfMesh) HasPositions() bool      { return len(gm.positions) > 0 }
func (gm *gltfMesh) Positions() []math.Vec3  { return gm.positions }
func (gm *gltfMesh) HasFaces() bool          { return len(gm.faces) > 0 }
func (gm *gltfMesh) Faces() [][]uint32       { return gm.faces }
func (gm *gltfMesh) HasNormals() bool        { return len(gm.normals) > 0 }
func (gm *gltfMesh) Normals() []math.Vec3    { return gm.normals }
func (gm *gltfMesh) NumUVChannels() int      { return len(gm.uvChannels) }
func (gm *gltfMesh) NumColorChannels() int   { return len(gm.colorChannels) }
func (gm *gltfMesh) HasTangents() bool       { return len(gm.tangents) > 0 }
func (gm *gltfMesh) Tangents() []math.Tangent { return gm.tangents }
func (gm *gltfMesh) MaterialIndex() int      { return gm.materialIndex }

func (gm *gltfMesh) HasTextureCoords(channel int) bool {
	return channel < len(gm.uvChannels) && len(gm.uvChannels[channel]) > 0
}

func (gm *gltfMesh) TextureCoords(channel int) []math.Vec2 {
	if channel >= len(gm.uvChannels) {
		return nil
	}
	return gm.uvChannels[channel]
}

func (gm *gltfMesh) HasVertexColors(channel int) bool {
	return channel < len(gm.colorChannels) && len(gm.colorChannels[channel]) > 0
}

func (gm *gltfMesh) VertexColors(channel int) []math.Vec4 {
	if channel >= len(gm.colorChannels) {
		return nil
	}
	return gm.colorChannels[channel]
}

type gltfMaterial struct {
	name         string
	textureCount int
	color        math.Vec4
	texturePath  string
}

func (gm *gltfMaterial) Name() string             { return gm.name }
func (gm *gltfMaterial) DiffuseTextureCount() int { return gm.textureCount }

func (gm *gltfMaterial) DiffuseColor() (math.Vec4, error) {
	return gm.color, nil
}

func (gm *gltfMaterial) DiffuseTexturePath(index int) (string, error) {
	if index >= gm.textureCount {
		return "", fmt.Errorf("material %q has no diffuse texture slot %d", gm.name, index)
	}
	return gm.texturePath, nil
}

func openGltf(path string, flags ImportFlag) (Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		err = fmt.Errorf("failed to open source asset `%s`: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}
	return buildGltfScene(doc, flags)
}

func openGltfMemory(data []byte, flags ImportFlag) (Scene, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		err = fmt.Errorf("failed to decode source asset buffer: %w", err)
		core.LogError(err.Error())
		return nil, err
	}
	return buildGltfScene(doc, flags)
}

func buildGltfScene(doc *gltf.Document, flags ImportFlag) (Scene, error) {
	out := &gltfScene{
		metadata: gltfMetadata(doc),
		embedded: map[string]*EmbeddedTexture{},
	}

	if flags&FlagEmbedTextures != 0 {
		out.embedded = gltfEmbeddedTextures(doc)
	}

	for index, material := range doc.Materials {
		out.materials = append(out.materials, gltfBuildMaterial(doc, material, index))
	}

	// Every glTF primitive becomes one mesh of its own, split by material.
	// primitivesOf maps a document mesh to the flat mesh indices it produced.
	primitivesOf := make([][]int, len(doc.Meshes))
	for meshIndex, docMesh := range doc.Meshes {
		for primIndex, primitive := range docMesh.Primitives {
			if primitive.Mode != gltf.PrimitiveTriangles {
				core.LogWarn("mesh `%s` primitive %d has non-triangle mode %d, skipping", docMesh.Name, primIndex, primitive.Mode)
				continue
			}
			built, err := gltfBuildMesh(doc, primitive, flags)
			if err != nil {
				core.LogError("mesh `%s` primitive %d: %s", docMesh.Name, primIndex, err.Error())
				continue
			}
			primitivesOf[meshIndex] = append(primitivesOf[meshIndex], len(out.meshes))
			out.meshes = append(out.meshes, built)
		}
	}

	rootIndices, err := gltfSceneRoots(doc)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	// A synthetic root keeps the hierarchy single-rooted regardless of how
	// many top level nodes the source scene declares.
	root := &gltfNode{
		name:      "RootNode",
		transform: math.NewMat4Identity().Data,
	}
	for _, nodeIndex := range rootIndices {
		root.children = append(root.children, gltfBuildNode(doc, nodeIndex, primitivesOf, flags))
	}
	out.root = root

	return out, nil
}

func gltfSceneRoots(doc *gltf.Document) ([]int, error) {
	if len(doc.Scenes) == 0 {
		return nil, fmt.Errorf("source asset has no scenes: %w", core.ErrSceneLoadFailed)
	}
	sceneIndex := 0
	if doc.Scene != nil {
		sceneIndex = int(*doc.Scene)
	}
	roots := make([]int, 0, len(doc.Scenes[sceneIndex].Nodes))
	for _, nodeIndex := range doc.Scenes[sceneIndex].Nodes {
		roots = append(roots, int(nodeIndex))
	}
	return roots, nil
}

func gltfBuildNode(doc *gltf.Document, nodeIndex int, primitivesOf [][]int, flags ImportFlag) *gltfNode {
	docNode := doc.Nodes[nodeIndex]

	local := gltfLocalTransform(docNode)
	if flags&FlagMakeLeftHanded != 0 {
		local = mirrorTransformZ(local)
	}

	name := docNode.Name
	if name == "" {
		name = "node_" + strconv.Itoa(nodeIndex)
	}

	node := &gltfNode{
		name: name,
		// reported row-major, the engine layout is its transpose
		transform: math.NewMat4Transposed(local).Data,
	}
	if docNode.Mesh != nil {
		node.meshes = append(node.meshes, primitivesOf[int(*docNode.Mesh)]...)
	}
	for _, childIndex := range docNode.Children {
		node.children = append(node.children, gltfBuildNode(doc, int(childIndex), primitivesOf, flags))
	}
	return node
}

/**
 * @brief Decodes the local transform of a document node into the engine
 * convention. The glTF column-major element order matches the engine layout
 * directly, translation included. When no explicit matrix is present the
 * transform is composed from the TRS properties, scale first.
 */
func gltfLocalTransform(docNode *gltf.Node) math.Mat4 {
	if docNode.Matrix != mat4IdentityElements {
		out := math.Mat4{}
		for i := 0; i < 16; i++ {
			out.Data[i] = float32(docNode.Matrix[i])
		}
		return out
	}

	scale := math.NewMat4Scale(math.NewVec3(
		float32(docNode.Scale[0]), float32(docNode.Scale[1]), float32(docNode.Scale[2])))
	rotation := math.NewMat4FromQuaternion(
		float32(docNode.Rotation[0]), float32(docNode.Rotation[1]),
		float32(docNode.Rotation[2]), float32(docNode.Rotation[3]))
	translation := math.NewMat4Translation(math.NewVec3(
		float32(docNode.Translation[0]), float32(docNode.Translation[1]), float32(docNode.Translation[2])))

	return scale.Mul(rotation).Mul(translation)
}

/**
 * @brief Converts a transform between right and left handed coordinate
 * systems by mirroring the Z axis on both sides. Elements with exactly one
 * index on the Z row or column change sign.
 */
func mirrorTransformZ(transform math.Mat4) math.Mat4 {
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if (row == 2) != (col == 2) {
				transform.Data[row*4+col] = -transform.Data[row*4+col]
			}
		}
	}
	return transform
}

func gltfBuildMaterial(doc *gltf.Document, docMaterial *gltf.Material, index int) *gltfMaterial {
	name := docMaterial.Name
	if name == "" {
		name = "material_" + strconv.Itoa(index)
	}
	out := &gltfMaterial{
		name:  name,
		color: math.NewVec4One(),
	}

	pbr := docMaterial.PBRMetallicRoughness
	if pbr == nil {
		return out
	}

	factor := pbr.BaseColorFactor
	out.color = math.NewVec4(
		float32(factor[0]), float32(factor[1]), float32(factor[2]), float32(factor[3]))

	if texture := pbr.BaseColorTexture; texture != nil {
		imageIndex := int(*doc.Textures[texture.Index].Source)
		out.textureCount = 1
		if gltfImageEmbedded(doc.Images[imageIndex]) {
			out.texturePath = "*" + strconv.Itoa(imageIndex)
		} else {
			out.texturePath = doc.Images[imageIndex].URI
		}
	}
	return out
}

func gltfImageEmbedded(image *gltf.Image) bool {
	if image.BufferView != nil {
		return true
	}
	return strings.HasPrefix(image.URI, "data:")
}

/**
 * @brief Collects every image stored inside the document. Embedded images
 * stay in their compressed container form, so Height is zero and Width
 * carries the byte size. Lookup keys follow the `*<index>` path convention
 * used by material texture references.
 */
func gltfEmbeddedTextures(doc *gltf.Document) map[string]*EmbeddedTexture {
	embedded := map[string]*EmbeddedTexture{}
	for index, image := range doc.Images {
		var data []byte
		switch {
		case image.BufferView != nil:
			blob, err := modeler.ReadBufferView(doc, doc.BufferViews[*image.BufferView])
			if err != nil {
				core.LogError("failed to read embedded image %d: %s", index, err.Error())
				continue
			}
			data = append([]byte{}, blob...)
		case strings.HasPrefix(image.URI, "data:"):
			_, payload, found := strings.Cut(image.URI, ",")
			if !found {
				core.LogError("embedded image %d has a malformed data URI", index)
				continue
			}
			decoded, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				core.LogError("failed to decode embedded image %d: %s", index, err.Error())
				continue
			}
			data = decoded
		default:
			continue
		}

		path := "*" + strconv.Itoa(index)
		embedded[path] = &EmbeddedTexture{
			Path:   path,
			Width:  uint32(len(data)),
			Height: 0,
			Data:   data,
		}
	}
	return embedded
}

func gltfBuildMesh(doc *gltf.Document, primitive *gltf.Primitive, flags ImportFlag) (*gltfMesh, error) {
	out := &gltfMesh{materialIndex: 0}
	if primitive.Material != nil {
		out.materialIndex = int(*primitive.Material)
	}

	if attribute, found := primitive.Attributes[gltf.POSITION]; found {
		positions, err := modeler.ReadPosition(doc, doc.Accessors[attribute], nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read positions: %w", err)
		}
		out.positions = make([]math.Vec3, len(positions))
		for i, p := range positions {
			out.positions[i] = math.NewVec3(p[0], p[1], p[2])
		}
	}

	var indices []uint32
	if primitive.Indices != nil {
		read, err := modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
		indices = read
	} else {
		// non-indexed primitive, synthesize a sequential index list
		indices = make([]uint32, len(out.positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	if attribute, found := primitive.Attributes[gltf.NORMAL]; found {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[attribute], nil)
		if err != nil {
			core.LogError("failed to read normals: %s", err.Error())
		} else {
			out.normals = make([]math.Vec3, len(normals))
			for i, n := range normals {
				out.normals[i] = math.NewVec3(n[0], n[1], n[2])
			}
		}
	}

	for channel := 0; ; channel++ {
		attribute, found := primitive.Attributes[fmt.Sprintf("TEXCOORD_%d", channel)]
		if !found {
			break
		}
		coords, err := modeler.ReadTextureCoord(doc, doc.Accessors[attribute], nil)
		if err != nil {
			core.LogError("failed to read texture coords channel %d: %s", channel, err.Error())
			break
		}
		uvs := make([]math.Vec2, len(coords))
		for i, uv := range coords {
			uvs[i] = math.NewVec2(uv[0], uv[1])
		}
		out.uvChannels = append(out.uvChannels, uvs)
	}

	for channel := 0; ; channel++ {
		attribute, found := primitive.Attributes[fmt.Sprintf("COLOR_%d", channel)]
		if !found {
			break
		}
		read, err := modeler.ReadColor(doc, doc.Accessors[attribute], nil)
		if err != nil {
			core.LogError("failed to read vertex colors channel %d: %s", channel, err.Error())
			break
		}
		colors := make([]math.Vec4, len(read))
		for i, c := range read {
			colors[i] = math.NewVec4(
				float32(c[0])/255.0, float32(c[1])/255.0, float32(c[2])/255.0, float32(c[3])/255.0)
		}
		out.colorChannels = append(out.colorChannels, colors)
	}

	if attribute, found := primitive.Attributes[gltf.TANGENT]; found {
		read, err := modeler.ReadTangent(doc, doc.Accessors[attribute], nil)
		if err != nil {
			core.LogError("failed to read tangents: %s", err.Error())
		} else {
			out.tangents = make([]math.Tangent, len(read))
			for i, t := range read {
				out.tangents[i] = math.Tangent{
					Direction: math.NewVec3(t[0], t[1], t[2]),
					FlipSign:  t[3],
				}
			}
		}
	}

	gltfPostProcessMesh(out, indices, flags)
	return out, nil
}

/**
 * @brief Applies the requested post-process steps to a freshly read
 * primitive and packs the flat index list into triangle faces. The steps run
 * in a fixed order: UV flip, vertex joining, normal generation, tangent
 * generation, handedness conversion.
 */
func gltfPostProcessMesh(out *gltfMesh, indices []uint32, flags ImportFlag) {
	if flags&FlagFlipUVs != 0 {
		for channel := range out.uvChannels {
			for i := range out.uvChannels[channel] {
				out.uvChannels[channel][i].Y = 1.0 - out.uvChannels[channel][i].Y
			}
		}
	}

	// Joining rebuilds every per-vertex array through a single scratch
	// layout, so it only runs for the attribute set that layout can carry.
	joinable := flags&FlagJoinIdenticalVertices != 0 &&
		len(out.uvChannels) <= 1 && len(out.colorChannels) <= 1 &&
		len(out.tangents) == 0 && len(out.positions) > 0
	if joinable {
		indices = gltfJoinVertices(out, indices)
	}

	if flags&FlagGenSmoothNormals != 0 && len(out.normals) == 0 && len(out.positions) > 0 {
		scratch := make([]math.Vertex3D, len(out.positions))
		for i := range scratch {
			scratch[i].Position = out.positions[i]
		}
		math.GeometryGenerateSmoothNormals(scratch, indices)
		out.normals = make([]math.Vec3, len(scratch))
		for i := range scratch {
			out.normals[i] = scratch[i].Normal
		}
	}

	if flags&FlagCalcTangentSpace != 0 && len(out.tangents) == 0 &&
		len(out.uvChannels) > 0 && len(out.positions) > 0 {
		scratch := make([]math.Vertex3D, len(out.positions))
		for i := range scratch {
			scratch[i].Position = out.positions[i]
			scratch[i].Texcoord = out.uvChannels[0][i]
		}
		out.tangents = math.GeometryGenerateTangents(scratch, indices)
	}

	leftHanded := flags&FlagMakeLeftHanded != 0
	if leftHanded {
		for i := range out.positions {
			out.positions[i].Z = -out.positions[i].Z
		}
		for i := range out.normals {
			out.normals[i].Z = -out.normals[i].Z
		}
		for i := range out.tangents {
			out.tangents[i].Direction.Z = -out.tangents[i].Direction.Z
		}
	}

	out.faces = make([][]uint32, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		face := []uint32{indices[i], indices[i+1], indices[i+2]}
		if leftHanded {
			face[1], face[2] = face[2], face[1]
		}
		out.faces = append(out.faces, face)
	}
}

func gltfJoinVertices(out *gltfMesh, indices []uint32) []uint32 {
	scratch := make([]math.Vertex3D, len(out.positions))
	for i := range scratch {
		scratch[i].Position = out.positions[i]
		if i < len(out.normals) {
			scratch[i].Normal = out.normals[i]
		}
		if len(out.uvChannels) == 1 {
			scratch[i].Texcoord = out.uvChannels[0][i]
		}
		if len(out.colorChannels) == 1 {
			scratch[i].Colour = out.colorChannels[0][i]
		}
	}

	unique, removed := math.GeometryDeduplicateVertices(scratch, indices)
	if removed == 0 {
		return indices
	}
	core.LogDebug("joined %d identical vertices", removed)

	out.positions = make([]math.Vec3, len(unique))
	for i := range unique {
		out.positions[i] = unique[i].Position
	}
	if len(out.normals) > 0 {
		out.normals = make([]math.Vec3, len(unique))
		for i := range unique {
			out.normals[i] = unique[i].Normal
		}
	}
	if len(out.uvChannels) == 1 {
		out.uvChannels[0] = make([]math.Vec2, len(unique))
		for i := range unique {
			out.uvChannels[0][i] = unique[i].Texcoord
		}
	}
	if len(out.colorChannels) == 1 {
		out.colorChannels[0] = make([]math.Vec4, len(unique))
		for i := range unique {
			out.colorChannels[0][i] = unique[i].Colour
		}
	}
	return indices
}

func gltfMetadata(doc *gltf.Document) map[string]float32 {
	metadata := map[string]float32{}
	extras, ok := doc.Asset.Extras.(map[string]interface{})
	if !ok {
		return metadata
	}
	for key, raw := range extras {
		if value, isNumber := raw.(float64); isNumber {
			metadata[key] = float32(value)
		}
	}
	return metadata
}
