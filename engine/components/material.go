package components

import (
	"github.com/spaghettifunk/forma/engine/core"
	"github.com/spaghettifunk/forma/engine/math"
)

/**
 * @brief MaterialTemplate declares the named parameters a material exposes
 * together with their defaults. Instances are stamped from a template and
 * may only set parameters the template declares; the declared set is the
 * contract between content and code.
 */
type MaterialTemplate struct {
	name     string
	scalars  map[string]float32
	vectors  map[string]math.Vec4
	textures map[string]*Texture2D
}

func NewMaterialTemplate(name string) *MaterialTemplate {
	return &MaterialTemplate{
		name:     name,
		scalars:  map[string]float32{},
		vectors:  map[string]math.Vec4{},
		textures: map[string]*Texture2D{},
	}
}

func (t *MaterialTemplate) Name() string { return t.name }

func (t *MaterialTemplate) DeclareScalarParameter(name string, defaultValue float32) *MaterialTemplate {
	t.scalars[name] = defaultValue
	return t
}

func (t *MaterialTemplate) DeclareVectorParameter(name string, defaultValue math.Vec4) *MaterialTemplate {
	t.vectors[name] = defaultValue
	return t
}

func (t *MaterialTemplate) DeclareTextureParameter(name string, defaultValue *Texture2D) *MaterialTemplate {
	t.textures[name] = defaultValue
	return t
}

func (t *MaterialTemplate) HasScalarParameter(name string) bool {
	_, found := t.scalars[name]
	return found
}

func (t *MaterialTemplate) HasVectorParameter(name string) bool {
	_, found := t.vectors[name]
	return found
}

func (t *MaterialTemplate) HasTextureParameter(name string) bool {
	_, found := t.textures[name]
	return found
}

// Instantiate stamps a live instance carrying the template defaults.
func (t *MaterialTemplate) Instantiate(name string) *MaterialInstance {
	instance := &MaterialInstance{
		id:       core.IdentifierAcquireNew(),
		name:     name,
		template: t,
		scalars:  make(map[string]float32, len(t.scalars)),
		vectors:  make(map[string]math.Vec4, len(t.vectors)),
		textures: make(map[string]*Texture2D, len(t.textures)),
	}
	for key, value := range t.scalars {
		instance.scalars[key] = value
	}
	for key, value := range t.vectors {
		instance.vectors[key] = value
	}
	for key, value := range t.textures {
		instance.textures[key] = value
	}
	return instance
}

/**
 * @brief MaterialInstance holds concrete parameter values for one material
 * slot. Setting a parameter the template never declared is a violated
 * contract, not a runtime condition.
 */
type MaterialInstance struct {
	id       string
	name     string
	template *MaterialTemplate
	scalars  map[string]float32
	vectors  map[string]math.Vec4
	textures map[string]*Texture2D
}

func (mi *MaterialInstance) ID() string                  { return mi.id }
func (mi *MaterialInstance) Name() string                { return mi.name }
func (mi *MaterialInstance) Template() *MaterialTemplate { return mi.template }

func (mi *MaterialInstance) SetScalarParameterValue(name string, value float32) {
	core.Assertf(mi.template.HasScalarParameter(name),
		"material template %q declares no scalar parameter %q", mi.template.name, name)
	mi.scalars[name] = value
}

func (mi *MaterialInstance) SetVectorParameterValue(name string, value math.Vec4) {
	core.Assertf(mi.template.HasVectorParameter(name),
		"material template %q declares no vector parameter %q", mi.template.name, name)
	mi.vectors[name] = value
}

func (mi *MaterialInstance) SetTextureParameterValue(name string, value *Texture2D) {
	core.Assertf(mi.template.HasTextureParameter(name),
		"material template %q declares no texture parameter %q", mi.template.name, name)
	mi.textures[name] = value
}

func (mi *MaterialInstance) ScalarParameterValue(name string) (float32, bool) {
	value, found := mi.scalars[name]
	return value, found
}

func (mi *MaterialInstance) VectorParameterValue(name string) (math.Vec4, bool) {
	value, found := mi.vectors[name]
	return value, found
}

func (mi *MaterialInstance) TextureParameterValue(name string) (*Texture2D, bool) {
	value, found := mi.textures[name]
	return value, found
}
