package components

import (
	"fmt"
	"image"

	"github.com/spaghettifunk/forma/engine/core"
	"github.com/spaghettifunk/forma/engine/systems"
)

/**
 * @brief Texture2D is a live texture resource decoded from a compressed
 * payload. It is the component-side counterpart of the payload bytes a
 * TextureOnly material descriptor carries.
 */
type Texture2D struct {
	id     string
	width  int
	height int
	img    image.Image
}

func NewTexture2DFromPayload(textures *systems.TextureSystem, payload []byte) (*Texture2D, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("texture payload is empty")
	}
	img, err := textures.Decode(payload)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	return &Texture2D{
		id:     core.IdentifierAcquireNew(),
		width:  bounds.Dx(),
		height: bounds.Dy(),
		img:    img,
	}, nil
}

func (t *Texture2D) ID() string         { return t.id }
func (t *Texture2D) Width() int         { return t.width }
func (t *Texture2D) Height() int        { return t.height }
func (t *Texture2D) Image() image.Image { return t.img }
