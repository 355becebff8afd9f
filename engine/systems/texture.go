package systems

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// decoders for the containers an embedded texture can arrive in
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/nfnt/resize"
)

const (
	TextureContainerPNG  = "png"
	TextureContainerWebP = "webp"
)

/** @brief configuration for the texture system */
type TextureSystemConfig struct {
	/** @brief Hard cap on either texture dimension. Larger rasters are
	 * downscaled before encoding. */
	MaxTextureDimension int
	/** @brief Target container for re-encoded rasters, png or webp. */
	Container string
}

/**
 * @brief TextureSystem turns raw or compressed image payloads into portable
 * compressed containers and back. Source rasters arrive as BGRA8; everything
 * stored in mesh data is a compressed container so the value stays small and
 * self-describing.
 */
type TextureSystem struct {
	maxDimension int
	container    string
}

func NewTextureSystem(config *TextureSystemConfig) (*TextureSystem, error) {
	if config == nil {
		return nil, fmt.Errorf("texture system config is required")
	}
	if config.MaxTextureDimension <= 0 {
		return nil, fmt.Errorf("texture system max dimension must be positive, got %d", config.MaxTextureDimension)
	}
	switch config.Container {
	case TextureContainerPNG, TextureContainerWebP:
	default:
		return nil, fmt.Errorf("unknown texture container %q", config.Container)
	}
	return &TextureSystem{
		maxDimension: config.MaxTextureDimension,
		container:    config.Container,
	}, nil
}

/**
 * @brief Decode parses a compressed image payload. png, jpeg, gif, bmp and
 * tiff are sniffed through the image package; tga has no magic bytes to
 * sniff, so it is tried explicitly once sniffing failed.
 */
func (ts *TextureSystem) Decode(payload []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(payload))
	if err == nil {
		return img, nil
	}
	if img, tgaErr := tga.Decode(bytes.NewReader(payload)); tgaErr == nil {
		return img, nil
	}
	return nil, fmt.Errorf("failed to decode texture payload: %w", err)
}

/**
 * @brief Encode writes the image into the configured container, downscaling
 * first when either dimension exceeds the configured cap.
 */
func (ts *TextureSystem) Encode(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	if bounds.Dx() > ts.maxDimension || bounds.Dy() > ts.maxDimension {
		img = resize.Thumbnail(uint(ts.maxDimension), uint(ts.maxDimension), img, resize.Lanczos3)
	}

	out := &bytes.Buffer{}
	switch ts.container {
	case TextureContainerWebP:
		if err := nativewebp.Encode(out, img, nil); err != nil {
			return nil, fmt.Errorf("failed to encode webp texture: %w", err)
		}
	default:
		if err := png.Encode(out, img); err != nil {
			return nil, fmt.Errorf("failed to encode png texture: %w", err)
		}
	}
	return out.Bytes(), nil
}

/**
 * @brief EncodeRaster wraps a raw BGRA8 raster and encodes it into the
 * configured container. The payload length must be exactly width*height*4.
 */
func (ts *TextureSystem) EncodeRaster(bgra []byte, width, height uint32) ([]byte, error) {
	if uint32(len(bgra)) != width*height*4 {
		return nil, fmt.Errorf("raster payload is %d bytes, want %d for %dx%d BGRA8", len(bgra), width*height*4, width, height)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	for i := 0; i < int(width*height); i++ {
		rgba.Pix[i*4+0] = bgra[i*4+2]
		rgba.Pix[i*4+1] = bgra[i*4+1]
		rgba.Pix[i*4+2] = bgra[i*4+0]
		rgba.Pix[i*4+3] = bgra[i*4+3]
	}
	return ts.Encode(rgba)
}
