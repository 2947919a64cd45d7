// Package image implements the .fbmp bitmap image format (spec §4.11):
// a tiny magic+width+height header followed by a packed pixel buffer.
// Grounded on original_source/include/libdwm/image.h and
// original_source/src/libpatchwork/image.c.
package image

import (
	"encoding/binary"
	"errors"
	"fmt"

	"patchwork/client/draw"
	"patchwork/geom"
)

// Magic is the .fbmp file's leading 4 bytes, matching FBMP_MAGIC.
const Magic uint32 = 0x706D6266

const headerSize = 4 + 4 + 4

var (
	ErrBadMagic  = errors.New("image: bad fbmp magic")
	ErrBadLength = errors.New("image: file size does not match width*height")
)

// Image is a decoded, in-memory bitmap backed by its own pixel buffer.
// It satisfies client/draw's Imager so it can be composited onto any
// Drawable with draw.Image/draw.ImageBlend. Mirrors image_t.
type Image struct {
	drawable draw.Drawable
}

// New decodes raw .fbmp file contents. Mirrors image_new's header
// validation: the magic must match and the file size must exactly
// account for width*height packed pixels plus the header, matching
// the original's single combined size-and-magic check.
func New(data []byte) (*Image, error) {
	if len(data) < headerSize {
		return nil, ErrBadLength
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	width := binary.LittleEndian.Uint32(data[4:8])
	height := binary.LittleEndian.Uint32(data[8:12])

	if magic != Magic {
		return nil, ErrBadMagic
	}
	if uint64(len(data)) != uint64(headerSize)+uint64(width)*uint64(height)*4 {
		return nil, ErrBadLength
	}

	img := NewBlank(int(width), int(height))
	pixels := data[headerSize:]
	for i := range img.drawable.Buffer {
		img.drawable.Buffer[i] = geom.Pixel(binary.LittleEndian.Uint32(pixels[i*4 : i*4+4]))
	}
	return img, nil
}

// NewBlank allocates a transparent width x height image. Mirrors
// image_new_blank.
func NewBlank(width, height int) *Image {
	return &Image{
		drawable: draw.Drawable{
			Stride:      width,
			Buffer:      make([]geom.Pixel, width*height),
			ContentRect: geom.Rectangle(0, 0, width, height),
		},
	}
}

// Drawable returns the image's backing Drawable, satisfying
// draw.Imager. Mirrors image_draw.
func (img *Image) Drawable() *draw.Drawable { return &img.drawable }

// Rect returns the image's content rectangle. Mirrors image_rect.
func (img *Image) Rect() geom.Rect { return img.drawable.ContentRect }

// Width returns the image's width in pixels. Mirrors image_width.
func (img *Image) Width() int { return img.drawable.ContentRect.Width() }

// Height returns the image's height in pixels. Mirrors image_height.
func (img *Image) Height() int { return img.drawable.ContentRect.Height() }

// Encode serializes img back to .fbmp file contents, the inverse of
// New. image.c has no corresponding save path, but the round trip is
// the natural companion operation and uses exactly the layout New
// decodes.
func (img *Image) Encode() []byte {
	w, h := img.Width(), img.Height()
	data := make([]byte, headerSize+w*h*4)
	binary.LittleEndian.PutUint32(data[0:4], Magic)
	binary.LittleEndian.PutUint32(data[4:8], uint32(w))
	binary.LittleEndian.PutUint32(data[8:12], uint32(h))
	for i, p := range img.drawable.Buffer {
		binary.LittleEndian.PutUint32(data[headerSize+i*4:headerSize+i*4+4], uint32(p))
	}
	return data
}

func (img *Image) String() string {
	return fmt.Sprintf("image(%dx%d)", img.Width(), img.Height())
}
