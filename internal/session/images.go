package session

import (
	"slices"

	"github.com/mesh-intelligence/trackstate/internal/wire"
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// imageCache holds one local image per requested pixel format. Frame headers
// either reallocate the local buffer or copy new pixels into it.
type imageCache struct {
	enabled map[types.PixelFormat]bool
	images  map[types.PixelFormat]*types.Image
}

func newImageCache() *imageCache {
	return &imageCache{
		enabled: make(map[types.PixelFormat]bool),
		images:  make(map[types.PixelFormat]*types.Image),
	}
}

func (c *imageCache) setEnabled(format types.PixelFormat, enabled bool) {
	if enabled {
		c.enabled[format] = true
		return
	}
	delete(c.enabled, format)
	delete(c.images, format)
}

// apply updates the cache from one frame's headers. Headers for formats that
// were never requested are ignored. A reallocation resizes the buffer and
// skips the copy for that frame.
func (c *imageCache) apply(headers []wire.ImageHeader) {
	for _, h := range headers {
		if !c.enabled[h.Format] {
			continue
		}
		im, ok := c.images[h.Format]
		if !ok {
			im = &types.Image{Format: h.Format}
			c.images[h.Format] = im
		}
		im.Width = int(h.Width)
		im.Height = int(h.Height)
		im.Stride = int(h.Stride)
		im.BufferWidth = int(h.BufferWidth)
		im.BufferHeight = int(h.BufferHeight)

		if h.Reallocate {
			im.Pixels = resize(im.Pixels, types.BufferSize(im.BufferWidth, im.BufferHeight, h.Format))
			continue
		}
		if h.Updated {
			if len(im.Pixels) != len(h.Payload) {
				im.Pixels = resize(im.Pixels, len(h.Payload))
			}
			copy(im.Pixels, h.Payload)
		}
	}
}

// get returns a copy of the cached image.
func (c *imageCache) get(format types.PixelFormat) (types.Image, bool) {
	im, ok := c.images[format]
	if !ok {
		return types.Image{}, false
	}
	out := *im
	out.Pixels = slices.Clone(im.Pixels)
	return out, true
}

func resize(buf []byte, n int) []byte {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]byte, n)
}
