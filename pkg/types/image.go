package types

// PixelFormat identifies a camera image layout. Values are part of the frame
// protocol.
type PixelFormat int32

// Pixel formats.
const (
	PixelFormatUnknown  PixelFormat = 0
	PixelFormatRGB565   PixelFormat = 1
	PixelFormatRGB888   PixelFormat = 2
	PixelFormatGray     PixelFormat = 4
	PixelFormatYUV      PixelFormat = 8
	PixelFormatRGBA8888 PixelFormat = 16
)

// BufferSize returns the byte size of a pixel buffer of the given dimensions.
// Unknown formats have size zero.
func BufferSize(width, height int, format PixelFormat) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	switch format {
	case PixelFormatRGB565:
		return width * height * 2
	case PixelFormatRGB888:
		return width * height * 3
	case PixelFormatGray:
		return width * height
	case PixelFormatYUV:
		// 4:2:0, full luma plane plus two quarter chroma planes.
		return width * height * 3 / 2
	case PixelFormatRGBA8888:
		return width * height * 4
	default:
		return 0
	}
}

// Image is a local copy of a camera frame buffer. The buffer may be larger
// than Width x Height, e.g. when padded to power-of-two dimensions.
type Image struct {
	Width        int
	Height       int
	Stride       int
	BufferWidth  int
	BufferHeight int
	Format       PixelFormat
	Pixels       []byte
}

// Valid reports whether the image has been filled with frame data.
func (im *Image) Valid() bool {
	return im != nil && im.Width > 0 && im.Height > 0 && im.Stride > 0 &&
		im.BufferWidth > 0 && im.BufferHeight > 0 && len(im.Pixels) > 0
}
