package wire

import (
	"errors"

	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// Layout constants.
const (
	Magic   = "TSFR"
	Version = uint16(1)

	HeaderSize          = 32
	PoseSize            = 28
	TrackableResultSize = PoseSize + 8
	VirtualButtonSize   = 8
	NewWordFixedSize    = 14
	WordResultSize      = PoseSize + 8 + 20
	ImageFixedSize      = 36

	// MaxWordLength is the longest word string in UTF-16 code units.
	MaxWordLength = 1<<16 - 1
)

// Codec errors.
var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrWordTooLong    = errors.New("word string exceeds 65535 UTF-16 code units")
)

// ImageHeader describes one camera image delivered with a frame. Reallocate
// asks the receiver to resize its buffer; Updated means Payload holds new
// pixels.
type ImageHeader struct {
	Width        int32
	Height       int32
	Stride       int32
	BufferWidth  int32
	BufferHeight int32
	Format       types.PixelFormat
	Reallocate   bool
	Updated      bool

	// Payload aliases the decoded buffer; copy it before the buffer is
	// reused.
	Payload []byte
}

// Frame is the decoded content of one backend frame.
type Frame struct {
	Index          int32
	Trackables     []types.TrackableResult
	VirtualButtons []types.VirtualButtonResult
	NewWords       []types.NewWordData
	WordResults    []types.WordResultData
	Images         []ImageHeader
}
