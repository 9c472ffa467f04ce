package wire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/text/encoding/unicode"

	"github.com/mesh-intelligence/trackstate/pkg/types"
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// reader walks a frame buffer. The first short read latches err and every
// later call returns zero values.
type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || len(r.buf)-r.off < n {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrMalformedFrame, n, r.off, len(r.buf)-r.off)
		return false
	}
	return true
}

func (r *reader) int32() int32 {
	if !r.need(4) {
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(r.buf[r.off:]))
	r.off += 4
	return v
}

func (r *reader) uint16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v
}

func (r *reader) float32() float32 {
	return math.Float32frombits(uint32(r.int32()))
}

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := r.buf[r.off : r.off+n : r.off+n]
	r.off += n
	return b
}

func (r *reader) pose() types.Pose {
	px, py, pz := r.float32(), r.float32(), r.float32()
	qx, qy, qz, qw := r.float32(), r.float32(), r.float32(), r.float32()
	return types.Pose{
		Position: mgl64.Vec3{float64(px), float64(py), float64(pz)},
		Orientation: mgl64.Quat{
			W: float64(qw),
			V: mgl64.Vec3{float64(qx), float64(qy), float64(qz)},
		},
	}
}

func (r *reader) vec2() types.Vec2 {
	return types.Vec2{X: r.float32(), Y: r.float32()}
}

// count reads a section count and rejects values that cannot fit in the rest
// of the buffer, so a corrupt header never drives a huge allocation.
func (r *reader) count(minEntry int) int {
	n := r.int32()
	if r.err != nil {
		return 0
	}
	if n < 0 {
		r.err = fmt.Errorf("%w: negative section count %d", ErrMalformedFrame, n)
		return 0
	}
	if int64(n)*int64(minEntry) > int64(len(r.buf)-HeaderSize) {
		r.err = fmt.Errorf("%w: section count %d exceeds buffer", ErrMalformedFrame, n)
		return 0
	}
	return int(n)
}

// Decode parses one frame. Every entry in every section is decoded; duplicate
// ids are preserved in delivery order. Errors wrap ErrMalformedFrame.
func Decode(buf []byte) (Frame, error) {
	var f Frame
	if len(buf) < HeaderSize {
		return f, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformedFrame, len(buf))
	}
	if string(buf[:4]) != Magic {
		return f, fmt.Errorf("%w: bad magic %q", ErrMalformedFrame, buf[:4])
	}
	r := &reader{buf: buf, off: 4}
	if v := r.uint16(); v != Version {
		return f, fmt.Errorf("%w: unsupported version %d", ErrMalformedFrame, v)
	}
	r.uint16() // reserved

	f.Index = r.int32()
	numTrackables := r.count(TrackableResultSize)
	numButtons := r.count(VirtualButtonSize)
	numNewWords := r.count(NewWordFixedSize)
	numWordResults := r.count(WordResultSize)
	numImages := r.count(ImageFixedSize)
	if r.err != nil {
		return Frame{}, r.err
	}

	if numTrackables > 0 {
		f.Trackables = make([]types.TrackableResult, numTrackables)
		for i := range f.Trackables {
			pose := r.pose()
			status := types.Status(r.int32())
			id := types.TrackableID(r.int32())
			f.Trackables[i] = types.TrackableResult{ID: id, Pose: pose, Status: status}
		}
	}

	if numButtons > 0 {
		f.VirtualButtons = make([]types.VirtualButtonResult, numButtons)
		for i := range f.VirtualButtons {
			id := types.TrackableID(r.int32())
			pressed := r.int32() != 0
			f.VirtualButtons[i] = types.VirtualButtonResult{ID: id, Pressed: pressed}
		}
	}

	if numNewWords > 0 {
		f.NewWords = make([]types.NewWordData, numNewWords)
		dec := utf16LE.NewDecoder()
		for i := range f.NewWords {
			id := types.TrackableID(r.int32())
			size := r.vec2()
			units := int(r.uint16())
			raw := r.bytes(units * 2)
			if r.err != nil {
				return Frame{}, r.err
			}
			text, err := dec.Bytes(raw)
			if err != nil {
				return Frame{}, fmt.Errorf("%w: word %d: %v", ErrMalformedFrame, id, err)
			}
			f.NewWords[i] = types.NewWordData{ID: id, StringValue: string(text), Size: size}
		}
	}

	if numWordResults > 0 {
		f.WordResults = make([]types.WordResultData, numWordResults)
		for i := range f.WordResults {
			pose := r.pose()
			status := types.Status(r.int32())
			id := types.TrackableID(r.int32())
			obb := types.Obb2D{Center: r.vec2(), HalfExtents: r.vec2(), Rotation: r.float32()}
			f.WordResults[i] = types.WordResultData{ID: id, Pose: pose, Status: status, Obb: obb}
		}
	}

	if numImages > 0 {
		f.Images = make([]ImageHeader, numImages)
		for i := range f.Images {
			h := ImageHeader{
				Width:        r.int32(),
				Height:       r.int32(),
				Stride:       r.int32(),
				BufferWidth:  r.int32(),
				BufferHeight: r.int32(),
				Format:       types.PixelFormat(r.int32()),
				Reallocate:   r.int32() != 0,
				Updated:      r.int32() != 0,
			}
			h.Payload = r.bytes(int(r.int32()))
			f.Images[i] = h
		}
	}

	if r.err != nil {
		return Frame{}, r.err
	}
	if r.off != len(buf) {
		return Frame{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformedFrame, len(buf)-r.off)
	}
	return f, nil
}
