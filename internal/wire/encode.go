package wire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mesh-intelligence/trackstate/pkg/types"
)

type writer struct {
	buf []byte
}

func (w *writer) int32(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

func (w *writer) bool(v bool) {
	if v {
		w.int32(1)
	} else {
		w.int32(0)
	}
}

func (w *writer) float32(v float32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(v))
}

func (w *writer) pose(p types.Pose) {
	w.float32(float32(p.Position[0]))
	w.float32(float32(p.Position[1]))
	w.float32(float32(p.Position[2]))
	w.float32(float32(p.Orientation.V[0]))
	w.float32(float32(p.Orientation.V[1]))
	w.float32(float32(p.Orientation.V[2]))
	w.float32(float32(p.Orientation.W))
}

func (w *writer) vec2(v types.Vec2) {
	w.float32(v.X)
	w.float32(v.Y)
}

// fixedSize is the encoded length of f, not counting word strings.
func (f *Frame) fixedSize() int {
	n := HeaderSize +
		len(f.Trackables)*TrackableResultSize +
		len(f.VirtualButtons)*VirtualButtonSize +
		len(f.NewWords)*NewWordFixedSize +
		len(f.WordResults)*WordResultSize +
		len(f.Images)*ImageFixedSize
	for _, im := range f.Images {
		n += len(im.Payload)
	}
	return n
}

// Encode serializes f. Poses are narrowed to float32.
func Encode(f Frame) ([]byte, error) {
	w := &writer{buf: make([]byte, 0, f.fixedSize())}
	w.buf = append(w.buf, Magic...)
	w.buf = binary.LittleEndian.AppendUint16(w.buf, Version)
	w.buf = binary.LittleEndian.AppendUint16(w.buf, 0)
	w.int32(f.Index)
	w.int32(int32(len(f.Trackables)))
	w.int32(int32(len(f.VirtualButtons)))
	w.int32(int32(len(f.NewWords)))
	w.int32(int32(len(f.WordResults)))
	w.int32(int32(len(f.Images)))

	for _, t := range f.Trackables {
		w.pose(t.Pose)
		w.int32(int32(t.Status))
		w.int32(int32(t.ID))
	}
	for _, b := range f.VirtualButtons {
		w.int32(int32(b.ID))
		w.bool(b.Pressed)
	}
	enc := utf16LE.NewEncoder()
	for _, nw := range f.NewWords {
		raw, err := enc.Bytes([]byte(nw.StringValue))
		if err != nil {
			return nil, fmt.Errorf("encoding word %d: %w", nw.ID, err)
		}
		units := len(raw) / 2
		if units > MaxWordLength {
			return nil, fmt.Errorf("word %d: %w", nw.ID, ErrWordTooLong)
		}
		w.int32(int32(nw.ID))
		w.vec2(nw.Size)
		w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(units))
		w.buf = append(w.buf, raw...)
	}
	for _, wr := range f.WordResults {
		w.pose(wr.Pose)
		w.int32(int32(wr.Status))
		w.int32(int32(wr.ID))
		w.vec2(wr.Obb.Center)
		w.vec2(wr.Obb.HalfExtents)
		w.float32(wr.Obb.Rotation)
	}
	for _, im := range f.Images {
		w.int32(im.Width)
		w.int32(im.Height)
		w.int32(im.Stride)
		w.int32(im.BufferWidth)
		w.int32(im.BufferHeight)
		w.int32(int32(im.Format))
		w.bool(im.Reallocate)
		w.bool(im.Updated)
		w.int32(int32(len(im.Payload)))
		w.buf = append(w.buf, im.Payload...)
	}
	return w.buf, nil
}

// MustEncode is Encode for frames known to be valid, such as test fixtures.
// It panics on error.
func MustEncode(f Frame) []byte {
	b, err := Encode(f)
	if err != nil {
		panic(err)
	}
	return b
}
