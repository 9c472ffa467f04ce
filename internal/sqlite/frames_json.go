package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mesh-intelligence/trackstate/internal/wire"
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// JSON form of a frame, used to import hand-written or exported captures.
// Rotations are quaternions in x, y, z, w order; statuses use their names.

type poseRecord struct {
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"`
}

type trackableRecord struct {
	ID     int32      `json:"id"`
	Status string     `json:"status"`
	Pose   poseRecord `json:"pose"`
}

type buttonRecord struct {
	ID      int32 `json:"id"`
	Pressed bool  `json:"pressed"`
}

type newWordRecord struct {
	ID   int32      `json:"id"`
	Text string     `json:"text"`
	Size [2]float32 `json:"size"`
}

type obbRecord struct {
	Center      [2]float32 `json:"center"`
	HalfExtents [2]float32 `json:"half_extents"`
	Rotation    float32    `json:"rotation"`
}

type wordResultRecord struct {
	ID     int32      `json:"id"`
	Status string     `json:"status"`
	Pose   poseRecord `json:"pose"`
	Obb    obbRecord  `json:"obb"`
}

type imageRecord struct {
	Width        int32  `json:"width"`
	Height       int32  `json:"height"`
	Stride       int32  `json:"stride"`
	BufferWidth  int32  `json:"buffer_width"`
	BufferHeight int32  `json:"buffer_height"`
	Format       int32  `json:"format"`
	Reallocate   bool   `json:"reallocate,omitempty"`
	Updated      bool   `json:"updated,omitempty"`
	Payload      []byte `json:"payload,omitempty"`
}

type frameRecord struct {
	Index       int32              `json:"index"`
	Trackables  []trackableRecord  `json:"trackables,omitempty"`
	Buttons     []buttonRecord     `json:"buttons,omitempty"`
	NewWords    []newWordRecord    `json:"new_words,omitempty"`
	WordResults []wordResultRecord `json:"word_results,omitempty"`
	Images      []imageRecord      `json:"images,omitempty"`
}

func (p poseRecord) pose() types.Pose {
	return types.Pose{
		Position: mgl64.Vec3(p.Position),
		Orientation: mgl64.Quat{
			W: p.Rotation[3],
			V: mgl64.Vec3{p.Rotation[0], p.Rotation[1], p.Rotation[2]},
		},
	}
}

func poseRecordOf(p types.Pose) poseRecord {
	q := p.Orientation
	return poseRecord{
		Position: [3]float64(p.Position),
		Rotation: [4]float64{q.V[0], q.V[1], q.V[2], q.W},
	}
}

func (r frameRecord) frame() (wire.Frame, error) {
	f := wire.Frame{Index: r.Index}
	for _, t := range r.Trackables {
		st, err := types.ParseStatus(t.Status)
		if err != nil {
			return wire.Frame{}, fmt.Errorf("trackable %d: %w", t.ID, err)
		}
		f.Trackables = append(f.Trackables, types.TrackableResult{
			ID: types.TrackableID(t.ID), Pose: t.Pose.pose(), Status: st,
		})
	}
	for _, b := range r.Buttons {
		f.VirtualButtons = append(f.VirtualButtons, types.VirtualButtonResult{
			ID: types.TrackableID(b.ID), Pressed: b.Pressed,
		})
	}
	for _, w := range r.NewWords {
		f.NewWords = append(f.NewWords, types.NewWordData{
			ID:          types.TrackableID(w.ID),
			StringValue: w.Text,
			Size:        types.Vec2{X: w.Size[0], Y: w.Size[1]},
		})
	}
	for _, w := range r.WordResults {
		st, err := types.ParseStatus(w.Status)
		if err != nil {
			return wire.Frame{}, fmt.Errorf("word %d: %w", w.ID, err)
		}
		f.WordResults = append(f.WordResults, types.WordResultData{
			ID:     types.TrackableID(w.ID),
			Pose:   w.Pose.pose(),
			Status: st,
			Obb: types.Obb2D{
				Center:      types.Vec2{X: w.Obb.Center[0], Y: w.Obb.Center[1]},
				HalfExtents: types.Vec2{X: w.Obb.HalfExtents[0], Y: w.Obb.HalfExtents[1]},
				Rotation:    w.Obb.Rotation,
			},
		})
	}
	for _, im := range r.Images {
		f.Images = append(f.Images, wire.ImageHeader{
			Width:        im.Width,
			Height:       im.Height,
			Stride:       im.Stride,
			BufferWidth:  im.BufferWidth,
			BufferHeight: im.BufferHeight,
			Format:       types.PixelFormat(im.Format),
			Reallocate:   im.Reallocate,
			Updated:      im.Updated,
			Payload:      im.Payload,
		})
	}
	return f, nil
}

func frameRecordOf(f wire.Frame) frameRecord {
	r := frameRecord{Index: f.Index}
	for _, t := range f.Trackables {
		r.Trackables = append(r.Trackables, trackableRecord{
			ID: int32(t.ID), Status: t.Status.String(), Pose: poseRecordOf(t.Pose),
		})
	}
	for _, b := range f.VirtualButtons {
		r.Buttons = append(r.Buttons, buttonRecord{ID: int32(b.ID), Pressed: b.Pressed})
	}
	for _, w := range f.NewWords {
		r.NewWords = append(r.NewWords, newWordRecord{
			ID: int32(w.ID), Text: w.StringValue, Size: [2]float32{w.Size.X, w.Size.Y},
		})
	}
	for _, w := range f.WordResults {
		r.WordResults = append(r.WordResults, wordResultRecord{
			ID:     int32(w.ID),
			Status: w.Status.String(),
			Pose:   poseRecordOf(w.Pose),
			Obb: obbRecord{
				Center:      [2]float32{w.Obb.Center.X, w.Obb.Center.Y},
				HalfExtents: [2]float32{w.Obb.HalfExtents.X, w.Obb.HalfExtents.Y},
				Rotation:    w.Obb.Rotation,
			},
		})
	}
	for _, im := range f.Images {
		r.Images = append(r.Images, imageRecord{
			Width:        im.Width,
			Height:       im.Height,
			Stride:       im.Stride,
			BufferWidth:  im.BufferWidth,
			BufferHeight: im.BufferHeight,
			Format:       int32(im.Format),
			Reallocate:   im.Reallocate,
			Updated:      im.Updated,
			Payload:      im.Payload,
		})
	}
	return r
}

// ImportFramesJSONL creates a capture named name from a JSONL file of
// frames. Lines that are not valid JSON, or that do not describe a frame,
// are skipped and counted.
func (s *Store) ImportFramesJSONL(ctx context.Context, path, name string) (Capture, int, error) {
	records, skipped, err := readJSONL(path)
	if err != nil {
		return Capture{}, 0, err
	}

	c, err := s.CreateCapture(ctx, name)
	if err != nil {
		return Capture{}, 0, err
	}
	for i, raw := range records {
		var rec frameRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			skipped++
			s.logger.Warn("sqlite: skipping frame record", "path", path, "record", i, "error", err)
			continue
		}
		f, err := rec.frame()
		if err != nil {
			skipped++
			s.logger.Warn("sqlite: skipping frame record", "path", path, "record", i, "error", err)
			continue
		}
		buf, err := wire.Encode(f)
		if err != nil {
			return c, skipped, fmt.Errorf("encoding frame %d: %w", f.Index, err)
		}
		if err := s.AppendFrame(ctx, c.ID, buf); err != nil {
			return c, skipped, err
		}
		c.FrameCount++
	}
	return c, skipped, nil
}

// ExportFramesJSONL writes the frames of a capture to path in the form read
// by ImportFramesJSONL.
func (s *Store) ExportFramesJSONL(ctx context.Context, captureID, path string) (int, error) {
	frames, err := s.Frames(ctx, captureID)
	if err != nil {
		return 0, err
	}
	records := make([]json.RawMessage, 0, len(frames))
	for i, buf := range frames {
		f, err := wire.Decode(buf)
		if err != nil {
			return 0, fmt.Errorf("frame %d: %w", i, err)
		}
		b, err := json.Marshal(frameRecordOf(f))
		if err != nil {
			return 0, fmt.Errorf("marshaling frame %d: %w", f.Index, err)
		}
		records = append(records, b)
	}
	if err := writeJSONL(path, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
