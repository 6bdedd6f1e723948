// Package render turns an immutable composition snapshot into frames:
// per-instant frames for playback, parallel thumbnail strips and full
// encoded exports. A snapshot captures everything rendering needs, so
// edits made after capture never affect work already in flight.
package render

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/transform"

	"github.com/keagan/reelkit/internal/effects"
	"github.com/keagan/reelkit/internal/timecode"
	"github.com/keagan/reelkit/internal/timeline"
)

// Snapshot is a point-in-time capture of the composition state.
type Snapshot struct {
	Timeline *timeline.Timeline
	Effects  effects.Chain
	Rotation int // clockwise degrees, a multiple of 90
	FPS      int
}

// RenderSize returns the output frame dimensions, swapped for sideways
// rotations.
func (s Snapshot) RenderSize() image.Point {
	size := s.Timeline.RenderSize()
	if s.Rotation%180 != 0 {
		return image.Pt(size.Y, size.X)
	}
	return size
}

// FrameAt renders the fully composed output frame for time t: the source
// frame mapped through the timeline, rotated, scaled to the render size
// and passed through the effect chain.
func (s Snapshot) FrameAt(t timecode.Time) (*image.RGBA, error) {
	frame, err := s.Timeline.FrameAt(t)
	if err != nil {
		return nil, err
	}

	if rot := ((s.Rotation % 360) + 360) % 360; rot != 0 {
		frame = transform.Rotate(frame, float64(rot), &transform.RotationOptions{ResizeBounds: true})
	}

	size := s.RenderSize()
	if frame.Bounds().Size() != size {
		frame = transform.Resize(frame, size.X, size.Y, transform.Lanczos)
	}

	return s.Effects.Render(frame, t), nil
}

// FrameCount returns how many frames an export at the snapshot's frame
// rate produces.
func (s Snapshot) FrameCount() (int, error) {
	if s.FPS <= 0 {
		return 0, fmt.Errorf("invalid frame rate %d", s.FPS)
	}
	dur := int64(s.Timeline.Duration())
	n := (dur*int64(s.FPS) + timecode.Timescale - 1) / timecode.Timescale
	return int(n), nil
}

// FrameTime returns the timeline time of export frame i.
func (s Snapshot) FrameTime(i int) timecode.Time {
	return timecode.Time(int64(i) * timecode.Timescale / int64(s.FPS))
}
