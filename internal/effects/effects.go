// Package effects implements the ordered, time-gated, per-frame visual
// transform chain: grayscale filtering, text burn-in and image overlays
// with opacity animation. Rendering is a pure function of the source
// frame, the frame time and the installed chain, so the pipeline is unit
// testable without any playback surface.
package effects

import (
	"image"
	"image/draw"

	"github.com/keagan/reelkit/internal/timecode"
)

// Effect is a single per-frame transform.
//
// Window reports the effect's active time window; gated=false means the
// effect is always active (the grayscale filter has no window). Apply
// composites the effect over dst in place; it is only called for frame
// times inside the window, inclusive on both ends.
type Effect interface {
	Window() (win timecode.Range, gated bool)
	Apply(dst *image.RGBA, t timecode.Time)
}

// Chain is an ordered effect list. Rendering applies effects in list
// order, each compositing over the previous result, so later entries
// draw on top. Chains are treated as immutable values: With returns a
// new chain and installing one replaces the whole list.
type Chain []Effect

// With returns a new chain including e. Grayscale entries sort to the
// front so the full-frame color transform runs before any overlay is
// composited; combining them any other way is not supported.
func (c Chain) With(e Effect) Chain {
	out := make(Chain, 0, len(c)+1)
	if _, ok := e.(*Grayscale); ok {
		out = append(out, e)
		return append(out, c...)
	}
	return append(append(out, c...), e)
}

// HasGrayscale reports whether the chain starts with a grayscale filter.
func (c Chain) HasGrayscale() bool {
	if len(c) == 0 {
		return false
	}
	_, ok := c[0].(*Grayscale)
	return ok
}

// Render produces the output frame for time t. The source frame is never
// mutated; effects whose window does not contain t pass the accumulated
// frame through unchanged.
func (c Chain) Render(frame image.Image, t timecode.Time) *image.RGBA {
	dst := toRGBA(frame)
	for _, e := range c {
		if win, gated := e.Window(); gated && !win.Contains(t) {
			continue
		}
		e.Apply(dst, t)
	}
	return dst
}

// toRGBA always copies, so Apply can draw in place without touching the
// caller's frame.
func toRGBA(frame image.Image) *image.RGBA {
	b := frame.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), frame, b.Min, draw.Src)
	return dst
}
