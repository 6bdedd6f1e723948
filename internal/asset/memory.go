package asset

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/keagan/reelkit/internal/timecode"
)

// MemLibrary is an in-memory Library for tests and synthetic pipelines.
type MemLibrary struct {
	sources map[string]*Source
}

// NewMemLibrary creates an empty in-memory library.
func NewMemLibrary() *MemLibrary {
	return &MemLibrary{sources: make(map[string]*Source)}
}

// Add registers a source under its name.
func (l *MemLibrary) Add(src *Source) {
	l.sources[src.Name] = src
}

// Resolve implements Library.
func (l *MemLibrary) Resolve(name string) (*Source, error) {
	src, ok := l.sources[name]
	if !ok {
		return nil, fmt.Errorf("resolve %q: %w", name, ErrNotFound)
	}
	return src, nil
}

// SolidFrames produces uniformly colored frames of a fixed size. Frame
// requests past the end of the clip fail, mirroring a real decoder.
type SolidFrames struct {
	Size     image.Point
	Color    color.Color
	Duration timecode.Time
}

// FrameAt implements FrameProducer.
func (p *SolidFrames) FrameAt(t timecode.Time) (image.Image, error) {
	if t < 0 || t > p.Duration {
		return nil, fmt.Errorf("frame time %s outside clip duration %s", t, p.Duration)
	}
	img := image.NewRGBA(image.Rect(0, 0, p.Size.X, p.Size.Y))
	draw.Draw(img, img.Bounds(), &image.Uniform{p.Color}, image.Point{}, draw.Src)
	return img, nil
}

// NewVideoSource builds a synthetic video+audio source backed by solid
// frames. Used throughout the engine tests.
func NewVideoSource(name string, duration timecode.Time, size image.Point, c color.Color, withAudio bool) *Source {
	src := &Source{
		Name:               name,
		Duration:           duration,
		NaturalSize:        size,
		PreferredTransform: Identity,
		Video:              &TrackRef{Kind: TrackVideo, Index: 0},
		Frames:             &SolidFrames{Size: size, Color: c, Duration: duration},
	}
	if withAudio {
		src.Audio = &TrackRef{Kind: TrackAudio, Index: 0}
	}
	return src
}

// NewAudioSource builds a synthetic audio-only source.
func NewAudioSource(name string, duration timecode.Time) *Source {
	return &Source{
		Name:               name,
		Duration:           duration,
		PreferredTransform: Identity,
		Audio:              &TrackRef{Kind: TrackAudio, Index: 0},
	}
}
