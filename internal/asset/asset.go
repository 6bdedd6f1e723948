package asset

import (
	"errors"
	"image"

	"github.com/keagan/reelkit/internal/timecode"
)

// ErrNotFound indicates the named media resource could not be resolved.
var ErrNotFound = errors.New("asset not found")

// TrackKind identifies the media type of a track.
type TrackKind string

const (
	TrackVideo TrackKind = "video"
	TrackAudio TrackKind = "audio"
)

// TrackRef is a read-only handle to one track inside a source.
type TrackRef struct {
	Kind  TrackKind
	Index int
	Codec string
}

// Affine is a 2x3 affine transform in row-major order
// [a b tx; c d ty]. Sources carry their preferred display orientation
// here; the timeline copies it, never corrects it.
type Affine [6]float64

// Identity is the no-op transform.
var Identity = Affine{1, 0, 0, 0, 1, 0}

// Source is an immutable handle to decodable media. The timeline only
// borrows sources; nothing downstream mutates them.
type Source struct {
	Name               string
	Path               string
	Video              *TrackRef
	Audio              *TrackRef
	Duration           timecode.Time
	NaturalSize        image.Point
	PreferredTransform Affine

	// Frames decodes video frames on demand. Nil for audio-only sources.
	Frames FrameProducer
}

// HasVideo reports whether the source carries a video track.
func (s *Source) HasVideo() bool { return s.Video != nil }

// HasAudio reports whether the source carries an audio track.
func (s *Source) HasAudio() bool { return s.Audio != nil }

// FrameProducer decodes a single frame at a source-local time.
// Implementations must be safe for concurrent use: thumbnail sampling
// calls FrameAt from several goroutines at once.
type FrameProducer interface {
	FrameAt(t timecode.Time) (image.Image, error)
}

// Library resolves media by name. The bundle lookup of the host
// application is behind this interface so the engine can be driven by a
// directory scan in production and in-memory sources in tests.
type Library interface {
	Resolve(name string) (*Source, error)
}
