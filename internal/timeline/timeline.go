package timeline

import (
	"errors"
	"fmt"
	"image"

	"github.com/keagan/reelkit/internal/asset"
	"github.com/keagan/reelkit/internal/timecode"
)

// ErrTrackInsertion indicates a source could not be multiplexed into the
// output tracks, most often because it lacks a video track. The operation
// that hit it leaves the previous timeline intact.
var ErrTrackInsertion = errors.New("track insertion failed")

// MusicGain is the fixed attenuation applied to a background music layer.
const MusicGain = 0.5

// Segment places one clip's video inside the output track.
type Segment struct {
	Source      *asset.Source
	SourceRange timecode.Range
	DestStart   timecode.Time
}

// DestRange returns the segment's placement in output time.
func (s Segment) DestRange() timecode.Range {
	return timecode.Range{Start: s.DestStart, Length: s.SourceRange.Length}
}

// AudioSegment places one clip's audio inside the output audio track.
type AudioSegment struct {
	Source      *asset.Source
	SourceRange timecode.Range
	DestStart   timecode.Time
	Gain        float64
}

// Timeline is the assembled multi-clip composition: a single output video
// track, a single output audio track mirroring it, and at most one
// background music layer. Timelines are immutable; every edit builds a
// new one.
type Timeline struct {
	base      *asset.Source
	video     []Segment
	audio     []AudioSegment
	music     *AudioSegment
	transform asset.Affine
	size      image.Point
}

// New builds a single-clip timeline from the base asset. The base must
// carry a video track; its audio, when present, is mirrored 1:1.
func New(base *asset.Source) (*Timeline, error) {
	if base == nil || !base.HasVideo() {
		return nil, fmt.Errorf("base asset %q has no video track: %w", name(base), ErrTrackInsertion)
	}

	t := &Timeline{
		base:      base,
		transform: base.PreferredTransform,
		size:      base.NaturalSize,
	}
	t.video = append(t.video, Segment{
		Source:      base,
		SourceRange: timecode.Range{Start: 0, Length: base.Duration},
	})
	if base.HasAudio() {
		t.audio = append(t.audio, AudioSegment{
			Source:      base,
			SourceRange: timecode.Range{Start: 0, Length: base.Duration},
			Gain:        1,
		})
	}
	return t, nil
}

// Append builds a new timeline with next's clip placed at the running
// total duration. Output stays a single video track and a single audio
// track; the first asset's preferred transform is kept. A missing video
// track aborts the whole append; missing audio is best-effort and leaves
// that stretch of the audio track silent.
func (t *Timeline) Append(next *asset.Source) (*Timeline, error) {
	if next == nil || !next.HasVideo() {
		return nil, fmt.Errorf("asset %q has no video track: %w", name(next), ErrTrackInsertion)
	}

	out := t.clone()
	at := t.Duration()
	out.video = append(out.video, Segment{
		Source:      next,
		SourceRange: timecode.Range{Start: 0, Length: next.Duration},
		DestStart:   at,
	})
	if next.HasAudio() {
		out.audio = append(out.audio, AudioSegment{
			Source:      next,
			SourceRange: timecode.Range{Start: 0, Length: next.Duration},
			DestStart:   at,
			Gain:        1,
		})
	}
	return out, nil
}

// WithBackgroundMusic builds a new timeline scoring the ORIGINAL base
// clip with the given audio asset at MusicGain from time zero. Any
// previously appended clips, audio and music layer are dropped: music
// always re-wraps the unconcatenated base asset. Installed effects live
// outside the timeline and survive this rebuild.
func (t *Timeline) WithBackgroundMusic(music *asset.Source) (*Timeline, error) {
	if music == nil || !music.HasAudio() {
		return nil, fmt.Errorf("asset %q has no audio track: %w", name(music), ErrTrackInsertion)
	}

	out, err := New(t.base)
	if err != nil {
		return nil, err
	}

	// The music layer replaces the base clip's own audio.
	out.audio = nil
	length := t.base.Duration
	if music.Duration < length {
		length = music.Duration
	}
	out.music = &AudioSegment{
		Source:      music,
		SourceRange: timecode.Range{Start: 0, Length: length},
		Gain:        MusicGain,
	}
	return out, nil
}

// Base returns the original unconcatenated source asset.
func (t *Timeline) Base() *asset.Source { return t.base }

// Segments returns the output video track's segments in destination order.
func (t *Timeline) Segments() []Segment { return t.video }

// AudioSegments returns the output audio track's segments.
func (t *Timeline) AudioSegments() []AudioSegment { return t.audio }

// Music returns the background music layer, if any.
func (t *Timeline) Music() *AudioSegment { return t.music }

// Transform returns the output track's preferred transform, copied from
// the first asset.
func (t *Timeline) Transform() asset.Affine { return t.transform }

// RenderSize returns the output frame size, taken from the base asset.
func (t *Timeline) RenderSize() image.Point { return t.size }

// Duration returns the total output duration, tick-exact.
func (t *Timeline) Duration() timecode.Time {
	if len(t.video) == 0 {
		return 0
	}
	return t.video[len(t.video)-1].DestRange().End()
}

// Validate checks the contiguity invariant: segments sorted by
// destination start must have no gaps and no overlaps.
func (t *Timeline) Validate() error {
	var cursor timecode.Time
	for i, seg := range t.video {
		if seg.DestStart != cursor {
			return fmt.Errorf("segment %d starts at %s, want %s", i, seg.DestStart, cursor)
		}
		if seg.SourceRange.Length < 0 {
			return fmt.Errorf("segment %d has negative length", i)
		}
		cursor = seg.DestRange().End()
	}
	return nil
}

// SegmentAt maps an output time to the segment covering it and the
// corresponding source-local time. The final instant of the timeline
// maps to the end of the last segment.
func (t *Timeline) SegmentAt(at timecode.Time) (Segment, timecode.Time, bool) {
	for i, seg := range t.video {
		dest := seg.DestRange()
		last := i == len(t.video)-1
		if at >= dest.Start && (at < dest.End() || (last && at == dest.End())) {
			return seg, seg.SourceRange.Start + (at - dest.Start), true
		}
	}
	return Segment{}, 0, false
}

// FrameAt decodes the source frame for an output time.
func (t *Timeline) FrameAt(at timecode.Time) (image.Image, error) {
	seg, srcTime, ok := t.SegmentAt(at)
	if !ok {
		return nil, fmt.Errorf("time %s outside timeline duration %s", at, t.Duration())
	}
	if seg.Source.Frames == nil {
		return nil, fmt.Errorf("source %q has no frame producer", seg.Source.Name)
	}
	return seg.Source.Frames.FrameAt(srcTime)
}

func (t *Timeline) clone() *Timeline {
	out := &Timeline{
		base:      t.base,
		video:     append([]Segment(nil), t.video...),
		audio:     append([]AudioSegment(nil), t.audio...),
		transform: t.transform,
		size:      t.size,
	}
	if t.music != nil {
		m := *t.music
		out.music = &m
	}
	return out
}

func name(s *asset.Source) string {
	if s == nil {
		return "<nil>"
	}
	return s.Name
}
