package timecode

import (
	"fmt"
	"math"
	"time"
)

// Timescale is the number of ticks per second shared by every Time value.
// All timeline arithmetic happens in integer ticks so repeated append and
// seek operations never accumulate floating-point drift.
const Timescale = 600

// Time is an instant or duration expressed in ticks at Timescale.
type Time int64

// FromSeconds converts seconds to the nearest tick.
func FromSeconds(s float64) Time {
	return Time(math.Round(s * Timescale))
}

// FromDuration converts a time.Duration to ticks.
func FromDuration(d time.Duration) Time {
	return Time(d * Timescale / time.Second)
}

// Seconds returns the value in seconds. For display and ffmpeg argument
// formatting only; comparisons stay in ticks.
func (t Time) Seconds() float64 {
	return float64(t) / Timescale
}

// Duration returns the value as a time.Duration.
func (t Time) Duration() time.Duration {
	return time.Duration(t) * time.Second / Timescale
}

func (t Time) String() string {
	return fmt.Sprintf("%.3fs", t.Seconds())
}

// Range is a half-open placement [Start, Start+Length) in the shared time
// base, except where noted: effect windows treat both ends as inclusive.
type Range struct {
	Start  Time
	Length Time
}

// NewRange builds a range, rejecting negative lengths.
func NewRange(start, length Time) (Range, error) {
	if length < 0 {
		return Range{}, fmt.Errorf("range length must be non-negative, got %s", length)
	}
	return Range{Start: start, Length: length}, nil
}

// Span is a convenience constructor for ranges built from seconds.
func Span(startSec, lengthSec float64) Range {
	return Range{Start: FromSeconds(startSec), Length: FromSeconds(lengthSec)}
}

// End returns Start + Length.
func (r Range) End() Time {
	return r.Start + r.Length
}

// Contains reports whether t falls inside the range, inclusive on both
// ends. A zero-length range contains exactly the single instant Start.
func (r Range) Contains(t Time) bool {
	return t >= r.Start && t <= r.End()
}

// Progress returns the normalized position of t within the range, clamped
// to [0, 1]. A zero-length range always reports 0.
func (r Range) Progress(t Time) float64 {
	if r.Length == 0 {
		return 0
	}
	p := float64(t-r.Start) / float64(r.Length)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func (r Range) String() string {
	return fmt.Sprintf("[%s +%s]", r.Start, r.Length)
}
