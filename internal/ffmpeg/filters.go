package ffmpeg

import (
	"fmt"
	"strings"
	"time"
)

// FilterBuilder helps construct ffmpeg filter chains.
type FilterBuilder struct {
	filters []string
}

// NewFilterBuilder creates a new filter builder.
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{filters: make([]string, 0)}
}

// ATrim limits an audio stream to the first length of material.
func (fb *FilterBuilder) ATrim(length time.Duration) *FilterBuilder {
	if length <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("atrim=0:%.6f", length.Seconds()))
	return fb
}

// Volume scales an audio stream by a linear gain factor.
func (fb *FilterBuilder) Volume(gain float64) *FilterBuilder {
	if gain == 1 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("volume=%.3f", gain))
	return fb
}

// ADelay shifts an audio stream later by the given offset on both
// channels.
func (fb *FilterBuilder) ADelay(offset time.Duration) *FilterBuilder {
	if offset <= 0 {
		return fb
	}
	ms := offset.Milliseconds()
	fb.filters = append(fb.filters, fmt.Sprintf("adelay=%d|%d", ms, ms))
	return fb
}

// Custom adds a custom filter string.
func (fb *FilterBuilder) Custom(filter string) *FilterBuilder {
	fb.filters = append(fb.filters, filter)
	return fb
}

// Build returns the complete filter string joined with commas, or
// "anull" when no filter was added so the stream label stays valid.
func (fb *FilterBuilder) Build() string {
	if len(fb.filters) == 0 {
		return "anull"
	}
	return strings.Join(fb.filters, ",")
}
