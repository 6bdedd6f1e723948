package timecode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromSeconds(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    Time
	}{
		{"zero", 0, 0},
		{"one second", 1, 600},
		{"half second", 0.5, 300},
		{"frame at 30fps", 1.0 / 30.0, 20},
		{"rounds to nearest tick", 0.0001, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromSeconds(tt.seconds))
		})
	}
}

func TestFromDuration(t *testing.T) {
	assert.Equal(t, Time(600), FromDuration(time.Second))
	assert.Equal(t, Time(300), FromDuration(500*time.Millisecond))
	assert.Equal(t, time.Second, Time(600).Duration())
}

func TestNewRangeRejectsNegativeLength(t *testing.T) {
	_, err := NewRange(0, -1)
	assert.Error(t, err)

	r, err := NewRange(600, 0)
	assert.NoError(t, err)
	assert.Equal(t, Time(600), r.End())
}

func TestRangeContainsInclusiveBothEnds(t *testing.T) {
	// Window [2s, 5s]: present at exactly 2.0s and 5.0s, absent just outside.
	w := Span(2, 3)

	assert.True(t, w.Contains(FromSeconds(2.0)))
	assert.True(t, w.Contains(FromSeconds(5.0)))
	assert.True(t, w.Contains(FromSeconds(3.5)))
	assert.False(t, w.Contains(FromSeconds(1.999)))
	assert.False(t, w.Contains(FromSeconds(5.001)))
}

func TestZeroLengthRangeIsSingleInstant(t *testing.T) {
	w := Span(2, 0)

	assert.True(t, w.Contains(FromSeconds(2)))
	assert.False(t, w.Contains(FromSeconds(2)+1))
	assert.False(t, w.Contains(FromSeconds(2)-1))
}

func TestProgress(t *testing.T) {
	w := Span(2, 4)

	assert.Equal(t, 0.0, w.Progress(FromSeconds(2)))
	assert.Equal(t, 0.5, w.Progress(FromSeconds(4)))
	assert.Equal(t, 1.0, w.Progress(FromSeconds(6)))
	assert.Equal(t, 0.0, w.Progress(FromSeconds(1)), "clamped below")
	assert.Equal(t, 1.0, w.Progress(FromSeconds(7)), "clamped above")
	assert.Equal(t, 0.0, Span(2, 0).Progress(FromSeconds(2)), "zero-length")
}
