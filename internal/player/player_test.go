package player

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keagan/reelkit/internal/timecode"
)

func TestPlayPause(t *testing.T) {
	p := New(timecode.FromSeconds(10))
	assert.False(t, p.IsPlaying())

	p.Play()
	assert.True(t, p.IsPlaying())

	p.Pause()
	assert.False(t, p.IsPlaying())

	// Pausing twice stays paused.
	p.Pause()
	assert.False(t, p.IsPlaying())
}

func TestPlayWithEmptyCompositionIsNoop(t *testing.T) {
	p := New(0)
	p.Play()
	assert.False(t, p.IsPlaying())
}

func TestRotateWrapsAround(t *testing.T) {
	p := New(timecode.FromSeconds(1))
	assert.Equal(t, 90, p.Rotate())
	assert.Equal(t, 180, p.Rotate())
	assert.Equal(t, 270, p.Rotate())
	assert.Equal(t, 0, p.Rotate())
}

func TestSeekClamps(t *testing.T) {
	dur := timecode.FromSeconds(10)
	p := New(dur)

	p.Seek(timecode.FromSeconds(4))
	assert.Equal(t, timecode.FromSeconds(4), p.State().Position)

	p.Seek(timecode.FromSeconds(99))
	assert.Equal(t, dur, p.State().Position)

	p.Seek(-5)
	assert.Equal(t, timecode.Time(0), p.State().Position)
}

func TestEndOfStreamPausesAndResets(t *testing.T) {
	p := New(timecode.FromSeconds(1))

	var mu sync.Mutex
	var events []State
	unsub := p.Subscribe(func(s State) {
		mu.Lock()
		events = append(events, s)
		mu.Unlock()
	})
	defer unsub()

	p.Play()
	p.advance(timecode.FromSeconds(2))

	assert.False(t, p.IsPlaying())
	assert.Equal(t, timecode.Time(0), p.State().Position)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.True(t, last.AtEnd)
	assert.False(t, last.Playing)
	assert.Equal(t, timecode.Time(0), last.Position)
}

func TestPlayFromEndRestarts(t *testing.T) {
	dur := timecode.FromSeconds(1)
	p := New(dur)
	p.Seek(dur)

	p.Play()
	defer p.Pause()
	assert.True(t, p.IsPlaying())
	assert.Less(t, int64(p.State().Position), int64(dur))
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	p := New(timecode.FromSeconds(1))

	var mu sync.Mutex
	count := 0
	unsub := p.Subscribe(func(State) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	p.Rotate()
	unsub()
	p.Rotate()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
}

func TestSetDurationClampsPlayhead(t *testing.T) {
	p := New(timecode.FromSeconds(10))
	p.Seek(timecode.FromSeconds(8))

	p.SetDuration(timecode.FromSeconds(5))
	assert.Equal(t, timecode.FromSeconds(5), p.State().Position)
}
