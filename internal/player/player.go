// Package player holds the playback state machine: the play/pause flag,
// the playhead position, the view rotation and the subscriber list.
// State never changes behind a caller's back; every transition goes
// through a method and every observer receives an explicit notification.
package player

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/keagan/reelkit/internal/logging"
	"github.com/keagan/reelkit/internal/timecode"
)

// tickInterval is the playhead advance cadence while playing.
const tickInterval = 50 * time.Millisecond

// State is an immutable view of the player at one instant.
type State struct {
	Playing  bool
	Position timecode.Time
	Duration timecode.Time
	Rotation int
	// AtEnd marks the transition fired when playback hits the end of
	// the composition: the player pauses and the playhead resets.
	AtEnd bool
}

// Player is the playback state machine. All methods are safe for
// concurrent use; subscriber callbacks run with no internal lock held.
type Player struct {
	mu       sync.Mutex
	logger   zerolog.Logger
	playing  bool
	position timecode.Time
	duration timecode.Time
	rotation int
	stop     chan struct{}
	subs     map[int]func(State)
	nextSub  int
}

// New creates a paused player for a composition of the given duration.
func New(duration timecode.Time) *Player {
	return &Player{
		logger:   logging.WithComponent("player"),
		duration: duration,
		subs:     make(map[int]func(State)),
	}
}

// Subscribe registers fn for every state transition and returns the
// function that removes the subscription.
func (p *Player) Subscribe(fn func(State)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

// IsPlaying reports whether playback is running.
func (p *Player) IsPlaying() bool {
	return p.State().Playing
}

// Play starts playback. Playing from the very end restarts from zero.
func (p *Player) Play() {
	p.mu.Lock()
	if p.playing || p.duration == 0 {
		p.mu.Unlock()
		return
	}
	if p.position >= p.duration {
		p.position = 0
	}
	p.playing = true
	p.stop = make(chan struct{})
	go p.run(p.stop)
	state := p.stateLocked()
	p.mu.Unlock()

	p.logger.Debug().Str("position", state.Position.String()).Msg("playback started")
	p.notify(state)
}

// Pause stops playback, keeping the playhead where it is.
func (p *Player) Pause() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = false
	close(p.stop)
	p.stop = nil
	state := p.stateLocked()
	p.mu.Unlock()

	p.logger.Debug().Str("position", state.Position.String()).Msg("playback paused")
	p.notify(state)
}

// Seek moves the playhead, clamped to the composition bounds.
func (p *Player) Seek(to timecode.Time) {
	p.mu.Lock()
	if to < 0 {
		to = 0
	}
	if to > p.duration {
		to = p.duration
	}
	p.position = to
	state := p.stateLocked()
	p.mu.Unlock()

	p.notify(state)
}

// Rotate advances the view rotation by a quarter turn and returns the
// new angle in degrees.
func (p *Player) Rotate() int {
	p.mu.Lock()
	p.rotation = (p.rotation + 90) % 360
	state := p.stateLocked()
	p.mu.Unlock()

	p.notify(state)
	return state.Rotation
}

// Rotation returns the current view rotation in degrees.
func (p *Player) Rotation() int {
	return p.State().Rotation
}

// SetDuration installs the duration of a rebuilt composition, clamping
// the playhead into the new bounds.
func (p *Player) SetDuration(d timecode.Time) {
	p.mu.Lock()
	p.duration = d
	if p.position > d {
		p.position = d
	}
	state := p.stateLocked()
	p.mu.Unlock()

	p.notify(state)
}

func (p *Player) run(stop chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			p.advance(timecode.FromDuration(now.Sub(last)))
			last = now
		}
	}
}

// advance moves the playhead forward. Hitting the end pauses playback
// and resets the playhead to zero.
func (p *Player) advance(dt timecode.Time) {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.position += dt
	if p.position < p.duration {
		state := p.stateLocked()
		p.mu.Unlock()
		p.notify(state)
		return
	}

	p.playing = false
	p.position = 0
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
	state := p.stateLocked()
	state.AtEnd = true
	p.mu.Unlock()

	p.logger.Debug().Msg("playback reached end")
	p.notify(state)
}

func (p *Player) stateLocked() State {
	return State{
		Playing:  p.playing,
		Position: p.position,
		Duration: p.duration,
		Rotation: p.rotation,
	}
}

func (p *Player) notify(state State) {
	p.mu.Lock()
	fns := make([]func(State), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
