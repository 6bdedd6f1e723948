package render

import (
	"image"

	"github.com/keagan/reelkit/internal/player"
)

// Playback binds one snapshot to a playback state machine so frames can
// be pulled at the playhead. The snapshot is fixed at prepare time;
// edits made afterwards need a fresh surface.
type Playback struct {
	snap   Snapshot
	player *player.Player
}

// PreparePlayback binds the snapshot to the given state machine.
// Non-blocking; no decoding happens until a frame is pulled.
func (c *Coordinator) PreparePlayback(snap Snapshot, pl *player.Player) *Playback {
	return &Playback{snap: snap, player: pl}
}

// Player returns the bound state machine.
func (p *Playback) Player() *player.Player { return p.player }

// Frame renders the composed frame at the current playhead.
func (p *Playback) Frame() (*image.RGBA, error) {
	return p.snap.FrameAt(p.player.State().Position)
}
