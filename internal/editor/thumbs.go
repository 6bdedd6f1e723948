package editor

import (
	"context"
	"image"

	"github.com/keagan/reelkit/internal/render"
	"github.com/keagan/reelkit/internal/timecode"
)

// ThumbnailSet is the published thumbnail strip. Slots fill in as
// workers deliver; a nil image means the slot is still rendering.
type ThumbnailSet struct {
	Generation int64
	Images     []image.Image
	Times      []timecode.Time
}

func (s ThumbnailSet) clone() ThumbnailSet {
	return ThumbnailSet{
		Generation: s.Generation,
		Images:     append([]image.Image(nil), s.Images...),
		Times:      append([]timecode.Time(nil), s.Times...),
	}
}

// Thumbnails returns the current strip.
func (e *Editor) Thumbnails() ThumbnailSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.thumbs.clone()
}

// SubscribeThumbnails registers fn for strip updates and returns the
// function that removes the subscription. Updates arrive slot by slot
// and may be out of order within one generation.
func (e *Editor) SubscribeThumbnails(fn func(ThumbnailSet)) func() {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.thumbSubs[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.thumbSubs, id)
		e.mu.Unlock()
	}
}

// GenerateThumbnails renders a fresh strip for the current composition.
// Each call starts a new generation; deliveries from superseded
// generations are dropped, so the newest request always wins no matter
// how renders interleave.
func (e *Editor) GenerateThumbnails(ctx context.Context) error {
	if e.coord == nil {
		return nil
	}
	snap := e.Snapshot()

	e.mu.Lock()
	e.thumbGen++
	gen := e.thumbGen
	e.thumbs = ThumbnailSet{
		Generation: gen,
		Images:     make([]image.Image, e.thumbCount),
		Times:      make([]timecode.Time, e.thumbCount),
	}
	e.mu.Unlock()

	return e.coord.Thumbnails(ctx, snap, e.thumbCount, func(th render.Thumbnail) {
		e.mu.Lock()
		if gen != e.thumbGen {
			e.mu.Unlock()
			return
		}
		e.thumbs.Images[th.Index] = th.Image
		e.thumbs.Times[th.Index] = th.Time
		set := e.thumbs.clone()
		subs := make([]func(ThumbnailSet), 0, len(e.thumbSubs))
		for _, fn := range e.thumbSubs {
			subs = append(subs, fn)
		}
		e.mu.Unlock()

		for _, fn := range subs {
			fn(set)
		}
	})
}
