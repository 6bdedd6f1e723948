// Package editor is the command surface of the composition engine. It
// serializes every mutation, rebuilds the timeline non-destructively and
// publishes observable state (thumbnails, playback) to subscribers. The
// effect chain lives here, outside the timeline, so composition rebuilds
// never drop installed effects.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/keagan/reelkit/internal/asset"
	"github.com/keagan/reelkit/internal/effects"
	"github.com/keagan/reelkit/internal/logging"
	"github.com/keagan/reelkit/internal/player"
	"github.com/keagan/reelkit/internal/render"
	"github.com/keagan/reelkit/internal/timecode"
	"github.com/keagan/reelkit/internal/timeline"
)

// DefaultThumbnailCount is the strip length when none is configured.
const DefaultThumbnailCount = 10

// Options configures an editor session.
type Options struct {
	Library     asset.Library
	Coordinator *render.Coordinator
	BaseAsset   string
	FPS         int
	Thumbnails  int
}

// Editor owns one editing session: the current timeline, the installed
// effect chain, the playback state machine and the thumbnail strip. All
// methods are safe for concurrent use; mutations are serialized.
type Editor struct {
	mu      sync.Mutex
	logger  zerolog.Logger
	library asset.Library
	coord   *render.Coordinator
	player  *player.Player

	timeline   *timeline.Timeline
	chain      effects.Chain
	fps        int
	thumbCount int

	thumbGen  int64
	thumbs    ThumbnailSet
	thumbSubs map[int]func(ThumbnailSet)
	nextSub   int
}

// New opens an editing session on the named base clip.
func New(opts Options) (*Editor, error) {
	if opts.Library == nil {
		return nil, fmt.Errorf("asset library is required")
	}
	base, err := opts.Library.Resolve(opts.BaseAsset)
	if err != nil {
		return nil, fmt.Errorf("resolve base asset %q: %w", opts.BaseAsset, err)
	}
	tl, err := timeline.New(base)
	if err != nil {
		return nil, err
	}

	fps := opts.FPS
	if fps <= 0 {
		fps = 30
	}
	thumbCount := opts.Thumbnails
	if thumbCount <= 0 {
		thumbCount = DefaultThumbnailCount
	}

	return &Editor{
		logger:     logging.WithComponent("editor"),
		library:    opts.Library,
		coord:      opts.Coordinator,
		player:     player.New(tl.Duration()),
		timeline:   tl,
		fps:        fps,
		thumbCount: thumbCount,
		thumbSubs:  make(map[int]func(ThumbnailSet)),
	}, nil
}

// Player exposes the playback state machine.
func (e *Editor) Player() *player.Player { return e.player }

// Timeline returns the current composition.
func (e *Editor) Timeline() *timeline.Timeline {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeline
}

// Effects returns the installed effect chain.
func (e *Editor) Effects() effects.Chain {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chain
}

// Snapshot captures the state rendering needs. Later edits never affect
// a snapshot already taken.
func (e *Editor) Snapshot() render.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return render.Snapshot{
		Timeline: e.timeline,
		Effects:  e.chain,
		Rotation: e.player.Rotation(),
		FPS:      e.fps,
	}
}

// AppendClip resolves the named clip and places it after the current
// composition. An unknown asset name is logged and leaves the session
// untouched; a clip without video aborts the append the same way.
func (e *Editor) AppendClip(name string) error {
	src, err := e.library.Resolve(name)
	if err != nil {
		if errors.Is(err, asset.ErrNotFound) {
			e.logger.Warn().Str("asset", name).Msg("clip not found, append skipped")
			return nil
		}
		return err
	}

	e.mu.Lock()
	next, err := e.timeline.Append(src)
	if err != nil {
		e.mu.Unlock()
		e.logger.Warn().Err(err).Str("asset", name).Msg("append rejected")
		return err
	}
	e.timeline = next
	e.mu.Unlock()

	e.player.SetDuration(next.Duration())
	e.logger.Info().Str("asset", name).Str("duration", next.Duration().String()).Msg("clip appended")
	e.refreshThumbnails("append")
	return nil
}

// SetBackgroundMusic scores the original base clip with the named audio
// asset. Appended clips are dropped by the rebuild; the effect chain is
// kept. An unknown asset name is logged and leaves the session untouched.
func (e *Editor) SetBackgroundMusic(name string) error {
	src, err := e.library.Resolve(name)
	if err != nil {
		if errors.Is(err, asset.ErrNotFound) {
			e.logger.Warn().Str("asset", name).Msg("music not found, skipped")
			return nil
		}
		return err
	}

	e.mu.Lock()
	next, err := e.timeline.WithBackgroundMusic(src)
	if err != nil {
		e.mu.Unlock()
		e.logger.Warn().Err(err).Str("asset", name).Msg("music rejected")
		return err
	}
	e.timeline = next
	e.mu.Unlock()

	e.player.SetDuration(next.Duration())
	e.logger.Info().Str("asset", name).Msg("background music set")
	e.refreshThumbnails("music")
	return nil
}

// Play starts playback.
func (e *Editor) Play() { e.player.Play() }

// Pause stops playback, keeping the playhead.
func (e *Editor) Pause() { e.player.Pause() }

// IsPlaying reports whether playback is running.
func (e *Editor) IsPlaying() bool { return e.player.IsPlaying() }

// PreparePlayback binds the current composition to the session's state
// machine for frame pulls. The surface goes stale when the session is
// edited; prepare a new one after mutations.
func (e *Editor) PreparePlayback() *render.Playback {
	return e.coord.PreparePlayback(e.Snapshot(), e.player)
}

// ApplyFilter installs the named full-frame filter.
func (e *Editor) ApplyFilter(kind string) error {
	switch strings.ToLower(kind) {
	case "grayscale", "greyscale":
		e.ApplyGrayscale()
		return nil
	default:
		return fmt.Errorf("unknown filter %q", kind)
	}
}

// ApplyGrayscale installs the full-frame grayscale filter. Applying it
// twice is a no-op.
func (e *Editor) ApplyGrayscale() {
	e.mu.Lock()
	if e.chain.HasGrayscale() {
		e.mu.Unlock()
		return
	}
	e.chain = e.chain.With(effects.NewGrayscale())
	e.mu.Unlock()
	e.logger.Info().Msg("grayscale filter applied")
	e.refreshThumbnails("grayscale")
}

// AddTextOverlay burns the given text into the frame for its window.
func (e *Editor) AddTextOverlay(text string, opts effects.TextOptions) error {
	overlay, err := effects.NewTextOverlay(text, opts)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.chain = e.chain.With(overlay)
	e.mu.Unlock()
	e.logger.Info().Str("text", text).Msg("text overlay added")
	e.refreshThumbnails("text overlay")
	return nil
}

// AddImageOverlay composites the given image over the frame for its
// window.
func (e *Editor) AddImageOverlay(img image.Image, opts effects.ImageOptions) error {
	overlay, err := effects.NewImageOverlay(img, opts)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.chain = e.chain.With(overlay)
	e.mu.Unlock()
	e.logger.Info().Msg("image overlay added")
	e.refreshThumbnails("image overlay")
	return nil
}

// Rotate advances the view rotation a quarter turn and returns the new
// angle.
func (e *Editor) Rotate() int {
	angle := e.player.Rotate()
	e.refreshThumbnails("rotate")
	return angle
}

// refreshThumbnails regenerates an existing strip in the background.
// Every edit changes rendered content, so a strip from before the edit
// is stale the moment the mutation lands. Sessions that never asked
// for thumbnails have nothing to refresh.
func (e *Editor) refreshThumbnails(after string) {
	e.mu.Lock()
	stale := e.thumbGen > 0
	e.mu.Unlock()
	if !stale {
		return
	}
	go func() {
		if err := e.GenerateThumbnails(context.Background()); err != nil {
			e.logger.Warn().Err(err).Str("after", after).Msg("thumbnail refresh failed")
		}
	}()
}

// AddWatermark composites img at the bottom right, small, at 0.7
// opacity for the given window.
func (e *Editor) AddWatermark(img image.Image, window timecode.Range) error {
	overlay, err := effects.NewWatermark(img, window)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.chain = e.chain.With(overlay)
	e.mu.Unlock()
	e.logger.Info().Msg("watermark added")
	e.refreshThumbnails("watermark")
	return nil
}

// AddLogo composites img at the top left, medium, at 0.9 opacity for
// the given window.
func (e *Editor) AddLogo(img image.Image, window timecode.Range) error {
	overlay, err := effects.NewLogo(img, window)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.chain = e.chain.With(overlay)
	e.mu.Unlock()
	e.logger.Info().Msg("logo added")
	e.refreshThumbnails("logo")
	return nil
}

// Export encodes the current composition and returns the output path.
// The snapshot isolates the encode from the live session, so playback
// keeps running while the export proceeds.
func (e *Editor) Export(ctx context.Context) (string, error) {
	if e.coord == nil {
		return "", fmt.Errorf("no render coordinator configured")
	}
	return e.coord.Export(ctx, e.Snapshot())
}
