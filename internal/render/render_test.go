package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keagan/reelkit/internal/asset"
	"github.com/keagan/reelkit/internal/effects"
	"github.com/keagan/reelkit/internal/ffmpeg"
	"github.com/keagan/reelkit/internal/timecode"
	"github.com/keagan/reelkit/internal/timeline"
)

func testSnapshot(t *testing.T, seconds float64) Snapshot {
	t.Helper()
	src := asset.NewVideoSource("clip", timecode.FromSeconds(seconds), image.Pt(64, 36), color.NRGBA{R: 200, A: 255}, true)
	tl, err := timeline.New(src)
	require.NoError(t, err)
	return Snapshot{Timeline: tl, FPS: 30}
}

type fakeEncoder struct {
	mu      sync.Mutex
	opts    ffmpeg.EncodeOptions
	frames  int
	closed  bool
	aborted bool
	failAt  int // fail WriteFrame at this index, -1 for never
}

func (f *fakeEncoder) WriteFrame(frame *image.RGBA) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt >= 0 && f.frames == f.failAt {
		return fmt.Errorf("disk full")
	}
	f.frames++
	return nil
}

func (f *fakeEncoder) Close() error { f.closed = true; return nil }
func (f *fakeEncoder) Abort()       { f.aborted = true }

func fakeCoordinator(dir string, enc *fakeEncoder) *Coordinator {
	return NewCoordinator(Options{
		Start: func(_ context.Context, opts ffmpeg.EncodeOptions) (Encoder, error) {
			enc.opts = opts
			return enc, nil
		},
		ExportDir: dir,
	})
}

func TestSnapshotFrameGeometry(t *testing.T) {
	snap := testSnapshot(t, 2)

	frame, err := snap.FrameAt(0)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(64, 36), frame.Bounds().Size())

	snap.Rotation = 90
	assert.Equal(t, image.Pt(36, 64), snap.RenderSize())
	rotated, err := snap.FrameAt(0)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(36, 64), rotated.Bounds().Size())
}

func TestSnapshotFrameCount(t *testing.T) {
	snap := testSnapshot(t, 2)
	n, err := snap.FrameCount()
	require.NoError(t, err)
	assert.Equal(t, 60, n)

	// The last frame time stays inside the timeline.
	last := snap.FrameTime(n - 1)
	assert.Less(t, int64(last), int64(snap.Timeline.Duration()))
}

func TestThumbnailsCountAndTimestamps(t *testing.T) {
	snap := testSnapshot(t, 5)
	c := fakeCoordinator(t.TempDir(), nil)

	var mu sync.Mutex
	var got []Thumbnail
	err := c.Thumbnails(context.Background(), snap, 10, func(th Thumbnail) {
		mu.Lock()
		got = append(got, th)
		mu.Unlock()
	})
	require.NoError(t, err)
	require.Len(t, got, 10)

	sort.Slice(got, func(i, j int) bool { return got[i].Index < got[j].Index })
	dur := int64(snap.Timeline.Duration())
	for i, th := range got {
		assert.Equal(t, i, th.Index)
		assert.Equal(t, timecode.Time(int64(i)*dur/10), th.Time)
		assert.NotNil(t, th.Image)
	}
}

func TestThumbnailsRejectsBadCount(t *testing.T) {
	snap := testSnapshot(t, 1)
	c := fakeCoordinator(t.TempDir(), nil)
	err := c.Thumbnails(context.Background(), snap, 0, func(Thumbnail) {})
	assert.Error(t, err)
}

func TestExportStreamsEveryFrame(t *testing.T) {
	snap := testSnapshot(t, 1)
	enc := &fakeEncoder{failAt: -1}
	c := fakeCoordinator(t.TempDir(), enc)

	path, err := c.Export(context.Background(), snap)
	require.NoError(t, err)
	assert.Contains(t, path, "export-")
	assert.Contains(t, path, ".mp4")
	assert.Equal(t, 30, enc.frames)
	assert.True(t, enc.closed)
	assert.False(t, enc.aborted)

	// Audio from the mirrored track reaches the encoder options.
	require.Len(t, enc.opts.Audio, 1)
	assert.Equal(t, float64(1), enc.opts.Audio[0].Gain)
}

func TestExportPathsAreUnique(t *testing.T) {
	snap := testSnapshot(t, 0.1)
	enc := &fakeEncoder{failAt: -1}
	c := fakeCoordinator(t.TempDir(), enc)

	first, err := c.Export(context.Background(), snap)
	require.NoError(t, err)
	second, err := c.Export(context.Background(), snap)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestExportAbortsOnWriteFailure(t *testing.T) {
	snap := testSnapshot(t, 1)
	enc := &fakeEncoder{failAt: 5}
	c := fakeCoordinator(t.TempDir(), enc)

	_, err := c.Export(context.Background(), snap)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExport)
	assert.True(t, enc.aborted)
	assert.False(t, enc.closed)
}

func TestExportCarriesEffectChain(t *testing.T) {
	snap := testSnapshot(t, 0.1)
	snap.Effects = effects.Chain{}.With(effects.NewGrayscale())

	frame, err := snap.FrameAt(0)
	require.NoError(t, err)
	r, g, b, _ := frame.At(0, 0).RGBA()
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}
