package render

import (
	"context"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/sync/errgroup"

	"github.com/keagan/reelkit/internal/timecode"
)

// thumbnailWorkers bounds concurrent frame decodes for one strip.
const thumbnailWorkers = 4

// Thumbnail is one rendered strip entry.
type Thumbnail struct {
	Index int
	Time  timecode.Time
	Image image.Image
}

// Thumbnails renders count evenly spaced thumbnails for the snapshot and
// delivers each to sink as soon as it is ready. Entry i samples time
// i*duration/count. Workers run in parallel, so sink must tolerate
// out-of-order delivery and is called from multiple goroutines.
func (c *Coordinator) Thumbnails(ctx context.Context, snap Snapshot, count int, sink func(Thumbnail)) error {
	if count <= 0 {
		return fmt.Errorf("thumbnail count must be positive, got %d", count)
	}
	dur := snap.Timeline.Duration()

	c.logger.Debug().
		Int("count", count).
		Str("duration", dur.String()).
		Msg("rendering thumbnail strip")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(thumbnailWorkers)

	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := timecode.Time(int64(i) * int64(dur) / int64(count))
			frame, err := snap.FrameAt(t)
			if err != nil {
				return fmt.Errorf("thumbnail %d at %s: %w", i, t, err)
			}
			sink(Thumbnail{Index: i, Time: t, Image: c.scaleThumbnail(frame)})
			return nil
		})
	}

	return g.Wait()
}

func (c *Coordinator) scaleThumbnail(frame *image.RGBA) image.Image {
	size := frame.Bounds().Size()
	if size.X <= c.thumbWidth {
		return frame
	}
	h := size.Y * c.thumbWidth / size.X
	if h < 1 {
		h = 1
	}
	return transform.Resize(frame, c.thumbWidth, h, transform.Linear)
}
