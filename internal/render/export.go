package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/keagan/reelkit/internal/ffmpeg"
	"github.com/keagan/reelkit/internal/timeline"
)

// ErrExport indicates an export session failed. The partial output file
// is removed before the error is returned.
var ErrExport = errors.New("export failed")

// Export encodes the snapshot into a freshly named mp4 under the export
// directory and returns its path. Every call produces a distinct file.
func (c *Coordinator) Export(ctx context.Context, snap Snapshot) (string, error) {
	if c.start == nil {
		return "", fmt.Errorf("%w: no encoder configured", ErrExport)
	}
	if err := snap.Timeline.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExport, err)
	}
	total, err := snap.FrameCount()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExport, err)
	}

	size := snap.RenderSize()
	path := filepath.Join(c.exportDir, "export-"+uuid.New().String()+".mp4")

	c.logger.Info().
		Str("output", path).
		Int("frames", total).
		Int("width", size.X).
		Int("height", size.Y).
		Msg("starting export")

	enc, err := c.start(ctx, ffmpeg.EncodeOptions{
		Output: path,
		Width:  size.X,
		Height: size.Y,
		FPS:    snap.FPS,
		Audio:  audioInputs(snap.Timeline),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExport, err)
	}

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return "", c.abortExport(enc, path, err)
		}
		frame, err := snap.FrameAt(snap.FrameTime(i))
		if err != nil {
			return "", c.abortExport(enc, path, fmt.Errorf("frame %d: %v", i, err))
		}
		if err := enc.WriteFrame(frame); err != nil {
			return "", c.abortExport(enc, path, fmt.Errorf("frame %d: %v", i, err))
		}
	}

	if err := enc.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: %v", ErrExport, err)
	}

	c.logger.Info().Str("output", path).Msg("export complete")
	return path, nil
}

func (c *Coordinator) abortExport(enc Encoder, path string, cause error) error {
	enc.Abort()
	_ = os.Remove(path)
	c.logger.Error().Err(cause).Str("output", path).Msg("export aborted")
	return fmt.Errorf("%w: %v", ErrExport, cause)
}

// audioInputs flattens the timeline's audio track and music layer into
// encoder inputs.
func audioInputs(t *timeline.Timeline) []ffmpeg.AudioInput {
	var ins []ffmpeg.AudioInput
	for _, seg := range t.AudioSegments() {
		ins = append(ins, ffmpeg.AudioInput{
			Path:   seg.Source.Path,
			Offset: seg.DestStart.Duration(),
			Length: seg.SourceRange.Length.Duration(),
			Gain:   seg.Gain,
		})
	}
	if m := t.Music(); m != nil {
		ins = append(ins, ffmpeg.AudioInput{
			Path:   m.Source.Path,
			Offset: m.DestStart.Duration(),
			Length: m.SourceRange.Length.Duration(),
			Gain:   m.Gain,
		})
	}
	return ins
}
