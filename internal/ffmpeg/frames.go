package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/keagan/reelkit/internal/asset"
	"github.com/keagan/reelkit/internal/timecode"
	"github.com/keagan/reelkit/pkg/util"
)

// FrameSource decodes single frames from a video file on demand by
// seeking with ffmpeg and reading one PNG frame from stdout.
type FrameSource struct {
	exec *Executor
	path string
}

// OpenFrames implements asset.FrameOpener.
func (e *Executor) OpenFrames(path string, _ image.Point) asset.FrameProducer {
	return &FrameSource{exec: e, path: path}
}

// FrameAt implements asset.FrameProducer. Each call runs its own ffmpeg
// process, so concurrent thumbnail sampling is safe.
func (f *FrameSource) FrameAt(t timecode.Time) (image.Image, error) {
	args := []string{
		"-ss", util.FormatDuration(t.Duration()),
		"-i", f.path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-c:v", "png",
		"pipe:1",
	}

	data, err := f.exec.Output(context.Background(), args)
	if err != nil {
		return nil, fmt.Errorf("extract frame at %s: %w", t, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("extract frame at %s: no frame decoded", t)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode frame at %s: %w", t, err)
	}
	return img, nil
}
