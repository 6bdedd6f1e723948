package render

import (
	"context"
	"image"

	"github.com/rs/zerolog"

	"github.com/keagan/reelkit/internal/config"
	"github.com/keagan/reelkit/internal/ffmpeg"
	"github.com/keagan/reelkit/internal/logging"
)

// Encoder consumes raw frames and produces the output file. Exactly one
// of Close or Abort must be called.
type Encoder interface {
	WriteFrame(frame *image.RGBA) error
	Close() error
	Abort()
}

// EncoderStarter launches an encoder for one export.
type EncoderStarter func(ctx context.Context, opts ffmpeg.EncodeOptions) (Encoder, error)

// Options configures a render coordinator.
type Options struct {
	Start          EncoderStarter
	ExportDir      string
	ThumbnailWidth int
}

// Coordinator owns the process-scoped rendering resources: the encoder
// factory, the export directory and the thumbnail geometry. Snapshots
// flow through it; it holds no composition state of its own.
type Coordinator struct {
	logger     zerolog.Logger
	start      EncoderStarter
	exportDir  string
	thumbWidth int
}

// NewCoordinator creates a coordinator with the given options.
func NewCoordinator(opts Options) *Coordinator {
	thumbWidth := opts.ThumbnailWidth
	if thumbWidth <= 0 {
		thumbWidth = 160
	}
	return &Coordinator{
		logger:     logging.WithComponent("render"),
		start:      opts.Start,
		exportDir:  opts.ExportDir,
		thumbWidth: thumbWidth,
	}
}

// NewFFmpegCoordinator wires a coordinator to a real ffmpeg executor.
func NewFFmpegCoordinator(exec *ffmpeg.Executor, cfg *config.Config) *Coordinator {
	logger := logging.WithComponent("render")
	return NewCoordinator(Options{
		Start: func(ctx context.Context, opts ffmpeg.EncodeOptions) (Encoder, error) {
			opts.Progress = func(p *ffmpeg.Progress) {
				logger.Debug().
					Int("frame", p.Frame).
					Float64("fps", p.FPS).
					Str("speed", p.Speed).
					Msg("encode progress")
			}
			return exec.StartEncode(ctx, opts)
		},
		ExportDir:      cfg.Export.Dir,
		ThumbnailWidth: cfg.Thumbnails.Width,
	})
}
