package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// AudioInput places one audio file in the exported mix.
type AudioInput struct {
	Path   string
	Offset time.Duration // placement in output time
	Length time.Duration // material taken from the start of the file
	Gain   float64
}

// EncodeOptions configures a raw-frame encode session.
type EncodeOptions struct {
	Output   string
	Width    int
	Height   int
	FPS      int
	Audio    []AudioInput
	Progress ProgressFunc
}

// EncodeSession is an in-flight encode: raw RGBA frames are streamed to
// ffmpeg's stdin and muxed with the audio inputs. Exactly one of Close
// or Abort must be called.
type EncodeSession struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	size  image.Point

	scanDone chan struct{}
	mu       sync.Mutex
	tail     string
}

// StartEncode launches an encode session for the given options.
func (e *Executor) StartEncode(ctx context.Context, opts EncodeOptions) (*EncodeSession, error) {
	if opts.Output == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 || opts.FPS <= 0 {
		return nil, fmt.Errorf("invalid encode geometry %dx%d@%d", opts.Width, opts.Height, opts.FPS)
	}

	args := append(e.baseArgs(), buildEncodeArgs(opts)...)

	e.logger.Info().
		Str("output", opts.Output).
		Int("width", opts.Width).
		Int("height", opts.Height).
		Int("audio_inputs", len(opts.Audio)).
		Msg("starting encode session")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	s := &EncodeSession{
		cmd:      cmd,
		stdin:    stdin,
		size:     image.Pt(opts.Width, opts.Height),
		scanDone: make(chan struct{}),
	}
	go func() {
		defer close(s.scanDone)
		e.streamOutput(stderr, opts.Progress, s.keepTail)
	}()
	return s, nil
}

// keepTail remembers the newest stderr line for error reporting.
func (s *EncodeSession) keepTail(line string) {
	if line = strings.TrimSpace(line); line == "" {
		return
	}
	s.mu.Lock()
	s.tail = line
	s.mu.Unlock()
}

func (s *EncodeSession) lastStderr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tail
}

// buildEncodeArgs assembles the full argument list: raw RGBA video on
// stdin, each audio input trimmed, attenuated and delayed into place,
// mixed into a single aac track, encoded at the fixed highest-quality
// preset into an mp4 container.
func buildEncodeArgs(opts EncodeOptions) []string {
	args := []string{
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-framerate", fmt.Sprintf("%d", opts.FPS),
		"-i", "-",
	}

	for _, in := range opts.Audio {
		args = append(args, "-i", in.Path)
	}

	if len(opts.Audio) > 0 {
		var graph bytes.Buffer
		for i, in := range opts.Audio {
			chain := NewFilterBuilder().
				ATrim(in.Length).
				Volume(in.Gain).
				ADelay(in.Offset).
				Build()
			fmt.Fprintf(&graph, "[%d:a]%s[a%d];", i+1, chain, i)
		}
		if len(opts.Audio) == 1 {
			graph.WriteString("[a0]anull[aout]")
		} else {
			for i := range opts.Audio {
				fmt.Fprintf(&graph, "[a%d]", i)
			}
			fmt.Fprintf(&graph, "amix=inputs=%d:duration=longest:normalize=0[aout]", len(opts.Audio))
		}
		args = append(args,
			"-filter_complex", graph.String(),
			"-map", "0:v",
			"-map", "[aout]",
			"-c:a", ExportAudioCodec,
		)
	} else {
		args = append(args, "-map", "0:v")
	}

	args = append(args,
		"-c:v", ExportVideoCodec,
		"-crf", fmt.Sprintf("%d", ExportCRF),
		"-preset", ExportPreset,
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		opts.Output,
	)
	return args
}

// WriteFrame streams one frame to the encoder. The frame must match the
// session geometry.
func (s *EncodeSession) WriteFrame(frame *image.RGBA) error {
	bounds := frame.Bounds()
	if bounds.Size() != s.size {
		return fmt.Errorf("frame size %v does not match session size %v", bounds.Size(), s.size)
	}

	// Re-layout when the frame is a sub-image or carries padding, so
	// exactly width*height*4 bytes reach the encoder.
	if frame.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		packed := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(packed, packed.Bounds(), frame, bounds.Min, draw.Src)
		frame = packed
	}

	if _, err := s.stdin.Write(frame.Pix); err != nil {
		return fmt.Errorf("write frame: %w: %s", err, s.lastStderr())
	}
	return nil
}

// Close finishes the stream and waits for the encoder to drain.
func (s *EncodeSession) Close() error {
	if err := s.stdin.Close(); err != nil {
		return fmt.Errorf("close encoder stdin: %w", err)
	}
	<-s.scanDone
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("encode failed: %w: %s", err, s.lastStderr())
	}
	return nil
}

// Abort kills the encoder process and releases the session without
// waiting for a clean drain. Safe to call after a failed WriteFrame.
func (s *EncodeSession) Abort() {
	_ = s.stdin.Close()
	_ = s.cmd.Process.Kill()
	<-s.scanDone
	_ = s.cmd.Wait()
}
