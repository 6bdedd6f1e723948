// Package ffmpeg wraps the ffmpeg and ffprobe binaries behind the
// engine's probe, decode and encode entry points.
package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/keagan/reelkit/pkg/util"
)

// Executor handles all ffmpeg invocations with progress streaming. It is
// the process-scoped encoder handle: created once at startup, and the
// only fatal setup failure in the engine is the binaries being absent.
type Executor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
	threads     int
}

// New creates an executor. An empty binary path locates ffmpeg in PATH;
// ffprobe is looked up next to a configured binary first.
func New(logger zerolog.Logger, binary string, threads int) (*Executor, error) {
	if binary == "" {
		binary = "ffmpeg"
	}
	ffmpegPath, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	probe := "ffprobe"
	if dir := filepath.Dir(ffmpegPath); dir != "." {
		if sibling := filepath.Join(dir, "ffprobe"); util.FileExists(sibling) {
			probe = sibling
		}
	}
	ffprobePath, err := exec.LookPath(probe)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}

	return &Executor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		threads:     threads,
	}, nil
}

// Output executes ffmpeg and returns its raw stdout. Used for in-memory
// frame extraction where the output is binary image data, not log text.
func (e *Executor) Output(ctx context.Context, args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no arguments provided")
	}

	full := append(e.baseArgs(), args...)
	e.logger.Debug().Strs("args", full).Msg("executing ffmpeg for output")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffmpeg execution failed: %w: %s", err, lastLine(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func (e *Executor) baseArgs() []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "info"}
	if e.threads > 0 {
		args = append(args, "-threads", fmt.Sprintf("%d", e.threads))
	}
	return args
}

// streamOutput parses ffmpeg stderr and dispatches progress blocks.
func (e *Executor) streamOutput(r io.Reader, progressHandler func(*Progress), logHandler func(string)) {
	scanner := bufio.NewScanner(r)
	progress := &Progress{}

	for scanner.Scan() {
		line := scanner.Text()

		if logHandler != nil {
			logHandler(line)
		}

		switch {
		case strings.HasPrefix(line, "frame="):
			fmt.Sscanf(line, "frame=%d", &progress.Frame)
		case strings.HasPrefix(line, "fps="):
			fmt.Sscanf(line, "fps=%f", &progress.FPS)
		case strings.HasPrefix(line, "time="):
			if parts := strings.SplitN(line, "=", 2); len(parts) == 2 {
				progress.Time = strings.TrimSpace(parts[1])
			}
		case strings.HasPrefix(line, "speed="):
			if parts := strings.SplitN(line, "=", 2); len(parts) == 2 {
				progress.Speed = strings.TrimSpace(parts[1])
			}
		case strings.HasPrefix(line, "progress="):
			if progressHandler != nil && progress.Frame > 0 {
				progressHandler(progress)
			}
			progress = &Progress{}
		}
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
