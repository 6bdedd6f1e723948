package asset

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/keagan/reelkit/internal/timecode"
	"github.com/keagan/reelkit/pkg/util"
)

// Info is the probed metadata for a media file.
type Info struct {
	Duration   time.Duration
	Width      int
	Height     int
	HasVideo   bool
	HasAudio   bool
	VideoCodec string
	AudioCodec string
}

// Prober extracts metadata from a media file. Satisfied by the ffmpeg
// executor in production.
type Prober interface {
	Probe(ctx context.Context, path string) (Info, error)
}

// FrameOpener builds a frame producer for a probed video file.
type FrameOpener interface {
	OpenFrames(path string, naturalSize image.Point) FrameProducer
}

var videoExtensions = []string{".mp4", ".mov"}
var audioExtensions = []string{".mp3", ".m4a", ".wav"}

// DirLibrary resolves named assets against a set of search directories,
// probing each match once and caching the handle.
type DirLibrary struct {
	logger zerolog.Logger
	paths  []string
	prober Prober
	frames FrameOpener

	mu    sync.Mutex
	cache map[string]*Source
}

// NewDirLibrary creates a directory-backed asset library.
func NewDirLibrary(logger zerolog.Logger, paths []string, prober Prober, frames FrameOpener) *DirLibrary {
	return &DirLibrary{
		logger: logger.With().Str("component", "assets").Logger(),
		paths:  paths,
		prober: prober,
		frames: frames,
		cache:  make(map[string]*Source),
	}
}

// Resolve finds a media file matching name, probes it and returns an
// immutable source handle. Subsequent lookups return the cached handle.
func (l *DirLibrary) Resolve(name string) (*Source, error) {
	l.mu.Lock()
	if src, ok := l.cache[name]; ok {
		l.mu.Unlock()
		return src, nil
	}
	l.mu.Unlock()

	path, ok := l.locate(name)
	if !ok {
		return nil, fmt.Errorf("resolve %q: %w", name, ErrNotFound)
	}

	src, err := l.load(name, path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[name] = src
	l.mu.Unlock()

	l.logger.Debug().
		Str("name", name).
		Str("path", path).
		Dur("duration", src.Duration.Duration()).
		Bool("video", src.HasVideo()).
		Bool("audio", src.HasAudio()).
		Msg("asset resolved")

	return src, nil
}

func (l *DirLibrary) locate(name string) (string, bool) {
	exts := append(append([]string{}, videoExtensions...), audioExtensions...)
	if filepath.Ext(name) != "" {
		exts = []string{""}
	}

	for _, dir := range l.paths {
		for _, ext := range exts {
			path := filepath.Join(dir, name+ext)
			if util.FileExists(path) {
				return path, true
			}
		}
	}
	return "", false
}

func (l *DirLibrary) load(name, path string) (*Source, error) {
	info, err := l.prober.Probe(context.Background(), path)
	if err != nil {
		return nil, fmt.Errorf("probe %q: %w", path, err)
	}

	src := &Source{
		Name:               name,
		Path:               path,
		Duration:           timecode.FromDuration(info.Duration),
		NaturalSize:        image.Pt(info.Width, info.Height),
		PreferredTransform: Identity,
	}
	if info.HasVideo {
		src.Video = &TrackRef{Kind: TrackVideo, Index: 0, Codec: info.VideoCodec}
		src.Frames = l.frames.OpenFrames(path, src.NaturalSize)
	}
	if info.HasAudio {
		src.Audio = &TrackRef{Kind: TrackAudio, Index: 0, Codec: info.AudioCodec}
	}
	return src, nil
}
