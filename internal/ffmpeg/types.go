package ffmpeg

import "time"

// VideoInfo contains metadata about a media file.
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	HasVideo   bool
	VideoCodec string
	HasAudio   bool
	AudioCodec string
}

// Progress represents ffmpeg progress data parsed from stderr.
type Progress struct {
	Frame int
	FPS   float64
	Time  string
	Speed string
}

// ProgressFunc is a callback invoked periodically with progress
// information while an encode executes.
type ProgressFunc func(*Progress)

// Export settings. The pipeline targets a single container and a fixed
// highest-quality preset; none of this is user-configurable.
const (
	ExportCRF        = 18
	ExportPreset     = "slow"
	ExportVideoCodec = "libx264"
	ExportAudioCodec = "aac"
)
