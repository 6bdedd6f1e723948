package ffmpeg

import (
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keagan/reelkit/internal/logging"
)

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH")
	}
}

func TestExecutorCreation(t *testing.T) {
	skipIfNoFFmpeg(t)

	e, err := New(logging.Nop(), "", 4)
	require.NoError(t, err)
	assert.NotEmpty(t, e.ffmpegPath)
	assert.NotEmpty(t, e.ffprobePath)
}

func TestBuildEncodeArgsVideoOnly(t *testing.T) {
	args := buildEncodeArgs(EncodeOptions{
		Output: "/tmp/out.mp4",
		Width:  640,
		Height: 360,
		FPS:    30,
	})

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-f rawvideo")
	assert.Contains(t, joined, "-pixel_format rgba")
	assert.Contains(t, joined, "-video_size 640x360")
	assert.Contains(t, joined, "-framerate 30")
	assert.Contains(t, joined, "-c:v libx264")
	assert.Contains(t, joined, "-crf 18")
	assert.Contains(t, joined, "-preset slow")
	assert.NotContains(t, joined, "-filter_complex")
	assert.Equal(t, "/tmp/out.mp4", args[len(args)-1])
}

func TestBuildEncodeArgsMixesAudioInputs(t *testing.T) {
	args := buildEncodeArgs(EncodeOptions{
		Output: "/tmp/out.mp4",
		Width:  640,
		Height: 360,
		FPS:    30,
		Audio: []AudioInput{
			{Path: "/tmp/a.mp4", Length: 3 * time.Second, Gain: 1},
			{Path: "/tmp/music.mp3", Offset: 1500 * time.Millisecond, Length: 6 * time.Second, Gain: 0.5},
		},
	})

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-i /tmp/a.mp4")
	assert.Contains(t, joined, "-i /tmp/music.mp3")

	var graph string
	for i, a := range args {
		if a == "-filter_complex" {
			graph = args[i+1]
		}
	}
	require.NotEmpty(t, graph)
	assert.Contains(t, graph, "[1:a]atrim=0:3.000000[a0]")
	assert.Contains(t, graph, "[2:a]atrim=0:6.000000,volume=0.500,adelay=1500|1500[a1]")
	assert.Contains(t, graph, "amix=inputs=2")
}

func TestBuildEncodeArgsSingleAudioSkipsMix(t *testing.T) {
	args := buildEncodeArgs(EncodeOptions{
		Output: "/tmp/out.mp4",
		Width:  320,
		Height: 240,
		FPS:    30,
		Audio:  []AudioInput{{Path: "/tmp/a.mp4", Length: 2 * time.Second, Gain: 1}},
	})

	joined := strings.Join(args, " ")
	assert.NotContains(t, joined, "amix")
	assert.Contains(t, joined, "[a0]anull[aout]")
}

func TestFilterBuilder(t *testing.T) {
	chain := NewFilterBuilder().
		ATrim(2 * time.Second).
		Volume(0.5).
		ADelay(750 * time.Millisecond).
		Build()
	assert.Equal(t, "atrim=0:2.000000,volume=0.500,adelay=750|750", chain)

	// Unit gain and zero offset add nothing.
	assert.Equal(t, "anull", NewFilterBuilder().Volume(1).ADelay(0).Build())
}
