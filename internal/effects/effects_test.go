package effects

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keagan/reelkit/internal/timecode"
)

func solidFrame(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

func redBox(w, h int) *image.RGBA {
	return solidFrame(w, h, color.RGBA{R: 255, A: 255})
}

func TestGrayscaleFormula(t *testing.T) {
	tests := []struct {
		name string
		in   color.RGBA
		want uint8
	}{
		{"pure red", color.RGBA{R: 255, A: 255}, 76},    // 299*255/1000
		{"pure green", color.RGBA{G: 255, A: 255}, 149}, // 587*255/1000
		{"pure blue", color.RGBA{B: 255, A: 255}, 29},   // 114*255/1000
		{"white", color.RGBA{255, 255, 255, 255}, 255},
		{"black", color.RGBA{0, 0, 0, 255}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := solidFrame(2, 2, tt.in)
			out := Chain{NewGrayscale()}.Render(frame, 0)
			got := out.RGBAAt(0, 0)
			assert.Equal(t, tt.want, got.R)
			assert.Equal(t, got.R, got.G)
			assert.Equal(t, got.G, got.B)
			assert.Equal(t, tt.in.A, got.A, "alpha preserved")
		})
	}
}

func TestGrayscaleIdempotent(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := range frame.Pix {
		frame.Pix[i] = uint8(i * 37) // deterministic non-uniform pixels
	}
	for i := 3; i < len(frame.Pix); i += 4 {
		frame.Pix[i] = 255
	}

	chain := Chain{NewGrayscale()}
	once := chain.Render(frame, 0)
	twice := chain.Render(once, 0)

	assert.Equal(t, once.Pix, twice.Pix, "gray(gray(c)) == gray(c), pixel-identical")
}

func TestRenderDoesNotMutateSourceFrame(t *testing.T) {
	frame := solidFrame(4, 4, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	before := append([]uint8(nil), frame.Pix...)

	Chain{NewGrayscale()}.Render(frame, 0)

	assert.Equal(t, before, frame.Pix)
}

func TestChainWindowBoundaryInclusive(t *testing.T) {
	overlay, err := NewImageOverlay(redBox(4, 4), ImageOptions{
		Position: TopLeft,
		Size:     Pixels(4, 4),
		Window:   timecode.Span(2, 3), // [2s, 5s]
	})
	require.NoError(t, err)
	chain := Chain{overlay}

	// A pixel inside the overlay box (top-left anchor, 20px margin).
	probe := func(at timecode.Time) color.RGBA {
		out := chain.Render(solidFrame(100, 100, color.White), at)
		return out.RGBAAt(Margin+1, Margin+1)
	}

	red := color.RGBA{R: 255, A: 255}
	white := color.RGBA{255, 255, 255, 255}

	assert.Equal(t, red, probe(timecode.FromSeconds(2.0)), "start instant is inside")
	assert.Equal(t, red, probe(timecode.FromSeconds(5.0)), "end instant is inside")
	assert.Equal(t, white, probe(timecode.FromSeconds(1.999)))
	assert.Equal(t, white, probe(timecode.FromSeconds(5.001)))
}

func TestChainCompositesInListOrder(t *testing.T) {
	bottom, err := NewImageOverlay(redBox(4, 4), ImageOptions{
		Position: TopLeft,
		Size:     Pixels(4, 4),
		Window:   timecode.Span(0, 10),
	})
	require.NoError(t, err)
	top, err := NewImageOverlay(solidFrame(4, 4, color.RGBA{B: 255, A: 255}), ImageOptions{
		Position: TopLeft,
		Size:     Pixels(4, 4),
		Window:   timecode.Span(0, 10),
	})
	require.NoError(t, err)

	out := Chain{bottom, top}.Render(solidFrame(100, 100, color.White), timecode.FromSeconds(1))

	// Later entries draw on top.
	assert.Equal(t, color.RGBA{B: 255, A: 255}, out.RGBAAt(Margin+1, Margin+1))
}

func TestChainWithSortsGrayscaleFirst(t *testing.T) {
	overlay, err := NewTextOverlay("hi", DefaultTextOptions())
	require.NoError(t, err)

	chain := Chain{}.With(overlay).With(NewGrayscale())

	require.Len(t, chain, 2)
	assert.True(t, chain.HasGrayscale())
	_, gated := chain[0].Window()
	assert.False(t, gated, "grayscale has no window")
}

func TestImageOverlayOpacityBlend(t *testing.T) {
	overlay, err := NewImageOverlay(redBox(4, 4), ImageOptions{
		Position: TopLeft,
		Size:     Pixels(4, 4),
		Opacity:  0.5,
		Window:   timecode.Span(0, 10),
	})
	require.NoError(t, err)

	out := Chain{overlay}.Render(solidFrame(100, 100, color.White), timecode.FromSeconds(1))
	got := out.RGBAAt(Margin+1, Margin+1)

	assert.Equal(t, uint8(255), got.R)
	assert.InDelta(t, 128, int(got.G), 4, "half red over white")
	assert.InDelta(t, 128, int(got.B), 4)
}

func TestImageOverlayFadeInStartsInvisible(t *testing.T) {
	overlay, err := NewImageOverlay(redBox(4, 4), ImageOptions{
		Position:  TopLeft,
		Size:      Pixels(4, 4),
		Window:    timecode.Span(2, 4),
		Animation: CurveFadeIn,
	})
	require.NoError(t, err)
	chain := Chain{overlay}

	atStart := chain.Render(solidFrame(100, 100, color.White), timecode.FromSeconds(2))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, atStart.RGBAAt(Margin+1, Margin+1),
		"fade-in has zero opacity at window start")

	atEnd := chain.Render(solidFrame(100, 100, color.White), timecode.FromSeconds(6))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, atEnd.RGBAAt(Margin+1, Margin+1),
		"fade-in reaches full opacity at window end")
}

func TestTextOverlayDrawsPaddedBox(t *testing.T) {
	opts := DefaultTextOptions()
	opts.Window = timecode.Span(0, 10)
	overlay, err := NewTextOverlay("Greetings!", opts)
	require.NoError(t, err)

	out := Chain{overlay}.Render(solidFrame(640, 360, color.White), timecode.FromSeconds(1))

	// Bottom-center anchor: the background box sits just above the
	// bottom margin, horizontally centered.
	got := out.RGBAAt(320, 360-Margin-2)
	assert.NotEqual(t, color.RGBA{255, 255, 255, 255}, got,
		"background box must darken the frame at the bottom center")
}

func TestTextOverlayRejectsEmptyText(t *testing.T) {
	_, err := NewTextOverlay("   ", DefaultTextOptions())
	assert.Error(t, err)
}

func TestImageOverlayValidation(t *testing.T) {
	_, err := NewImageOverlay(nil, ImageOptions{})
	assert.Error(t, err)

	_, err = NewImageOverlay(redBox(4, 4), ImageOptions{Opacity: 1.5})
	assert.Error(t, err)
}
