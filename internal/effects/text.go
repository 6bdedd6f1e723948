package effects

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/keagan/reelkit/internal/timecode"
)

const (
	// TextPadding is the inset between the text and its background box.
	TextPadding = 16

	// DefaultFontSize is the burn-in point size when none is given.
	DefaultFontSize = 36

	// wrapFraction caps the text bounding box at this share of the
	// render width.
	wrapFraction = 0.8
)

var (
	boldFontOnce sync.Once
	boldFont     *opentype.Font
	boldFontErr  error
)

func loadBoldFont() (*opentype.Font, error) {
	boldFontOnce.Do(func() {
		boldFont, boldFontErr = opentype.Parse(gobold.TTF)
	})
	return boldFont, boldFontErr
}

// TextOptions configures a text burn-in overlay.
type TextOptions struct {
	Position   Position
	FontSize   float64
	Color      color.Color
	Background color.Color
	Window     timecode.Range
}

// DefaultTextOptions returns the stock burn-in look: bold white text on
// a half-transparent black box at the bottom center.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		Position:   BottomCenter,
		FontSize:   DefaultFontSize,
		Color:      color.White,
		Background: color.NRGBA{A: 128},
	}
}

// TextOverlay rasterizes a string onto a padded background box and
// composites it over the frame while its window is active.
type TextOverlay struct {
	text string
	opts TextOptions
	face font.Face

	// The rasterized box only depends on the render size, so it is
	// built once and reused; the lock also serializes face access,
	// which is not safe for concurrent shaping.
	mu       sync.Mutex
	cacheKey image.Point
	cache    *image.RGBA
}

// NewTextOverlay builds a text overlay, filling unset style options with
// the application defaults.
func NewTextOverlay(text string, opts TextOptions) (*TextOverlay, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text overlay requires non-empty text")
	}
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultFontSize
	}
	if opts.Color == nil {
		opts.Color = color.White
	}
	if opts.Background == nil {
		opts.Background = color.NRGBA{A: 128}
	}

	f, err := loadBoldFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    opts.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build font face: %w", err)
	}

	return &TextOverlay{text: text, opts: opts, face: face}, nil
}

// Window implements Effect.
func (o *TextOverlay) Window() (timecode.Range, bool) {
	return o.opts.Window, true
}

// Apply implements Effect.
func (o *TextOverlay) Apply(dst *image.RGBA, _ timecode.Time) {
	render := dst.Bounds().Size()
	layer := o.layerFor(render)
	at := o.opts.Position.Resolve(layer.Bounds().Size(), render)
	draw.Draw(dst, layer.Bounds().Add(at), layer, image.Point{}, draw.Over)
}

func (o *TextOverlay) layerFor(render image.Point) *image.RGBA {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cache != nil && o.cacheKey == render {
		return o.cache
	}

	maxWidth := int(wrapFraction * float64(render.X))
	lines := o.wrap(maxWidth)

	metrics := o.face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()

	textWidth := 0
	for _, line := range lines {
		if w := font.MeasureString(o.face, line).Ceil(); w > textWidth {
			textWidth = w
		}
	}
	textHeight := lineHeight * len(lines)

	box := image.NewRGBA(image.Rect(0, 0, textWidth+2*TextPadding, textHeight+2*TextPadding))
	draw.Draw(box, box.Bounds(), &image.Uniform{o.opts.Background}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  box,
		Src:  &image.Uniform{o.opts.Color},
		Face: o.face,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(TextPadding, TextPadding+ascent+i*lineHeight)
		drawer.DrawString(line)
	}

	o.cacheKey = render
	o.cache = box
	return box
}

// wrap breaks the text into lines no wider than maxWidth. A single word
// wider than the limit gets its own line rather than being split.
func (o *TextOverlay) wrap(maxWidth int) []string {
	words := strings.Fields(o.text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if font.MeasureString(o.face, candidate).Ceil() > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(lines, current)
}
