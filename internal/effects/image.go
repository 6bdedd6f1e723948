package effects

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/anthonynsimon/bild/transform"

	"github.com/keagan/reelkit/internal/timecode"
)

// ImageOptions configures an image overlay.
type ImageOptions struct {
	Position  Position
	Size      Size
	Opacity   float64 // (0, 1]; 0 means unset and defaults to 1
	Window    timecode.Range
	Animation Curve
}

// ImageOverlay scales a still image to its resolved size and composites
// it over the frame while its window is active. The animation curve
// modulates opacity across the window.
type ImageOverlay struct {
	src  image.Image
	opts ImageOptions

	mu       sync.Mutex
	cacheKey image.Point
	cache    image.Image
}

// NewImageOverlay builds an image overlay.
func NewImageOverlay(src image.Image, opts ImageOptions) (*ImageOverlay, error) {
	if src == nil {
		return nil, fmt.Errorf("image overlay requires a source image")
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("image overlay source is empty")
	}
	if opts.Opacity < 0 || opts.Opacity > 1 {
		return nil, fmt.Errorf("opacity %f outside [0, 1]", opts.Opacity)
	}
	if opts.Opacity == 0 {
		opts.Opacity = 1
	}
	return &ImageOverlay{src: src, opts: opts}, nil
}

// NewWatermark places an image at the bottom right, small, at 0.7
// opacity, with no time gating beyond the given window.
func NewWatermark(src image.Image, window timecode.Range) (*ImageOverlay, error) {
	return NewImageOverlay(src, ImageOptions{
		Position: BottomRight,
		Size:     SizeSmall,
		Opacity:  0.7,
		Window:   window,
	})
}

// NewLogo places an image at the top left, medium, at 0.9 opacity.
func NewLogo(src image.Image, window timecode.Range) (*ImageOverlay, error) {
	return NewImageOverlay(src, ImageOptions{
		Position: TopLeft,
		Size:     SizeMedium,
		Opacity:  0.9,
		Window:   window,
	})
}

// Window implements Effect.
func (o *ImageOverlay) Window() (timecode.Range, bool) {
	return o.opts.Window, true
}

// Apply implements Effect.
func (o *ImageOverlay) Apply(dst *image.RGBA, t timecode.Time) {
	render := dst.Bounds().Size()
	scaled := o.scaledFor(render)

	opacity := o.opts.Opacity * o.opts.Animation.Opacity(o.opts.Window.Progress(t))
	if opacity <= 0 {
		return
	}

	at := o.opts.Position.Resolve(scaled.Bounds().Size(), render)
	rect := scaled.Bounds().Add(at)
	if opacity >= 1 {
		draw.Draw(dst, rect, scaled, image.Point{}, draw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(dst, rect, scaled, image.Point{}, mask, image.Point{}, draw.Over)
}

func (o *ImageOverlay) scaledFor(render image.Point) image.Image {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cache != nil && o.cacheKey == render {
		return o.cache
	}

	native := o.src.Bounds().Size()
	target := o.opts.Size.Resolve(native, render)
	if target == native {
		o.cache = o.src
	} else {
		o.cache = transform.Resize(o.src, target.X, target.Y, transform.Lanczos)
	}
	o.cacheKey = render
	return o.cache
}
