package effects

import (
	"fmt"
	"image"
)

type sizeKind int

const (
	sizeFraction sizeKind = iota
	sizeOriginal
	sizePixels
	sizePercent
)

// Size describes how an image overlay is scaled against the render
// surface. Fractional presets are a share of the render width with the
// overlay's native aspect ratio preserved.
type Size struct {
	kind     sizeKind
	fraction float64
	w, h     int
	wp, hp   float64
}

var (
	SizeTiny   = Size{kind: sizeFraction, fraction: 0.05}
	SizeSmall  = Size{kind: sizeFraction, fraction: 0.10}
	SizeMedium = Size{kind: sizeFraction, fraction: 0.20}
	SizeLarge  = Size{kind: sizeFraction, fraction: 0.30}

	// SizeOriginal keeps the native size, downscaled uniformly if the
	// overlay exceeds half the render surface in either dimension.
	SizeOriginal = Size{kind: sizeOriginal}
)

// Pixels requests explicit pixel dimensions.
func Pixels(w, h int) Size {
	return Size{kind: sizePixels, w: w, h: h}
}

// Percent requests explicit width/height shares of the render surface.
func Percent(width, height float64) Size {
	return Size{kind: sizePercent, wp: width, hp: height}
}

// Resolve computes the target dimensions for an overlay with the given
// native size on the given render surface.
func (s Size) Resolve(native, render image.Point) image.Point {
	switch s.kind {
	case sizeFraction:
		w := s.fraction * float64(render.X)
		aspect := float64(native.Y) / float64(native.X)
		return image.Pt(int(w), int(w*aspect))
	case sizeOriginal:
		maxW := float64(render.X) * 0.5
		maxH := float64(render.Y) * 0.5
		w, h := float64(native.X), float64(native.Y)
		if w <= maxW && h <= maxH {
			return native
		}
		scale := maxW / w
		if maxH/h < scale {
			scale = maxH / h
		}
		return image.Pt(int(w*scale), int(h*scale))
	case sizePixels:
		return image.Pt(s.w, s.h)
	default:
		return image.Pt(int(s.wp*float64(render.X)), int(s.hp*float64(render.Y)))
	}
}

var sizeNames = map[string]Size{
	"tiny":     SizeTiny,
	"small":    SizeSmall,
	"medium":   SizeMedium,
	"large":    SizeLarge,
	"original": SizeOriginal,
}

// ParseSize maps a preset name from an edit list to a Size.
func ParseSize(name string) (Size, error) {
	if s, ok := sizeNames[name]; ok {
		return s, nil
	}
	return Size{}, fmt.Errorf("unknown size %q", name)
}
