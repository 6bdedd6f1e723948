package effects

import (
	"image"

	"github.com/keagan/reelkit/internal/timecode"
)

// Grayscale converts the full frame to luma using the Rec.601 weights
// gray = 0.299R + 0.587G + 0.114B, preserving alpha. It is a standalone
// color transform, not a composited layer, and has no time window.
type Grayscale struct{}

// NewGrayscale returns the grayscale filter.
func NewGrayscale() *Grayscale { return &Grayscale{} }

// Window implements Effect; the filter is always active.
func (g *Grayscale) Window() (timecode.Range, bool) {
	return timecode.Range{}, false
}

// Apply implements Effect. The integer weights sum to 1000, so once
// r==g==b the weighted sum is the identity and a second pass is a
// byte-exact no-op.
func (g *Grayscale) Apply(dst *image.RGBA, _ timecode.Time) {
	pix := dst.Pix
	for i := 0; i < len(pix); i += 4 {
		r := uint32(pix[i])
		gr := uint32(pix[i+1])
		b := uint32(pix[i+2])
		y := uint8((299*r + 587*gr + 114*b) / 1000)
		pix[i] = y
		pix[i+1] = y
		pix[i+2] = y
	}
}
