package effects

import (
	"fmt"
	"image"
)

// Margin is the fixed inset, in pixels, between an anchored overlay and
// the frame edge.
const Margin = 20

type anchor int

const (
	anchorTopLeft anchor = iota
	anchorTopCenter
	anchorTopRight
	anchorCenterLeft
	anchorCenter
	anchorCenterRight
	anchorBottomLeft
	anchorBottomCenter
	anchorBottomRight
	anchorCustom
)

// Position is one of nine named anchors or a normalized custom point.
// It is resolved against the render size at render time, never stored
// resolved.
type Position struct {
	anchor anchor
	x, y   float64
}

var (
	TopLeft      = Position{anchor: anchorTopLeft}
	TopCenter    = Position{anchor: anchorTopCenter}
	TopRight     = Position{anchor: anchorTopRight}
	CenterLeft   = Position{anchor: anchorCenterLeft}
	Center       = Position{anchor: anchorCenter}
	CenterRight  = Position{anchor: anchorCenterRight}
	BottomLeft   = Position{anchor: anchorBottomLeft}
	BottomCenter = Position{anchor: anchorBottomCenter}
	BottomRight  = Position{anchor: anchorBottomRight}
)

// CustomPosition places an overlay's top-left corner at the normalized
// point (x, y) in [0,1]^2 of the render surface.
func CustomPosition(x, y float64) Position {
	return Position{anchor: anchorCustom, x: x, y: y}
}

// Resolve returns the top-left corner for a box of the given size on a
// render surface.
func (p Position) Resolve(box, render image.Point) image.Point {
	switch p.anchor {
	case anchorTopLeft:
		return image.Pt(Margin, Margin)
	case anchorTopCenter:
		return image.Pt((render.X-box.X)/2, Margin)
	case anchorTopRight:
		return image.Pt(render.X-box.X-Margin, Margin)
	case anchorCenterLeft:
		return image.Pt(Margin, (render.Y-box.Y)/2)
	case anchorCenter:
		return image.Pt((render.X-box.X)/2, (render.Y-box.Y)/2)
	case anchorCenterRight:
		return image.Pt(render.X-box.X-Margin, (render.Y-box.Y)/2)
	case anchorBottomLeft:
		return image.Pt(Margin, render.Y-box.Y-Margin)
	case anchorBottomCenter:
		return image.Pt((render.X-box.X)/2, render.Y-box.Y-Margin)
	case anchorBottomRight:
		return image.Pt(render.X-box.X-Margin, render.Y-box.Y-Margin)
	default:
		return image.Pt(int(p.x*float64(render.X)), int(p.y*float64(render.Y)))
	}
}

var positionNames = map[string]Position{
	"top-left":      TopLeft,
	"top-center":    TopCenter,
	"top-right":     TopRight,
	"center-left":   CenterLeft,
	"center":        Center,
	"center-right":  CenterRight,
	"bottom-left":   BottomLeft,
	"bottom-center": BottomCenter,
	"bottom-right":  BottomRight,
}

// ParsePosition maps an anchor name from an edit list to a Position.
func ParsePosition(name string) (Position, error) {
	if p, ok := positionNames[name]; ok {
		return p, nil
	}
	return Position{}, fmt.Errorf("unknown position %q", name)
}
