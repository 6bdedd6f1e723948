package effects

import "fmt"

// Curve modulates an image overlay's opacity as a function of the
// normalized progress through its time window.
type Curve int

const (
	// CurveNone keeps the overlay at full requested opacity.
	CurveNone Curve = iota
	CurveFadeIn
	CurveFadeOut
	CurveFadeInOut
)

// Opacity returns the curve's modulation factor for progress p in [0,1].
// The result multiplies any explicitly requested opacity.
func (c Curve) Opacity(p float64) float64 {
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	switch c {
	case CurveFadeIn:
		return p
	case CurveFadeOut:
		return 1 - p
	case CurveFadeInOut:
		if p < 0.5 {
			return 2 * p
		}
		return 2 * (1 - p)
	default:
		return 1
	}
}

var curveNames = map[string]Curve{
	"none":        CurveNone,
	"fade-in":     CurveFadeIn,
	"fade-out":    CurveFadeOut,
	"fade-in-out": CurveFadeInOut,
}

// ParseCurve maps an animation name from an edit list to a Curve.
func ParseCurve(name string) (Curve, error) {
	if name == "" {
		return CurveNone, nil
	}
	if c, ok := curveNames[name]; ok {
		return c, nil
	}
	return CurveNone, fmt.Errorf("unknown animation %q", name)
}
