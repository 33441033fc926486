package stage

import (
	"math"

	"github.com/whirl-wm/whirl/internal/wm"
)

// RectF is a screen rectangle in float pixels. Poses interpolate smoothly;
// rounding to device pixels happens only at the render boundary.
type RectF struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Round converts to an integer rectangle.
func (r RectF) Round() wm.Rect {
	return wm.Rect{
		X:      int(math.Round(r.X)),
		Y:      int(math.Round(r.Y)),
		Width:  int(math.Round(r.Width)),
		Height: int(math.Round(r.Height)),
	}
}

// FromRect converts an integer rectangle to a RectF.
func FromRect(r wm.Rect) RectF {
	return RectF{X: float64(r.X), Y: float64(r.Y), Width: float64(r.Width), Height: float64(r.Height)}
}

// Pose is the full visual state of one panel at a point in time. Poses are
// values: recomputed or interpolated every tick, never persisted.
type Pose struct {
	Frame   RectF
	Opacity float64
	// Front panels draw above the interactive overlay, back panels behind.
	Front bool
	// ZKey orders panels within their front/back class; higher is nearer.
	ZKey float64
	// Shadow is the drop shadow strength in [0, 1].
	Shadow float64
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Interpolate blends every pose attribute linearly. The front/back flag is a
// classification, not a continuum: it snaps to the target at the midpoint.
func Interpolate(from, to Pose, t float64) Pose {
	p := Pose{
		Frame: RectF{
			X:      lerp(from.Frame.X, to.Frame.X, t),
			Y:      lerp(from.Frame.Y, to.Frame.Y, t),
			Width:  lerp(from.Frame.Width, to.Frame.Width, t),
			Height: lerp(from.Frame.Height, to.Frame.Height, t),
		},
		Opacity: lerp(from.Opacity, to.Opacity, t),
		ZKey:    lerp(from.ZKey, to.ZKey, t),
		Shadow:  lerp(from.Shadow, to.Shadow, t),
	}
	if t < 0.5 {
		p.Front = from.Front
	} else {
		p.Front = to.Front
	}
	return p
}

// EaseInOut is the transition timing curve.
func EaseInOut(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	if t < 0.5 {
		return 2 * t * t
	}
	u := -2*t + 2
	return 1 - u*u/2
}

// fitAspect returns the largest w x h box of the given aspect ratio that
// fits within maxW x maxH.
func fitAspect(aspect, maxW, maxH float64) (float64, float64) {
	if aspect <= 0 {
		aspect = 1
	}
	w := maxW
	h := w / aspect
	if h > maxH {
		h = maxH
		w = h * aspect
	}
	return w, h
}

// normalizeAngle maps any angle into [0, 2*pi).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
