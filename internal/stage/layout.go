package stage

import (
	"math"

	"github.com/whirl-wm/whirl/internal/config"
	"github.com/whirl-wm/whirl/internal/wm"
)

// Layout selects one of the stage's spatial arrangements.
type Layout int

const (
	// LayoutRow distributes cards evenly along a horizontal band.
	LayoutRow Layout = iota
	// LayoutGrid packs cards row-major into the densest square-ish grid.
	LayoutGrid
	// LayoutRing places cards on a circle with cosine depth scaling.
	LayoutRing
	// LayoutCarousel orbits cards on an ellipse, passing behind the HUD.
	LayoutCarousel
)

// String returns the layout name as used in configuration.
func (l Layout) String() string {
	switch l {
	case LayoutRow:
		return "row"
	case LayoutGrid:
		return "grid"
	case LayoutRing:
		return "ring"
	case LayoutCarousel:
		return "carousel"
	default:
		return "unknown"
	}
}

// ParseLayout maps a configuration name to a Layout, defaulting to carousel.
func ParseLayout(name string) Layout {
	switch name {
	case "row":
		return LayoutRow
	case "grid":
		return LayoutGrid
	case "ring":
		return LayoutRing
	default:
		return LayoutCarousel
	}
}

// Next cycles row -> grid -> ring -> carousel -> row.
func (l Layout) Next() Layout {
	return (l + 1) % 4
}

// computePose returns the static pose for panel index i of n under the given
// layout. Carousel and ring poses derive from the panel's orbital angle.
func computePose(layout Layout, usable wm.Rect, aspect float64, i, n int, angle float64) Pose {
	switch layout {
	case LayoutRow:
		return rowPose(usable, aspect, i, n)
	case LayoutGrid:
		return gridPose(usable, aspect, i, n)
	case LayoutRing:
		return ringPose(usable, aspect, n, angle)
	default:
		return carouselPose(usable, aspect, angle)
	}
}

// rowPose distributes n cards across RowWidthFraction of the usable width at
// a fixed vertical anchor. Cards do not scale with depth.
func rowPose(usable wm.Rect, aspect float64, i, n int) Pose {
	if n < 1 {
		n = 1
	}
	bandWidth := float64(usable.Width) * config.RowWidthFraction
	bandX := float64(usable.X) + (float64(usable.Width)-bandWidth)/2
	slotWidth := bandWidth / float64(n)
	maxW := slotWidth - config.RowGutter
	if maxW < 1 {
		maxW = 1
	}
	w, h := fitAspect(aspect, maxW, config.RowMaxCardHeight)

	anchorY := float64(usable.Y) + float64(usable.Height)*0.5
	cx := bandX + slotWidth*(float64(i)+0.5)

	return Pose{
		Frame:   RectF{X: cx - w/2, Y: anchorY - h/2, Width: w, Height: h},
		Opacity: 1,
		Front:   true,
		ZKey:    float64(i),
		Shadow:  0.5,
	}
}

// gridColumns picks the column count in 1..n maximizing the smaller cell
// dimension within the scene budget.
func gridColumns(sceneW, sceneH float64, n int) int {
	best := 1
	bestSize := -1.0
	for cols := 1; cols <= n; cols++ {
		rows := (n + cols - 1) / cols
		cellW := sceneW / float64(cols)
		cellH := sceneH / float64(rows)
		size := math.Min(cellW, cellH)
		if size > bestSize {
			bestSize = size
			best = cols
		}
	}
	return best
}

// gridPose lays cards out row-major, first window top-left.
func gridPose(usable wm.Rect, aspect float64, i, n int) Pose {
	if n < 1 {
		n = 1
	}
	sceneW := float64(usable.Width) * config.GridSceneFraction
	sceneH := float64(usable.Height) * config.GridSceneFraction
	sceneX := float64(usable.X) + (float64(usable.Width)-sceneW)/2
	sceneY := float64(usable.Y) + (float64(usable.Height)-sceneH)/2

	cols := gridColumns(sceneW, sceneH, n)
	rows := (n + cols - 1) / cols
	cellW := sceneW / float64(cols)
	cellH := sceneH / float64(rows)

	row := i / cols
	col := i % cols
	w, h := fitAspect(aspect, cellW-config.RowGutter, cellH-config.RowGutter)
	cx := sceneX + cellW*(float64(col)+0.5)
	cy := sceneY + cellH*(float64(row)+0.5)

	return Pose{
		Frame:   RectF{X: cx - w/2, Y: cy - h/2, Width: w, Height: h},
		Opacity: 1,
		Front:   true,
		ZKey:    float64(n - i),
		Shadow:  0.5,
	}
}

// ringRadius scales with the panel count, clamped to the configured band.
func ringRadius(n int) float64 {
	r := 60.0 * float64(n)
	if r < config.RingMinRadius {
		r = config.RingMinRadius
	}
	if r > config.RingMaxRadius {
		r = config.RingMaxRadius
	}
	return r
}

// ringPose approximates 3D rotation with 2D scale plus a vertical offset.
// The front of the ring (angle 0) is largest and fully opaque.
func ringPose(usable wm.Rect, aspect float64, n int, angle float64) Pose {
	radius := ringRadius(n)
	cx := float64(usable.X) + float64(usable.Width)/2
	cy := float64(usable.Y) + float64(usable.Height)/2

	depth := (1 + math.Cos(angle)) / 2 // 1 at front, 0 at back
	scale := lerp(config.CarouselBackScale, 1, depth)

	baseW := float64(usable.Width) * 0.28
	w, h := fitAspect(aspect, baseW, float64(usable.Height)*0.35)
	w *= scale
	h *= scale

	px := cx + radius*math.Sin(angle)
	py := cy - radius*0.25*math.Cos(angle)

	return Pose{
		Frame:   RectF{X: px - w/2, Y: py - h/2, Width: w, Height: h},
		Opacity: lerp(config.BackOpacity, 1, depth),
		Front:   math.Cos(angle) > 0,
		ZKey:    math.Cos(angle),
		Shadow:  depth,
	}
}

// carouselPose places a panel on the orbit ellipse. A panel is in front of
// the interactive overlay exactly when cos(angle) > 0.
func carouselPose(usable wm.Rect, aspect float64, angle float64) Pose {
	cx := float64(usable.X) + float64(usable.Width)/2
	cy := float64(usable.Y) + float64(usable.Height)*0.55
	aRadius := float64(usable.Width) * 0.32
	bRadius := float64(usable.Height) * 0.12

	depth := (1 + math.Cos(angle)) / 2
	scale := lerp(config.CarouselBackScale, 1, depth)

	baseW := float64(usable.Width) * 0.3
	w, h := fitAspect(aspect, baseW, float64(usable.Height)*0.4)
	w *= scale
	h *= scale

	px := cx + aRadius*math.Sin(angle)
	py := cy + bRadius*math.Cos(angle)

	return Pose{
		Frame:   RectF{X: px - w/2, Y: py - h/2, Width: w, Height: h},
		Opacity: lerp(config.BackOpacity, 1, depth),
		Front:   math.Cos(angle) > 0,
		ZKey:    math.Cos(angle),
		Shadow:  depth,
	}
}

// angleFor returns the resting orbital angle for panel i when front is the
// front index: evenly spaced, front panel at angle 0.
func angleFor(i, front, n int) float64 {
	if n < 1 {
		return 0
	}
	step := 2 * math.Pi / float64(n)
	return normalizeAngle(float64(((i-front)%n+n)%n) * step)
}
