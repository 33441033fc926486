// Package config provides configuration constants and user-configurable
// settings for whirl.
package config

import "time"

// Frame rates for the HUD render loop.
const (
	// NormalFPS is the tick rate while any stage animation is running.
	NormalFPS = 60
	// IdleFPS is the tick rate while the HUD is settled. The loop still
	// ticks so capture results and config reloads are picked up promptly.
	IdleFPS = 15
)

// Animation timing.
const (
	// DefaultTransitionDuration is used for layout-to-layout transitions.
	DefaultTransitionDuration = 220 * time.Millisecond
	// CycleDuration is the duration of a single carousel step.
	CycleDuration = 180 * time.Millisecond
	// FlyOutDuration is used when panels fly out to their real window frames.
	FlyOutDuration = 260 * time.Millisecond
	// EntryDuration is the carousel entry animation (offset by pi, eased in).
	EntryDuration = 300 * time.Millisecond
)

// Stage geometry.
const (
	// MaxPanels bounds the stage panel pool.
	MaxPanels = 8
	// RowWidthFraction is the share of usable screen width the row layout spans.
	RowWidthFraction = 0.85
	// RowMaxCardHeight caps card height in the row layout, in pixels.
	RowMaxCardHeight = 240
	// RowGutter is the horizontal gap between row cards, in pixels.
	RowGutter = 24
	// GridSceneFraction is the share of the usable area the grid scene spans.
	GridSceneFraction = 0.9
	// RingMinRadius and RingMaxRadius clamp the ring layout radius band.
	RingMinRadius = 140.0
	RingMaxRadius = 420.0
	// CarouselBackScale is the scale of a panel at the far point of the orbit.
	CarouselBackScale = 0.55
	// BackOpacity is the opacity of a panel at the far point of the orbit.
	BackOpacity = 0.45
)

// Capture pipeline.
const (
	// CaptureWorkers bounds the background capture pool.
	CaptureWorkers = 3
	// CaptureMaxWidth and CaptureMaxHeight cap capture bitmap dimensions.
	// Captures are display thumbnails, never full window resolution.
	CaptureMaxWidth  = 480
	CaptureMaxHeight = 300
)

// Interaction.
const (
	// RaiseDebounce coalesces rapid re-selection into a single raise-all.
	RaiseDebounce = 50 * time.Millisecond
	// MinWindowSize excludes tiny windows from galleries and backdrops.
	// A window qualifies only when both dimensions are strictly greater.
	MinWindowSize = 50
	// NotificationDuration is how long transient HUD messages stay visible.
	NotificationDuration = 2 * time.Second
)
