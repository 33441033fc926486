// Package stage owns the bounded pool of window preview panels and the pose
// and animation math behind the HUD's four layouts.
package stage

import (
	"image"
	"math"
	"sort"
	"time"

	"github.com/whirl-wm/whirl/internal/config"
	"github.com/whirl-wm/whirl/internal/wm"
)

// Panel is one preview surface bound to a window. Panels are owned
// exclusively by the stage: created on Show, destroyed on teardown or when
// the window set is replaced.
type Panel struct {
	Window wm.WindowInfo
	// Image is the latest capture, nil until the pipeline delivers one.
	Image *image.RGBA
	// Angle is the orbital angle, meaningful in ring and carousel layouts.
	Angle float64

	pose     Pose
	wasFront bool
}

// Pose returns the panel's current pose.
func (p *Panel) Pose() Pose { return p.pose }

type transitionKind int

const (
	transPoses transitionKind = iota
	transAngles
)

type transition struct {
	kind       transitionKind
	start      time.Time
	duration   time.Duration
	fromPoses  []Pose
	toPoses    []Pose
	fromAngles []float64
	toAngles   []float64
	onDone     func()
}

// Stage computes per-panel poses for the active layout and plays time-based
// transitions between them. All animation is driven by a single tick source,
// started when a transition begins and stopped when the last one ends.
type Stage struct {
	usable wm.Rect
	layout Layout
	panels []*Panel
	front  int
	order  []int // draw order, back to front
	trans  *transition
	ticks  TickSource
	now    func() time.Time
}

// New creates an empty stage for the given usable screen area.
func New(usable wm.Rect, ticks TickSource) *Stage {
	return &Stage{
		usable: usable,
		ticks:  ticks,
		now:    time.Now,
	}
}

// SetClock replaces the stage clock. Tests use this to step deterministically.
func (s *Stage) SetClock(now func() time.Time) { s.now = now }

// Layout returns the active layout.
func (s *Stage) Layout() Layout { return s.layout }

// Panels returns the panel pool in creation order.
func (s *Stage) Panels() []*Panel { return s.panels }

// Order returns panel indices in draw order, back to front.
func (s *Stage) Order() []int { return s.order }

// Animating reports whether a transition is in flight.
func (s *Stage) Animating() bool { return s.trans != nil }

// FrontIndex returns the index of the front panel. For Cycle this is updated
// eagerly, before the visual animation completes.
func (s *Stage) FrontIndex() int { return s.front }

// FrontWindow returns the window bound to the front panel.
func (s *Stage) FrontWindow() (wm.WindowInfo, bool) {
	if s.front < 0 || s.front >= len(s.panels) {
		return wm.WindowInfo{}, false
	}
	return s.panels[s.front].Window, true
}

// Show replaces the panel pool with the given windows (capped to the pool
// bound) under the given layout. When animated, carousel and ring enter with
// every angle offset by pi easing to its resting value; row and grid fade in
// at their final frames.
func (s *Stage) Show(windows []wm.WindowInfo, layout Layout, frontIndex int, animated bool) {
	if len(windows) > config.MaxPanels {
		windows = windows[:config.MaxPanels]
	}
	n := len(windows)
	s.layout = layout
	s.panels = make([]*Panel, n)
	if n == 0 {
		s.front = 0
		s.order = nil
		s.clearTransition()
		return
	}
	if frontIndex < 0 || frontIndex >= n {
		frontIndex = 0
	}
	s.front = frontIndex

	for i, w := range windows {
		s.panels[i] = &Panel{
			Window: w,
			Angle:  angleFor(i, frontIndex, n),
		}
	}

	if !animated {
		s.applyStatic()
		return
	}

	switch layout {
	case LayoutRing, LayoutCarousel:
		from := make([]float64, n)
		to := make([]float64, n)
		for i, p := range s.panels {
			to[i] = p.Angle
			from[i] = p.Angle + math.Pi
			p.Angle = from[i]
		}
		s.applyAngles()
		s.startTransition(&transition{
			kind:       transAngles,
			duration:   config.EntryDuration,
			fromAngles: from,
			toAngles:   to,
		})
	default:
		s.applyStatic()
		from := make([]Pose, n)
		to := make([]Pose, n)
		for i, p := range s.panels {
			to[i] = p.pose
			faded := p.pose
			faded.Opacity = 0
			from[i] = faded
			p.pose = faded
		}
		s.startTransition(&transition{
			kind:      transPoses,
			duration:  config.EntryDuration,
			fromPoses: from,
			toPoses:   to,
		})
	}
}

// Cycle rotates the carousel by one step in the given direction. The front
// index advances immediately so callers can act on it; the visual rotation
// completes asynchronously. Cycling during an active cycle retargets from
// the current angles.
func (s *Stage) Cycle(direction int) {
	n := len(s.panels)
	if n == 0 || direction == 0 {
		return
	}
	s.front = ((s.front+direction)%n + n) % n

	step := 2 * math.Pi / float64(n)
	from := make([]float64, n)
	to := make([]float64, n)
	for i, p := range s.panels {
		from[i] = p.Angle
		to[i] = p.Angle - float64(direction)*step
	}
	if s.trans != nil && s.trans.kind == transAngles {
		// Retarget the remaining rotation instead of stacking transitions.
		for i := range to {
			to[i] = s.trans.toAngles[i] - float64(direction)*step
		}
	}
	s.startTransition(&transition{
		kind:       transAngles,
		duration:   config.CycleDuration,
		fromAngles: from,
		toAngles:   to,
	})
}

// TransitionTo interpolates every panel from its current pose to its pose
// under the target layout.
func (s *Stage) TransitionTo(layout Layout) {
	if layout == s.layout || len(s.panels) == 0 {
		s.layout = layout
		return
	}
	n := len(s.panels)
	from := make([]Pose, n)
	to := make([]Pose, n)
	for i, p := range s.panels {
		from[i] = p.pose
		p.Angle = angleFor(i, s.front, n)
		to[i] = computePose(layout, s.usable, p.Window.Frame.AspectRatio(), i, n, p.Angle)
	}
	s.layout = layout
	s.startTransition(&transition{
		kind:      transPoses,
		duration:  config.DefaultTransitionDuration,
		fromPoses: from,
		toPoses:   to,
	})
}

// FlyOutFront animates the front panel to its window's real on-screen frame
// while fading, then tears the stage down and calls onDone.
func (s *Stage) FlyOutFront(onDone func()) {
	s.flyOut(func(i int) bool { return i == s.front }, onDone)
}

// FlyOutAll animates every panel to its window's real frame, then tears the
// stage down and calls onDone.
func (s *Stage) FlyOutAll(onDone func()) {
	s.flyOut(func(int) bool { return true }, onDone)
}

func (s *Stage) flyOut(selected func(int) bool, onDone func()) {
	n := len(s.panels)
	if n == 0 {
		s.teardown()
		if onDone != nil {
			onDone()
		}
		return
	}
	from := make([]Pose, n)
	to := make([]Pose, n)
	for i, p := range s.panels {
		from[i] = p.pose
		target := p.pose
		if selected(i) {
			target.Frame = FromRect(p.Window.Frame)
		}
		target.Opacity = 0
		target.Shadow = 0
		to[i] = target
	}
	s.startTransition(&transition{
		kind:      transPoses,
		duration:  config.FlyOutDuration,
		fromPoses: from,
		toPoses:   to,
		onDone: func() {
			s.teardown()
			if onDone != nil {
				onDone()
			}
		},
	})
}

// SetImage replaces the capture bitmap of the panel bound to id. Returns
// false when no panel is bound to the window (it vanished); callers treat
// that as a silent no-op.
func (s *Stage) SetImage(id wm.WindowID, img *image.RGBA) bool {
	for _, p := range s.panels {
		if p.Window.ID == id {
			p.Image = img
			return true
		}
	}
	return false
}

// Teardown destroys the panel pool and stops any animation.
func (s *Stage) Teardown() { s.teardown() }

func (s *Stage) teardown() {
	s.panels = nil
	s.order = nil
	s.front = 0
	s.clearTransition()
}

// Step advances the active transition to the given time. Returns true while
// a transition remains active. The tick source calls this; tests call it
// directly with a fake clock.
func (s *Stage) Step(now time.Time) bool {
	t := s.trans
	if t == nil {
		return false
	}
	f := 1.0
	if t.duration > 0 {
		f = float64(now.Sub(t.start)) / float64(t.duration)
	}
	done := f >= 1
	if done {
		f = 1
	}
	eased := EaseInOut(f)

	switch t.kind {
	case transAngles:
		for i, p := range s.panels {
			if i < len(t.fromAngles) {
				p.Angle = lerp(t.fromAngles[i], t.toAngles[i], eased)
			}
		}
		s.applyAngles()
	case transPoses:
		for i, p := range s.panels {
			if i < len(t.fromPoses) {
				p.pose = Interpolate(t.fromPoses[i], t.toPoses[i], eased)
			}
		}
		s.restackIfFlipped()
	}

	if done {
		s.trans = nil
		s.ticks.Stop()
		// Angle state is normalized once a rotation settles so repeated
		// cycles cannot accumulate unbounded angles.
		for _, p := range s.panels {
			p.Angle = normalizeAngle(p.Angle)
		}
		if t.onDone != nil {
			t.onDone()
		}
		return false
	}
	return true
}

func (s *Stage) startTransition(t *transition) {
	t.start = s.now()
	s.trans = t
	s.ticks.Start(func(now time.Time) { s.Step(now) })
}

func (s *Stage) clearTransition() {
	if s.trans != nil {
		s.trans = nil
		s.ticks.Stop()
	}
}

// applyStatic recomputes every pose from the layout and restacks.
func (s *Stage) applyStatic() {
	n := len(s.panels)
	for i, p := range s.panels {
		p.Angle = angleFor(i, s.front, n)
		p.pose = computePose(s.layout, s.usable, p.Window.Frame.AspectRatio(), i, n, p.Angle)
	}
	s.restack()
}

// applyAngles recomputes poses from current angles (ring/carousel), keeping
// the stacking order unless a panel crossed the front/back boundary.
func (s *Stage) applyAngles() {
	n := len(s.panels)
	for i, p := range s.panels {
		p.pose = computePose(s.layout, s.usable, p.Window.Frame.AspectRatio(), i, n, p.Angle)
	}
	s.restackIfFlipped()
}

// restackIfFlipped re-sorts the draw order only when some panel's front/back
// classification changed since the last restack. Restacking is the expensive
// operation at the render boundary, not the sort itself.
func (s *Stage) restackIfFlipped() {
	flipped := s.order == nil
	for _, p := range s.panels {
		if p.pose.Front != p.wasFront {
			flipped = true
			break
		}
	}
	if flipped {
		s.restack()
	}
}

func (s *Stage) restack() {
	s.order = make([]int, len(s.panels))
	for i := range s.order {
		s.order[i] = i
	}
	sort.SliceStable(s.order, func(a, b int) bool {
		pa, pb := s.panels[s.order[a]].pose, s.panels[s.order[b]].pose
		if pa.Front != pb.Front {
			return !pa.Front // back panels draw first
		}
		return pa.ZKey < pb.ZKey
	})
	for _, p := range s.panels {
		p.wasFront = p.pose.Front
	}
}
