package stage_test

import (
	"math"
	"testing"
	"time"

	"github.com/whirl-wm/whirl/internal/config"
	"github.com/whirl-wm/whirl/internal/stage"
	"github.com/whirl-wm/whirl/internal/wm"
)

var usable = wm.Rect{X: 0, Y: 0, Width: 1920, Height: 1040}

func testWindows(n int) []wm.WindowInfo {
	windows := make([]wm.WindowInfo, n)
	for i := range windows {
		windows[i] = wm.WindowInfo{
			ID:       wm.WindowID(100 + i),
			PID:      1000 + i,
			Frame:    wm.Rect{X: 40 * i, Y: 30 * i, Width: 800, Height: 600},
			OnScreen: true,
		}
	}
	return windows
}

func newStage() (*stage.Stage, *stage.ManualSource) {
	ticks := &stage.ManualSource{}
	s := stage.New(usable, ticks)
	return s, ticks
}

func TestShowBoundsPanelPool(t *testing.T) {
	s, _ := newStage()
	s.Show(testWindows(config.MaxPanels+5), stage.LayoutGrid, 0, false)

	if got := len(s.Panels()); got != config.MaxPanels {
		t.Errorf("Expected pool capped at %d panels, got %d", config.MaxPanels, got)
	}
}

func TestCycleAdvancesFrontIndexEagerly(t *testing.T) {
	s, _ := newStage()
	s.Show(testWindows(4), stage.LayoutCarousel, 0, false)

	s.Cycle(1)
	if s.FrontIndex() != 1 {
		t.Errorf("Expected front index 1 immediately after Cycle(1), got %d", s.FrontIndex())
	}
	s.Cycle(-1)
	s.Cycle(-1)
	if s.FrontIndex() != 3 {
		t.Errorf("Expected front index to wrap to 3, got %d", s.FrontIndex())
	}
}

func TestCycleNormalizesAnglesOnCompletion(t *testing.T) {
	base := time.Now()
	s, _ := newStage()
	s.SetClock(func() time.Time { return base })
	s.Show(testWindows(3), stage.LayoutCarousel, 0, false)

	for i := 0; i < 7; i++ {
		s.Cycle(-1)
	}
	if s.Step(base.Add(config.CycleDuration * 2)) {
		t.Fatal("Expected transition to complete")
	}
	for i, p := range s.Panels() {
		if p.Angle < 0 || p.Angle >= 2*math.Pi {
			t.Errorf("Panel %d angle %f not normalized into [0, 2pi)", i, p.Angle)
		}
	}
}

func TestCycleFullLoopReturnsToStart(t *testing.T) {
	base := time.Now()
	s, _ := newStage()
	s.SetClock(func() time.Time { return base })
	s.Show(testWindows(5), stage.LayoutCarousel, 2, false)

	for i := 0; i < 5; i++ {
		s.Cycle(1)
	}
	s.Step(base.Add(time.Second))
	if s.FrontIndex() != 2 {
		t.Errorf("Expected front index back at 2 after a full loop, got %d", s.FrontIndex())
	}
}

func TestInterpolateEndpoints(t *testing.T) {
	from := stage.Pose{
		Frame:   stage.RectF{X: 10, Y: 20, Width: 300, Height: 200},
		Opacity: 0.4,
		Front:   false,
		ZKey:    -1,
		Shadow:  0.1,
	}
	to := stage.Pose{
		Frame:   stage.RectF{X: 500, Y: 80, Width: 640, Height: 480},
		Opacity: 1,
		Front:   true,
		ZKey:    1,
		Shadow:  0.9,
	}

	if got := stage.Interpolate(from, to, 0); got != from {
		t.Errorf("Interpolate(t=0) = %+v, want %+v", got, from)
	}
	if got := stage.Interpolate(from, to, 1); got != to {
		t.Errorf("Interpolate(t=1) = %+v, want %+v", got, to)
	}
}

func TestInterpolateSnapsFrontAtMidpoint(t *testing.T) {
	from := stage.Pose{Front: false}
	to := stage.Pose{Front: true}

	if stage.Interpolate(from, to, 0.49).Front {
		t.Error("Expected back classification just before midpoint")
	}
	if !stage.Interpolate(from, to, 0.5).Front {
		t.Error("Expected front classification at midpoint")
	}
}

func TestEaseInOut(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{0.25, 0.125},
		{0.5, 0.5},
		{0.75, 0.875},
		{1, 1},
		{-0.5, 0},
		{1.5, 1},
	}
	for _, tc := range cases {
		if got := stage.EaseInOut(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("EaseInOut(%f) = %f, want %f", tc.in, got, tc.want)
		}
	}
}

func TestCarouselFrontBackClassification(t *testing.T) {
	s, _ := newStage()
	s.Show(testWindows(4), stage.LayoutCarousel, 0, false)

	panels := s.Panels()
	if !panels[0].Pose().Front {
		t.Error("Expected front panel (angle 0) to be classified front")
	}
	// With 4 panels the opposite panel sits at angle pi, strictly behind.
	if panels[2].Pose().Front {
		t.Error("Expected panel at angle pi to be classified back")
	}
	if panels[2].Pose().Opacity >= panels[0].Pose().Opacity {
		t.Error("Expected back panel dimmer than front panel")
	}
	if panels[2].Pose().Frame.Width >= panels[0].Pose().Frame.Width {
		t.Error("Expected back panel smaller than front panel")
	}
}

func TestRowLayoutCardsDoNotOverlapBand(t *testing.T) {
	s, _ := newStage()
	s.Show(testWindows(5), stage.LayoutRow, 0, false)

	band := float64(usable.Width) * config.RowWidthFraction
	bandX := (float64(usable.Width) - band) / 2
	for i, p := range s.Panels() {
		f := p.Pose().Frame
		if f.X < bandX-1 || f.X+f.Width > bandX+band+1 {
			t.Errorf("Panel %d frame %+v escapes the row band [%f, %f]", i, f, bandX, bandX+band)
		}
		if !p.Pose().Front {
			t.Errorf("Panel %d should not be depth-classified in row layout", i)
		}
	}
}

func TestGridLayoutFirstWindowTopLeft(t *testing.T) {
	s, _ := newStage()
	s.Show(testWindows(6), stage.LayoutGrid, 0, false)

	first := s.Panels()[0].Pose().Frame
	for i, p := range s.Panels()[1:] {
		f := p.Pose().Frame
		if f.Y < first.Y-1 && f.X < first.X-1 {
			t.Errorf("Panel %d at %+v is above and left of the first window", i+1, f)
		}
	}
}

func TestTransitionToInterpolatesPoses(t *testing.T) {
	base := time.Now()
	s, ticks := newStage()
	s.SetClock(func() time.Time { return base })
	s.Show(testWindows(4), stage.LayoutRow, 0, false)

	start := s.Panels()[0].Pose()
	s.TransitionTo(stage.LayoutGrid)
	if !s.Animating() {
		t.Fatal("Expected transition to be active")
	}
	if !ticks.Active() {
		t.Fatal("Expected tick source started")
	}

	ticks.Pump(base.Add(config.DefaultTransitionDuration / 2))
	mid := s.Panels()[0].Pose()
	if mid.Frame == start.Frame {
		t.Error("Expected pose to move during transition")
	}

	ticks.Pump(base.Add(config.DefaultTransitionDuration * 2))
	if s.Animating() {
		t.Error("Expected transition to terminate")
	}
	if ticks.Active() {
		t.Error("Expected tick source stopped after transition")
	}
}

func TestFlyOutFrontLandsOnWindowFrame(t *testing.T) {
	base := time.Now()
	s, ticks := newStage()
	s.SetClock(func() time.Time { return base })
	windows := testWindows(3)
	s.Show(windows, stage.LayoutCarousel, 1, false)

	done := false
	s.FlyOutFront(func() { done = true })
	ticks.Pump(base.Add(config.FlyOutDuration - time.Millisecond))
	if done {
		t.Fatal("Teardown ran before the animation finished")
	}

	// Just before completion the front panel should be converging on its
	// window's real frame and fading.
	front := s.Panels()[1].Pose()
	if front.Opacity > 0.2 {
		t.Errorf("Expected front panel nearly faded, opacity %f", front.Opacity)
	}

	ticks.Pump(base.Add(config.FlyOutDuration + time.Millisecond))
	if !done {
		t.Error("Expected teardown callback after fly-out")
	}
	if len(s.Panels()) != 0 {
		t.Error("Expected panel pool destroyed after fly-out")
	}
}

func TestSetImageVanishedWindowNoOps(t *testing.T) {
	s, _ := newStage()
	s.Show(testWindows(2), stage.LayoutGrid, 0, false)

	if s.SetImage(wm.WindowID(9999), nil) {
		t.Error("Expected SetImage to report false for an unbound window")
	}
}

func TestOrderPutsFrontPanelLast(t *testing.T) {
	s, _ := newStage()
	s.Show(testWindows(5), stage.LayoutCarousel, 3, false)

	order := s.Order()
	if len(order) != 5 {
		t.Fatalf("Expected 5 entries in draw order, got %d", len(order))
	}
	if order[len(order)-1] != 3 {
		t.Errorf("Expected front panel drawn last, got index %d", order[len(order)-1])
	}
}
