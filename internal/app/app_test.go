package app

import (
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/whirl-wm/whirl/internal/config"
	"github.com/whirl-wm/whirl/internal/modal"
	"github.com/whirl-wm/whirl/internal/stage"
	"github.com/whirl-wm/whirl/internal/wm"
)

func newTestHUD() (*HUD, *stage.Stage) {
	ticks := &stage.ManualSource{}
	st := stage.New(wm.Rect{Width: 1920, Height: 1080}, ticks)
	cfg := config.DefaultConfig()
	deps := &modal.Deps{
		Stage:  st,
		Config: cfg,
		Keys:   config.NewKeybindRegistry(cfg),
	}
	ctl := modal.NewController(deps, nil)
	return New(ctl, ticks, nil, true), st
}

func flyingStage(st *stage.Stage) {
	windows := []wm.WindowInfo{{
		ID:  1,
		PID: 1,
		Frame: wm.Rect{
			Width:  800,
			Height: 600,
		},
	}}
	st.Show(windows, stage.LayoutRow, 0, false)
	st.FlyOutAll(nil)
}

// The settle poll callback runs on a command goroutine; stage state is owned
// by Update, so the callback must only report back.
func TestSettlePollDoesNotTouchStage(t *testing.T) {
	h, st := newTestHUD()
	flyingStage(st)
	if !st.Animating() {
		t.Fatal("fly-out should start a transition")
	}

	msg := h.quitWhenSettled()()
	if _, ok := msg.(settleMsg); !ok {
		t.Fatalf("settle poll returned %T, want settleMsg", msg)
	}
	if !st.Animating() {
		t.Error("settle poll advanced the animation off the update goroutine")
	}
}

func TestSettleMsgRearmsMidAnimation(t *testing.T) {
	h, st := newTestHUD()
	flyingStage(st)

	_, cmd := h.Update(settleMsg{})
	if !st.Animating() {
		t.Fatal("fly-out should still be in flight")
	}
	if cmd == nil {
		t.Fatal("mid-animation settle should re-arm the poll")
	}
	if msg := cmd(); msg != nil {
		if _, ok := msg.(settleMsg); !ok {
			t.Fatalf("re-armed poll returned %T, want settleMsg", msg)
		}
	}
}

func TestSettleMsgQuitsOnceAnimationCompletes(t *testing.T) {
	h, st := newTestHUD()
	// Start the fly-out in the past so the next pump lands beyond its
	// duration.
	st.SetClock(func() time.Time { return time.Now().Add(-time.Second) })
	flyingStage(st)

	_, cmd := h.Update(settleMsg{})
	if st.Animating() {
		t.Fatal("fly-out should have completed on the update pump")
	}
	if cmd == nil {
		t.Fatal("settled poll should quit")
	}
	if msg := cmd(); msg != nil {
		if _, ok := msg.(tea.QuitMsg); !ok {
			t.Fatalf("settled poll returned %T, want tea.QuitMsg", msg)
		}
	}
}
