package wm_test

import (
	"reflect"
	"testing"

	"github.com/whirl-wm/whirl/internal/wm"
)

func win(id wm.WindowID, pid int, onScreen bool) wm.WindowInfo {
	return wm.WindowInfo{
		ID:       id,
		PID:      pid,
		OnScreen: onScreen,
		Frame:    wm.Rect{Width: 800, Height: 600},
	}
}

func TestBuildMRUDeduplicatesZOrder(t *testing.T) {
	onScreen := []wm.WindowInfo{
		win(1, 10, true),
		win(2, 20, true),
		win(3, 10, true),
	}
	mru := wm.BuildMRU(onScreen, onScreen, nil, nil, 999)
	want := []int{10, 20}
	if !reflect.DeepEqual(mru, want) {
		t.Errorf("BuildMRU = %v, want %v", mru, want)
	}
}

func TestBuildMRUSkipsOwnProcess(t *testing.T) {
	onScreen := []wm.WindowInfo{
		win(1, 999, true),
		win(2, 10, true),
		win(3, 999, true),
	}
	mru := wm.BuildMRU(onScreen, onScreen, nil, nil, 999)
	if !reflect.DeepEqual(mru, []int{10}) {
		t.Errorf("BuildMRU = %v, want [10]", mru)
	}
}

func TestBuildMRUHiddenProcessesAfterVisible(t *testing.T) {
	onScreen := []wm.WindowInfo{
		win(1, 10, true),
		win(2, 20, true),
	}
	all := []wm.WindowInfo{
		win(5, 30, false), // hidden app, off-screen window
		win(1, 10, true),
		win(6, 40, false), // off-screen but not hidden: excluded
		win(2, 20, true),
	}
	hidden := map[int]bool{30: true}
	mru := wm.BuildMRU(onScreen, all, hidden, nil, 999)
	want := []int{10, 20, 30}
	if !reflect.DeepEqual(mru, want) {
		t.Errorf("BuildMRU = %v, want %v", mru, want)
	}
}

func TestBuildMRUWindowlessProcessesLast(t *testing.T) {
	onScreen := []wm.WindowInfo{win(1, 10, true)}
	mru := wm.BuildMRU(onScreen, onScreen, nil, []int{50, 10, 60}, 999)
	want := []int{10, 50, 60}
	if !reflect.DeepEqual(mru, want) {
		t.Errorf("BuildMRU = %v, want %v", mru, want)
	}
}

func TestFilterBySizeStrictThreshold(t *testing.T) {
	windows := []wm.WindowInfo{
		{ID: 1, Frame: wm.Rect{Width: 50, Height: 50}},
		{ID: 2, Frame: wm.Rect{Width: 51, Height: 51}},
		{ID: 3, Frame: wm.Rect{Width: 51, Height: 50}},
	}
	got := wm.FilterBySize(windows, 50)
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("FilterBySize kept %v, want only window 2", got)
	}
}

func TestPruneToLivePreservesOrder(t *testing.T) {
	live := []wm.WindowInfo{win(2, 1, true), win(4, 1, true)}
	got := wm.PruneToLive([]wm.WindowID{4, 3, 2, 1}, live)
	want := []wm.WindowID{4, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PruneToLive = %v, want %v", got, want)
	}
}
