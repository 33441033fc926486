package modal

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/log"

	"github.com/whirl-wm/whirl/internal/capture"
	"github.com/whirl-wm/whirl/internal/config"
	"github.com/whirl-wm/whirl/internal/stage"
	"github.com/whirl-wm/whirl/internal/theme"
	"github.com/whirl-wm/whirl/internal/wm"
)

// VisualMode selects what the app selector shows.
type VisualMode int

const (
	// AppsOnly shows one card per application, most recent first.
	AppsOnly VisualMode = iota
	// WindowsOnly shows every window of the selected application.
	WindowsOnly
	// Combined shows apps with the selected one expanded into windows.
	Combined
)

// AppSelector cycles applications and their windows. Two nested selection
// axes: the process, then its windows.
type AppSelector struct {
	deps *Deps
	mode VisualMode

	mru     []int
	windows map[int][]wm.WindowInfo // on-screen windows per pid, front to back
	names   map[int]string

	appIndex int
	winIndex int

	// gen is bumped on every user-visible selection change; async capture
	// completions carrying an older token are dropped.
	gen uint64
}

// NewAppSelector creates a selector starting in the given visual mode.
// startOffset pre-advances the app axis, so the "next app" gesture opens the
// HUD already on the second most recent app.
func NewAppSelector(mode VisualMode, startOffset int) *AppSelector {
	return &AppSelector{mode: mode, appIndex: startOffset}
}

// Name implements Node.
func (s *AppSelector) Name() string { return "selector" }

// Sticky implements Node: releasing the accelerator confirms.
func (s *AppSelector) Sticky() bool { return false }

// Activate implements Node.
func (s *AppSelector) Activate(d *Deps) {
	s.deps = d
	s.refresh()
	if len(s.mru) == 0 {
		s.appIndex = 0
	} else {
		s.appIndex = ((s.appIndex % len(s.mru)) + len(s.mru)) % len(s.mru)
	}
	s.show(true)
}

// Suspend implements Node. The stage is shared with the child, which shows
// its own window set; nothing to retain here beyond selection state.
func (s *AppSelector) Suspend() {}

// Deactivate implements Node.
func (s *AppSelector) Deactivate() {}

// refresh re-queries the directory and rebuilds the MRU ordering.
func (s *AppSelector) refresh() {
	d := s.deps
	onScreen, err := d.Directory.ListWindows(wm.ListOptions{OnScreenOnly: true})
	if err != nil {
		log.Warn("window query failed", "err", err)
		onScreen = nil
	}
	all, err := d.Directory.ListWindows(wm.ListOptions{})
	if err != nil {
		all = onScreen
	}

	// A process whose windows are all off-screen counts as hidden.
	onScreenPIDs := make(map[int]bool)
	for _, w := range onScreen {
		onScreenPIDs[w.PID] = true
	}
	hidden := make(map[int]bool)
	for _, w := range all {
		if !onScreenPIDs[w.PID] {
			hidden[w.PID] = true
		}
	}

	s.mru = wm.BuildMRU(onScreen, all, hidden, nil, d.OwnPID)
	s.windows = make(map[int][]wm.WindowInfo)
	for _, w := range wm.FilterBySize(all, config.MinWindowSize) {
		s.windows[w.PID] = append(s.windows[w.PID], w)
	}
	// Names come from the unfiltered list: an app whose only window is a
	// tiny backdrop still has a usable name for relaunch.
	s.names = make(map[int]string)
	for _, w := range all {
		if w.AppName != "" {
			s.names[w.PID] = w.AppName
		}
	}
	d.Projects.Validate(all)
}

// selectedPID returns the pid under the app axis.
func (s *AppSelector) selectedPID() (int, bool) {
	if len(s.mru) == 0 {
		return 0, false
	}
	return s.mru[s.appIndex], true
}

// selectedWindow resolves both axes to one window.
func (s *AppSelector) selectedWindow() (wm.WindowInfo, bool) {
	pid, ok := s.selectedPID()
	if !ok {
		return wm.WindowInfo{}, false
	}
	wins := s.windows[pid]
	if len(wins) == 0 {
		return wm.WindowInfo{}, false
	}
	i := s.winIndex
	if i < 0 || i >= len(wins) {
		i = 0
	}
	return wins[i], true
}

// shownWindows computes the stage window set and front index for the
// current mode and selection.
func (s *AppSelector) shownWindows() ([]wm.WindowInfo, int) {
	switch s.mode {
	case WindowsOnly:
		pid, ok := s.selectedPID()
		if !ok {
			return nil, 0
		}
		return s.windows[pid], s.winIndex
	default:
		var out []wm.WindowInfo
		front := 0
		for i, pid := range s.mru {
			wins := s.windows[pid]
			if len(wins) == 0 {
				continue
			}
			if i == s.appIndex {
				front = len(out)
				if s.mode == Combined {
					// The selected app contributes all of its windows.
					out = append(out, wins...)
					continue
				}
			}
			out = append(out, wins[0])
		}
		return out, front
	}
}

// show rebuilds the stage for the current selection and requests captures.
func (s *AppSelector) show(animated bool) {
	windows, front := s.shownWindows()
	layout := s.deps.Stage.Layout()
	if len(s.deps.Stage.Panels()) == 0 {
		layout = stage.ParseLayout(s.deps.Config.Appearance.DefaultLayout)
	}
	s.deps.Stage.Show(windows, layout, front, animated)
	s.requestCaptures()
}

// requestCaptures issues generation-tagged captures for every panel, applying
// cache hits synchronously.
func (s *AppSelector) requestCaptures() {
	for _, p := range s.deps.Stage.Panels() {
		if cached := s.deps.Captures.Request(p.Window.ID, s.gen); cached != nil {
			s.deps.Stage.SetImage(p.Window.ID, cached)
		}
	}
}

// ApplyCapture implements CaptureConsumer. Stale and failed results never
// mutate visible state.
func (s *AppSelector) ApplyCapture(res capture.Result) {
	if res.Generation != s.gen || res.Err != nil {
		return
	}
	s.deps.Stage.SetImage(res.WindowID, res.Image)
}

// HandleEvent implements Node.
func (s *AppSelector) HandleEvent(ev Event) Response {
	if ev.Kind != KeyDown {
		return Response{Result: Handled}
	}
	action, ok := s.deps.Keys.Lookup("selector", ev.Key)
	if !ok {
		return Response{Result: Unhandled}
	}

	switch action {
	case "next_app":
		s.cycleApp(1)
	case "prev_app":
		s.cycleApp(-1)
	case "next_window":
		s.cycleWindow(1)
	case "prev_window":
		s.cycleWindow(-1)
	case "expand_windows":
		// Expansion gesture: apps -> combined -> windows of the app.
		switch s.mode {
		case AppsOnly:
			s.setMode(Combined)
		default:
			s.setMode(WindowsOnly)
		}
	case "collapse":
		switch s.mode {
		case WindowsOnly:
			s.setMode(Combined)
		default:
			s.setMode(AppsOnly)
		}
	case "cycle_layout":
		s.deps.Stage.TransitionTo(s.deps.Stage.Layout().Next())
	case "hide_app":
		s.hideSelected()
	case "quit_app":
		s.quitSelected()
	case "toggle_projects":
		return Response{Result: Push, Child: NewProjectSelector()}
	case "grid_hud":
		return Response{Result: Push, Child: NewGridHud()}
	case "confirm":
		s.confirm()
		return Response{Result: Confirm}
	case "cancel":
		return Response{Result: Dismiss}
	default:
		return Response{Result: Unhandled}
	}
	return Response{Result: Handled}
}

func (s *AppSelector) bumpGeneration() { s.gen++ }

func (s *AppSelector) cycleApp(direction int) {
	if len(s.mru) == 0 {
		return
	}
	if s.mode == WindowsOnly {
		s.setMode(AppsOnly)
	}
	s.bumpGeneration()
	n := len(s.mru)
	s.appIndex = ((s.appIndex+direction)%n + n) % n
	s.winIndex = 0

	// Orbit layouts rotate the panel set in place, which is only valid
	// while the shown set is one card per app. In Combined mode the
	// selection change swaps which app is expanded, so the set itself
	// changes and the stage must be rebuilt.
	if s.orbiting() && s.mode != Combined {
		s.deps.Stage.Cycle(direction)
		s.requestCaptures()
	} else {
		s.show(false)
	}

	if s.deps.Config.Behavior.RaiseAllOnSelect {
		if pid, ok := s.selectedPID(); ok {
			s.deps.RaiseAll(pid)
		}
	}
}

func (s *AppSelector) cycleWindow(direction int) {
	pid, ok := s.selectedPID()
	if !ok {
		return
	}
	wins := s.windows[pid]
	if len(wins) == 0 {
		return
	}
	if s.mode != WindowsOnly {
		// Mode-expansion gesture: stepping the window axis expands the app.
		s.setMode(WindowsOnly)
		return
	}
	s.bumpGeneration()
	n := len(wins)
	s.winIndex = ((s.winIndex+direction)%n + n) % n
	// Row and grid poses ignore orbital angles, so cycling there has to
	// restage with the new front index.
	if s.orbiting() {
		s.deps.Stage.Cycle(direction)
		s.requestCaptures()
	} else {
		s.show(false)
	}
}

// orbiting reports whether the active layout positions panels by orbital
// angle, making Stage.Cycle meaningful.
func (s *AppSelector) orbiting() bool {
	l := s.deps.Stage.Layout()
	return l == stage.LayoutCarousel || l == stage.LayoutRing
}

func (s *AppSelector) setMode(mode VisualMode) {
	if s.mode == mode {
		return
	}
	s.mode = mode
	s.winIndex = 0
	s.bumpGeneration()
	s.show(true)
}

func (s *AppSelector) hideSelected() {
	pid, ok := s.selectedPID()
	if !ok {
		return
	}
	if err := s.deps.Actions.Hide(pid); err != nil {
		log.Debug("hide failed", "pid", pid, "err", err)
	}
	s.bumpGeneration()
	s.refresh()
	s.show(false)
}

func (s *AppSelector) quitSelected() {
	pid, ok := s.selectedPID()
	if !ok {
		return
	}
	if err := s.deps.Actions.Terminate(pid); err != nil {
		log.Debug("terminate failed", "pid", pid, "err", err)
	}
	s.deps.Notify(fmt.Sprintf("Asked %s to quit", s.appLabel(pid)))
	s.bumpGeneration()
	s.refresh()
	s.show(false)
}

// confirm raises the chosen window, or launches the app when it owns none,
// and flies the stage out. Failures are best effort: the modal flow
// completes regardless.
func (s *AppSelector) confirm() {
	win, ok := s.selectedWindow()
	if !ok {
		// Relaunch needs a real process name; the "pid N" display
		// fallback is not an executable.
		if pid, havePID := s.selectedPID(); havePID {
			if name := s.names[pid]; name != "" {
				if err := s.deps.Actions.Launch(name); err != nil {
					log.Debug("launch failed", "pid", pid, "err", err)
				}
			}
		}
		s.deps.Stage.Teardown()
		return
	}
	if err := s.deps.Actions.Raise(win.ID); err != nil {
		log.Debug("raise failed", "window", win.ID, "err", err)
	}
	if s.deps.Config.Behavior.RaiseAllOnSelect {
		if err := s.deps.Actions.Activate(win.PID, wm.ActivateOptions{AllWindows: true}); err != nil {
			log.Debug("activate failed", "pid", win.PID, "err", err)
		}
	}
	s.deps.Stage.FlyOutFront(nil)
}

func (s *AppSelector) appLabel(pid int) string {
	if name := s.names[pid]; name != "" {
		return name
	}
	return fmt.Sprintf("pid %d", pid)
}

// Overlay implements Node: the app strip with the selection highlighted.
func (s *AppSelector) Overlay(width, _ int) string {
	if len(s.mru) == 0 {
		return theme.Dim().Render("No windows")
	}
	var items []string
	for i, pid := range s.mru {
		label := s.appLabel(pid)
		if s.mode == WindowsOnly && i == s.appIndex {
			label = fmt.Sprintf("%s (%d/%d)", label, s.winIndex+1, len(s.windows[pid]))
		}
		if i == s.appIndex {
			items = append(items, theme.Selected().Render(" "+label+" "))
		} else {
			items = append(items, theme.Dim().Render(" "+label+" "))
		}
	}
	strip := strings.Join(items, " ")
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(strip)
}
